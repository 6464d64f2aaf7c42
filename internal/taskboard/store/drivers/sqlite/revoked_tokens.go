package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
)

type revokedTokensRepo struct {
	db dbtx
}

func (r *revokedTokensRepo) RevokeToken(ctx context.Context, t domain.RevokedToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (fingerprint, expires_at, revoked_at) VALUES (?, ?, ?)
		 ON CONFLICT (fingerprint) DO UPDATE SET expires_at = max(expires_at, excluded.expires_at)`,
		t.Fingerprint, t.ExpiresAt.Unix(), t.RevokedAt.UTC(),
	)
	return err
}

func (r *revokedTokensRepo) IsTokenRevoked(ctx context.Context, fingerprint string) (bool, error) {
	var revoked bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE fingerprint = ?)`, fingerprint,
	).Scan(&revoked)
	return revoked, err
}

func (r *revokedTokensRepo) DeleteExpiredRevokedTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
