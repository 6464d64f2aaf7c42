package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/pkg/jwtx"
)

// TokenService issues, validates, refreshes and revokes the bearer tokens
// of the API. It holds no mutable state of its own; revocations live in
// the injected RevocationStore.
type TokenService struct {
	Codec       jwtx.Codec
	Revocations RevocationStore
	Identities  *IdentityResolver

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Leeway must match the codec's clock-skew tolerance. Revocations are
	// kept until expiry plus Leeway, the last moment the codec would still
	// accept the token.
	Leeway time.Duration

	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// IssueAccessToken signs an access token conferring exactly p's roles.
func (s *TokenService) IssueAccessToken(_ context.Context, p domain.Principal) (string, error) {
	claims := jwtx.NewAccessClaims(p.Subject, p.UserID, domain.RoleNames(p.Roles), s.accessTTL(), s.now())
	return s.Codec.Encode(claims)
}

// IssueRefreshToken signs a refresh token for subject. It carries no roles.
func (s *TokenService) IssueRefreshToken(_ context.Context, subject string) (string, error) {
	return s.Codec.Encode(jwtx.NewRefreshClaims(subject, s.refreshTTL(), s.now()))
}

// Validate returns nil only for a genuine, unexpired, unrevoked access token
// issued to expectedSubject. Failures are jwtx.ErrMalformed, jwtx.ErrExpired,
// ErrSubjectMismatch or ErrRevokedToken.
func (s *TokenService) Validate(ctx context.Context, token, expectedSubject string) error {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return err
	}
	if err := claims.RequireType(jwtx.TokenTypeAccess); err != nil {
		return err
	}
	if claims.Subject != expectedSubject {
		return ErrSubjectMismatch
	}
	return s.checkRevoked(ctx, token)
}

// IsValid is Validate reduced to a boolean.
func (s *TokenService) IsValid(ctx context.Context, token, expectedSubject string) bool {
	return s.Validate(ctx, token, expectedSubject) == nil
}

// Refresh exchanges a refresh token for a new access token carrying the
// subject's current roles. Every failure is ErrInvalidToken wrapping the
// cause, and no token is issued.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.Codec.Decode(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if err := claims.RequireType(jwtx.TokenTypeRefresh); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if err := s.checkRevoked(ctx, refreshToken); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	p, err := s.Identities.Resolve(ctx, claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return s.IssueAccessToken(ctx, p)
}

// Revoke marks token as revoked until it would expire. Tokens that no
// longer decode are already unusable, so revoking them does nothing.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return nil
	}
	return s.Revocations.Revoke(ctx, token, claims.ExpiresAt.Add(s.Leeway))
}

// ExtractClaims returns the signature-verified claims of token.
func (s *TokenService) ExtractClaims(token string) (jwtx.Claims, error) {
	return s.Codec.Decode(token)
}

// ExtractSubject returns the verified subject of token.
func (s *TokenService) ExtractSubject(token string) (string, error) {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractRoles returns the verified role names signed into token.
func (s *TokenService) ExtractRoles(token string) ([]string, error) {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return nil, err
	}
	return claims.Roles, nil
}

// Authenticate turns a raw bearer token into a principal. The subject must
// still resolve to an account with the same id the token was issued for,
// and the principal carries the roles signed into the token.
func (s *TokenService) Authenticate(ctx context.Context, raw string) (domain.Principal, error) {
	claims, err := s.ExtractClaims(raw)
	if err != nil {
		return domain.Principal{}, err
	}

	ident, err := s.Identities.Resolve(ctx, claims.Subject)
	if err != nil {
		return domain.Principal{}, err
	}
	if err := s.Validate(ctx, raw, ident.Subject); err != nil {
		return domain.Principal{}, err
	}
	if claims.UserID != ident.UserID {
		return domain.Principal{}, ErrSubjectMismatch
	}

	return domain.Principal{
		Subject: ident.Subject,
		UserID:  ident.UserID,
		Roles:   domain.RolesFromNames(claims.Roles),
	}, nil
}

func (s *TokenService) checkRevoked(ctx context.Context, token string) error {
	revoked, err := s.Revocations.IsRevoked(ctx, token)
	if err != nil {
		return fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return ErrRevokedToken
	}
	return nil
}
