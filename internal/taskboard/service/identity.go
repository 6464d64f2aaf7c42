package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/store"
)

// IdentityResolver maps a token subject (the account email) to the
// account's current id and roles. With a positive CacheTTL results are
// memoised per subject; user mutations call Invalidate.
type IdentityResolver struct {
	Store    store.Store
	CacheTTL time.Duration
	Now      func() time.Time

	mu    sync.Mutex
	cache map[string]cachedIdentity
}

type cachedIdentity struct {
	principal domain.Principal
	expires   time.Time
}

// NewIdentityResolver returns a resolver over s. A ttl of zero disables
// caching.
func NewIdentityResolver(s store.Store, ttl time.Duration) *IdentityResolver {
	return &IdentityResolver{Store: s, CacheTTL: ttl}
}

func (r *IdentityResolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func cacheKey(subject string) string { return strings.ToLower(subject) }

// Resolve returns the principal for subject or ErrIdentityNotFound.
func (r *IdentityResolver) Resolve(ctx context.Context, subject string) (domain.Principal, error) {
	if subject == "" {
		return domain.Principal{}, ErrIdentityNotFound
	}
	if p, ok := r.cached(subject); ok {
		return p, nil
	}

	u, err := r.Store.Users().GetUserByEmail(ctx, subject)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Principal{}, ErrIdentityNotFound
	}
	if err != nil {
		return domain.Principal{}, err
	}

	roles, err := r.Store.Roles().ListUserRoles(ctx, u.ID)
	if err != nil {
		return domain.Principal{}, err
	}

	p := domain.Principal{Subject: u.Email, UserID: u.ID, Roles: roles}
	r.remember(subject, p)
	return p, nil
}

// Invalidate drops any cached entry for subject.
func (r *IdentityResolver) Invalidate(subject string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, cacheKey(subject))
}

func (r *IdentityResolver) cached(subject string) (domain.Principal, bool) {
	if r.CacheTTL <= 0 {
		return domain.Principal{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.cache[cacheKey(subject)]
	if !ok || !r.now().Before(entry.expires) {
		return domain.Principal{}, false
	}
	p := entry.principal
	p.Roles = slices.Clone(p.Roles)
	return p, true
}

func (r *IdentityResolver) remember(subject string, p domain.Principal) {
	if r.CacheTTL <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cache == nil {
		r.cache = make(map[string]cachedIdentity)
	}
	p.Roles = slices.Clone(p.Roles)
	r.cache[cacheKey(subject)] = cachedIdentity{principal: p, expires: r.now().Add(r.CacheTTL)}
}
