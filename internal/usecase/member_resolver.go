package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/coopledger/internal/domain"
)

// memberResolver maps the "Member ID" column of an upload to a member id.
// The column may hold either the id or the member number. Resolutions are
// memoised for the import and shared through the cache together with the
// member's active flag; unknown references are never cached.
type memberResolver struct {
	repo     MemberRepository
	cache    Cache
	logger   zerolog.Logger
	memo     map[string]memberRef
	tenantID string
}

type memberRef struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

func newMemberResolver(repo MemberRepository, cache Cache, logger zerolog.Logger, tenantID string) *memberResolver {
	return &memberResolver{
		repo:     repo,
		cache:    cache,
		logger:   logger,
		memo:     make(map[string]memberRef),
		tenantID: tenantID,
	}
}

func memberCacheKey(tenantID, ref string) string {
	return "member:" + tenantID + ":" + ref
}

func (r *memberResolver) resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", domain.NewValidationError("member_id", "is required")
	}

	if m, ok := r.memo[ref]; ok {
		return m.check(ref)
	}

	key := memberCacheKey(r.tenantID, ref)
	if m, ok := r.cached(ctx, key); ok {
		r.memo[ref] = m
		return m.check(ref)
	}

	member, err := r.repo.FindByReference(ctx, r.tenantID, ref)
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: %q", domain.ErrMemberNotFound, ref)
		}
		return "", err
	}

	m := memberRef{ID: member.ID, Active: member.IsActive}
	r.memo[ref] = m
	if r.cache != nil {
		raw, _ := json.Marshal(m)
		if err := r.cache.Set(ctx, key, string(raw), MemberCacheTTL); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("member cache write failed")
		}
	}

	return m.check(ref)
}

func (r *memberResolver) cached(ctx context.Context, key string) (memberRef, bool) {
	if r.cache == nil {
		return memberRef{}, false
	}
	raw, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("member cache read failed")
		return memberRef{}, false
	}
	if !ok {
		return memberRef{}, false
	}
	var m memberRef
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m.ID == "" {
		r.logger.Debug().Str("key", key).Msg("discarding unreadable member cache entry")
		return memberRef{}, false
	}
	return m, true
}

func (m memberRef) check(ref string) (string, error) {
	if !m.Active {
		return "", domain.NewValidationError("member_id", fmt.Sprintf("member %q is inactive", ref))
	}
	return m.ID, nil
}
