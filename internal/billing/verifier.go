package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-trust/internal/domain"
	"github.com/spec-kit/marketplace-trust/internal/repository"
)

// Result sources, surfaced so callers and tests can tell how a verdict
// was produced.
const (
	SourceAuthority  = "authority"
	SourceCache      = "cache"
	SourceDBFallback = "db-fallback"
)

const (
	cacheKeyPrefix  = "sub:"
	defaultCacheTTL = 5 * time.Minute
)

// ErrAuthorityUnavailable wraps authority call failures. The capability
// gated by the check is denied; the caller decides whether to surface a
// billing prompt.
var ErrAuthorityUnavailable = errors.New("payment authority unavailable")

// VerificationResult is the verifier's verdict on a subscription.
// Valid=false with a non-nil Err means the check itself failed and the
// verifier failed closed.
type VerificationResult struct {
	Valid             bool
	Status            domain.SubscriptionStatus
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
	Source            string
	Err               error
}

// cacheEntry is owned exclusively by the verifier and never exposed to
// callers directly.
type cacheEntry struct {
	SubscriptionID    string    `json:"subscription_id"`
	Status            string    `json:"status"`
	CurrentPeriodEnd  int64     `json:"current_period_end"`
	CancelAtPeriodEnd bool      `json:"cancel_at_period_end"`
	CachedAt          time.Time `json:"cached_at"`
}

// Verifier confirms a subscription's live status against the payment
// authority, with a short-TTL Redis cache bounding the external call
// rate. Authority failures always resolve to Valid=false.
type Verifier struct {
	authority PaymentAuthority
	cache     *redis.Client
	subs      repository.SubscriptionRepository
	logger    *zap.Logger
	ttl       time.Duration
}

// NewVerifier constructs a verifier. subs may be nil when no local
// billing records exist; the db-fallback path is then skipped.
func NewVerifier(authority PaymentAuthority, cache *redis.Client, subs repository.SubscriptionRepository, logger *zap.Logger, ttl time.Duration) *Verifier {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Verifier{
		authority: authority,
		cache:     cache,
		subs:      subs,
		logger:    logger,
		ttl:       ttl,
	}
}

// Verify resolves the live validity of a subscription.
//
// Order of resolution: missing id, fresh cache entry, terminal local
// record, authority call. Repeated calls within the cache TTL yield
// identical results and issue at most one authority call.
func (v *Verifier) Verify(ctx context.Context, subscriptionID string) VerificationResult {
	if subscriptionID == "" {
		return VerificationResult{
			Valid:  false,
			Status: domain.SubscriptionUnknown,
			Source: SourceAuthority,
		}
	}

	if entry, ok := v.readCache(ctx, subscriptionID); ok {
		return resultFromEntry(entry, SourceCache)
	}

	// A locally persisted terminal status cannot improve; skip the
	// round-trip entirely.
	if v.subs != nil {
		if sub, err := v.subs.GetByID(ctx, subscriptionID); err == nil && sub != nil {
			if _, terminal := domain.TerminalStatuses[sub.Status]; terminal {
				return VerificationResult{
					Valid:  false,
					Status: sub.Status,
					Source: SourceDBFallback,
				}
			}
		}
	}

	sub, err := v.authority.RetrieveSubscription(ctx, subscriptionID)
	if err != nil {
		// Fail closed: an authority outage must never silently grant
		// access, even if a stale cache entry once said otherwise.
		v.logger.Warn("subscription verification failed closed",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return VerificationResult{
			Valid:  false,
			Status: domain.SubscriptionUnknown,
			Source: SourceAuthority,
			Err:    errors.Join(ErrAuthorityUnavailable, err),
		}
	}

	entry := cacheEntry{
		SubscriptionID:    sub.ID,
		Status:            sub.Status,
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CachedAt:          time.Now().UTC(),
	}
	v.writeCache(ctx, subscriptionID, entry)

	return resultFromEntry(entry, SourceAuthority)
}

func (v *Verifier) readCache(ctx context.Context, subscriptionID string) (cacheEntry, bool) {
	if v.cache == nil {
		return cacheEntry{}, false
	}
	raw, err := v.cache.Get(ctx, cacheKeyPrefix+subscriptionID).Result()
	if err != nil {
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return cacheEntry{}, false
	}
	return entry, true
}

func (v *Verifier) writeCache(ctx context.Context, subscriptionID string, entry cacheEntry) {
	if v.cache == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	// Concurrent writers for the same id converge on the same
	// authority-reported state; last writer wins.
	if err := v.cache.Set(ctx, cacheKeyPrefix+subscriptionID, data, v.ttl).Err(); err != nil {
		v.logger.Warn("subscription cache write failed",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
	}
}

func resultFromEntry(entry cacheEntry, source string) VerificationResult {
	status := domain.SubscriptionStatus(entry.Status)
	var periodEnd *time.Time
	if entry.CurrentPeriodEnd > 0 {
		t := time.Unix(entry.CurrentPeriodEnd, 0).UTC()
		periodEnd = &t
	}
	return VerificationResult{
		Valid:             status == domain.SubscriptionActive || status == domain.SubscriptionTrialing,
		Status:            status,
		CurrentPeriodEnd:  periodEnd,
		CancelAtPeriodEnd: entry.CancelAtPeriodEnd,
		Source:            source,
	}
}
