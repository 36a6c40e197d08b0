package service

import (
	"context"
	"time"

	"github.com/spec-kit/marketplace-trust/internal/billing"
	"github.com/spec-kit/marketplace-trust/internal/domain"
	"github.com/spec-kit/marketplace-trust/internal/entitlement"
	"github.com/spec-kit/marketplace-trust/internal/events"
	"github.com/spec-kit/marketplace-trust/internal/observability"
	"github.com/spec-kit/marketplace-trust/internal/repository"
	apperrors "github.com/spec-kit/marketplace-trust/pkg/util/errorutil"
)

// TrustService projects entity state into entitlements, deferring to
// the subscription verifier for money-gated capabilities.
type TrustService struct {
	entities   repository.EntityRepository
	subs       repository.SubscriptionRepository
	verifier   *billing.Verifier
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	now        func() time.Time
}

// NewTrustService builds the service. subs may be nil when no local
// billing records are kept.
func NewTrustService(entities repository.EntityRepository, subs repository.SubscriptionRepository, verifier *billing.Verifier, metrics *observability.Metrics, dispatcher events.Dispatcher) *TrustService {
	return &TrustService{
		entities:   entities,
		subs:       subs,
		verifier:   verifier,
		metrics:    metrics,
		dispatcher: dispatcher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// EntitlementsFor derives a fresh entitlement set for an entity. The
// set is never cached.
func (s *TrustService) EntitlementsFor(ctx context.Context, entityID string) (domain.EntitlementSet, error) {
	entity, err := s.entities.GetByID(ctx, entityID)
	if err != nil {
		return domain.NoEntitlements(), err
	}
	return s.EntitlementsForEntity(ctx, entity), nil
}

// EntitlementsForEntity resolves an already-loaded entity.
func (s *TrustService) EntitlementsForEntity(ctx context.Context, entity *domain.Entity) domain.EntitlementSet {
	now := s.now()
	set := entitlement.Resolve(entitlement.InputFromEntity(entity), now)

	if entity.VerificationStatus == domain.VerificationVerified &&
		entity.EffectiveVerification(now) == domain.VerificationExpired &&
		s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:     events.EventVerificationExpired,
			EntityID: entity.ID,
			Actor:    entityActor(entity.ID),
			Payload:  events.VerificationExpiredPayload{ExpiredAt: *entity.VerifiedBadgeExpiresAt},
		})
	}

	// The visibility boost rides on a paid plan. The stored tier alone
	// is not proof of payment; the authority has the last word.
	if set.HasVisibilityBoost {
		if entity.SubscriptionID == nil {
			set.HasVisibilityBoost = false
		} else {
			result := s.verifier.Verify(ctx, *entity.SubscriptionID)
			s.metrics.RecordVerification(result.Source, result.Valid)
			if !result.Valid {
				set.HasVisibilityBoost = false
			}
		}
	}
	return set
}

// SubscriptionValid checks the live status of an entity's subscription.
// When the entity carries no subscription id, the local billing records
// are consulted for one; entities with no subscription at all resolve
// to invalid with no call. A fresh authority answer is persisted so the
// verifier's db-fallback path stays current.
func (s *TrustService) SubscriptionValid(ctx context.Context, entity *domain.Entity) billing.VerificationResult {
	subscriptionID := ""
	if entity.SubscriptionID != nil {
		subscriptionID = *entity.SubscriptionID
	} else if s.subs != nil {
		if sub, err := s.subs.GetByEntityID(ctx, entity.ID); err == nil && sub != nil {
			subscriptionID = sub.ID
		}
	}
	if subscriptionID == "" {
		return billing.VerificationResult{Valid: false, Status: domain.SubscriptionUnknown, Source: billing.SourceAuthority}
	}

	result := s.verifier.Verify(ctx, subscriptionID)
	s.metrics.RecordVerification(result.Source, result.Valid)

	if s.subs != nil && result.Err == nil && result.Source == billing.SourceAuthority {
		record := &domain.Subscription{
			ID:                subscriptionID,
			EntityID:          entity.ID,
			Status:            result.Status,
			CurrentPeriodEnd:  result.CurrentPeriodEnd,
			CancelAtPeriodEnd: result.CancelAtPeriodEnd,
		}
		_ = s.subs.Upsert(ctx, record)
	}
	return result
}

// RequireSubscription is the gate for subscription-only surfaces: it
// resolves the entity's live subscription state and converts anything
// short of a valid plan into the subscription-required error.
func (s *TrustService) RequireSubscription(ctx context.Context, entity *domain.Entity) (billing.VerificationResult, error) {
	result := s.SubscriptionValid(ctx, entity)
	if !result.Valid {
		return result, apperrors.NewSubscriptionRequired("")
	}
	return result, nil
}
