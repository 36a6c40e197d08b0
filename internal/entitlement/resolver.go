package entitlement

import (
	"time"

	"github.com/spec-kit/marketplace-trust/internal/domain"
)

// ResolveInput carries the already-loaded entity state the resolver
// projects from. The resolver performs no I/O; now is injected so the
// projection stays deterministic under test.
type ResolveInput struct {
	Type                    domain.EntityType
	VerificationStatus      domain.VerificationStatus
	VisibilityTier          domain.VisibilityTier
	VerifiedBadgeExpiresAt  *time.Time
	VisibilityExpiresAt     *time.Time
	ElitePlacementExpiresAt *time.Time
}

// InputFromEntity builds a ResolveInput from a loaded entity.
func InputFromEntity(e *domain.Entity) ResolveInput {
	return ResolveInput{
		Type:                    e.Type,
		VerificationStatus:      e.VerificationStatus,
		VisibilityTier:          e.VisibilityTier,
		VerifiedBadgeExpiresAt:  e.VerifiedBadgeExpiresAt,
		VisibilityExpiresAt:     e.VisibilityExpiresAt,
		ElitePlacementExpiresAt: e.ElitePlacementExpiresAt,
	}
}

// Resolve projects entity state into a fresh entitlement set.
// Unknown types or statuses resolve to the all-false set: data
// integrity problems must not become permissive defaults.
func Resolve(in ResolveInput, now time.Time) domain.EntitlementSet {
	status := effectiveVerification(in, now)
	tier := effectiveTier(in, now)

	switch status {
	case domain.VerificationNone, domain.VerificationPending,
		domain.VerificationVerified, domain.VerificationExpired,
		domain.VerificationRejected:
	default:
		return domain.NoEntitlements()
	}

	verified := status == domain.VerificationVerified
	level := domain.TrustLevelFor(in.Type)
	_, boost := domain.PaidTiers[tier]

	switch in.Type {
	case domain.EntityTypeSeller:
		return domain.EntitlementSet{
			CanListItems:        verified,
			CanReceiveInquiries: true,
			CanSendInquiries:    true,
			CanDisplayContact:   verified,
			HasVerifiedBadge:    verified,
			HasVisibilityBoost:  boost,
			SearchEligible:      verified,
		}
	case domain.EntityTypeContractor:
		// Contractor verification implies seller-level listing rights.
		return domain.EntitlementSet{
			CanListItems:        verified && level.AtLeast(domain.TrustLevelSeller),
			CanReceiveInquiries: true,
			CanSendInquiries:    true,
			CanDisplayContact:   verified,
			HasVerifiedBadge:    verified,
			HasVisibilityBoost:  boost,
			SearchEligible:      verified,
		}
	case domain.EntityTypeCompany:
		// Companies get baseline display without verification.
		return domain.EntitlementSet{
			CanReceiveInquiries: true,
			CanSendInquiries:    true,
			CanDisplayContact:   true,
			HasVerifiedBadge:    verified,
			HasVisibilityBoost:  boost,
			SearchEligible:      verified,
			BaselineDisplay:     true,
		}
	case domain.EntityTypeBuyer:
		return domain.EntitlementSet{
			CanSendInquiries: true,
		}
	default:
		return domain.NoEntitlements()
	}
}

// effectiveVerification applies expiry normalization: an elapsed badge
// expiry forces EXPIRED even when the stored status still says VERIFIED.
func effectiveVerification(in ResolveInput, now time.Time) domain.VerificationStatus {
	if in.VerificationStatus == domain.VerificationVerified &&
		in.VerifiedBadgeExpiresAt != nil && !in.VerifiedBadgeExpiresAt.After(now) {
		return domain.VerificationExpired
	}
	return in.VerificationStatus
}

// effectiveTier demotes to HIDDEN once the tier purchase has lapsed.
// Derived-from-timestamp is authoritative over the stored column.
func effectiveTier(in ResolveInput, now time.Time) domain.VisibilityTier {
	if in.VisibilityExpiresAt != nil && !in.VisibilityExpiresAt.After(now) {
		return domain.TierHidden
	}
	return in.VisibilityTier
}
