package domain

import "time"

// EntityType enumerates the kinds of accounts participating in the marketplace.
type EntityType string

const (
	EntityTypeSeller     EntityType = "SELLER"
	EntityTypeContractor EntityType = "CONTRACTOR"
	EntityTypeCompany    EntityType = "COMPANY"
	EntityTypeBuyer      EntityType = "BUYER"
)

// VerificationStatus is the stored outcome of the identity review process.
// The stored value is advisory: expiry timestamps are re-checked at read
// time and take precedence when they disagree.
type VerificationStatus string

const (
	VerificationNone     VerificationStatus = "NONE"
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationExpired  VerificationStatus = "EXPIRED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// VisibilityTier is a paid exposure level, independent of verification.
type VisibilityTier string

const (
	TierHidden   VisibilityTier = "HIDDEN"
	TierBasic    VisibilityTier = "BASIC"
	TierFeatured VisibilityTier = "FEATURED"
	TierPriority VisibilityTier = "PRIORITY"
)

// PaidTiers are the tiers that only exist on a paid plan. Hidden never
// qualifies; basic qualifies only with a subscription attached, which
// Entity.HasPaidTier checks.
var PaidTiers = map[VisibilityTier]struct{}{
	TierFeatured: {},
	TierPriority: {},
}

// Entity is the aggregate for marketplace accounts.
type Entity struct {
	ID                      string
	Type                    EntityType
	Name                    string
	Email                   string
	PasswordHash            string
	VerificationStatus      VerificationStatus
	VisibilityTier          VisibilityTier
	VerifiedBadgeExpiresAt  *time.Time
	VisibilityExpiresAt     *time.Time
	ElitePlacementExpiresAt *time.Time
	SubscriptionID          *string
	IsActive                bool
	IsPublished             bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// EffectiveVerification derives the verification status at read time.
// A badge expiry at or before now forces EXPIRED even if the stored
// column still says VERIFIED.
func (e *Entity) EffectiveVerification(now time.Time) VerificationStatus {
	if e.VerificationStatus == VerificationVerified &&
		e.VerifiedBadgeExpiresAt != nil && !e.VerifiedBadgeExpiresAt.After(now) {
		return VerificationExpired
	}
	return e.VerificationStatus
}

// EffectiveTier derives the visibility tier at read time. An elapsed
// tier expiry demotes to HIDDEN regardless of the stored column.
func (e *Entity) EffectiveTier(now time.Time) VisibilityTier {
	if e.VisibilityExpiresAt != nil && !e.VisibilityExpiresAt.After(now) {
		return TierHidden
	}
	return e.VisibilityTier
}

// HasElitePlacement reports whether the per-listing elite add-on is
// active and unexpired. Sellers opt in to exposure through this add-on
// only; tier membership never substitutes.
func (e *Entity) HasElitePlacement(now time.Time) bool {
	return e.ElitePlacementExpiresAt != nil && e.ElitePlacementExpiresAt.After(now)
}

// IsVerified reports derived verification at now.
func (e *Entity) IsVerified(now time.Time) bool {
	return e.EffectiveVerification(now) == VerificationVerified
}

// HasPaidTier reports whether the effective tier is backed by payment.
// Featured and priority imply a plan on their own; basic counts only
// when a subscription is attached.
func (e *Entity) HasPaidTier(now time.Time) bool {
	tier := e.EffectiveTier(now)
	if _, ok := PaidTiers[tier]; ok {
		return true
	}
	return tier == TierBasic && e.SubscriptionID != nil
}
