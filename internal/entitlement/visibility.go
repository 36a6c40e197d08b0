package entitlement

import (
	"time"

	"github.com/spec-kit/marketplace-trust/internal/domain"
)

// VisibilityDecision explains whether an entity appears on public
// discovery surfaces. Reason is always non-empty: callers surface why
// something is hidden, never a bare boolean.
type VisibilityDecision struct {
	Visible bool   `json:"visible"`
	Tier    string `json:"tier,omitempty"`
	Reason  string `json:"reason"`
}

// Public tier labels for visible entries.
const (
	TierLabelElite        = "elite"
	TierLabelProfessional = "professional"
)

// CheckVisibility decides directory/map presence for an entity. The
// rules form an ordered cascade, first match wins.
func CheckVisibility(e *domain.Entity, now time.Time) VisibilityDecision {
	switch e.Type {
	case domain.EntityTypeBuyer:
		// Buyers never promote inventory or services. No override path.
		return VisibilityDecision{Visible: false, Reason: "buyer accounts are never listed"}

	case domain.EntityTypeSeller:
		// Sellers opt in per-listing through the elite placement add-on.
		// Verification and tier membership do not substitute.
		if !e.HasElitePlacement(now) {
			return VisibilityDecision{Visible: false, Reason: "elite placement add-on is not active"}
		}
		return VisibilityDecision{Visible: true, Tier: TierLabelElite, Reason: "elite placement active"}

	case domain.EntityTypeContractor, domain.EntityTypeCompany:
		if !e.IsVerified(now) {
			return VisibilityDecision{Visible: false, Reason: "verification is not current"}
		}
		if !e.IsActive {
			return VisibilityDecision{Visible: false, Reason: "account is inactive"}
		}
		if !e.IsPublished {
			return VisibilityDecision{Visible: false, Reason: "profile is not published"}
		}
		if !e.HasPaidTier(now) {
			return VisibilityDecision{Visible: false, Reason: "no paid visibility tier"}
		}
		return VisibilityDecision{Visible: true, Tier: TierLabelProfessional, Reason: "verified with paid tier"}

	default:
		return VisibilityDecision{Visible: false, Reason: "unknown entity type"}
	}
}

// DirectoryScore ranks entities inside a discovery surface. Strictly
// additive; ties are broken by the caller (e.g. recency).
func DirectoryScore(e *domain.Entity, now time.Time) int {
	score := 0
	if e.IsVerified(now) {
		score += 100
	}
	switch e.EffectiveTier(now) {
	case domain.TierPriority:
		score += 300
	case domain.TierFeatured:
		score += 200
	case domain.TierBasic:
		score += 50
	case domain.TierHidden:
	}
	return score
}
