package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/marketplace-trust/internal/domain"
)

func TestCheckVisibility_BuyerNeverVisible(t *testing.T) {
	now := time.Now().UTC()

	// Even a maximally privileged buyer stays hidden.
	e := &domain.Entity{
		Type:                    domain.EntityTypeBuyer,
		VerificationStatus:      domain.VerificationVerified,
		VisibilityTier:          domain.TierPriority,
		ElitePlacementExpiresAt: timePtr(now.Add(time.Hour)),
		IsActive:                true,
		IsPublished:             true,
	}

	decision := CheckVisibility(e, now)
	assert.False(t, decision.Visible)
	assert.NotEmpty(t, decision.Reason)
}

func TestCheckVisibility_SellerRequiresElitePlacement(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		status      domain.VerificationStatus
		eliteUntil  *time.Time
		wantVisible bool
	}{
		{"active add-on", domain.VerificationNone, timePtr(now.Add(time.Hour)), true},
		{"expired add-on", domain.VerificationVerified, timePtr(now.Add(-time.Hour)), false},
		{"no add-on, verified", domain.VerificationVerified, nil, false},
		{"no add-on, unverified", domain.VerificationNone, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &domain.Entity{
				Type:                    domain.EntityTypeSeller,
				VerificationStatus:      tt.status,
				VisibilityTier:          domain.TierPriority,
				ElitePlacementExpiresAt: tt.eliteUntil,
				IsActive:                true,
				IsPublished:             true,
			}
			decision := CheckVisibility(e, now)
			assert.Equal(t, tt.wantVisible, decision.Visible)
			assert.NotEmpty(t, decision.Reason)
			if !tt.wantVisible {
				assert.Contains(t, decision.Reason, "elite placement")
			} else {
				assert.Equal(t, TierLabelElite, decision.Tier)
			}
		})
	}
}

func TestCheckVisibility_VerificationDoesNotFlipSellerResult(t *testing.T) {
	now := time.Now().UTC()

	base := domain.Entity{
		Type:        domain.EntityTypeSeller,
		IsActive:    true,
		IsPublished: true,
	}

	unverified := base
	unverified.VerificationStatus = domain.VerificationNone
	verified := base
	verified.VerificationStatus = domain.VerificationVerified

	assert.Equal(t,
		CheckVisibility(&unverified, now).Visible,
		CheckVisibility(&verified, now).Visible,
		"seller visibility depends on the add-on, not verification")
}

func TestCheckVisibility_ContractorCascade(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		mutate      func(e *domain.Entity)
		wantVisible bool
		wantReason  string
	}{
		{"fully qualified", func(e *domain.Entity) {}, true, "verified with paid tier"},
		{"unverified", func(e *domain.Entity) { e.VerificationStatus = domain.VerificationPending }, false, "verification is not current"},
		{"badge expired", func(e *domain.Entity) { e.VerifiedBadgeExpiresAt = timePtr(now.Add(-time.Minute)) }, false, "verification is not current"},
		{"inactive", func(e *domain.Entity) { e.IsActive = false }, false, "account is inactive"},
		{"unpublished", func(e *domain.Entity) { e.IsPublished = false }, false, "profile is not published"},
		{"hidden tier", func(e *domain.Entity) { e.VisibilityTier = domain.TierHidden }, false, "no paid visibility tier"},
		{"lapsed tier", func(e *domain.Entity) { e.VisibilityExpiresAt = timePtr(now.Add(-time.Minute)) }, false, "no paid visibility tier"},
		{"basic tier without subscription", func(e *domain.Entity) {
			e.VisibilityTier = domain.TierBasic
			e.SubscriptionID = nil
		}, false, "no paid visibility tier"},
		{"basic tier with subscription", func(e *domain.Entity) {
			e.VisibilityTier = domain.TierBasic
			e.SubscriptionID = strPtr("sub-1")
		}, true, "verified with paid tier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &domain.Entity{
				Type:               domain.EntityTypeContractor,
				VerificationStatus: domain.VerificationVerified,
				VisibilityTier:     domain.TierPriority,
				IsActive:           true,
				IsPublished:        true,
			}
			tt.mutate(e)
			decision := CheckVisibility(e, now)
			assert.Equal(t, tt.wantVisible, decision.Visible)
			assert.Equal(t, tt.wantReason, decision.Reason)
			if tt.wantVisible {
				assert.Equal(t, TierLabelProfessional, decision.Tier)
			}
		})
	}
}

func TestCheckVisibility_CompanyFollowsContractorRules(t *testing.T) {
	now := time.Now().UTC()

	e := &domain.Entity{
		Type:               domain.EntityTypeCompany,
		VerificationStatus: domain.VerificationVerified,
		VisibilityTier:     domain.TierFeatured,
		IsActive:           true,
		IsPublished:        true,
	}
	assert.True(t, CheckVisibility(e, now).Visible)

	e.VerificationStatus = domain.VerificationNone
	assert.False(t, CheckVisibility(e, now).Visible,
		"baseline display does not buy directory presence")
}

func TestDirectoryScore(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		entity domain.Entity
		want   int
	}{
		{"verified priority", domain.Entity{VerificationStatus: domain.VerificationVerified, VisibilityTier: domain.TierPriority}, 400},
		{"verified featured", domain.Entity{VerificationStatus: domain.VerificationVerified, VisibilityTier: domain.TierFeatured}, 300},
		{"unverified basic", domain.Entity{VerificationStatus: domain.VerificationNone, VisibilityTier: domain.TierBasic}, 50},
		{"verified hidden", domain.Entity{VerificationStatus: domain.VerificationVerified, VisibilityTier: domain.TierHidden}, 100},
		{"nothing", domain.Entity{VerificationStatus: domain.VerificationNone, VisibilityTier: domain.TierHidden}, 0},
		{"expired badge drops bonus", domain.Entity{
			VerificationStatus:     domain.VerificationVerified,
			VerifiedBadgeExpiresAt: timePtr(now.Add(-time.Hour)),
			VisibilityTier:         domain.TierPriority,
		}, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DirectoryScore(&tt.entity, now))
		})
	}
}
