package domain

// TrustLevel orders entity verification classes. A higher level grants
// every level-additive capability of the levels below it; the unlock is
// one-way and never symmetric.
type TrustLevel int

const (
	TrustLevelNone       TrustLevel = 0
	TrustLevelSeller     TrustLevel = 1
	TrustLevelContractor TrustLevel = 2
)

// TrustLevelFor maps an entity type to its verification class. Buyers
// and companies carry no trust level of their own.
func TrustLevelFor(t EntityType) TrustLevel {
	switch t {
	case EntityTypeSeller:
		return TrustLevelSeller
	case EntityTypeContractor:
		return TrustLevelContractor
	case EntityTypeCompany, EntityTypeBuyer:
		return TrustLevelNone
	default:
		return TrustLevelNone
	}
}

// AtLeast reports whether l grants the capabilities of required.
func (l TrustLevel) AtLeast(required TrustLevel) bool {
	return l >= required
}

// EntitlementSet is the fixed-shape projection of an entity's
// capabilities. It is always derived fresh per request and is never
// persisted or cached.
type EntitlementSet struct {
	CanListItems        bool `json:"can_list_items"`
	CanReceiveInquiries bool `json:"can_receive_inquiries"`
	CanSendInquiries    bool `json:"can_send_inquiries"`
	CanDisplayContact   bool `json:"can_display_contact"`
	HasVerifiedBadge    bool `json:"has_verified_badge"`
	HasVisibilityBoost  bool `json:"has_visibility_boost"`
	SearchEligible      bool `json:"search_eligible"`
	BaselineDisplay     bool `json:"baseline_display"`
}

// NoEntitlements is the fail-closed default returned on unknown input.
func NoEntitlements() EntitlementSet {
	return EntitlementSet{}
}
