package domain

import "time"

// SubscriptionStatus mirrors the payment authority's billing states.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionExpired  SubscriptionStatus = "expired"
	SubscriptionUnknown  SubscriptionStatus = "unknown"
)

// TerminalStatuses cannot recover without a new checkout. When the
// locally persisted status is one of these, the authority round-trip is
// skipped because the answer cannot improve.
var TerminalStatuses = map[SubscriptionStatus]struct{}{
	SubscriptionCanceled: {},
	SubscriptionExpired:  {},
}

// Subscription is the locally persisted billing record. It backs the
// db-fallback path of the verifier; the payment authority remains the
// source of truth for anything money-gated.
type Subscription struct {
	ID                string
	EntityID          string
	Status            SubscriptionStatus
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
	UpdatedAt         time.Time
}
