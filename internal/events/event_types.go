package events

import (
	"time"

	"github.com/spec-kit/marketplace-trust/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportRejected       EventType = "report_rejected"
	EventListingSpamFlagged   EventType = "listing_spam_flagged"
	EventReportLockoutApplied EventType = "report_lockout_applied"
	EventInquiryBlocked       EventType = "inquiry_blocked"
	EventInquirySent          EventType = "inquiry_sent"
	EventVerificationExpired  EventType = "verification_expired"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type        domain.SubjectType `json:"type"`
	EntityID    *string            `json:"entity_id,omitempty"`
	ModeratorID *string            `json:"moderator_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportRejectedPayload payload.
type ReportRejectedPayload struct {
	ReportID string `json:"report_id"`
	Reason   string `json:"reason,omitempty"`
}

// ListingSpamFlaggedPayload payload.
type ListingSpamFlaggedPayload struct {
	ListingRef string `json:"listing_ref"`
}

// ReportLockoutAppliedPayload payload.
type ReportLockoutAppliedPayload struct {
	LockedUntil time.Time `json:"locked_until"`
}

// InquiryBlockedPayload payload.
type InquiryBlockedPayload struct {
	TargetEntityID string `json:"target_entity_id"`
	Reason         string `json:"reason"`
}

// InquirySentPayload payload.
type InquirySentPayload struct {
	InquiryID      string `json:"inquiry_id"`
	TargetEntityID string `json:"target_entity_id"`
	BodyPreview    string `json:"body_preview"`
}

// VerificationExpiredPayload payload.
type VerificationExpiredPayload struct {
	ExpiredAt time.Time `json:"expired_at"`
}
