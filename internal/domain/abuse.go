package domain

import "time"

// AbuseSignals accumulates moderation outcomes for an entity. Mutated
// only by moderation actions; the rate limiter reads it and never
// writes.
type AbuseSignals struct {
	EntityID               string
	RejectedReportCount    int
	SpamFlagCount          int
	ReportRateLimitedUntil *time.Time
	UpdatedAt              time.Time
}

// ReportLocked reports whether the report-abuse lockout is in effect.
func (a *AbuseSignals) ReportLocked(now time.Time) bool {
	return a.ReportRateLimitedUntil != nil && a.ReportRateLimitedUntil.After(now)
}
