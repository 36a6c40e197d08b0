package ratelimit

import (
	"time"

	"github.com/spec-kit/marketplace-trust/internal/domain"
)

// LockoutPolicy governs the report-abuse lockout: an account moves from
// Normal to RateLimited once its rejected-report count reaches the
// threshold, and back to Normal after the lockout duration elapses.
type LockoutPolicy struct {
	RejectedReportThreshold int
	SpamFlagThreshold       int
	LockoutDuration         time.Duration
}

// DefaultLockoutPolicy mirrors the production moderation settings.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		RejectedReportThreshold: 5,
		SpamFlagThreshold:       3,
		LockoutDuration:         24 * time.Hour,
	}
}

// ShouldLock reports whether the accumulated signals cross a lockout
// threshold. The interesting transition is crossing the threshold
// exactly; repeat evaluations while already locked return false so the
// lockout window is not silently extended.
func (p LockoutPolicy) ShouldLock(signals *domain.AbuseSignals, now time.Time) bool {
	if signals == nil || signals.ReportLocked(now) {
		return false
	}
	if p.RejectedReportThreshold > 0 && signals.RejectedReportCount >= p.RejectedReportThreshold {
		return true
	}
	if p.SpamFlagThreshold > 0 && signals.SpamFlagCount >= p.SpamFlagThreshold {
		return true
	}
	return false
}

// LockedUntil computes the lockout expiry from now.
func (p LockoutPolicy) LockedUntil(now time.Time) time.Time {
	return now.Add(p.LockoutDuration)
}

// CheckReportLockout is the read side used on the report submission
// path: a locked account is rejected with the remaining lockout time as
// the retry hint.
func CheckReportLockout(signals *domain.AbuseSignals, now time.Time) Decision {
	if signals != nil && signals.ReportLocked(now) {
		remaining := signals.ReportRateLimitedUntil.Sub(now)
		return Decision{Allowed: false, RetryAfterSeconds: int64(remaining.Seconds())}
	}
	return Decision{Allowed: true}
}
