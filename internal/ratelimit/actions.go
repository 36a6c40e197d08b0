package ratelimit

import (
	"fmt"
	"time"
)

// Action identifies a rate-limited operation.
type Action string

const (
	ActionRegister      Action = "register"
	ActionLogin         Action = "login"
	ActionSendInquiry   Action = "inquiry"
	ActionSubmitReport  Action = "report"
	ActionUpdateProfile Action = "profile_update"
)

// Rule bounds one action inside a fixed window. Unverified identities
// always get the stricter ceiling.
type Rule struct {
	Window          time.Duration
	VerifiedLimit   int64
	UnverifiedLimit int64
}

// Limit returns the ceiling for the caller's verification state.
func (r Rule) Limit(isVerified bool) int64 {
	if isVerified {
		return r.VerifiedLimit
	}
	return r.UnverifiedLimit
}

// Rules maps actions to their windows and ceilings.
type Rules map[Action]Rule

// DefaultRules are the production ceilings.
func DefaultRules() Rules {
	return Rules{
		ActionRegister:      {Window: time.Hour, VerifiedLimit: 3, UnverifiedLimit: 3},
		ActionLogin:         {Window: 15 * time.Minute, VerifiedLimit: 20, UnverifiedLimit: 10},
		ActionSendInquiry:   {Window: time.Hour, VerifiedLimit: 30, UnverifiedLimit: 5},
		ActionSubmitReport:  {Window: 24 * time.Hour, VerifiedLimit: 10, UnverifiedLimit: 3},
		ActionUpdateProfile: {Window: time.Hour, VerifiedLimit: 60, UnverifiedLimit: 20},
	}
}

// Validate enforces the cross-action invariant: the unverified ceiling
// never exceeds the verified one, and every rule has a positive window.
func (rules Rules) Validate() error {
	for action, rule := range rules {
		if rule.Window <= 0 {
			return fmt.Errorf("action %s: window must be positive", action)
		}
		if rule.VerifiedLimit <= 0 || rule.UnverifiedLimit <= 0 {
			return fmt.Errorf("action %s: limits must be positive", action)
		}
		if rule.UnverifiedLimit > rule.VerifiedLimit {
			return fmt.Errorf("action %s: unverified limit %d exceeds verified limit %d",
				action, rule.UnverifiedLimit, rule.VerifiedLimit)
		}
	}
	return nil
}

// Identity names the caller of a rate-limited action. SubjectID is
// empty for anonymous traffic.
type Identity struct {
	IP        string
	SubjectID string
}

// Key composes the counter key as action:ip:subject-or-anon.
func (id Identity) Key(action Action) string {
	subject := id.SubjectID
	if subject == "" {
		subject = "anon"
	}
	return fmt.Sprintf("rl:%s:%s:%s", action, id.IP, subject)
}
