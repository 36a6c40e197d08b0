package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-trust/internal/domain"
	"github.com/spec-kit/marketplace-trust/internal/events"
	"github.com/spec-kit/marketplace-trust/internal/ratelimit"
	"github.com/spec-kit/marketplace-trust/internal/repository"
)

// ModerationService owns the write side of the abuse-signal
// accumulator. Moderation outcomes arrive as events; crossing a
// threshold applies the report lockout.
type ModerationService struct {
	signals    repository.AbuseSignalRepository
	policy     ratelimit.LockoutPolicy
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewModerationService builds the service.
func NewModerationService(signals repository.AbuseSignalRepository, policy ratelimit.LockoutPolicy, dispatcher events.Dispatcher, logger *zap.Logger) *ModerationService {
	return &ModerationService{
		signals:    signals,
		policy:     policy,
		dispatcher: dispatcher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RegisterHandlers subscribes to moderation events.
func (m *ModerationService) RegisterHandlers() {
	if m.dispatcher == nil {
		return
	}
	m.dispatcher.Subscribe(events.EventReportRejected, m.handleReportRejected)
	m.dispatcher.Subscribe(events.EventListingSpamFlagged, m.handleListingSpamFlagged)
}

// CheckReportAllowed is the read path consulted before accepting an
// abuse report from an entity.
func (m *ModerationService) CheckReportAllowed(ctx context.Context, entityID string) (ratelimit.Decision, error) {
	signals, err := m.signals.Get(ctx, entityID)
	if err != nil {
		// Fail closed: an unreadable accumulator denies the report.
		return ratelimit.Decision{Allowed: false, RetryAfterSeconds: 60}, err
	}
	return ratelimit.CheckReportLockout(signals, m.now()), nil
}

// RejectReport records a moderator's rejection of a report filed by
// entityID. Runs through the dispatcher so every accumulator mutation
// takes the same path.
func (m *ModerationService) RejectReport(ctx context.Context, entityID, reportID, reason string) error {
	return m.dispatcher.Publish(ctx, events.Event{
		Type:     events.EventReportRejected,
		EntityID: entityID,
		Payload:  events.ReportRejectedPayload{ReportID: reportID, Reason: reason},
	})
}

// FlagListingSpam records a spam flag against an entity's listing.
func (m *ModerationService) FlagListingSpam(ctx context.Context, entityID, listingRef string) error {
	return m.dispatcher.Publish(ctx, events.Event{
		Type:     events.EventListingSpamFlagged,
		EntityID: entityID,
		Payload:  events.ListingSpamFlaggedPayload{ListingRef: listingRef},
	})
}

func (m *ModerationService) handleReportRejected(ctx context.Context, event events.Event) error {
	signals, err := m.signals.IncrementRejectedReports(ctx, event.EntityID)
	if err != nil {
		m.logger.Error("failed to record rejected report", zap.String("entity_id", event.EntityID), zap.Error(err))
		return err
	}
	return m.maybeLock(ctx, signals)
}

func (m *ModerationService) handleListingSpamFlagged(ctx context.Context, event events.Event) error {
	signals, err := m.signals.IncrementSpamFlags(ctx, event.EntityID)
	if err != nil {
		m.logger.Error("failed to record spam flag", zap.String("entity_id", event.EntityID), zap.Error(err))
		return err
	}
	return m.maybeLock(ctx, signals)
}

func (m *ModerationService) maybeLock(ctx context.Context, signals *domain.AbuseSignals) error {
	now := m.now()
	if !m.policy.ShouldLock(signals, now) {
		return nil
	}

	until := m.policy.LockedUntil(now)
	if err := m.signals.SetReportLockout(ctx, signals.EntityID, until); err != nil {
		m.logger.Error("failed to apply report lockout", zap.String("entity_id", signals.EntityID), zap.Error(err))
		return err
	}
	m.logger.Info("report lockout applied",
		zap.String("entity_id", signals.EntityID),
		zap.Time("until", until))

	if m.dispatcher != nil {
		_ = m.dispatcher.Publish(ctx, events.Event{
			Type:     events.EventReportLockoutApplied,
			EntityID: signals.EntityID,
			Payload:  events.ReportLockoutAppliedPayload{LockedUntil: until},
		})
	}
	return nil
}
