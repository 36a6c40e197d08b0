package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-trust/internal/domain"
	"github.com/spec-kit/marketplace-trust/internal/events"
	"github.com/spec-kit/marketplace-trust/internal/ratelimit"
)

type fakeAbuseRepo struct {
	signals map[string]*domain.AbuseSignals
}

func newFakeAbuseRepo() *fakeAbuseRepo {
	return &fakeAbuseRepo{signals: make(map[string]*domain.AbuseSignals)}
}

func (f *fakeAbuseRepo) get(entityID string) *domain.AbuseSignals {
	s, ok := f.signals[entityID]
	if !ok {
		s = &domain.AbuseSignals{EntityID: entityID}
		f.signals[entityID] = s
	}
	return s
}

func (f *fakeAbuseRepo) Get(ctx context.Context, entityID string) (*domain.AbuseSignals, error) {
	return f.get(entityID), nil
}

func (f *fakeAbuseRepo) IncrementRejectedReports(ctx context.Context, entityID string) (*domain.AbuseSignals, error) {
	s := f.get(entityID)
	s.RejectedReportCount++
	return s, nil
}

func (f *fakeAbuseRepo) IncrementSpamFlags(ctx context.Context, entityID string) (*domain.AbuseSignals, error) {
	s := f.get(entityID)
	s.SpamFlagCount++
	return s, nil
}

func (f *fakeAbuseRepo) SetReportLockout(ctx context.Context, entityID string, until time.Time) error {
	f.get(entityID).ReportRateLimitedUntil = &until
	return nil
}

func newModerationFixture(t *testing.T, policy ratelimit.LockoutPolicy) (*ModerationService, *fakeAbuseRepo, events.Dispatcher) {
	t.Helper()
	repo := newFakeAbuseRepo()
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewModerationService(repo, policy, dispatcher, zap.NewNop())
	svc.RegisterHandlers()
	return svc, repo, dispatcher
}

func TestModeration_RejectedReportsEscalateToLockout(t *testing.T) {
	policy := ratelimit.LockoutPolicy{
		RejectedReportThreshold: 3,
		SpamFlagThreshold:       0,
		LockoutDuration:         time.Hour,
	}
	svc, repo, _ := newModerationFixture(t, policy)
	ctx := context.Background()

	require.NoError(t, svc.RejectReport(ctx, "ent-1", "rep-1", "duplicate"))
	require.NoError(t, svc.RejectReport(ctx, "ent-1", "rep-2", "false"))
	assert.Nil(t, repo.get("ent-1").ReportRateLimitedUntil, "below threshold, no lockout")

	require.NoError(t, svc.RejectReport(ctx, "ent-1", "rep-3", "false"))
	require.NotNil(t, repo.get("ent-1").ReportRateLimitedUntil, "threshold crossed applies lockout")

	decision, err := svc.CheckReportAllowed(ctx, "ent-1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Positive(t, decision.RetryAfterSeconds)
}

func TestModeration_SpamFlagsEscalateToLockout(t *testing.T) {
	policy := ratelimit.LockoutPolicy{
		RejectedReportThreshold: 100,
		SpamFlagThreshold:       2,
		LockoutDuration:         time.Hour,
	}
	svc, repo, _ := newModerationFixture(t, policy)
	ctx := context.Background()

	require.NoError(t, svc.FlagListingSpam(ctx, "ent-2", "listing-9"))
	assert.Nil(t, repo.get("ent-2").ReportRateLimitedUntil)

	require.NoError(t, svc.FlagListingSpam(ctx, "ent-2", "listing-9"))
	assert.NotNil(t, repo.get("ent-2").ReportRateLimitedUntil)
}

func TestModeration_LockoutExpiryRestoresReporting(t *testing.T) {
	svc, repo, _ := newModerationFixture(t, ratelimit.DefaultLockoutPolicy())
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Minute)
	repo.get("ent-3").ReportRateLimitedUntil = &past

	decision, err := svc.CheckReportAllowed(ctx, "ent-3")
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "an elapsed lockout lifts on its own")
}

func TestModeration_LockoutPublishesEvent(t *testing.T) {
	policy := ratelimit.LockoutPolicy{
		RejectedReportThreshold: 1,
		LockoutDuration:         time.Hour,
	}
	svc, _, dispatcher := newModerationFixture(t, policy)

	var published []events.Event
	dispatcher.Subscribe(events.EventReportLockoutApplied, func(ctx context.Context, event events.Event) error {
		published = append(published, event)
		return nil
	})

	require.NoError(t, svc.RejectReport(context.Background(), "ent-4", "rep-1", "abuse"))
	require.Len(t, published, 1)
	assert.Equal(t, "ent-4", published[0].EntityID)
	assert.NotEmpty(t, published[0].ID)
}
