package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLimiter(t *testing.T, rules Rules) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := NewLimiter(rules, client, zap.NewNop())
	require.NoError(t, err)
	return limiter, mr
}

func TestCheckLimit_RejectsOverCeiling(t *testing.T) {
	rules := Rules{
		ActionRegister: {Window: time.Hour, VerifiedLimit: 3, UnverifiedLimit: 3},
	}
	limiter, _ := newTestLimiter(t, rules)
	ctx := context.Background()
	identity := Identity{IP: "1.2.3.4"}

	for i := 0; i < 3; i++ {
		decision := limiter.CheckLimit(ctx, ActionRegister, identity, false)
		assert.Truef(t, decision.Allowed, "request %d should pass", i+1)
		assert.Equal(t, int64(2-i), decision.Remaining)
	}

	decision := limiter.CheckLimit(ctx, ActionRegister, identity, false)
	assert.False(t, decision.Allowed, "4th request within the window must be rejected")
	assert.Zero(t, decision.Remaining)
	assert.InDelta(t, 3600, decision.RetryAfterSeconds, 5,
		"retry hint should approximate the remaining window")
}

func TestCheckLimit_WindowRollover(t *testing.T) {
	rules := Rules{
		ActionSendInquiry: {Window: time.Minute, VerifiedLimit: 2, UnverifiedLimit: 1},
	}
	limiter, mr := newTestLimiter(t, rules)
	ctx := context.Background()
	identity := Identity{IP: "10.0.0.1", SubjectID: "ent-1"}

	assert.True(t, limiter.CheckLimit(ctx, ActionSendInquiry, identity, false).Allowed)
	assert.False(t, limiter.CheckLimit(ctx, ActionSendInquiry, identity, false).Allowed)

	mr.FastForward(61 * time.Second)

	assert.True(t, limiter.CheckLimit(ctx, ActionSendInquiry, identity, false).Allowed,
		"a fresh window opens after expiry")
}

func TestCheckLimit_UnverifiedCeilingIsStricter(t *testing.T) {
	limiter, _ := newTestLimiter(t, DefaultRules())
	ctx := context.Background()

	unverified := Identity{IP: "1.1.1.1", SubjectID: "ent-a"}
	verified := Identity{IP: "2.2.2.2", SubjectID: "ent-b"}

	unverifiedAllowed := 0
	for i := 0; i < 100; i++ {
		if limiter.CheckLimit(ctx, ActionSendInquiry, unverified, false).Allowed {
			unverifiedAllowed++
		}
	}
	verifiedAllowed := 0
	for i := 0; i < 100; i++ {
		if limiter.CheckLimit(ctx, ActionSendInquiry, verified, true).Allowed {
			verifiedAllowed++
		}
	}

	assert.Equal(t, 5, unverifiedAllowed)
	assert.Equal(t, 30, verifiedAllowed)
	assert.LessOrEqual(t, unverifiedAllowed, verifiedAllowed)
}

func TestRules_ValidateInvariant(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())

	bad := Rules{
		ActionLogin: {Window: time.Minute, VerifiedLimit: 5, UnverifiedLimit: 10},
	}
	assert.Error(t, bad.Validate(), "unverified ceiling above verified must be rejected")

	zeroWindow := Rules{
		ActionLogin: {Window: 0, VerifiedLimit: 5, UnverifiedLimit: 5},
	}
	assert.Error(t, zeroWindow.Validate())
}

func TestCheckLimit_SeparateKeysPerIdentityAndAction(t *testing.T) {
	rules := Rules{
		ActionRegister: {Window: time.Hour, VerifiedLimit: 1, UnverifiedLimit: 1},
		ActionLogin:    {Window: time.Hour, VerifiedLimit: 1, UnverifiedLimit: 1},
	}
	limiter, _ := newTestLimiter(t, rules)
	ctx := context.Background()

	a := Identity{IP: "1.2.3.4"}
	b := Identity{IP: "5.6.7.8"}

	assert.True(t, limiter.CheckLimit(ctx, ActionRegister, a, false).Allowed)
	assert.False(t, limiter.CheckLimit(ctx, ActionRegister, a, false).Allowed)
	assert.True(t, limiter.CheckLimit(ctx, ActionRegister, b, false).Allowed,
		"another IP keeps its own counter")
	assert.True(t, limiter.CheckLimit(ctx, ActionLogin, a, false).Allowed,
		"another action keeps its own counter")
}

func TestCheckLimit_UnknownActionDenied(t *testing.T) {
	limiter, _ := newTestLimiter(t, DefaultRules())

	decision := limiter.CheckLimit(context.Background(), Action("unknown"), Identity{IP: "1.2.3.4"}, true)
	assert.False(t, decision.Allowed)
	assert.Positive(t, decision.RetryAfterSeconds)
}

func TestCheckLimit_FallsBackToLocalStoreWhenRedisDown(t *testing.T) {
	rules := Rules{
		ActionRegister: {Window: time.Hour, VerifiedLimit: 2, UnverifiedLimit: 2},
	}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter, err := NewLimiter(rules, client, zap.NewNop())
	require.NoError(t, err)

	mr.Close()

	ctx := context.Background()
	identity := Identity{IP: "9.9.9.9"}

	assert.True(t, limiter.CheckLimit(ctx, ActionRegister, identity, false).Allowed,
		"local fallback still counts when redis is unreachable")
	assert.True(t, limiter.CheckLimit(ctx, ActionRegister, identity, false).Allowed)
	assert.False(t, limiter.CheckLimit(ctx, ActionRegister, identity, false).Allowed,
		"local fallback still enforces the ceiling")
}

func TestLocalStore_WindowRollover(t *testing.T) {
	store := newLocalStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	count, retryAfter, err := store.Increment("k", time.Minute, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(60), retryAfter)

	count, _, err = store.Increment("k", time.Minute, now.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "same window keeps counting")

	count, _, err = store.Increment("k", time.Minute, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "rolled-over window starts fresh")
}
