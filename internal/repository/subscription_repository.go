package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-trust/internal/domain"
)

// SubscriptionRepository defines persistence for locally mirrored
// billing records. The payment authority stays the source of truth;
// these rows only enable the verifier's terminal-status short circuit.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *domain.Subscription) error
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	GetByEntityID(ctx context.Context, entityID string) (*domain.Subscription, error)
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository returns a Postgres-backed implementation.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

func (r *subscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	const query = `
        INSERT INTO subscriptions (id, entity_id, status, current_period_end, cancel_at_period_end)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE SET
            status = EXCLUDED.status,
            current_period_end = EXCLUDED.current_period_end,
            cancel_at_period_end = EXCLUDED.cancel_at_period_end,
            updated_at = NOW()
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		sub.ID,
		sub.EntityID,
		sub.Status,
		sub.CurrentPeriodEnd,
		sub.CancelAtPeriodEnd,
	).Scan(&sub.UpdatedAt)
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	const query = `
        SELECT id, entity_id, status, current_period_end, cancel_at_period_end, updated_at
        FROM subscriptions WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *subscriptionRepository) GetByEntityID(ctx context.Context, entityID string) (*domain.Subscription, error) {
	const query = `
        SELECT id, entity_id, status, current_period_end, cancel_at_period_end, updated_at
        FROM subscriptions WHERE entity_id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, entityID))
}

func (r *subscriptionRepository) scanOne(row pgx.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	if err := row.Scan(
		&sub.ID,
		&sub.EntityID,
		&sub.Status,
		&sub.CurrentPeriodEnd,
		&sub.CancelAtPeriodEnd,
		&sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}
