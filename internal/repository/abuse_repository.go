package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-trust/internal/domain"
)

// AbuseSignalRepository defines persistence for per-entity moderation
// counters. Writes come from moderation actions only; the rate limiter
// reads and never mutates.
type AbuseSignalRepository interface {
	Get(ctx context.Context, entityID string) (*domain.AbuseSignals, error)
	IncrementRejectedReports(ctx context.Context, entityID string) (*domain.AbuseSignals, error)
	IncrementSpamFlags(ctx context.Context, entityID string) (*domain.AbuseSignals, error)
	SetReportLockout(ctx context.Context, entityID string, until time.Time) error
}

type abuseSignalRepository struct {
	pool *pgxpool.Pool
}

// NewAbuseSignalRepository returns a Postgres-backed implementation.
func NewAbuseSignalRepository(pool *pgxpool.Pool) AbuseSignalRepository {
	return &abuseSignalRepository{pool: pool}
}

// Get returns the accumulator for an entity. A missing row is returned
// as zero counters, not an error.
func (r *abuseSignalRepository) Get(ctx context.Context, entityID string) (*domain.AbuseSignals, error) {
	const query = `
        SELECT entity_id, rejected_report_count, spam_flag_count,
               report_rate_limited_until, updated_at
        FROM abuse_signals WHERE entity_id=$1`

	var signals domain.AbuseSignals
	err := r.pool.QueryRow(ctx, query, entityID).Scan(
		&signals.EntityID,
		&signals.RejectedReportCount,
		&signals.SpamFlagCount,
		&signals.ReportRateLimitedUntil,
		&signals.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.AbuseSignals{EntityID: entityID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &signals, nil
}

func (r *abuseSignalRepository) IncrementRejectedReports(ctx context.Context, entityID string) (*domain.AbuseSignals, error) {
	const query = `
        INSERT INTO abuse_signals (entity_id, rejected_report_count)
        VALUES ($1, 1)
        ON CONFLICT (entity_id) DO UPDATE SET
            rejected_report_count = abuse_signals.rejected_report_count + 1,
            updated_at = NOW()
        RETURNING entity_id, rejected_report_count, spam_flag_count,
                  report_rate_limited_until, updated_at`
	return r.scanOne(r.pool.QueryRow(ctx, query, entityID))
}

func (r *abuseSignalRepository) IncrementSpamFlags(ctx context.Context, entityID string) (*domain.AbuseSignals, error) {
	const query = `
        INSERT INTO abuse_signals (entity_id, spam_flag_count)
        VALUES ($1, 1)
        ON CONFLICT (entity_id) DO UPDATE SET
            spam_flag_count = abuse_signals.spam_flag_count + 1,
            updated_at = NOW()
        RETURNING entity_id, rejected_report_count, spam_flag_count,
                  report_rate_limited_until, updated_at`
	return r.scanOne(r.pool.QueryRow(ctx, query, entityID))
}

func (r *abuseSignalRepository) SetReportLockout(ctx context.Context, entityID string, until time.Time) error {
	const query = `
        INSERT INTO abuse_signals (entity_id, report_rate_limited_until)
        VALUES ($1, $2)
        ON CONFLICT (entity_id) DO UPDATE SET
            report_rate_limited_until = EXCLUDED.report_rate_limited_until,
            updated_at = NOW()`
	_, err := r.pool.Exec(ctx, query, entityID, until)
	return err
}

func (r *abuseSignalRepository) scanOne(row pgx.Row) (*domain.AbuseSignals, error) {
	var signals domain.AbuseSignals
	if err := row.Scan(
		&signals.EntityID,
		&signals.RejectedReportCount,
		&signals.SpamFlagCount,
		&signals.ReportRateLimitedUntil,
		&signals.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &signals, nil
}
