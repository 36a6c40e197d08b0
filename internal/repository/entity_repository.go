package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-trust/internal/domain"
)

// EntityRepository defines persistence access for marketplace entities.
type EntityRepository interface {
	Create(ctx context.Context, entity *domain.Entity) error
	Update(ctx context.Context, entity *domain.Entity) error
	GetByID(ctx context.Context, id string) (*domain.Entity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Entity, error)
	ListPublishable(ctx context.Context, types []domain.EntityType, limit, offset int) ([]*domain.Entity, error)
}

type entityRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRepository returns a Postgres-backed implementation.
func NewEntityRepository(pool *pgxpool.Pool) EntityRepository {
	return &entityRepository{pool: pool}
}

const entityColumns = `
        id, type, name, email, password_hash, verification_status,
        visibility_tier, verified_badge_expires_at, visibility_expires_at,
        elite_placement_expires_at, subscription_id, is_active, is_published,
        created_at, updated_at`

func (r *entityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	const query = `
        INSERT INTO entities (type, name, email, password_hash, verification_status,
            visibility_tier, verified_badge_expires_at, visibility_expires_at,
            elite_placement_expires_at, subscription_id, is_active, is_published)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		entity.Type,
		entity.Name,
		entity.Email,
		entity.PasswordHash,
		entity.VerificationStatus,
		entity.VisibilityTier,
		entity.VerifiedBadgeExpiresAt,
		entity.VisibilityExpiresAt,
		entity.ElitePlacementExpiresAt,
		entity.SubscriptionID,
		entity.IsActive,
		entity.IsPublished,
	).Scan(&entity.ID, &entity.CreatedAt, &entity.UpdatedAt)
}

func (r *entityRepository) Update(ctx context.Context, entity *domain.Entity) error {
	const query = `
        UPDATE entities SET name=$1, email=$2, password_hash=$3, verification_status=$4,
            visibility_tier=$5, verified_badge_expires_at=$6, visibility_expires_at=$7,
            elite_placement_expires_at=$8, subscription_id=$9, is_active=$10,
            is_published=$11, updated_at=NOW()
        WHERE id=$12`

	cmd, err := r.pool.Exec(ctx, query,
		entity.Name,
		entity.Email,
		entity.PasswordHash,
		entity.VerificationStatus,
		entity.VisibilityTier,
		entity.VerifiedBadgeExpiresAt,
		entity.VisibilityExpiresAt,
		entity.ElitePlacementExpiresAt,
		entity.SubscriptionID,
		entity.IsActive,
		entity.IsPublished,
		entity.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *entityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	const query = `SELECT ` + entityColumns + ` FROM entities WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *entityRepository) GetByEmail(ctx context.Context, email string) (*domain.Entity, error) {
	const query = `SELECT ` + entityColumns + ` FROM entities WHERE email=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

// ListPublishable returns candidate rows for directory building. The
// visibility gate makes the final call per entity; this query only
// narrows the working set.
func (r *entityRepository) ListPublishable(ctx context.Context, types []domain.EntityType, limit, offset int) ([]*domain.Entity, error) {
	const query = `
        SELECT ` + entityColumns + `
        FROM entities
        WHERE type = ANY($1) AND is_active = TRUE
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	typeStrings := make([]string, 0, len(types))
	for _, t := range types {
		typeStrings = append(typeStrings, string(t))
	}

	rows, err := r.pool.Query(ctx, query, typeStrings, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []*domain.Entity
	for rows.Next() {
		entity, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func (r *entityRepository) scanOne(row pgx.Row) (*domain.Entity, error) {
	var entity domain.Entity
	if err := row.Scan(
		&entity.ID,
		&entity.Type,
		&entity.Name,
		&entity.Email,
		&entity.PasswordHash,
		&entity.VerificationStatus,
		&entity.VisibilityTier,
		&entity.VerifiedBadgeExpiresAt,
		&entity.VisibilityExpiresAt,
		&entity.ElitePlacementExpiresAt,
		&entity.SubscriptionID,
		&entity.IsActive,
		&entity.IsPublished,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &entity, nil
}
