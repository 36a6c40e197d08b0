package service

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/marketplace-trust/internal/domain"
	"github.com/spec-kit/marketplace-trust/internal/entitlement"
	"github.com/spec-kit/marketplace-trust/internal/repository"
)

// DirectoryEntry is one visible row on a discovery surface.
type DirectoryEntry struct {
	EntityID  string
	Name      string
	Type      domain.EntityType
	Tier      string
	Score     int
	CreatedAt time.Time
}

// DirectoryService builds public listings. Read-only: it consults the
// visibility gate and never mutates entity state.
type DirectoryService struct {
	entities repository.EntityRepository
	now      func() time.Time
}

// NewDirectoryService builds the service.
func NewDirectoryService(entities repository.EntityRepository) *DirectoryService {
	return &DirectoryService{
		entities: entities,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Build assembles the directory: candidates from storage, filtered by
// the visibility gate, ranked by score with recency as the tiebreak.
func (s *DirectoryService) Build(ctx context.Context, types []domain.EntityType, limit, offset int) ([]DirectoryEntry, error) {
	if len(types) == 0 {
		types = []domain.EntityType{
			domain.EntityTypeSeller,
			domain.EntityTypeContractor,
			domain.EntityTypeCompany,
		}
	}

	candidates, err := s.entities.ListPublishable(ctx, types, limit, offset)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries := make([]DirectoryEntry, 0, len(candidates))
	for _, entity := range candidates {
		decision := entitlement.CheckVisibility(entity, now)
		if !decision.Visible {
			continue
		}
		entries = append(entries, DirectoryEntry{
			EntityID:  entity.ID,
			Name:      entity.Name,
			Type:      entity.Type,
			Tier:      decision.Tier,
			Score:     entitlement.DirectoryScore(entity, now),
			CreatedAt: entity.CreatedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Visibility explains a single entity's directory status, for the
// owner-facing "why am I hidden" surface.
func (s *DirectoryService) Visibility(ctx context.Context, entityID string) (entitlement.VisibilityDecision, error) {
	entity, err := s.entities.GetByID(ctx, entityID)
	if err != nil {
		return entitlement.VisibilityDecision{}, err
	}
	return entitlement.CheckVisibility(entity, s.now()), nil
}
