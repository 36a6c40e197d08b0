package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-trust/internal/auth"
	"github.com/spec-kit/marketplace-trust/internal/config"
	"github.com/spec-kit/marketplace-trust/internal/domain"
	"github.com/spec-kit/marketplace-trust/internal/repository"
)

// AuthService coordinates registration and login flows for marketplace
// entities.
type AuthService struct {
	entities   repository.EntityRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, entities repository.EntityRepository) *AuthService {
	return &AuthService{
		entities:   entities,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterEntity creates a new marketplace account. New accounts start
// unverified and hidden; verification and tier purchases happen through
// external review and billing flows.
func (s *AuthService) RegisterEntity(ctx context.Context, entityType domain.EntityType, name, email, password string) (*domain.Entity, string, time.Time, error) {
	switch entityType {
	case domain.EntityTypeSeller, domain.EntityTypeContractor,
		domain.EntityTypeCompany, domain.EntityTypeBuyer:
	default:
		return nil, "", time.Time{}, errors.New("unknown entity type")
	}

	if _, err := s.entities.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, errors.New("email already registered")
	} else if err != nil && err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	entity := &domain.Entity{
		Type:               entityType,
		Name:               name,
		Email:              email,
		PasswordHash:       hash,
		VerificationStatus: domain.VerificationNone,
		VisibilityTier:     domain.TierHidden,
		IsActive:           true,
	}
	if err := s.entities.Create(ctx, entity); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(entity.ID, domain.SubjectTypeEntity, &entity.Type)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return entity, token, exp, nil
}

// UpdateProfile applies owner-editable profile fields. Verification,
// tiers and subscription linkage are never writable through this path.
func (s *AuthService) UpdateProfile(ctx context.Context, entity *domain.Entity, name *string, isPublished *bool) (*domain.Entity, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, errors.New("name cannot be empty")
		}
		entity.Name = trimmed
	}
	if isPublished != nil {
		entity.IsPublished = *isPublished
	}

	if err := s.entities.Update(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// LoginEntity authenticates an account and issues a token.
func (s *AuthService) LoginEntity(ctx context.Context, email, password string) (*domain.Entity, string, time.Time, error) {
	entity, err := s.entities.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, errors.New("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if !entity.IsActive {
		return nil, "", time.Time{}, errors.New("account disabled")
	}
	if err := auth.ComparePassword(entity.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errors.New("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(entity.ID, domain.SubjectTypeEntity, &entity.Type)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return entity, token, exp, nil
}
