package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/marketplace-trust/internal/config"
	"github.com/spec-kit/marketplace-trust/internal/domain"
)

func newAuthFixture(entities ...*domain.Entity) (*AuthService, *fakeEntityRepo) {
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 60
	cfg.Auth.BcryptCost = bcrypt.MinCost

	repo := newFakeEntityRepo(entities...)
	return NewAuthService(cfg, repo), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	entity, token, _, err := svc.RegisterEntity(ctx, domain.EntityTypeSeller, "Acme", "acme@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, domain.VerificationNone, entity.VerificationStatus)
	assert.Equal(t, domain.TierHidden, entity.VisibilityTier)

	_, _, _, err = svc.RegisterEntity(ctx, domain.EntityTypeSeller, "Other", "acme@example.com", "hunter22")
	assert.Error(t, err, "duplicate email rejected")

	_, _, _, err = svc.LoginEntity(ctx, "acme@example.com", "wrong")
	assert.Error(t, err)

	logged, _, _, err := svc.LoginEntity(ctx, "acme@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, entity.ID, logged.ID)
}

func TestUpdateProfile_PersistsOwnerEditableFields(t *testing.T) {
	entity := verifiedContractor("ent-1")
	entity.Name = "Old Name"
	svc, repo := newAuthFixture(entity)

	published := false
	updated, err := svc.UpdateProfile(context.Background(), entity, strPtr("  New Name  "), &published)
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.False(t, updated.IsPublished)

	stored := repo.entities["ent-1"]
	assert.Equal(t, "New Name", stored.Name, "the change reaches the store")
	assert.False(t, stored.IsPublished)
}

func TestUpdateProfile_RejectsBlankName(t *testing.T) {
	entity := verifiedContractor("ent-1")
	svc, _ := newAuthFixture(entity)

	_, err := svc.UpdateProfile(context.Background(), entity, strPtr("   "), nil)
	assert.Error(t, err)
}
