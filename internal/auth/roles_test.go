package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-trust/internal/domain"
)

func newGuardedApp(principal *Principal, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/guarded", func(c *fiber.Ctx) error {
		if principal != nil {
			c.Locals(principalKey, principal)
		}
		return c.Next()
	}, guard, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func TestRequireEntityType(t *testing.T) {
	listed := []domain.EntityType{
		domain.EntityTypeSeller,
		domain.EntityTypeContractor,
		domain.EntityTypeCompany,
	}

	tests := []struct {
		name      string
		principal *Principal
		want      int
	}{
		{"no principal", nil, http.StatusUnauthorized},
		{"moderator without entity", &Principal{SubjectType: domain.SubjectTypeModerator}, http.StatusUnauthorized},
		{"buyer excluded", &Principal{
			SubjectType: domain.SubjectTypeEntity,
			Entity:      &domain.Entity{ID: "b-1", Type: domain.EntityTypeBuyer},
		}, http.StatusForbidden},
		{"contractor allowed", &Principal{
			SubjectType: domain.SubjectTypeEntity,
			Entity:      &domain.Entity{ID: "c-1", Type: domain.EntityTypeContractor},
		}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newGuardedApp(tt.principal, RequireEntityType(listed...))
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRequireAuthenticated(t *testing.T) {
	app := newGuardedApp(nil, RequireAuthenticated())
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	app = newGuardedApp(&Principal{SubjectType: domain.SubjectTypeModerator}, RequireAuthenticated())
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
