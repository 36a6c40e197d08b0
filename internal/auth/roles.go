package auth

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-trust/internal/domain"
)

// timeNow is swapped in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// RequireEntityType ensures the caller is one of the allowed entity types.
func RequireEntityType(allowed ...domain.EntityType) fiber.Handler {
	allowedSet := make(map[domain.EntityType]struct{}, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Entity == nil {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Entity.Type]; !exists {
			return fiber.NewError(http.StatusForbidden, "entity type not permitted")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures any entity is logged in.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
