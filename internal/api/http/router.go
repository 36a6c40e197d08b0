package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-trust/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-trust/internal/auth"
	"github.com/spec-kit/marketplace-trust/internal/domain"
	"github.com/spec-kit/marketplace-trust/internal/observability"
	"github.com/spec-kit/marketplace-trust/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Entities       *handlers.EntitiesHandler
	Directory      *handlers.DirectoryHandler
	Inquiries      *handlers.InquiriesHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
	Limiter        *ratelimit.Limiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. The rate limiter runs before the
// handler on every gated route.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register",
		RateLimit(cfg.Limiter, cfg.Metrics, ratelimit.ActionRegister),
		cfg.Entities.Register)
	authGroup.Post("/login",
		RateLimit(cfg.Limiter, cfg.Metrics, ratelimit.ActionLogin),
		cfg.Entities.Login)

	app.Get("/directory", cfg.Directory.List)

	me := app.Group("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	me.Get("/entitlements", cfg.Entities.Entitlements)
	me.Get("/visibility",
		auth.RequireEntityType(domain.EntityTypeSeller, domain.EntityTypeContractor, domain.EntityTypeCompany),
		cfg.Directory.MyVisibility)
	me.Get("/subscription", cfg.Entities.Subscription)
	me.Put("/profile",
		RateLimit(cfg.Limiter, cfg.Metrics, ratelimit.ActionUpdateProfile),
		cfg.Entities.UpdateProfile)

	inquiries := app.Group("/inquiries", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	inquiries.Post("", cfg.Inquiries.Send)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	reports.Post("",
		RateLimit(cfg.Limiter, cfg.Metrics, ratelimit.ActionSubmitReport),
		cfg.Reports.Submit)
}
