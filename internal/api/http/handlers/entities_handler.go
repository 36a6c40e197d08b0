package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-trust/internal/api/dto"
	"github.com/spec-kit/marketplace-trust/internal/auth"
	"github.com/spec-kit/marketplace-trust/internal/domain"
	"github.com/spec-kit/marketplace-trust/internal/service"
)

// EntitiesHandler exposes account and entitlement endpoints.
type EntitiesHandler struct {
	auth  *service.AuthService
	trust *service.TrustService
}

// NewEntitiesHandler constructs handler.
func NewEntitiesHandler(authService *service.AuthService, trustService *service.TrustService) *EntitiesHandler {
	return &EntitiesHandler{auth: authService, trust: trustService}
}

// Register handles POST /auth/register.
func (h *EntitiesHandler) Register(c *fiber.Ctx) error {
	var req dto.EntityRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Type == "" || req.Email == "" || req.Password == "" || req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "type, name, email, password required")
	}

	entity, token, exp, err := h.auth.RegisterEntity(c.Context(), domain.EntityType(req.Type), req.Name, req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"entity": entityResponse(entity),
			"auth":   dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/login.
func (h *EntitiesHandler) Login(c *fiber.Ctx) error {
	var req dto.EntityLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	entity, token, exp, err := h.auth.LoginEntity(c.Context(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"entity": entityResponse(entity),
			"auth":   dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Entitlements handles GET /me/entitlements.
func (h *EntitiesHandler) Entitlements(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Entity == nil {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	set := h.trust.EntitlementsForEntity(c.Context(), principal.Entity)
	return c.JSON(fiber.Map{"data": fiber.Map{"entitlements": set}})
}

// UpdateProfile handles PUT /me/profile.
func (h *EntitiesHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Entity == nil {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	entity, err := h.auth.UpdateProfile(c.Context(), principal.Entity, req.Name, req.IsPublished)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{"data": entityResponse(entity)})
}

// Subscription handles GET /me/subscription.
func (h *EntitiesHandler) Subscription(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Entity == nil {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	result, err := h.trust.RequireSubscription(c.Context(), principal.Entity)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.SubscriptionResponse{
		Status:            string(result.Status),
		Source:            result.Source,
		CurrentPeriodEnd:  result.CurrentPeriodEnd,
		CancelAtPeriodEnd: result.CancelAtPeriodEnd,
	}})
}

func entityResponse(e *domain.Entity) dto.EntityResponse {
	return dto.EntityResponse{
		ID:                 e.ID,
		Type:               string(e.Type),
		Name:               e.Name,
		Email:              e.Email,
		VerificationStatus: string(e.VerificationStatus),
		VisibilityTier:     string(e.VisibilityTier),
	}
}
