package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/marketplace-trust/internal/auth"
	"github.com/spec-kit/marketplace-trust/internal/service"
	apperrors "github.com/spec-kit/marketplace-trust/pkg/util/errorutil"
)

// ReportsHandler accepts abuse reports. Review happens in an external
// moderation flow; this path only runs the lockout and rate checks and
// assigns an id the reviewers track.
type ReportsHandler struct {
	moderation *service.ModerationService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(moderationService *service.ModerationService) *ReportsHandler {
	return &ReportsHandler{moderation: moderationService}
}

type reportRequest struct {
	TargetEntityID string `json:"target_entity_id"`
	Reason         string `json:"reason"`
}

// Submit handles POST /reports.
func (h *ReportsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Entity == nil {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.TargetEntityID == "" || req.Reason == "" {
		return fiber.NewError(http.StatusBadRequest, "target_entity_id and reason required")
	}

	decision, err := h.moderation.CheckReportAllowed(c.Context(), principal.Entity.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !decision.Allowed {
		return apperrors.NewRateLimited(decision.RetryAfterSeconds)
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"report_id": uuid.NewString()},
	})
}
