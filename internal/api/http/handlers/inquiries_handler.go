package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-trust/internal/api/dto"
	"github.com/spec-kit/marketplace-trust/internal/auth"
	"github.com/spec-kit/marketplace-trust/internal/service"
)

// InquiriesHandler exposes the gated inquiry write path.
type InquiriesHandler struct {
	inquiries *service.InquiryService
}

// NewInquiriesHandler constructs handler.
func NewInquiriesHandler(inquiryService *service.InquiryService) *InquiriesHandler {
	return &InquiriesHandler{inquiries: inquiryService}
}

// Send handles POST /inquiries.
func (h *InquiriesHandler) Send(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Entity == nil {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.InquirySendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.TargetEntityID == "" {
		return fiber.NewError(http.StatusBadRequest, "target_entity_id required")
	}

	inquiryID, err := h.inquiries.Send(c.Context(), principal.Entity, c.IP(), req.TargetEntityID, req.Body)
	if err != nil {
		return err
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"inquiry_id": inquiryID},
	})
}
