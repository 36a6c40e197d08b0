package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-trust/internal/api/dto"
	"github.com/spec-kit/marketplace-trust/internal/auth"
	"github.com/spec-kit/marketplace-trust/internal/domain"
	"github.com/spec-kit/marketplace-trust/internal/service"
)

// DirectoryHandler exposes the public discovery read path.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directoryService}
}

// List handles GET /directory.
func (h *DirectoryHandler) List(c *fiber.Ctx) error {
	var types []domain.EntityType
	if raw := c.Query("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			types = append(types, domain.EntityType(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	entries, err := h.directory.Build(c.Context(), types, limit, offset)
	if err != nil {
		return err
	}

	payload := make([]dto.DirectoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, dto.DirectoryEntryResponse{
			EntityID:  entry.EntityID,
			Name:      entry.Name,
			Type:      string(entry.Type),
			Tier:      entry.Tier,
			Score:     entry.Score,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"entries": payload}})
}

// MyVisibility handles GET /me/visibility: the owner-facing explanation
// of why an account is or is not listed.
func (h *DirectoryHandler) MyVisibility(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Entity == nil {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	decision, err := h.directory.Visibility(c.Context(), principal.Entity.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.VisibilityResponse{
		Visible: decision.Visible,
		Tier:    decision.Tier,
		Reason:  decision.Reason,
	}})
}
