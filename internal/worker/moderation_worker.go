package worker

import (
	"github.com/spec-kit/marketplace-trust/internal/service"
)

// StartModerationWorker registers moderation event handlers.
func StartModerationWorker(moderationService *service.ModerationService) {
	if moderationService == nil {
		return
	}
	moderationService.RegisterHandlers()
}
