package service

import (
	"time"

	"github.com/spec-kit/marketplace-trust/internal/domain"
	"github.com/spec-kit/marketplace-trust/internal/events"
)

func timeNowUTC() time.Time { return time.Now().UTC() }

func entityActor(entityID string) events.Actor {
	id := entityID
	return events.Actor{Type: domain.SubjectTypeEntity, EntityID: &id}
}
