package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spec-kit/marketplace-trust/internal/domain"
	"github.com/spec-kit/marketplace-trust/internal/events"
	"github.com/spec-kit/marketplace-trust/internal/ratelimit"
	"github.com/spec-kit/marketplace-trust/internal/repository"
	apperrors "github.com/spec-kit/marketplace-trust/pkg/util/errorutil"
)

// InquiryService gates inquiry sending. Message storage itself lives
// elsewhere; this service only runs the abuse checks and hands the
// accepted inquiry to the dispatcher.
type InquiryService struct {
	entities   repository.EntityRepository
	limiter    *ratelimit.Limiter
	filter     *ratelimit.ContentFilter
	trust      *TrustService
	dispatcher events.Dispatcher
}

// NewInquiryService builds the service.
func NewInquiryService(entities repository.EntityRepository, limiter *ratelimit.Limiter, filter *ratelimit.ContentFilter, trust *TrustService, dispatcher events.Dispatcher) *InquiryService {
	return &InquiryService{
		entities:   entities,
		limiter:    limiter,
		filter:     filter,
		trust:      trust,
		dispatcher: dispatcher,
	}
}

// Send runs the gate sequence for one inquiry: content pre-filter,
// rate limit, then the target's entitlement to receive. A filtered
// message never reaches the counter.
func (s *InquiryService) Send(ctx context.Context, sender *domain.Entity, ip, targetEntityID, body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", apperrors.NewValidationError("inquiry body is required", nil)
	}

	if result := s.filter.Check(body); result.Blocked {
		s.publish(ctx, events.Event{
			Type:     events.EventInquiryBlocked,
			EntityID: sender.ID,
			Actor:    entityActor(sender.ID),
			Payload:  events.InquiryBlockedPayload{TargetEntityID: targetEntityID, Reason: result.Reason},
		})
		return "", apperrors.NewValidationError(result.Reason, nil)
	}

	identity := ratelimit.Identity{IP: ip, SubjectID: sender.ID}
	decision := s.limiter.CheckLimit(ctx, ratelimit.ActionSendInquiry, identity, sender.IsVerified(timeNowUTC()))
	if !decision.Allowed {
		return "", apperrors.NewRateLimited(decision.RetryAfterSeconds)
	}

	target, err := s.entities.GetByID(ctx, targetEntityID)
	if err != nil {
		return "", apperrors.NewNotFound("entity", nil)
	}
	set := s.trust.EntitlementsForEntity(ctx, target)
	if !set.CanReceiveInquiries {
		return "", apperrors.NewForbidden("this account does not accept inquiries")
	}

	inquiryID := uuid.NewString()
	s.publish(ctx, events.Event{
		Type:     events.EventInquirySent,
		EntityID: sender.ID,
		Actor:    entityActor(sender.ID),
		Payload: events.InquirySentPayload{
			InquiryID:      inquiryID,
			TargetEntityID: targetEntityID,
			BodyPreview:    preview(body, 80),
		},
	})
	return inquiryID, nil
}

func (s *InquiryService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	// Never cut inside a multibyte rune.
	cut := max
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}
