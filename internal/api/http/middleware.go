package http

import (
	"context"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-trust/internal/auth"
	"github.com/spec-kit/marketplace-trust/internal/observability"
	"github.com/spec-kit/marketplace-trust/internal/ratelimit"
	apperrors "github.com/spec-kit/marketplace-trust/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

// RateLimit gates a route with the abuse-prevention limiter. When the
// route runs after authentication the principal sharpens the counter
// key and the verified ceiling applies.
func RateLimit(limiter *ratelimit.Limiter, metrics *observability.Metrics, action ratelimit.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := ratelimit.Identity{IP: c.IP()}
		isVerified := false
		if principal, ok := auth.PrincipalFromContext(c); ok && principal.Entity != nil {
			identity.SubjectID = principal.Entity.ID
			isVerified = principal.Verified()
		}

		decision := limiter.CheckLimit(c.UserContext(), action, identity, isVerified)
		if metrics != nil {
			metrics.RecordRateLimitDecision(string(action), decision.Allowed)
		}
		if !decision.Allowed {
			c.Set("Retry-After", strconv.FormatInt(decision.RetryAfterSeconds, 10))
			return apperrors.NewRateLimited(decision.RetryAfterSeconds)
		}
		return c.Next()
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}
