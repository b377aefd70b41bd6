package http

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/store-dashboard/internal/auth"
	"github.com/spec-kit/store-dashboard/internal/observability"
	apperrors "github.com/spec-kit/store-dashboard/pkg/util/errorutil"
)

// ErrorRenderer renders an error page for browser requests.
type ErrorRenderer func(c *fiber.Ctx, status int, message string) error

// MiddlewareConfig configures the global middleware chain.
type MiddlewareConfig struct {
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Timeout     time.Duration
	LoginRoute  string
	RenderError ErrorRenderer
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.LoginRoute == "" {
		cfg.LoginRoute = "/login"
	}
	app.Use(requestIDMiddleware())
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics))
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	app.Use(errorHandlingMiddleware(cfg))
}

func requestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Locals(observability.RequestIDLocal, id)
		c.Set(fiber.HeaderXRequestID, id)
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

func wantsJSON(c *fiber.Ctx) bool {
	if strings.HasPrefix(c.Path(), "/health") {
		return true
	}
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

func errorHandlingMiddleware(cfg MiddlewareConfig) fiber.Handler {
	logger, metrics := cfg.Logger, cfg.Metrics
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}

			if fe, ok := err.(*fiber.Error); ok {
				err = apperrors.NewDomainError(strings.ToUpper(strings.ReplaceAll(http.StatusText(fe.Code), " ", "_")), fe.Message, fe.Code, nil)
			}
			domainErr := apperrors.ToDomainError(err)
			metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
			if domainErr.HTTPStatus >= 500 {
				logger.Error("request failed", zap.Error(domainErr))
			}

			if domainErr.HTTPStatus == http.StatusUnauthorized {
				if ctrl, ok := auth.ControllerFromContext(c); ok {
					ctrl.Invalidate(c.UserContext(), domainErr)
				}
				if !wantsJSON(c) {
					err = c.Redirect(cfg.LoginRoute, http.StatusFound)
					return
				}
			}

			if wantsJSON(c) || cfg.RenderError == nil {
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				c.Status(domainErr.HTTPStatus)
				err = c.JSON(response)
				return
			}

			if rerr := cfg.RenderError(c, domainErr.HTTPStatus, domainErr.Message); rerr != nil {
				logger.Error("render error page", zap.Error(rerr))
				err = c.Status(domainErr.HTTPStatus).SendString(domainErr.Message)
				return
			}
			err = nil
		}()
		return c.Next()
	}
}
