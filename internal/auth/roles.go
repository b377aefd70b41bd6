package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-dashboard/internal/domain"
	apperrors "github.com/spec-kit/store-dashboard/pkg/util/errorutil"
)

// RequireSignedIn ensures the hydrated session has an identity.
func RequireSignedIn(loginRoute string) fiber.Handler {
	if loginRoute == "" {
		loginRoute = "/login"
	}
	return func(c *fiber.Ctx) error {
		ctrl, ok := ControllerFromContext(c)
		if !ok || !ctrl.IsAuthenticated() {
			return c.Redirect(loginRoute, http.StatusFound)
		}
		return c.Next()
	}
}

// RequireDashboardAccess gates store dashboards on CanAccessDashboard, reading
// the store id from the named route param. Without the param only an identity
// is required.
func RequireDashboardAccess(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctrl, ok := ControllerFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("session required")
		}

		var storeID *int64
		if raw := c.Params(param); raw != "" {
			id, err := domain.ParseID(raw)
			if err != nil {
				return apperrors.NewNotFound("store", map[string]any{"id": raw})
			}
			storeID = &id
		}

		if !CanAccessDashboard(ctrl.Identity(), storeID) {
			return apperrors.NewForbidden("you do not have access to this store")
		}
		return c.Next()
	}
}
