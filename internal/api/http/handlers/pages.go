package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-dashboard/internal/auth"
	"github.com/spec-kit/store-dashboard/internal/domain"
	"github.com/spec-kit/store-dashboard/internal/flash"
	"github.com/spec-kit/store-dashboard/internal/remote"
	apperrors "github.com/spec-kit/store-dashboard/pkg/util/errorutil"
)

// Pages renders server-side pages with the bindings every page shares: the
// signed-in identity and pending flash messages.
type Pages struct {
	flash  *flash.Manager
	guard  auth.Guard
	layout string
}

// NewPages constructs the renderer.
func NewPages(flashes *flash.Manager, guard auth.Guard, layout string) *Pages {
	return &Pages{flash: flashes, guard: guard, layout: layout}
}

// Render renders view inside the layout.
func (p *Pages) Render(c *fiber.Ctx, view string, props fiber.Map) error {
	bind := fiber.Map{}
	for k, v := range props {
		bind[k] = v
	}
	if ctrl, ok := auth.ControllerFromContext(c); ok {
		if identity := ctrl.Identity(); identity != nil {
			bind["identity"] = identity
		}
	}
	bind["messages"] = p.flash.Drain(c)
	bind["path"] = c.Path()
	return c.Render(view, bind, p.layout)
}

// RenderError renders the error page.
func (p *Pages) RenderError(c *fiber.Ctx, status int, message string) error {
	return p.Render(c.Status(status), "error", fiber.Map{
		"title":   http.StatusText(status),
		"status":  status,
		"message": message,
	})
}

// Page adapts a loader to a handler. Loaders that need a credential should be
// passed through Guarded.
func (p *Pages) Page(view string, loader auth.Loader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := loader(c)
		if err != nil {
			return err
		}
		if page.Redirect != nil {
			return c.Redirect(page.Redirect.Destination, page.Redirect.StatusCode())
		}
		return p.Render(c, view, page.Props)
	}
}

// Guarded is Page with the credential guard applied to loader.
func (p *Pages) Guarded(view string, loader auth.Loader) fiber.Handler {
	return p.Page(view, p.guard.Wrap(loader))
}

// Notify returns the notifier of the request.
func (p *Pages) Notify(c *fiber.Ctx) *flash.Notifier {
	return p.flash.For(c)
}

// Failed reports a remote failure as an error notification and sends the
// browser back. A rejected credential is returned as an error so the error
// middleware can end the session.
func (p *Pages) Failed(c *fiber.Ctx, err error, back string) error {
	if remote.IsUnauthorized(err) {
		return err
	}
	p.Notify(c).Error(remote.Message(err))
	return c.Redirect(back, http.StatusFound)
}

func requestSession(c *fiber.Ctx) (*auth.RequestSession, error) {
	rs, ok := auth.SessionFromContext(c)
	if !ok {
		return nil, apperrors.NewInternalError(errors.New("session not hydrated"))
	}
	return rs, nil
}

func signedIn(c *fiber.Ctx) (*auth.RequestSession, *domain.User, error) {
	rs, err := requestSession(c)
	if err != nil {
		return nil, nil, err
	}
	identity := rs.Controller.Identity()
	if identity == nil {
		return nil, nil, apperrors.NewUnauthorized("sign in required")
	}
	return rs, identity, nil
}

// followRedirect sends the browser where the controller navigated, or to
// fallback.
func followRedirect(c *fiber.Ctx, rs *auth.RequestSession, fallback string) error {
	dest, ok := rs.Redirect.Destination()
	rs.Redirect.Reset()
	if !ok {
		dest = fallback
	}
	return c.Redirect(dest, http.StatusFound)
}

func paramID(c *fiber.Ctx, name, resource string) (int64, error) {
	id, err := domain.ParseID(c.Params(name))
	if err != nil {
		return 0, apperrors.NewNotFound(resource, map[string]any{name: c.Params(name)})
	}
	return id, nil
}

func invalidForm() map[string]string {
	return map[string]string{"form": "invalid form data"}
}
