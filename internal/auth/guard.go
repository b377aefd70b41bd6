package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-dashboard/internal/session"
)

// Redirect instructs the renderer to send the browser elsewhere.
type Redirect struct {
	Destination string
	Permanent   bool
}

// StatusCode maps the redirect to an HTTP status.
func (r Redirect) StatusCode() int {
	if r.Permanent {
		return http.StatusPermanentRedirect
	}
	return http.StatusFound
}

// Page is the result of a server-side page loader: props to render, or a
// redirect.
type Page struct {
	Props    fiber.Map
	Redirect *Redirect
}

// Loader loads the data a page needs before it is rendered.
type Loader func(c *fiber.Ctx) (Page, error)

// Guard checks for the credential cookie before a page loads. The check is
// presence only: a stale token is caught when the page's own API calls fail.
type Guard struct {
	CookieName string
	LoginRoute string
}

// DefaultGuard uses the authtoken cookie and /login.
var DefaultGuard = Guard{CookieName: session.DefaultCookieName, LoginRoute: "/login"}

func (g Guard) loginRoute() string {
	if g.LoginRoute == "" {
		return "/login"
	}
	return g.LoginRoute
}

// Wrap returns a loader that short-circuits to a non-permanent redirect to the
// login route when the request has no credential cookie. The wrapped loader
// is not invoked in that case.
func (g Guard) Wrap(loader Loader) Loader {
	return func(c *fiber.Ctx) (Page, error) {
		if !session.HasCookie(c, g.CookieName) {
			return Page{Redirect: &Redirect{Destination: g.loginRoute(), Permanent: false}}, nil
		}
		return loader(c)
	}
}

// RequireCredential is the middleware form of Wrap for handlers that are not
// loaders, such as form posts.
func (g Guard) RequireCredential() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !session.HasCookie(c, g.CookieName) {
			return c.Redirect(g.loginRoute(), http.StatusFound)
		}
		return c.Next()
	}
}

// WithSSRAuth wraps loader with DefaultGuard.
func WithSSRAuth(loader Loader) Loader {
	return DefaultGuard.Wrap(loader)
}
