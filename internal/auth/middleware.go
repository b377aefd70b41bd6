package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/store-dashboard/internal/events"
	"github.com/spec-kit/store-dashboard/internal/observability"
	"github.com/spec-kit/store-dashboard/internal/remote"
	"github.com/spec-kit/store-dashboard/internal/session"
)

const sessionKey = "auth_session"

// NotifierFactory returns the notifier for one request.
type NotifierFactory func(c *fiber.Ctx) Notifier

// MiddlewareConfig wires the per-request session.
type MiddlewareConfig struct {
	API       *remote.Client
	Cookie    session.CookieOptions
	Routes    Routes
	Notifiers NotifierFactory
	Events    events.Dispatcher
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

// RequestSession is everything a handler needs to act for the signed-in user.
type RequestSession struct {
	Controller *Controller
	API        *remote.Client
	Store      *session.Store
	Redirect   *PendingRedirect
}

// AuthMiddleware hydrates the session of every request it runs on.
type AuthMiddleware struct {
	cfg MiddlewareConfig
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(cfg MiddlewareConfig) *AuthMiddleware {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	cfg.Routes = cfg.Routes.withDefaults()
	return &AuthMiddleware{cfg: cfg}
}

// Bind creates the session objects for one request without resolving them.
func (m *AuthMiddleware) Bind(c *fiber.Ctx) *RequestSession {
	store := session.NewStore(session.NewCookieBackend(c, m.cfg.Cookie))
	api := m.cfg.API.WithCredentials(store)
	redirect := &PendingRedirect{}

	var notifier Notifier
	if m.cfg.Notifiers != nil {
		notifier = m.cfg.Notifiers(c)
	}

	ctrl := NewController(Deps{
		Session:   store,
		API:       api,
		Navigator: redirect,
		Notifier:  notifier,
		Events:    m.cfg.Events,
		Metrics:   m.cfg.Metrics,
		Logger:    m.cfg.Logger,
		Routes:    m.cfg.Routes,
		Client: events.Client{
			IP:        c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		},
	})

	return &RequestSession{Controller: ctrl, API: api, Store: store, Redirect: redirect}
}

// Handle resolves the session before any later handler runs. A rejected
// credential sends the browser to the login route.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	rs := m.Bind(c)
	rs.Controller.Start(c.UserContext())
	c.Locals(sessionKey, rs)

	dest, ok := rs.Redirect.Destination()
	rs.Redirect.Reset()
	if ok && dest != c.Path() {
		return c.Redirect(dest, http.StatusFound)
	}
	return c.Next()
}

// SessionFromContext retrieves the hydrated session.
func SessionFromContext(c *fiber.Ctx) (*RequestSession, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	rs, ok := val.(*RequestSession)
	return rs, ok
}

// ControllerFromContext retrieves the session controller.
func ControllerFromContext(c *fiber.Ctx) (*Controller, bool) {
	rs, ok := SessionFromContext(c)
	if !ok {
		return nil, false
	}
	return rs.Controller, true
}
