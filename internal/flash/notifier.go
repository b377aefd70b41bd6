package flash

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const idLocal = "flash_id"

// DefaultCookieName names the cookie holding the browser's flash id.
const DefaultCookieName = "flashid"

// Manager binds the flash store to requests.
type Manager struct {
	store      Store
	cookieName string
	secure     bool
	logger     *zap.Logger
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithCookieName overrides the flash cookie name.
func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithSecureCookie marks the flash cookie Secure.
func WithSecureCookie(secure bool) ManagerOption {
	return func(m *Manager) { m.secure = secure }
}

// WithLogger sets the logger for store failures.
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager builds a Manager over store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{store: store, cookieName: DefaultCookieName, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// For returns the notifier of one request.
func (m *Manager) For(c *fiber.Ctx) *Notifier {
	return &Notifier{m: m, c: c}
}

// Drain returns and forgets the browser's pending messages. A browser that
// never received a flash id has none.
func (m *Manager) Drain(c *fiber.Ctx) []Message {
	id, ok := m.existingID(c)
	if !ok {
		return nil
	}
	msgs, err := m.store.Drain(c.UserContext(), id)
	if err != nil {
		m.logger.Warn("drain flash messages", zap.Error(err))
		return nil
	}
	return msgs
}

func (m *Manager) existingID(c *fiber.Ctx) (string, bool) {
	if id, ok := c.Locals(idLocal).(string); ok && id != "" {
		return id, true
	}
	raw := c.Cookies(m.cookieName)
	if _, err := uuid.Parse(raw); err != nil {
		return "", false
	}
	c.Locals(idLocal, raw)
	return raw, true
}

func (m *Manager) ensureID(c *fiber.Ctx) string {
	if id, ok := m.existingID(c); ok {
		return id
	}
	id := uuid.NewString()
	c.Locals(idLocal, id)
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id
}

func (m *Manager) push(c *fiber.Ctx, level Level, text string) {
	if text == "" {
		return
	}
	id := m.ensureID(c)
	if err := m.store.Push(c.UserContext(), id, Message{Level: level, Text: text}); err != nil {
		m.logger.Warn("push flash message", zap.Error(err), zap.String("level", string(level)))
	}
}

// Notifier queues messages for the browser of one request.
type Notifier struct {
	m *Manager
	c *fiber.Ctx
}

// Success queues a success message.
func (n *Notifier) Success(msg string) { n.m.push(n.c, LevelSuccess, msg) }

// Error queues an error message.
func (n *Notifier) Error(msg string) { n.m.push(n.c, LevelError, msg) }

// Info queues an informational message.
func (n *Notifier) Info(msg string) { n.m.push(n.c, LevelInfo, msg) }
