package session

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// MemoryBackend keeps the token in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	value   string
	present bool
	maxAge  time.Duration
}

// NewMemoryBackend returns a backend, optionally seeded with a token.
func NewMemoryBackend(seed ...string) *MemoryBackend {
	b := &MemoryBackend{}
	if len(seed) > 0 {
		b.value, b.present = seed[0], true
	}
	return b
}

func (b *MemoryBackend) Get() (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value, b.present
}

func (b *MemoryBackend) Set(value string, maxAge time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value, b.present, b.maxAge = value, true, maxAge
}

func (b *MemoryBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value, b.present, b.maxAge = "", false, 0
}

// MaxAge reports the lifetime requested by the last Set.
func (b *MemoryBackend) MaxAge() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.maxAge
}

// CookieOptions describes the credential cookie.
type CookieOptions struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite string
}

func (o CookieOptions) withDefaults() CookieOptions {
	if o.Name == "" {
		o.Name = DefaultCookieName
	}
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == "" {
		o.SameSite = fiber.CookieSameSiteLaxMode
	}
	return o
}

// CookieBackend reads the token from the request and writes it to the
// response. Writes are visible to later reads within the same request.
// The cookie is client readable on purpose; browser code may read it.
type CookieBackend struct {
	c       *fiber.Ctx
	opts    CookieOptions
	written bool
	value   string
}

// NewCookieBackend binds a backend to one request.
func NewCookieBackend(c *fiber.Ctx, opts CookieOptions) *CookieBackend {
	return &CookieBackend{c: c, opts: opts.withDefaults()}
}

func (b *CookieBackend) Get() (string, bool) {
	if b.written {
		return b.value, b.value != ""
	}
	v := b.c.Cookies(b.opts.Name)
	return v, v != ""
}

func (b *CookieBackend) Set(value string, maxAge time.Duration) {
	cookie := &fiber.Cookie{
		Name:     b.opts.Name,
		Value:    value,
		Path:     b.opts.Path,
		Domain:   b.opts.Domain,
		Secure:   b.opts.Secure,
		SameSite: b.opts.SameSite,
		HTTPOnly: false,
	}
	if maxAge > 0 {
		cookie.MaxAge = int(maxAge / time.Second)
		cookie.Expires = time.Now().Add(maxAge)
	} else {
		cookie.SessionOnly = true
	}
	b.c.Cookie(cookie)
	b.written, b.value = true, value
}

func (b *CookieBackend) Clear() {
	b.c.Cookie(&fiber.Cookie{
		Name:     b.opts.Name,
		Value:    "",
		Path:     b.opts.Path,
		Domain:   b.opts.Domain,
		Secure:   b.opts.Secure,
		SameSite: b.opts.SameSite,
		Expires:  time.Now().Add(-24 * time.Hour),
	})
	b.written, b.value = true, ""
}

// HasCookie reports whether the request carries the named cookie. It does not
// look at writes made during the request.
func HasCookie(c *fiber.Ctx, name string) bool {
	if name == "" {
		name = DefaultCookieName
	}
	return c.Cookies(name) != ""
}
