package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCookieBackend_SetWritesMaxAge(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		store := NewStore(NewCookieBackend(c, CookieOptions{}))
		if err := store.Persist(Credential{Token: "tok", ExpiresIn: time.Hour}); err != nil {
			return err
		}
		cred, ok := store.Current()
		if !ok || cred.Token != "tok" {
			return fiber.ErrInternalServerError
		}
		return c.SendStatus(http.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cookie := findCookie(resp, DefaultCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "tok", cookie.Value)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.Equal(t, "/", cookie.Path)
	assert.False(t, cookie.HttpOnly)
}

func TestCookieBackend_ReadsRequestAndClears(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		store := NewStore(NewCookieBackend(c, CookieOptions{Name: "authtoken"}))
		if _, ok := store.Current(); !ok {
			return fiber.ErrUnauthorized
		}
		store.Clear()
		if _, ok := store.Current(); ok {
			return fiber.ErrInternalServerError
		}
		return c.SendStatus(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "authtoken", Value: "abc"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cookie := findCookie(resp, "authtoken")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

func TestHasCookie(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if HasCookie(c, "") {
			return c.SendString("yes")
		}
		return c.SendString("no")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "x"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	body := make([]byte, 3)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, "yes", string(body[:n]))
}
