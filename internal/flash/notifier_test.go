package flash

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTripAcrossRequests(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Minute))

	app := fiber.New()
	app.Post("/act", func(c *fiber.Ctx) error {
		n := m.For(c)
		n.Success("saved")
		n.Error("")
		return c.Redirect("/show", http.StatusFound)
	})
	app.Get("/show", func(c *fiber.Ctx) error {
		return c.JSON(m.Drain(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/act", nil))
	require.NoError(t, err)
	resp.Body.Close()

	var flashCookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == DefaultCookieName {
			flashCookie = ck
		}
	}
	require.NotNil(t, flashCookie)
	assert.True(t, flashCookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/show", nil)
	req.AddCookie(flashCookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	var msgs []Message
	require.NoError(t, json.Unmarshal(body, &msgs))
	assert.Equal(t, []Message{{Level: LevelSuccess, Text: "saved"}}, msgs)

	req = httptest.NewRequest(http.MethodGet, "/show", nil)
	req.AddCookie(flashCookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "null", string(body))
}

func TestManager_SameRequestDrain(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Minute), WithCookieName("fid"))

	app := fiber.New()
	app.Post("/login", func(c *fiber.Ctx) error {
		m.For(c).Error("Credenciais inválidas")
		return c.JSON(m.Drain(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var msgs []Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msgs))
	assert.Equal(t, []Message{{Level: LevelError, Text: "Credenciais inválidas"}}, msgs)
}

func TestManager_IgnoresForgedCookie(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Minute))
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(m.Drain(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "not-a-uuid"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "null", string(body))
}

func TestManager_SurvivesRedisOutage(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	m := NewManager(NewFallbackStore(NewRedisStore(client, time.Minute), NewMemoryStore(time.Minute), nil))

	app := fiber.New()
	app.Post("/login", func(c *fiber.Ctx) error {
		m.For(c).Error("Invalid credentials")
		return c.JSON(m.Drain(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	var msgs []Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msgs))
	assert.Equal(t, []Message{{Level: LevelError, Text: "Invalid credentials"}}, msgs)
}
