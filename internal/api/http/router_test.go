package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apihttp "github.com/spec-kit/store-dashboard/internal/api/http"
	"github.com/spec-kit/store-dashboard/internal/activity"
	"github.com/spec-kit/store-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/store-dashboard/internal/api/http/views"
	"github.com/spec-kit/store-dashboard/internal/auth"
	"github.com/spec-kit/store-dashboard/internal/domain"
	"github.com/spec-kit/store-dashboard/internal/events"
	"github.com/spec-kit/store-dashboard/internal/flash"
	"github.com/spec-kit/store-dashboard/internal/observability"
	"github.com/spec-kit/store-dashboard/internal/remote"
	"github.com/spec-kit/store-dashboard/internal/service"
	"github.com/spec-kit/store-dashboard/internal/session"
)

type storeAPI struct {
	mu    sync.Mutex
	calls []string
}

func (s *storeAPI) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, r.Method+" "+r.URL.Path)
}

func (s *storeAPI) called(call string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		if c == call {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var ana = map[string]any{
	"id": 1, "name": "Ana", "email": "ana@example.com", "is_admin": 0,
	"stores": []map[string]any{{"id": 5, "name": "Mercadinho", "address": "Rua A, 1", "description": "bairro"}},
}

func (s *storeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer good-token" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid token"})
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": map[string]any{"token": "good-token", "expiresIn": 3600},
			"user":  ana,
		})
	})
	mux.HandleFunc("GET /api/auth/me", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": ana})
	}))
	mux.HandleFunc("DELETE /api/auth/logout", authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /api/stores/my-stores/1", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"stores": ana["stores"]})
	}))
	mux.HandleFunc("GET /api/users/1/my-stores-sellers", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"stores": []any{}})
	}))
	mux.HandleFunc("POST /api/stores", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"store": map[string]any{"id": 9, "name": "Nova"}})
	}))
	mux.HandleFunc("GET /api/stores/5", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"store": ana["stores"].([]map[string]any)[0]})
	}))
	mux.HandleFunc("GET /api/stores/5/products", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"products": []map[string]any{{"id": 2, "name": "Café", "price": 10, "quantity": 3}}})
	}))
	mux.HandleFunc("GET /api/stores/5/sellers", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sellers": []any{}})
	}))
	mux.HandleFunc("GET /api/stores/5/sales", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sales": []any{}})
	}))
	mux.HandleFunc("POST /api/stores/5/add-seller", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "User not found"})
	}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		mux.ServeHTTP(w, r)
	})
}

func newDashboardApp(t *testing.T) (*fiber.App, *storeAPI) {
	t.Helper()
	return newDashboardAppWithAudit(t, nil)
}

func newDashboardAppWithAudit(t *testing.T, sink activity.Sink) (*fiber.App, *storeAPI) {
	t.Helper()
	fake := &storeAPI{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	client, err := remote.New(remote.Config{BaseURL: srv.URL + "/api/", Timeout: 2 * time.Second}, remote.WithMetrics(metrics))
	require.NoError(t, err)

	flashes := flash.NewManager(flash.NewMemoryStore(time.Minute))
	guard := auth.Guard{CookieName: session.DefaultCookieName, LoginRoute: "/login"}
	pages := handlers.NewPages(flashes, guard, views.Layout)
	dispatcher := events.NewInMemoryDispatcher(logger)
	stores := service.NewStoreService(logger)
	activityService := service.NewActivityService(dispatcher, sink, nil, logger)
	activityService.RegisterHandlers()

	app := fiber.New(fiber.Config{Views: views.NewEngine()})
	apihttp.RegisterMiddlewares(app, apihttp.MiddlewareConfig{
		Logger:      logger,
		Metrics:     metrics,
		Timeout:     5 * time.Second,
		RenderError: pages.RenderError,
	})
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Health:    handlers.NewHealthHandler("store-dashboard", "test", nil, nil, client),
		Auth:      handlers.NewAuthHandler(pages, auth.Routes{}),
		Stores:    handlers.NewStoresHandler(pages, stores, activityService, logger),
		Dashboard: handlers.NewDashboardHandler(pages, stores),
		AuthMiddleware: auth.NewAuthMiddleware(auth.MiddlewareConfig{
			API:     client,
			Events:  dispatcher,
			Metrics: metrics,
			Logger:  logger,
			Notifiers: func(c *fiber.Ctx) auth.Notifier {
				return flashes.For(c)
			},
		}),
		Guard:          guard,
		MetricsPath:    "/metrics",
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	return app, fake
}

type result struct {
	status  int
	body    string
	header  http.Header
	cookies []*http.Cookie
}

func send(t *testing.T, app *fiber.App, method, path string, form url.Values, cookies ...*http.Cookie) result {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return result{status: resp.StatusCode, body: string(data), header: resp.Header, cookies: resp.Cookies()}
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var goodToken = &http.Cookie{Name: "authtoken", Value: "good-token"}

func TestRoutes_GuardRedirectsWithoutCookie(t *testing.T) {
	app, fake := newDashboardApp(t)

	for _, path := range []string{"/my-stores", "/create-store", "/dashboard/5", "/dashboard/5/sales"} {
		res := send(t, app, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusFound, res.status, path)
		assert.Equal(t, "/login", res.header.Get("Location"), path)
	}
	assert.Empty(t, fake.calls)
}

func TestRoutes_SignInFlow(t *testing.T) {
	app, _ := newDashboardApp(t)

	res := send(t, app, http.MethodPost, "/login", url.Values{"email": {"ana@example.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/", res.header.Get("Location"))

	token := cookieNamed(res.cookies, "authtoken")
	require.NotNil(t, token)
	assert.Equal(t, "good-token", token.Value)
	assert.Equal(t, 3600, token.MaxAge)
	assert.False(t, token.HttpOnly)

	flashID := cookieNamed(res.cookies, flash.DefaultCookieName)
	require.NotNil(t, flashID)

	home := send(t, app, http.MethodGet, "/", nil, token, flashID)
	assert.Equal(t, http.StatusOK, home.status)
	assert.Contains(t, home.body, "Signed in successfully!")
	assert.Contains(t, home.body, "Welcome back, Ana.")
}

func TestRoutes_SignInFailureShowsServerMessage(t *testing.T) {
	app, _ := newDashboardApp(t)

	res := send(t, app, http.MethodPost, "/login", url.Values{"email": {"ana@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Invalid credentials")
	assert.Nil(t, cookieNamed(res.cookies, "authtoken"))
}

func TestRoutes_LoginValidationSkipsAPI(t *testing.T) {
	app, fake := newDashboardApp(t)

	res := send(t, app, http.MethodPost, "/login", url.Values{"email": {"nope"}})
	assert.Equal(t, http.StatusUnprocessableEntity, res.status)
	assert.False(t, fake.called("POST /api/auth/login"))
	assert.NotContains(t, res.body, "toast-error")
}

func TestRoutes_StaleCredentialIsCleared(t *testing.T) {
	app, _ := newDashboardApp(t)

	res := send(t, app, http.MethodGet, "/my-stores", nil, &http.Cookie{Name: "authtoken", Value: "stale"})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/login", res.header.Get("Location"))
	cleared := cookieNamed(res.cookies, "authtoken")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestRoutes_MyStores(t *testing.T) {
	app, _ := newDashboardApp(t)

	res := send(t, app, http.MethodGet, "/my-stores", nil, goodToken)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Mercadinho")
	assert.Contains(t, res.body, `/dashboard/5`)
}

func TestRoutes_DashboardPermission(t *testing.T) {
	app, fake := newDashboardApp(t)

	res := send(t, app, http.MethodGet, "/dashboard/5", nil, goodToken)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Mercadinho")

	res = send(t, app, http.MethodGet, "/dashboard/5/products", nil, goodToken)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Café")

	res = send(t, app, http.MethodGet, "/dashboard/9", nil, goodToken)
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.False(t, fake.called("GET /api/stores/9"))
}

func TestRoutes_CreateStoreUpdatesIdentity(t *testing.T) {
	app, fake := newDashboardApp(t)

	res := send(t, app, http.MethodPost, "/create-store",
		url.Values{"name": {"Nova"}, "address": {"Rua B"}, "description": {"loja nova"}}, goodToken)
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/my-stores", res.header.Get("Location"))
	assert.True(t, fake.called("POST /api/stores"))
}

func TestRoutes_RemoteFailureBecomesNotification(t *testing.T) {
	app, _ := newDashboardApp(t)

	res := send(t, app, http.MethodPost, "/dashboard/5/sellers", url.Values{"email": {"bob@example.com"}}, goodToken)
	require.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/dashboard/5/sellers", res.header.Get("Location"))

	flashID := cookieNamed(res.cookies, flash.DefaultCookieName)
	require.NotNil(t, flashID)
	page := send(t, app, http.MethodGet, "/dashboard/5/sellers", nil, goodToken, flashID)
	assert.Contains(t, page.body, "User not found")
}

func TestRoutes_SignOut(t *testing.T) {
	app, fake := newDashboardApp(t)

	res := send(t, app, http.MethodPost, "/logout", nil, goodToken)
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/", res.header.Get("Location"))
	assert.True(t, fake.called("DELETE /api/auth/logout"))
	cleared := cookieNamed(res.cookies, "authtoken")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	app, _ := newDashboardApp(t)

	res := send(t, app, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "alive")

	res = send(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, `"store_api":"ok"`)

	res = send(t, app, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "dashboard_http_requests_total")
}

type auditLog struct {
	mu    sync.Mutex
	types []string
}

func (a *auditLog) Write(_ context.Context, record domain.ActivityRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.types = append(a.types, record.Type)
	return nil
}

func (a *auditLog) recorded() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.types...)
}

func TestRoutes_PageLoadsDoNotGrowAuditTrail(t *testing.T) {
	audit := &auditLog{}
	app, _ := newDashboardAppWithAudit(t, audit)

	for i := 0; i < 3; i++ {
		res := send(t, app, http.MethodGet, "/my-stores", nil, goodToken)
		require.Equal(t, http.StatusOK, res.status)
	}
	assert.Empty(t, audit.recorded())

	send(t, app, http.MethodPost, "/logout", nil, goodToken)
	assert.Equal(t, []string{"signed_out"}, audit.recorded())
}

func TestRoutes_ProductValidationSendsNoWrite(t *testing.T) {
	app, fake := newDashboardApp(t)

	res := send(t, app, http.MethodPost, "/dashboard/5/products", url.Values{"name": {""}}, goodToken)
	assert.Equal(t, http.StatusUnprocessableEntity, res.status)
	assert.False(t, fake.called("POST /api/products"))
	assert.NotContains(t, res.body, "toast-error")
}

func TestRoutes_CreateStoreRecordsStoreAdded(t *testing.T) {
	audit := &auditLog{}
	app, _ := newDashboardAppWithAudit(t, audit)

	res := send(t, app, http.MethodPost, "/create-store",
		url.Values{"name": {"Nova"}, "address": {"Rua B"}, "description": {"loja nova"}}, goodToken)
	require.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, []string{"store_added"}, audit.recorded())
}
