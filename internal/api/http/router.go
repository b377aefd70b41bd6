package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/store-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/store-dashboard/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Stores         *handlers.StoresHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
	Guard          auth.Guard
	MetricsPath    string
	MetricsHandler http.Handler
}

func chain(mw []fiber.Handler, h ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+len(h))
	out = append(out, mw...)
	return append(out, h...)
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.MetricsHandler != nil && cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, adaptor.HTTPHandler(cfg.MetricsHandler))
	}

	hydrate := cfg.AuthMiddleware.Handle
	public := []fiber.Handler{hydrate}
	signedIn := []fiber.Handler{cfg.Guard.RequireCredential(), hydrate, auth.RequireSignedIn(cfg.Guard.LoginRoute)}
	dashboard := chain(signedIn, auth.RequireDashboardAccess("id"))

	app.Get("/", chain(public, cfg.Auth.Home)...)
	app.Get("/login", chain(public, cfg.Auth.LoginPage)...)
	app.Post("/login", chain(public, cfg.Auth.Login)...)
	app.Get("/register", chain(public, cfg.Auth.RegisterPage)...)
	app.Post("/register", chain(public, cfg.Auth.Register)...)
	app.Post("/logout", chain(signedIn, cfg.Auth.Logout)...)

	app.Get("/my-stores", chain(signedIn, cfg.Stores.MyStores())...)
	app.Post("/my-stores/:id/delete", chain(signedIn, cfg.Stores.DeleteStore)...)
	app.Get("/create-store", chain(signedIn, cfg.Stores.CreateStorePage())...)
	app.Post("/create-store", chain(signedIn, cfg.Stores.CreateStore)...)

	app.Get("/dashboard/:id", chain(dashboard, cfg.Dashboard.Settings())...)
	app.Post("/dashboard/:id", chain(dashboard, cfg.Dashboard.UpdateSettings)...)
	app.Get("/dashboard/:id/products", chain(dashboard, cfg.Dashboard.Products())...)
	app.Post("/dashboard/:id/products", chain(dashboard, cfg.Dashboard.CreateProduct)...)
	app.Post("/dashboard/:id/products/:productId", chain(dashboard, cfg.Dashboard.UpdateProduct)...)
	app.Post("/dashboard/:id/products/:productId/delete", chain(dashboard, cfg.Dashboard.DeleteProduct)...)
	app.Get("/dashboard/:id/sellers", chain(dashboard, cfg.Dashboard.Sellers())...)
	app.Post("/dashboard/:id/sellers", chain(dashboard, cfg.Dashboard.AddSeller)...)
	app.Post("/dashboard/:id/sellers/:sellerId/delete", chain(dashboard, cfg.Dashboard.RemoveSeller)...)
	app.Get("/dashboard/:id/sales", chain(dashboard, cfg.Dashboard.Sales())...)
	app.Post("/dashboard/:id/sales", chain(dashboard, cfg.Dashboard.CreateSale)...)
}
