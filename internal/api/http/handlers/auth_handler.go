package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-dashboard/internal/api/dto"
	"github.com/spec-kit/store-dashboard/internal/auth"
	"github.com/spec-kit/store-dashboard/internal/remote"
)

const msgRegistered = "User registered successfully!"

// AuthHandler serves the public pages: landing, sign-in, sign-out and
// registration.
type AuthHandler struct {
	pages  *Pages
	routes auth.Routes
}

// NewAuthHandler constructs handler.
func NewAuthHandler(pages *Pages, routes auth.Routes) *AuthHandler {
	if routes.Login == "" {
		routes.Login = "/login"
	}
	if routes.Home == "" {
		routes.Home = "/"
	}
	return &AuthHandler{pages: pages, routes: routes}
}

// Home handles GET /.
func (h *AuthHandler) Home(c *fiber.Ctx) error {
	return h.pages.Render(c, "home", fiber.Map{"title": "Home"})
}

// LoginPage handles GET /login.
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	if ctrl, ok := auth.ControllerFromContext(c); ok && ctrl.IsAuthenticated() {
		return c.Redirect(h.routes.Home, http.StatusFound)
	}
	return h.renderLogin(c, http.StatusOK, dto.LoginForm{}, nil)
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	rs, err := requestSession(c)
	if err != nil {
		return err
	}

	var form dto.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderLogin(c, http.StatusBadRequest, form, invalidForm())
	}
	if err := form.Validate(); err != nil {
		return h.renderLogin(c, http.StatusUnprocessableEntity, form, dto.FieldErrors(err))
	}

	if err := rs.Controller.SignIn(c.UserContext(), form.Email, form.Password); err != nil {
		form.Password = ""
		return h.renderLogin(c, http.StatusOK, form, nil)
	}
	return followRedirect(c, rs, h.routes.Home)
}

func (h *AuthHandler) renderLogin(c *fiber.Ctx, status int, form dto.LoginForm, errs map[string]string) error {
	return h.pages.Render(c.Status(status), "login", fiber.Map{
		"title":  "Sign in",
		"form":   form,
		"errors": errs,
	})
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	rs, err := requestSession(c)
	if err != nil {
		return err
	}
	if err := rs.Controller.SignOut(c.UserContext()); err != nil {
		back := c.Get(fiber.HeaderReferer)
		if back == "" {
			back = h.routes.Home
		}
		return c.Redirect(back, http.StatusFound)
	}
	return followRedirect(c, rs, h.routes.Home)
}

// RegisterPage handles GET /register.
func (h *AuthHandler) RegisterPage(c *fiber.Ctx) error {
	return h.renderRegister(c, http.StatusOK, dto.RegisterForm{}, nil)
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	rs, err := requestSession(c)
	if err != nil {
		return err
	}

	var form dto.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderRegister(c, http.StatusBadRequest, form, invalidForm())
	}
	if err := form.Validate(); err != nil {
		return h.renderRegister(c, http.StatusUnprocessableEntity, form, dto.FieldErrors(err))
	}

	if err := rs.API.RegisterUser(c.UserContext(), form.Request()); err != nil {
		h.pages.Notify(c).Error(remote.Message(err))
		return h.renderRegister(c, http.StatusOK, form, nil)
	}

	h.pages.Notify(c).Success(msgRegistered)
	return c.Redirect(h.routes.Login, http.StatusFound)
}

func (h *AuthHandler) renderRegister(c *fiber.Ctx, status int, form dto.RegisterForm, errs map[string]string) error {
	form.Password, form.PasswordConfirmation = "", ""
	return h.pages.Render(c.Status(status), "register", fiber.Map{
		"title":  "Register",
		"form":   form,
		"errors": errs,
	})
}
