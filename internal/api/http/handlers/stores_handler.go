package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/store-dashboard/internal/api/dto"
	"github.com/spec-kit/store-dashboard/internal/auth"
	"github.com/spec-kit/store-dashboard/internal/remote"
	"github.com/spec-kit/store-dashboard/internal/service"
)

const (
	msgStoreCreated = "Store created successfully!"
	msgStoreDeleted = "Store deleted successfully!"

	recentActivityLimit = 5
)

// StoresHandler serves the store list and store creation pages.
type StoresHandler struct {
	pages    *Pages
	stores   *service.StoreService
	activity *service.ActivityService
	logger   *zap.Logger
}

// NewStoresHandler constructs handler.
func NewStoresHandler(pages *Pages, stores *service.StoreService, activity *service.ActivityService, logger *zap.Logger) *StoresHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoresHandler{pages: pages, stores: stores, activity: activity, logger: logger}
}

// MyStores handles GET /my-stores.
func (h *StoresHandler) MyStores() fiber.Handler {
	return h.pages.Guarded("my_stores", h.loadMyStores)
}

func (h *StoresHandler) loadMyStores(c *fiber.Ctx) (auth.Page, error) {
	rs, identity, err := signedIn(c)
	if err != nil {
		return auth.Page{}, err
	}

	listing, err := h.stores.MyStores(c.UserContext(), rs.API, identity.ID)
	if err != nil {
		return auth.Page{}, err
	}

	recent, err := h.activity.Recent(c.UserContext(), identity.ID, recentActivityLimit)
	if err != nil {
		h.logger.Warn("load recent activity", zap.Int64("user_id", identity.ID), zap.Error(err))
	}

	return auth.Page{Props: fiber.Map{
		"title":    "My stores",
		"listing":  listing,
		"activity": recent,
	}}, nil
}

// DeleteStore handles POST /my-stores/:id/delete.
func (h *StoresHandler) DeleteStore(c *fiber.Ctx) error {
	rs, err := requestSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id", "store")
	if err != nil {
		return err
	}
	if err := rs.API.DeleteStore(c.UserContext(), id); err != nil {
		return h.pages.Failed(c, err, "/my-stores")
	}
	h.pages.Notify(c).Success(msgStoreDeleted)
	return c.Redirect("/my-stores", http.StatusFound)
}

// CreateStorePage handles GET /create-store.
func (h *StoresHandler) CreateStorePage() fiber.Handler {
	return h.pages.Guarded("create_store", func(c *fiber.Ctx) (auth.Page, error) {
		return auth.Page{Props: fiber.Map{"title": "New store", "form": dto.StoreForm{}}}, nil
	})
}

// CreateStore handles POST /create-store.
func (h *StoresHandler) CreateStore(c *fiber.Ctx) error {
	rs, identity, err := signedIn(c)
	if err != nil {
		return err
	}

	var form dto.StoreForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderCreate(c, http.StatusBadRequest, form, invalidForm())
	}
	if err := form.Validate(); err != nil {
		return h.renderCreate(c, http.StatusUnprocessableEntity, form, dto.FieldErrors(err))
	}

	store, err := rs.API.CreateStore(c.UserContext(), form.Input(identity.ID))
	if err != nil {
		if remote.IsUnauthorized(err) {
			return err
		}
		h.pages.Notify(c).Error(remote.Message(err))
		return h.renderCreate(c, http.StatusOK, form, nil)
	}

	rs.Controller.AddStore(c.UserContext(), *store)
	h.pages.Notify(c).Success(msgStoreCreated)
	return c.Redirect("/my-stores", http.StatusFound)
}

func (h *StoresHandler) renderCreate(c *fiber.Ctx, status int, form dto.StoreForm, errs map[string]string) error {
	return h.pages.Render(c.Status(status), "create_store", fiber.Map{
		"title":  "New store",
		"form":   form,
		"errors": errs,
	})
}
