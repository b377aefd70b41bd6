package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-dashboard/internal/api/dto"
	"github.com/spec-kit/store-dashboard/internal/auth"
	"github.com/spec-kit/store-dashboard/internal/service"
)

const (
	msgStoreUpdated   = "Store updated successfully!"
	msgProductCreated = "Product created successfully!"
	msgProductUpdated = "Product updated successfully!"
	msgProductDeleted = "Product deleted successfully!"
	msgSellerAdded    = "Seller added successfully!"
	msgSellerRemoved  = "Seller removed successfully!"
	msgSaleAdded      = "Sale added successfully!"
)

// DashboardHandler serves the per-store dashboard pages. Routes are expected
// to sit behind auth.RequireDashboardAccess.
type DashboardHandler struct {
	pages  *Pages
	stores *service.StoreService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(pages *Pages, stores *service.StoreService) *DashboardHandler {
	return &DashboardHandler{pages: pages, stores: stores}
}

func dashboardPath(storeID int64, section string) string {
	if section == "" {
		return fmt.Sprintf("/dashboard/%d", storeID)
	}
	return fmt.Sprintf("/dashboard/%d/%s", storeID, section)
}

// renderInvalid re-renders a dashboard page with field errors.
func (h *DashboardHandler) renderInvalid(c *fiber.Ctx, view string, page auth.Page, err error, status int) error {
	if err != nil {
		return err
	}
	return h.pages.Render(c.Status(status), view, page.Props)
}

// Settings handles GET /dashboard/:id.
func (h *DashboardHandler) Settings() fiber.Handler {
	return h.pages.Guarded("dashboard/settings", func(c *fiber.Ctx) (auth.Page, error) {
		return h.settingsPage(c, nil, nil)
	})
}

func (h *DashboardHandler) settingsPage(c *fiber.Ctx, form *dto.StoreForm, errs map[string]string) (auth.Page, error) {
	rs, err := requestSession(c)
	if err != nil {
		return auth.Page{}, err
	}
	storeID, err := paramID(c, "id", "store")
	if err != nil {
		return auth.Page{}, err
	}
	overview, err := h.stores.Overview(c.UserContext(), rs.API, storeID)
	if err != nil {
		return auth.Page{}, err
	}
	if form == nil {
		form = &dto.StoreForm{
			Name:        overview.Store.Name,
			Address:     overview.Store.Address,
			Description: overview.Store.Description,
		}
	}
	return auth.Page{Props: fiber.Map{
		"title":    overview.Store.Name,
		"storeID":  storeID,
		"store":    overview.Store,
		"products": overview.Products,
		"sellers":  overview.Sellers,
		"revenue":  overview.Revenue(),
		"form":     form,
		"errors":   errs,
	}}, nil
}

// UpdateSettings handles POST /dashboard/:id.
func (h *DashboardHandler) UpdateSettings(c *fiber.Ctx) error {
	rs, err := requestSession(c)
	if err != nil {
		return err
	}
	storeID, err := paramID(c, "id", "store")
	if err != nil {
		return err
	}

	var form dto.StoreForm
	if err := c.BodyParser(&form); err != nil {
		page, lerr := h.settingsPage(c, &form, invalidForm())
		return h.renderInvalid(c, "dashboard/settings", page, lerr, http.StatusBadRequest)
	}
	if err := form.Validate(); err != nil {
		page, lerr := h.settingsPage(c, &form, dto.FieldErrors(err))
		return h.renderInvalid(c, "dashboard/settings", page, lerr, http.StatusUnprocessableEntity)
	}

	back := dashboardPath(storeID, "")
	if err := rs.API.UpdateStore(c.UserContext(), storeID, form.Input(0)); err != nil {
		return h.pages.Failed(c, err, back)
	}
	h.pages.Notify(c).Success(msgStoreUpdated)
	return c.Redirect(back, http.StatusFound)
}

// Products handles GET /dashboard/:id/products.
func (h *DashboardHandler) Products() fiber.Handler {
	return h.pages.Guarded("dashboard/products", func(c *fiber.Ctx) (auth.Page, error) {
		return h.productsPage(c, dto.ProductForm{}, nil)
	})
}

func (h *DashboardHandler) productsPage(c *fiber.Ctx, form dto.ProductForm, errs map[string]string) (auth.Page, error) {
	rs, err := requestSession(c)
	if err != nil {
		return auth.Page{}, err
	}
	storeID, err := paramID(c, "id", "store")
	if err != nil {
		return auth.Page{}, err
	}
	products, err := rs.API.StoreProducts(c.UserContext(), storeID)
	if err != nil {
		return auth.Page{}, err
	}
	return auth.Page{Props: fiber.Map{
		"title":    "Products",
		"storeID":  storeID,
		"products": products,
		"form":     form,
		"errors":   errs,
	}}, nil
}

// CreateProduct handles POST /dashboard/:id/products.
func (h *DashboardHandler) CreateProduct(c *fiber.Ctx) error {
	return h.saveProduct(c, 0)
}

// UpdateProduct handles POST /dashboard/:id/products/:productId.
func (h *DashboardHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId", "product")
	if err != nil {
		return err
	}
	return h.saveProduct(c, productID)
}

func (h *DashboardHandler) saveProduct(c *fiber.Ctx, productID int64) error {
	rs, err := requestSession(c)
	if err != nil {
		return err
	}
	storeID, err := paramID(c, "id", "store")
	if err != nil {
		return err
	}

	var form dto.ProductForm
	if err := c.BodyParser(&form); err != nil {
		page, lerr := h.productsPage(c, form, invalidForm())
		return h.renderInvalid(c, "dashboard/products", page, lerr, http.StatusBadRequest)
	}
	if err := form.Validate(); err != nil {
		page, lerr := h.productsPage(c, form, dto.FieldErrors(err))
		return h.renderInvalid(c, "dashboard/products", page, lerr, http.StatusUnprocessableEntity)
	}

	back := dashboardPath(storeID, "products")
	msg := msgProductCreated
	if productID == 0 {
		err = rs.API.CreateProduct(c.UserContext(), form.Input(storeID))
	} else {
		err = rs.API.UpdateProduct(c.UserContext(), productID, form.Input(storeID))
		msg = msgProductUpdated
	}
	if err != nil {
		return h.pages.Failed(c, err, back)
	}
	h.pages.Notify(c).Success(msg)
	return c.Redirect(back, http.StatusFound)
}

// DeleteProduct handles POST /dashboard/:id/products/:productId/delete.
func (h *DashboardHandler) DeleteProduct(c *fiber.Ctx) error {
	rs, err := requestSession(c)
	if err != nil {
		return err
	}
	storeID, err := paramID(c, "id", "store")
	if err != nil {
		return err
	}
	productID, err := paramID(c, "productId", "product")
	if err != nil {
		return err
	}

	back := dashboardPath(storeID, "products")
	if err := rs.API.DeleteProduct(c.UserContext(), productID); err != nil {
		return h.pages.Failed(c, err, back)
	}
	h.pages.Notify(c).Success(msgProductDeleted)
	return c.Redirect(back, http.StatusFound)
}

// Sellers handles GET /dashboard/:id/sellers.
func (h *DashboardHandler) Sellers() fiber.Handler {
	return h.pages.Guarded("dashboard/sellers", func(c *fiber.Ctx) (auth.Page, error) {
		return h.sellersPage(c, dto.SellerForm{}, nil)
	})
}

func (h *DashboardHandler) sellersPage(c *fiber.Ctx, form dto.SellerForm, errs map[string]string) (auth.Page, error) {
	rs, err := requestSession(c)
	if err != nil {
		return auth.Page{}, err
	}
	storeID, err := paramID(c, "id", "store")
	if err != nil {
		return auth.Page{}, err
	}
	sellers, err := rs.API.StoreSellers(c.UserContext(), storeID)
	if err != nil {
		return auth.Page{}, err
	}
	return auth.Page{Props: fiber.Map{
		"title":   "Sellers",
		"storeID": storeID,
		"sellers": sellers,
		"form":    form,
		"errors":  errs,
	}}, nil
}

// AddSeller handles POST /dashboard/:id/sellers.
func (h *DashboardHandler) AddSeller(c *fiber.Ctx) error {
	rs, err := requestSession(c)
	if err != nil {
		return err
	}
	storeID, err := paramID(c, "id", "store")
	if err != nil {
		return err
	}

	var form dto.SellerForm
	if err := c.BodyParser(&form); err != nil {
		page, lerr := h.sellersPage(c, form, invalidForm())
		return h.renderInvalid(c, "dashboard/sellers", page, lerr, http.StatusBadRequest)
	}
	if err := form.Validate(); err != nil {
		page, lerr := h.sellersPage(c, form, dto.FieldErrors(err))
		return h.renderInvalid(c, "dashboard/sellers", page, lerr, http.StatusUnprocessableEntity)
	}

	back := dashboardPath(storeID, "sellers")
	if err := rs.API.AddSeller(c.UserContext(), storeID, form.Email); err != nil {
		return h.pages.Failed(c, err, back)
	}
	h.pages.Notify(c).Success(msgSellerAdded)
	return c.Redirect(back, http.StatusFound)
}

// RemoveSeller handles POST /dashboard/:id/sellers/:sellerId/delete.
func (h *DashboardHandler) RemoveSeller(c *fiber.Ctx) error {
	rs, err := requestSession(c)
	if err != nil {
		return err
	}
	storeID, err := paramID(c, "id", "store")
	if err != nil {
		return err
	}
	sellerID, err := paramID(c, "sellerId", "seller")
	if err != nil {
		return err
	}

	back := dashboardPath(storeID, "sellers")
	if err := rs.API.RemoveSeller(c.UserContext(), storeID, sellerID); err != nil {
		return h.pages.Failed(c, err, back)
	}
	h.pages.Notify(c).Success(msgSellerRemoved)
	return c.Redirect(back, http.StatusFound)
}

// Sales handles GET /dashboard/:id/sales.
func (h *DashboardHandler) Sales() fiber.Handler {
	return h.pages.Guarded("dashboard/sales", func(c *fiber.Ctx) (auth.Page, error) {
		return h.salesPage(c, dto.SaleForm{Quantity: 1}, nil)
	})
}

func (h *DashboardHandler) salesPage(c *fiber.Ctx, form dto.SaleForm, errs map[string]string) (auth.Page, error) {
	rs, err := requestSession(c)
	if err != nil {
		return auth.Page{}, err
	}
	storeID, err := paramID(c, "id", "store")
	if err != nil {
		return auth.Page{}, err
	}
	overview, err := h.stores.Overview(c.UserContext(), rs.API, storeID)
	if err != nil {
		return auth.Page{}, err
	}
	return auth.Page{Props: fiber.Map{
		"title":    "Sales",
		"storeID":  storeID,
		"sales":    overview.Sales,
		"products": overview.Products,
		"sellers":  overview.Sellers,
		"form":     form,
		"errors":   errs,
	}}, nil
}

// CreateSale handles POST /dashboard/:id/sales.
func (h *DashboardHandler) CreateSale(c *fiber.Ctx) error {
	rs, err := requestSession(c)
	if err != nil {
		return err
	}
	storeID, err := paramID(c, "id", "store")
	if err != nil {
		return err
	}

	var form dto.SaleForm
	if err := c.BodyParser(&form); err != nil {
		page, lerr := h.salesPage(c, form, invalidForm())
		return h.renderInvalid(c, "dashboard/sales", page, lerr, http.StatusBadRequest)
	}
	if err := form.Validate(); err != nil {
		page, lerr := h.salesPage(c, form, dto.FieldErrors(err))
		return h.renderInvalid(c, "dashboard/sales", page, lerr, http.StatusUnprocessableEntity)
	}

	back := dashboardPath(storeID, "sales")
	if err := rs.API.CreateSale(c.UserContext(), storeID, form.Input()); err != nil {
		return h.pages.Failed(c, err, back)
	}
	h.pages.Notify(c).Success(msgSaleAdded)
	return c.Redirect(back, http.StatusFound)
}
