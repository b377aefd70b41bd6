package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spec-kit/store-dashboard/internal/domain"
)

// StoreInput is the body for creating or updating a store.
type StoreInput struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
	OwnerID     int64  `json:"ownerId,omitempty"`
}

// ProductInput is the body for creating or updating a product.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
	StoreID     int64   `json:"storeId"`
}

// SaleInput is the body for recording a sale.
type SaleInput struct {
	ProductID int64 `json:"productId"`
	SellerID  int64 `json:"sellerId"`
	Quantity  int   `json:"quantity"`
}

type storeEnvelope struct {
	Store domain.Store `json:"store"`
}

type storesEnvelope struct {
	Stores []domain.Store `json:"stores"`
}

type productsEnvelope struct {
	Products []domain.Product `json:"products"`
}

type sellersEnvelope struct {
	Sellers []domain.Seller `json:"sellers"`
}

type salesEnvelope struct {
	Sales []domain.Sale `json:"sales"`
}

// CreateStore creates a store owned by in.OwnerID.
func (c *Client) CreateStore(ctx context.Context, in StoreInput) (*domain.Store, error) {
	var out storeEnvelope
	if err := c.Do(ctx, http.MethodPost, "/stores", in, &out); err != nil {
		return nil, err
	}
	return &out.Store, nil
}

// MyStores lists stores owned by userID.
func (c *Client) MyStores(ctx context.Context, userID int64) ([]domain.Store, error) {
	var out storesEnvelope
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/stores/my-stores/%d", userID), nil, &out); err != nil {
		return nil, err
	}
	return out.Stores, nil
}

// MySellerStores lists stores where userID is a seller.
func (c *Client) MySellerStores(ctx context.Context, userID int64) ([]domain.Store, error) {
	var out storesEnvelope
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/my-stores-sellers", userID), nil, &out); err != nil {
		return nil, err
	}
	return out.Stores, nil
}

// GetStore fetches one store.
func (c *Client) GetStore(ctx context.Context, id int64) (*domain.Store, error) {
	var out storeEnvelope
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/stores/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Store, nil
}

// UpdateStore replaces a store's editable fields.
func (c *Client) UpdateStore(ctx context.Context, id int64, in StoreInput) error {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("/stores/%d", id), in, nil)
}

// DeleteStore removes a store.
func (c *Client) DeleteStore(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/stores/%d", id), nil, nil)
}

// StoreProducts lists a store's catalog.
func (c *Client) StoreProducts(ctx context.Context, storeID int64) ([]domain.Product, error) {
	var out productsEnvelope
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/stores/%d/products", storeID), nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// CreateProduct adds a product to in.StoreID.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) error {
	return c.Do(ctx, http.MethodPost, "/products", in, nil)
}

// UpdateProduct edits a product.
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) error {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), in, nil)
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}

// StoreSellers lists sellers attached to a store.
func (c *Client) StoreSellers(ctx context.Context, storeID int64) ([]domain.Seller, error) {
	var out sellersEnvelope
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/stores/%d/sellers", storeID), nil, &out); err != nil {
		return nil, err
	}
	return out.Sellers, nil
}

// AddSeller attaches the user registered under email to a store.
func (c *Client) AddSeller(ctx context.Context, storeID int64, email string) error {
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	return c.Do(ctx, http.MethodPost, fmt.Sprintf("/stores/%d/add-seller", storeID), body, nil)
}

// RemoveSeller detaches a seller from a store.
func (c *Client) RemoveSeller(ctx context.Context, storeID, sellerID int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/stores/%d/remove-seller/%d", storeID, sellerID), nil, nil)
}

// StoreSales lists a store's sales.
func (c *Client) StoreSales(ctx context.Context, storeID int64) ([]domain.Sale, error) {
	var out salesEnvelope
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/stores/%d/sales", storeID), nil, &out); err != nil {
		return nil, err
	}
	return out.Sales, nil
}

// CreateSale records a sale in a store.
func (c *Client) CreateSale(ctx context.Context, storeID int64, in SaleInput) error {
	return c.Do(ctx, http.MethodPost, fmt.Sprintf("/stores/%d/add-sale", storeID), in, nil)
}
