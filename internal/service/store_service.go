package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/store-dashboard/internal/domain"
)

// StoreAPI is the part of the store API page loaders read from.
type StoreAPI interface {
	MyStores(ctx context.Context, userID int64) ([]domain.Store, error)
	MySellerStores(ctx context.Context, userID int64) ([]domain.Store, error)
	GetStore(ctx context.Context, id int64) (*domain.Store, error)
	StoreProducts(ctx context.Context, storeID int64) ([]domain.Product, error)
	StoreSellers(ctx context.Context, storeID int64) ([]domain.Seller, error)
	StoreSales(ctx context.Context, storeID int64) ([]domain.Sale, error)
}

// StoreListing is what the my-stores page shows.
type StoreListing struct {
	Owned   []domain.Store
	Selling []domain.Store
}

// Overview is everything a store dashboard shows.
type Overview struct {
	Store    *domain.Store
	Products []domain.Product
	Sellers  []domain.Seller
	Sales    []domain.Sale
}

// Revenue sums the recorded sales. Each sale already carries its line total.
func (o Overview) Revenue() float64 {
	var total float64
	for _, s := range o.Sales {
		total += s.Total
	}
	return total
}

// StoreService loads page data. The API is passed per call because each
// request carries its own credential.
type StoreService struct {
	logger *zap.Logger
}

// NewStoreService constructs the service.
func NewStoreService(logger *zap.Logger) *StoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreService{logger: logger}
}

// MyStores loads the stores the user owns and the ones they sell for.
func (s *StoreService) MyStores(ctx context.Context, api StoreAPI, userID int64) (StoreListing, error) {
	var listing StoreListing
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stores, err := api.MyStores(ctx, userID)
		listing.Owned = stores
		return err
	})
	g.Go(func() error {
		stores, err := api.MySellerStores(ctx, userID)
		listing.Selling = stores
		return err
	})
	if err := g.Wait(); err != nil {
		return StoreListing{}, err
	}
	return listing, nil
}

// Overview loads a store and its catalog, sellers and sales concurrently. The
// first failure cancels the other calls.
func (s *StoreService) Overview(ctx context.Context, api StoreAPI, storeID int64) (Overview, error) {
	var out Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store, err := api.GetStore(ctx, storeID)
		out.Store = store
		return err
	})
	g.Go(func() error {
		products, err := api.StoreProducts(ctx, storeID)
		out.Products = products
		return err
	})
	g.Go(func() error {
		sellers, err := api.StoreSellers(ctx, storeID)
		out.Sellers = sellers
		return err
	})
	g.Go(func() error {
		sales, err := api.StoreSales(ctx, storeID)
		out.Sales = sales
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Debug("store overview failed", zap.Int64("store_id", storeID), zap.Error(err))
		return Overview{}, err
	}
	return out, nil
}
