// Package store defines the persistence contract for the catalog and its
// two backends: an in-memory store for development and tests, and a
// Postgres store for production. The backend is chosen at startup and
// injected; nothing in the service reaches for a package-level instance.
package store

import (
	"context"

	"github.com/stylefeed/catalog-service/internal/types"
)

// Driver names a storage backend
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverPostgres Driver = "postgres"
)

// CatalogStore persists brands, categories, and products
type CatalogStore interface {
	ListBrands(ctx context.Context) ([]types.Brand, error)
	GetBrand(ctx context.Context, id int64) (*types.Brand, error)
	GetBrandByName(ctx context.Context, name string) (*types.Brand, error)
	CreateBrand(ctx context.Context, brand types.Brand) (*types.Brand, error)

	ListCategories(ctx context.Context) ([]types.Category, error)

	// FindProductByExternalID matches within a single brand's catalog.
	// A miss returns (nil, nil); errors are reserved for backend failures.
	FindProductByExternalID(ctx context.Context, brandID int64, externalID string) (*types.Product, error)
	GetProduct(ctx context.Context, id int64) (*types.Product, error)
	ListProducts(ctx context.Context, filters types.ProductFilters) ([]types.Product, int, error)
	CreateProduct(ctx context.Context, draft types.ProductDraft, history []types.PricePoint) (*types.Product, error)
	UpdateProduct(ctx context.Context, id int64, draft types.ProductDraft, history []types.PricePoint) (*types.Product, error)
}

// SyncLogStore persists the per-run sync audit trail
type SyncLogStore interface {
	// OpenSyncLog creates a log with status running and no completion time.
	OpenSyncLog(ctx context.Context, brandID int64) (*types.SyncLog, error)
	// CloseSyncLog finalizes a run exactly once.
	CloseSyncLog(ctx context.Context, id int64, close types.SyncLogClose) (*types.SyncLog, error)
	ListSyncLogs(ctx context.Context, brandID int64) ([]types.SyncLog, error)
	// MarkOrphanedSyncLogs flips any log still running to failed. Called at
	// startup so interrupted runs never stay running forever.
	MarkOrphanedSyncLogs(ctx context.Context) (int, error)
}

// AlertStore persists price alerts and wishlists
type AlertStore interface {
	ListActiveAlerts(ctx context.Context) ([]types.PriceAlert, error)
	ListAlertsByUser(ctx context.Context, userID string) ([]types.PriceAlert, error)
	GetAlert(ctx context.Context, id int64) (*types.PriceAlert, error)
	CreateAlert(ctx context.Context, alert types.PriceAlert) (*types.PriceAlert, error)
	UpdateAlert(ctx context.Context, id int64, targetPrice *float64, isActive *bool) (*types.PriceAlert, error)
	DeleteAlert(ctx context.Context, id int64) error
	TouchAlertNotified(ctx context.Context, id int64) error

	CreateWishlist(ctx context.Context, wishlist types.Wishlist) (*types.Wishlist, error)
	ListWishlists(ctx context.Context, userID string) ([]types.Wishlist, error)
	AddWishlistItem(ctx context.Context, item types.WishlistItem) (*types.WishlistItem, error)
	ListWishlistItems(ctx context.Context, wishlistID int64) ([]types.WishlistItem, error)
}

// Store is the full persistence contract
type Store interface {
	CatalogStore
	SyncLogStore
	AlertStore

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	Close()
}
