package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/stylefeed/catalog-service/internal/migration"
	"github.com/stylefeed/catalog-service/internal/types"
)

// setupTestDB starts a throwaway postgres container and applies the
// repository migrations. Skipped in short mode (no Docker in CI sandboxes).
func setupTestDB(t *testing.T) *PostgresStore {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "catalog",
				"POSTGRES_PASSWORD": "catalog",
				"POSTGRES_DB":       "catalog",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	databaseURL := fmt.Sprintf("postgres://catalog:catalog@%s:%s/catalog?sslmode=disable", host, port.Port())

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migration.Up(migrationsPath, databaseURL))

	pool, err := pgxpool.New(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewPostgresStore(pool)
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	brand, err := s.CreateBrand(ctx, types.Brand{
		Name:        "Acme",
		Website:     "https://acme.example",
		APIKey:      types.StringPtr("key"),
		APIEndpoint: types.StringPtr("https://api.acme.example"),
		APIType:     types.StringPtr("shopify"),
	})
	require.NoError(t, err)
	require.NotZero(t, brand.ID)

	byName, err := s.GetBrandByName(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, brand.ID, byName.ID)

	d := types.ProductDraft{
		ExternalID:      "shopify-1",
		Name:            "Linen Shirt",
		Description:     types.StringPtr("Soft linen"),
		Price:           59.99,
		DiscountedPrice: types.Float64Ptr(39.99),
		BrandID:         brand.ID,
		CategoryID:      1,
		Images:          []string{"https://cdn.example/a.jpg"},
		Sizes:           []string{"S", "M"},
		Colors:          []string{},
		InStock:         true,
		URL:             "https://acme.example/products/linen-shirt",
	}
	history := []types.PricePoint{{Date: "2026-08-30", Price: 39.99}}

	created, err := s.CreateProduct(ctx, d, history)
	require.NoError(t, err)
	assert.Equal(t, history, created.PriceHistory)
	assert.Equal(t, []string{"S", "M"}, created.Sizes)

	found, err := s.FindProductByExternalID(ctx, brand.ID, "shopify-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	require.NotNil(t, found.DiscountedPrice)
	assert.Equal(t, 39.99, *found.DiscountedPrice)

	miss, err := s.FindProductByExternalID(ctx, brand.ID, "shopify-2")
	require.NoError(t, err)
	assert.Nil(t, miss)

	d.Price = 49.99
	d.DiscountedPrice = nil
	newHistory := append(history, types.PricePoint{Date: "2026-08-31", Price: 49.99})
	updated, err := s.UpdateProduct(ctx, created.ID, d, newHistory)
	require.NoError(t, err)
	assert.Len(t, updated.PriceHistory, 2)
	assert.Nil(t, updated.DiscountedPrice)

	listed, total, err := s.ListProducts(ctx, types.ProductFilters{
		BrandIDs: []int64{brand.ID},
		Search:   "linen",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, listed, 1)
}

func TestPostgresStoreSyncLogLifecycle(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	brand, err := s.CreateBrand(ctx, types.Brand{Name: "LogBrand", Website: "https://x"})
	require.NoError(t, err)

	opened, err := s.OpenSyncLog(ctx, brand.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SyncStatusRunning, opened.Status)

	closed, err := s.CloseSyncLog(ctx, opened.ID, types.SyncLogClose{
		CompletedAt:   time.Now().UTC(),
		Status:        types.SyncStatusSuccess,
		ProductsAdded: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, types.SyncStatusSuccess, closed.Status)
	assert.Equal(t, 4, closed.ProductsAdded)

	orphan, err := s.OpenSyncLog(ctx, brand.ID)
	require.NoError(t, err)

	marked, err := s.MarkOrphanedSyncLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	logs, err := s.ListSyncLogs(ctx, brand.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		if l.ID == orphan.ID {
			assert.Equal(t, types.SyncStatusFailed, l.Status)
			require.NotNil(t, l.Error)
		}
	}
}

func TestPostgresStoreAlerts(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	brand, err := s.CreateBrand(ctx, types.Brand{Name: "AlertBrand", Website: "https://x"})
	require.NoError(t, err)
	product, err := s.CreateProduct(ctx, types.ProductDraft{
		ExternalID: "generic-1", Name: "Bag", Price: 30, BrandID: brand.ID, CategoryID: 1,
		Images: []string{}, Sizes: []string{}, Colors: []string{},
	}, nil)
	require.NoError(t, err)

	alert, err := s.CreateAlert(ctx, types.PriceAlert{
		UserID:           "user-1",
		ProductID:        product.ID,
		TargetPrice:      25,
		NotificationType: types.ChannelEmail,
	})
	require.NoError(t, err)
	assert.True(t, alert.IsActive)

	require.NoError(t, s.TouchAlertNotified(ctx, alert.ID))
	touched, err := s.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.NotNil(t, touched.LastNotifiedAt)

	deactivated, err := s.UpdateAlert(ctx, alert.ID, nil, types.BoolPtr(false))
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)
	assert.Equal(t, 25.0, deactivated.TargetPrice)

	active, err := s.ListActiveAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}
