package export

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/catalog-service/internal/store"
	"github.com/stylefeed/catalog-service/internal/types"
)

func TestPriceHistoryWorkbook(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	brand, err := st.CreateBrand(ctx, types.Brand{Name: "Acme", Website: "https://acme.example"})
	require.NoError(t, err)

	_, err = st.CreateProduct(ctx, types.ProductDraft{
		ExternalID: "shopify-1", Name: "Shirt", Price: 60,
		DiscountedPrice: types.Float64Ptr(45),
		BrandID:         brand.ID, CategoryID: 1,
		Images: []string{}, Sizes: []string{}, Colors: []string{},
	}, []types.PricePoint{
		{Date: "2026-08-30", Price: 60},
		{Date: "2026-08-31", Price: 45},
	})
	require.NoError(t, err)

	f, err := PriceHistoryWorkbook(ctx, st, brand.ID)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per history point")

	assert.Equal(t, "Brand", rows[0][0])
	assert.Equal(t, "Acme", rows[1][0])
	assert.Equal(t, "Shirt", rows[1][1])
	assert.Equal(t, "2026-08-30", rows[1][5])
	assert.Equal(t, "2026-08-31", rows[2][5])
}

func TestPriceHistoryWorkbookNoHistory(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	brand, err := st.CreateBrand(ctx, types.Brand{Name: "Acme", Website: "https://acme.example"})
	require.NoError(t, err)
	_, err = st.CreateProduct(ctx, types.ProductDraft{
		ExternalID: "generic-1", Name: "Bag", Price: 30,
		BrandID: brand.ID, CategoryID: 1,
		Images: []string{}, Sizes: []string{}, Colors: []string{},
	}, nil)
	require.NoError(t, err)

	f, err := PriceHistoryWorkbook(ctx, st, 0)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bag", rows[1][1])
}

func TestExportFileName(t *testing.T) {
	name := ExportFileName("Acme")
	assert.True(t, strings.HasPrefix(name, "price-history-Acme-"))
	assert.True(t, strings.HasSuffix(name, ".xlsx"))
	assert.NotEqual(t, name, ExportFileName("Acme"))
}
