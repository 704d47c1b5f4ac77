// Package export renders catalog data into spreadsheet workbooks.
package export

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/stylefeed/catalog-service/internal/store"
	"github.com/stylefeed/catalog-service/internal/types"
)

const historySheet = "Price History"

// PriceHistoryWorkbook renders every product of a brand with its full
// price history as an xlsx workbook. brandID 0 exports all brands.
func PriceHistoryWorkbook(ctx context.Context, st store.CatalogStore, brandID int64) (*excelize.File, error) {
	filters := types.ProductFilters{Limit: 10000}
	if brandID != 0 {
		filters.BrandIDs = []int64{brandID}
	}

	products, _, err := st.ListProducts(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("listing products for export: %w", err)
	}

	brandNames := make(map[int64]string)
	brands, err := st.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing brands for export: %w", err)
	}
	for _, b := range brands {
		brandNames[b.ID] = b.Name
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", historySheet)

	headers := []string{"Brand", "Product", "External ID", "Current Price", "Discounted Price", "Date", "Price"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(historySheet, cell, h)
	}

	row := 2
	for _, p := range products {
		if len(p.PriceHistory) == 0 {
			row = writeHistoryRow(f, row, brandNames[p.BrandID], p, nil)
			continue
		}
		for i := range p.PriceHistory {
			row = writeHistoryRow(f, row, brandNames[p.BrandID], p, &p.PriceHistory[i])
		}
	}

	log.Info().
		Int("products", len(products)).
		Int("rows", row-2).
		Msg("Rendered price history workbook")

	return f, nil
}

func writeHistoryRow(f *excelize.File, row int, brandName string, p types.Product, point *types.PricePoint) int {
	set := func(col int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		f.SetCellValue(historySheet, cell, value)
	}

	set(1, brandName)
	set(2, p.Name)
	set(3, p.ExternalID)
	set(4, p.Price)
	if p.DiscountedPrice != nil {
		set(5, *p.DiscountedPrice)
	}
	if point != nil {
		set(6, point.Date)
		set(7, point.Price)
	}
	return row + 1
}

// ExportFileName returns a unique name for a saved workbook
func ExportFileName(brandName string) string {
	if brandName == "" {
		brandName = "all-brands"
	}
	return fmt.Sprintf("price-history-%s-%s.xlsx", brandName, uuid.NewString()[:8])
}
