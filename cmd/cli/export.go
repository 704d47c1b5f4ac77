package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stylefeed/catalog-service/internal/export"
)

var (
	exportBrand string
	exportOut   string
)

// exportCmd groups data export subcommands
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export catalog data",
}

// exportHistoryCmd writes price history to an xlsx workbook
var exportHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Export product price history as an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		var brandID int64
		if exportBrand != "" {
			brand, err := st.GetBrandByName(ctx, exportBrand)
			if err != nil {
				return err
			}
			brandID = brand.ID
		}

		workbook, err := export.PriceHistoryWorkbook(ctx, st, brandID)
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = export.ExportFileName(exportBrand)
		}
		if err := workbook.SaveAs(out); err != nil {
			return fmt.Errorf("saving workbook: %w", err)
		}

		logger.Info().Str("file", out).Msg("Price history exported")
		return nil
	},
}

func init() {
	exportHistoryCmd.Flags().StringVar(&exportBrand, "brand", "", "limit the export to one brand by name")
	exportHistoryCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default is a generated name)")
	exportCmd.AddCommand(exportHistoryCmd)
	rootCmd.AddCommand(exportCmd)
}
