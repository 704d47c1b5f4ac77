package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stylefeed/catalog-service/internal/adapters"
	"github.com/stylefeed/catalog-service/internal/http/ratelimit"
	"github.com/stylefeed/catalog-service/internal/sync"
)

var syncAll bool

// syncCmd runs a catalog sync for one brand or all configured brands
var syncCmd = &cobra.Command{
	Use:   "sync [brand name]",
	Short: "Sync products from a brand's API into the catalog",
	Long: `Fetches the product feed for a brand, normalizes it, and reconciles
it against the stored catalog. Pass a brand name, or --all to sync every
brand that has API credentials configured.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "sync every brand with API credentials")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if !syncAll && len(args) == 0 {
		return fmt.Errorf("provide a brand name or --all")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := sync.NewService(st, cfg.Sync.MaxConcurrent).
		WithSelector(adapters.NewSelector(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			MaxRetries:        cfg.RateLimit.MaxRetries,
			InitialBackoff:    time.Duration(cfg.RateLimit.InitialBackoffMs) * time.Millisecond,
			MaxBackoff:        time.Duration(cfg.RateLimit.MaxBackoffMs) * time.Millisecond,
		}))

	if syncAll {
		summaries, err := svc.SyncAllBrands(ctx)
		for _, s := range summaries {
			printSummary(s)
		}
		return err
	}

	brand, err := st.GetBrandByName(ctx, args[0])
	if err != nil {
		return err
	}

	summary, err := svc.SyncBrandProducts(ctx, brand.ID)
	if err != nil {
		return err
	}
	printSummary(*summary)
	return nil
}

func printSummary(s sync.Summary) {
	event := logger.Info()
	if len(s.Errors) > 0 {
		event = logger.Warn().Strs("errors", s.Errors)
	}
	event.
		Str("brand", s.BrandName).
		Int("added", s.Added).
		Int("updated", s.Updated).
		Msg("Sync finished")
}
