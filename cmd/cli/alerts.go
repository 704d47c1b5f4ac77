package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/stylefeed/catalog-service/internal/alerts"
)

// alertsCmd groups alert maintenance subcommands
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Price alert maintenance",
}

// alertsCheckCmd evaluates every active alert once
var alertsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate active price alerts and dispatch notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := alerts.NewEvaluator(st).CheckPriceAlerts(ctx)
		if err != nil {
			return err
		}

		event := logger.Info()
		if len(summary.Errors) > 0 {
			event = logger.Warn().Strs("errors", summary.Errors)
		}
		event.
			Int("evaluated", summary.Evaluated).
			Int("triggered", summary.Triggered).
			Msg("Alert check finished")
		return nil
	},
}

func init() {
	alertsCmd.AddCommand(alertsCheckCmd)
	rootCmd.AddCommand(alertsCmd)
}
