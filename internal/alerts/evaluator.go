// Package alerts evaluates price alerts against the current catalog and
// dispatches notifications when a target price is reached.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stylefeed/catalog-service/internal/metrics"
	"github.com/stylefeed/catalog-service/internal/store"
	"github.com/stylefeed/catalog-service/internal/types"
)

// Notifier delivers one triggered alert to a user
type Notifier interface {
	Notify(ctx context.Context, alert types.PriceAlert, product types.Product) error
}

// Summary is the outcome of one evaluation pass
type Summary struct {
	Evaluated int      `json:"evaluated"`
	Triggered int      `json:"triggered"`
	Errors    []string `json:"errors,omitempty"`
}

// Evaluator checks active alerts against effective prices
type Evaluator struct {
	store     store.Store
	notifiers map[types.NotificationChannel]Notifier
	now       func() time.Time
}

// NewEvaluator creates an evaluator with the default log-backed notifiers
func NewEvaluator(st store.Store) *Evaluator {
	return &Evaluator{
		store: st,
		notifiers: map[types.NotificationChannel]Notifier{
			types.ChannelEmail: &EmailNotifier{},
			types.ChannelSMS:   &SMSNotifier{},
		},
		now: time.Now,
	}
}

// WithNotifier replaces the notifier for a channel
func (e *Evaluator) WithNotifier(channel types.NotificationChannel, n Notifier) *Evaluator {
	e.notifiers[channel] = n
	return e
}

// CheckPriceAlerts evaluates every active alert. An alert triggers when the
// product's effective price is at or below the target; the alert's
// last-notified timestamp is stamped before dispatch, and dispatch failures
// are logged but never propagated. Alerts are never deactivated here.
func (e *Evaluator) CheckPriceAlerts(ctx context.Context) (*Summary, error) {
	started := e.now()
	defer func() { metrics.RecordAlertSweep(e.now().Sub(started)) }()

	alerts, err := e.store.ListActiveAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active alerts: %w", err)
	}

	summary := &Summary{}
	for _, alert := range alerts {
		summary.Evaluated++

		product, err := e.store.GetProduct(ctx, alert.ProductID)
		if err != nil {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("alert %d: %v", alert.ID, err))
			metrics.RecordAlertOutcome("error")
			continue
		}

		effective := product.EffectivePrice()
		if effective > alert.TargetPrice {
			metrics.RecordAlertOutcome("skipped")
			continue
		}

		if err := e.trigger(ctx, alert, *product, effective); err != nil {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("alert %d: %v", alert.ID, err))
			metrics.RecordAlertOutcome("error")
			continue
		}
		summary.Triggered++
		metrics.RecordAlertOutcome("triggered")
	}

	log.Info().
		Int("evaluated", summary.Evaluated).
		Int("triggered", summary.Triggered).
		Int("errors", len(summary.Errors)).
		Msg("Price alert check complete")

	return summary, nil
}

func (e *Evaluator) trigger(ctx context.Context, alert types.PriceAlert, product types.Product, effective float64) error {
	// Stamp first so a crash mid-dispatch never re-notifies on replay.
	if err := e.store.TouchAlertNotified(ctx, alert.ID); err != nil {
		return fmt.Errorf("touching alert: %w", err)
	}

	notifier, ok := e.notifiers[alert.NotificationType]
	if !ok {
		return fmt.Errorf("no notifier for channel %q", alert.NotificationType)
	}

	if err := notifier.Notify(ctx, alert, product); err != nil {
		log.Error().Err(err).
			Int64("alert_id", alert.ID).
			Str("channel", string(alert.NotificationType)).
			Msg("Alert notification dispatch failed")
	}

	log.Info().
		Int64("alert_id", alert.ID).
		Int64("product_id", product.ID).
		Float64("target", alert.TargetPrice).
		Float64("effective", effective).
		Msg("Price alert triggered")

	return nil
}

// EmailNotifier logs the notification an email provider would send.
// TODO: wire to the transactional email provider once credentials exist.
type EmailNotifier struct{}

func (n *EmailNotifier) Notify(ctx context.Context, alert types.PriceAlert, product types.Product) error {
	log.Info().
		Str("user_id", alert.UserID).
		Str("product", product.Name).
		Float64("price", product.EffectivePrice()).
		Msg("Sending price alert email")
	return nil
}

// SMSNotifier logs the notification an SMS provider would send
type SMSNotifier struct{}

func (n *SMSNotifier) Notify(ctx context.Context, alert types.PriceAlert, product types.Product) error {
	log.Info().
		Str("user_id", alert.UserID).
		Str("product", product.Name).
		Float64("price", product.EffectivePrice()).
		Msg("Sending price alert SMS")
	return nil
}
