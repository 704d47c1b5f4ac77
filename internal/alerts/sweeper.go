package alerts

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically runs the price alert evaluator
type Sweeper struct {
	evaluator *Evaluator
	logger    *zerolog.Logger
	interval  time.Duration
	stopChan  chan struct{}
}

// NewSweeper creates a sweeper that checks alerts on the given interval
func NewSweeper(evaluator *Evaluator, logger *zerolog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		evaluator: evaluator,
		logger:    logger,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the periodic alert sweep. Blocks until the context is
// cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Msg("Starting price alert sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Price alert sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Price alert sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			if _, err := s.evaluator.CheckPriceAlerts(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Price alert check failed")
			}
		}
	}
}

// Stop signals the sweeper to stop
func (s *Sweeper) Stop() {
	close(s.stopChan)
}
