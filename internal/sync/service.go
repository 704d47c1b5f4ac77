// Package sync orchestrates brand catalog synchronization: fetch the
// upstream catalog through the brand's adapter, reconcile every product
// into the store, and record exactly one terminal sync log per run.
package sync

import (
	"context"
	"fmt"
	"strings"
	stdsync "sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/stylefeed/catalog-service/internal/adapters"
	"github.com/stylefeed/catalog-service/internal/metrics"
	"github.com/stylefeed/catalog-service/internal/pricehistory"
	"github.com/stylefeed/catalog-service/internal/store"
	"github.com/stylefeed/catalog-service/internal/types"
)

const defaultMaxConcurrentSyncs = 3

// Summary is the outcome of one brand sync run
type Summary struct {
	BrandID   int64    `json:"brandId"`
	BrandName string   `json:"brandName"`
	SyncLogID int64    `json:"syncLogId"`
	Added     int      `json:"added"`
	Updated   int      `json:"updated"`
	Errors    []string `json:"errors,omitempty"`
}

// Service runs catalog syncs. Syncs for the same brand are serialized by
// a per-brand mutex; a semaphore bounds concurrency across brands.
type Service struct {
	store store.Store
	sem   *semaphore.Weighted

	locksMu    stdsync.Mutex
	brandLocks map[int64]*stdsync.Mutex

	// selectAdapter is swappable in tests.
	selectAdapter func(types.Brand) (adapters.Adapter, error)
	now           func() time.Time
}

// NewService creates a sync service. maxConcurrent <= 0 uses the default.
func NewService(st store.Store, maxConcurrent int64) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentSyncs
	}
	return &Service{
		store:         st,
		sem:           semaphore.NewWeighted(maxConcurrent),
		brandLocks:    make(map[int64]*stdsync.Mutex),
		selectAdapter: adapters.ForBrand,
		now:           time.Now,
	}
}

// WithSelector overrides how adapters are chosen, letting callers tune
// outbound rate limiting. Returns the service for chaining.
func (s *Service) WithSelector(sel adapters.Selector) *Service {
	s.selectAdapter = sel
	return s
}

func (s *Service) brandLock(brandID int64) *stdsync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.brandLocks[brandID]
	if !ok {
		lock = &stdsync.Mutex{}
		s.brandLocks[brandID] = lock
	}
	return lock
}

// SyncBrandProducts synchronizes one brand's catalog. A missing brand is a
// *types.NotFoundError and leaves no sync log; every other path opens a
// running log and closes it exactly once, success or failed.
func (s *Service) SyncBrandProducts(ctx context.Context, brandID int64) (*Summary, error) {
	brand, err := s.store.GetBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquiring sync slot: %w", err)
	}
	defer s.sem.Release(1)

	lock := s.brandLock(brandID)
	lock.Lock()
	defer lock.Unlock()

	started := s.now()
	syncLog, err := s.store.OpenSyncLog(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("opening sync log for brand %s: %w", brand.Name, err)
	}

	log.Info().
		Str("brand", brand.Name).
		Int64("sync_log_id", syncLog.ID).
		Msg("Starting product sync")

	adapter, err := s.selectAdapter(*brand)
	if err != nil {
		s.closeFailed(ctx, syncLog.ID, brand.Name, started, err)
		return nil, err
	}

	drafts, err := adapter.FetchProducts(ctx)
	if err != nil {
		s.closeFailed(ctx, syncLog.ID, brand.Name, started, err)
		return nil, err
	}

	summary := &Summary{BrandID: brandID, BrandName: brand.Name, SyncLogID: syncLog.ID}
	for _, draft := range drafts {
		if err := s.reconcile(ctx, summary, draft); err != nil {
			summary.Errors = append(summary.Errors, err.Error())
			log.Warn().Err(err).Str("brand", brand.Name).Msg("Product reconciliation failed")
		}
	}

	var joined *string
	if len(summary.Errors) > 0 {
		joined = types.StringPtr(strings.Join(summary.Errors, "\n"))
	}
	_, err = s.store.CloseSyncLog(ctx, syncLog.ID, types.SyncLogClose{
		CompletedAt:     s.now().UTC(),
		Status:          types.SyncStatusSuccess,
		ProductsAdded:   summary.Added,
		ProductsUpdated: summary.Updated,
		Error:           joined,
	})
	if err != nil {
		return nil, fmt.Errorf("closing sync log %d: %w", syncLog.ID, err)
	}

	metrics.RecordSyncRun(brand.Name, string(types.SyncStatusSuccess), s.now().Sub(started))
	metrics.RecordReconciled(brand.Name, summary.Added, summary.Updated, len(summary.Errors))

	log.Info().
		Str("brand", brand.Name).
		Int("added", summary.Added).
		Int("updated", summary.Updated).
		Int("errors", len(summary.Errors)).
		Msg("Product sync complete")

	return summary, nil
}

// SyncAllBrands runs a sync for every brand with API configuration.
// Per-brand failures are collected into the returned summaries; only a
// brand listing failure aborts.
func (s *Service) SyncAllBrands(ctx context.Context) ([]Summary, error) {
	brands, err := s.store.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing brands: %w", err)
	}

	summaries := make([]Summary, 0, len(brands))
	for _, brand := range brands {
		if !brand.HasAPIConfig() {
			log.Debug().Str("brand", brand.Name).Msg("Skipping brand without API configuration")
			continue
		}
		summary, err := s.SyncBrandProducts(ctx, brand.ID)
		if err != nil {
			summaries = append(summaries, Summary{
				BrandID:   brand.ID,
				BrandName: brand.Name,
				Errors:    []string{err.Error()},
			})
			continue
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// reconcile integrates one draft into the catalog by (brandId, externalId)
func (s *Service) reconcile(ctx context.Context, summary *Summary, draft types.ProductDraft) error {
	if draft.ExternalID == "" {
		return &types.ReconciliationError{ExternalID: draft.ExternalID,
			Err: fmt.Errorf("product %q has no external ID", draft.Name)}
	}

	existing, err := s.store.FindProductByExternalID(ctx, draft.BrandID, draft.ExternalID)
	if err != nil {
		return &types.ReconciliationError{ExternalID: draft.ExternalID, Err: err}
	}

	today := pricehistory.Today(s.now())
	effective := draft.Price
	if draft.DiscountedPrice != nil {
		effective = *draft.DiscountedPrice
	}

	if existing == nil {
		if _, err := s.store.CreateProduct(ctx, draft, pricehistory.Seed(today, effective)); err != nil {
			return &types.ReconciliationError{ExternalID: draft.ExternalID, Err: err}
		}
		summary.Added++
		return nil
	}

	merged := pricehistory.Merge(existing.PriceHistory, today, effective)
	if _, err := s.store.UpdateProduct(ctx, existing.ID, draft, merged); err != nil {
		return &types.ReconciliationError{ExternalID: draft.ExternalID, Err: err}
	}
	summary.Updated++
	return nil
}

func (s *Service) closeFailed(ctx context.Context, syncLogID int64, brandName string, started time.Time, cause error) {
	_, err := s.store.CloseSyncLog(ctx, syncLogID, types.SyncLogClose{
		CompletedAt: s.now().UTC(),
		Status:      types.SyncStatusFailed,
		Error:       types.StringPtr(cause.Error()),
	})
	if err != nil {
		log.Error().Err(err).Int64("sync_log_id", syncLogID).Msg("Failed to close sync log")
	}
	metrics.RecordSyncRun(brandName, string(types.SyncStatusFailed), s.now().Sub(started))
}

// RecoverOrphanedRuns marks sync logs left running by an earlier process
// as failed. Called once at startup.
func (s *Service) RecoverOrphanedRuns(ctx context.Context) error {
	marked, err := s.store.MarkOrphanedSyncLogs(ctx)
	if err != nil {
		return fmt.Errorf("recovering orphaned sync runs: %w", err)
	}
	if marked > 0 {
		log.Warn().Int("count", marked).Msg("Marked orphaned sync runs as failed")
	}
	return nil
}
