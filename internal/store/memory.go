package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stylefeed/catalog-service/internal/types"
)

const defaultPageLimit = 50

// MemoryStore holds the whole catalog in process memory. Used for
// development and tests; state does not survive a restart.
type MemoryStore struct {
	mu sync.RWMutex

	brands        map[int64]types.Brand
	categories    map[int64]types.Category
	products      map[int64]types.Product
	syncLogs      map[int64]types.SyncLog
	alerts        map[int64]types.PriceAlert
	wishlists     map[int64]types.Wishlist
	wishlistItems map[int64]types.WishlistItem

	brandSeq        int64
	categorySeq     int64
	productSeq      int64
	syncLogSeq      int64
	alertSeq        int64
	wishlistSeq     int64
	wishlistItemSeq int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		brands:        make(map[int64]types.Brand),
		categories:    make(map[int64]types.Category),
		products:      make(map[int64]types.Product),
		syncLogs:      make(map[int64]types.SyncLog),
		alerts:        make(map[int64]types.PriceAlert),
		wishlists:     make(map[int64]types.Wishlist),
		wishlistItems: make(map[int64]types.WishlistItem),
	}
}

// NewMemoryStoreSeeded creates a memory store pre-populated with the
// default brand and category fixtures
func NewMemoryStoreSeeded() *MemoryStore {
	s := NewMemoryStore()
	s.seed()
	return s
}

func (s *MemoryStore) ListBrands(ctx context.Context) ([]types.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	brands := make([]types.Brand, 0, len(s.brands))
	for _, b := range s.brands {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool { return brands[i].ID < brands[j].ID })
	return brands, nil
}

func (s *MemoryStore) GetBrand(ctx context.Context, id int64) (*types.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	brand, ok := s.brands[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: "brand", ID: id}
	}
	return &brand, nil
}

func (s *MemoryStore) GetBrandByName(ctx context.Context, name string) (*types.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.brands {
		if strings.EqualFold(b.Name, name) {
			brand := b
			return &brand, nil
		}
	}
	return nil, &types.NotFoundError{Kind: "brand", Name: name}
}

func (s *MemoryStore) CreateBrand(ctx context.Context, brand types.Brand) (*types.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.brandSeq++
	brand.ID = s.brandSeq
	if brand.CreatedAt.IsZero() {
		brand.CreatedAt = time.Now().UTC()
	}
	s.brands[brand.ID] = brand
	return &brand, nil
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]types.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]types.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (s *MemoryStore) FindProductByExternalID(ctx context.Context, brandID int64, externalID string) (*types.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.BrandID == brandID && p.ExternalID == externalID {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: "product", ID: id}
	}
	return cloneProduct(product), nil
}

func (s *MemoryStore) ListProducts(ctx context.Context, filters types.ProductFilters) ([]types.Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]types.Product, 0)
	for _, p := range s.products {
		if productMatches(p, filters) {
			matched = append(matched, *cloneProduct(p))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	page, limit := normalizePage(filters)
	start := (page - 1) * limit
	if start >= total {
		return []types.Product{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) CreateProduct(ctx context.Context, draft types.ProductDraft, history []types.PricePoint) (*types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.productSeq++
	product := productFromDraft(s.productSeq, draft, history)
	s.products[product.ID] = product
	return cloneProduct(product), nil
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, id int64, draft types.ProductDraft, history []types.PricePoint) (*types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return nil, &types.NotFoundError{Kind: "product", ID: id}
	}
	product := productFromDraft(id, draft, history)
	s.products[id] = product
	return cloneProduct(product), nil
}

func (s *MemoryStore) OpenSyncLog(ctx context.Context, brandID int64) (*types.SyncLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncLogSeq++
	log := types.SyncLog{
		ID:        s.syncLogSeq,
		BrandID:   brandID,
		StartedAt: time.Now().UTC(),
		Status:    types.SyncStatusRunning,
	}
	s.syncLogs[log.ID] = log
	return &log, nil
}

func (s *MemoryStore) CloseSyncLog(ctx context.Context, id int64, close types.SyncLogClose) (*types.SyncLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.syncLogs[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: "sync log", ID: id}
	}
	log.CompletedAt = types.TimePtr(close.CompletedAt)
	log.Status = close.Status
	log.ProductsAdded = close.ProductsAdded
	log.ProductsUpdated = close.ProductsUpdated
	log.Error = close.Error
	s.syncLogs[id] = log
	return &log, nil
}

func (s *MemoryStore) ListSyncLogs(ctx context.Context, brandID int64) ([]types.SyncLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]types.SyncLog, 0)
	for _, l := range s.syncLogs {
		if brandID == 0 || l.BrandID == brandID {
			logs = append(logs, l)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].StartedAt.After(logs[j].StartedAt) })
	return logs, nil
}

func (s *MemoryStore) MarkOrphanedSyncLogs(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	now := time.Now().UTC()
	for id, l := range s.syncLogs {
		if l.Status == types.SyncStatusRunning {
			l.Status = types.SyncStatusFailed
			l.CompletedAt = types.TimePtr(now)
			l.Error = types.StringPtr("sync interrupted by service restart")
			s.syncLogs[id] = l
			marked++
		}
	}
	return marked, nil
}

func (s *MemoryStore) ListActiveAlerts(ctx context.Context) ([]types.PriceAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts := make([]types.PriceAlert, 0)
	for _, a := range s.alerts {
		if a.IsActive {
			alerts = append(alerts, a)
		}
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].ID < alerts[j].ID })
	return alerts, nil
}

func (s *MemoryStore) ListAlertsByUser(ctx context.Context, userID string) ([]types.PriceAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts := make([]types.PriceAlert, 0)
	for _, a := range s.alerts {
		if a.UserID == userID {
			alerts = append(alerts, a)
		}
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].ID < alerts[j].ID })
	return alerts, nil
}

func (s *MemoryStore) GetAlert(ctx context.Context, id int64) (*types.PriceAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alert, ok := s.alerts[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: "price alert", ID: id}
	}
	return &alert, nil
}

func (s *MemoryStore) CreateAlert(ctx context.Context, alert types.PriceAlert) (*types.PriceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alertSeq++
	alert.ID = s.alertSeq
	alert.IsActive = true
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	alert.LastNotifiedAt = nil
	s.alerts[alert.ID] = alert
	return &alert, nil
}

func (s *MemoryStore) UpdateAlert(ctx context.Context, id int64, targetPrice *float64, isActive *bool) (*types.PriceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: "price alert", ID: id}
	}
	if targetPrice != nil {
		alert.TargetPrice = *targetPrice
	}
	if isActive != nil {
		alert.IsActive = *isActive
	}
	s.alerts[id] = alert
	return &alert, nil
}

func (s *MemoryStore) DeleteAlert(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alerts[id]; !ok {
		return &types.NotFoundError{Kind: "price alert", ID: id}
	}
	delete(s.alerts, id)
	return nil
}

func (s *MemoryStore) TouchAlertNotified(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok {
		return &types.NotFoundError{Kind: "price alert", ID: id}
	}
	alert.LastNotifiedAt = types.TimePtr(time.Now().UTC())
	s.alerts[id] = alert
	return nil
}

func (s *MemoryStore) CreateWishlist(ctx context.Context, wishlist types.Wishlist) (*types.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wishlistSeq++
	wishlist.ID = s.wishlistSeq
	if wishlist.CreatedAt.IsZero() {
		wishlist.CreatedAt = time.Now().UTC()
	}
	s.wishlists[wishlist.ID] = wishlist
	return &wishlist, nil
}

func (s *MemoryStore) ListWishlists(ctx context.Context, userID string) ([]types.Wishlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lists := make([]types.Wishlist, 0)
	for _, w := range s.wishlists {
		if w.UserID == userID {
			lists = append(lists, w)
		}
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].ID < lists[j].ID })
	return lists, nil
}

func (s *MemoryStore) AddWishlistItem(ctx context.Context, item types.WishlistItem) (*types.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wishlists[item.WishlistID]; !ok {
		return nil, &types.NotFoundError{Kind: "wishlist", ID: item.WishlistID}
	}
	s.wishlistItemSeq++
	item.ID = s.wishlistItemSeq
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	s.wishlistItems[item.ID] = item
	return &item, nil
}

func (s *MemoryStore) ListWishlistItems(ctx context.Context, wishlistID int64) ([]types.WishlistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]types.WishlistItem, 0)
	for _, it := range s.wishlistItems {
		if it.WishlistID == wishlistID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() {}

func productFromDraft(id int64, draft types.ProductDraft, history []types.PricePoint) types.Product {
	return types.Product{
		ID:              id,
		ExternalID:      draft.ExternalID,
		Name:            draft.Name,
		Description:     draft.Description,
		Price:           draft.Price,
		DiscountedPrice: draft.DiscountedPrice,
		BrandID:         draft.BrandID,
		CategoryID:      draft.CategoryID,
		Images:          draft.Images,
		Rating:          draft.Rating,
		ReviewCount:     draft.ReviewCount,
		InStock:         draft.InStock,
		IsNew:           draft.IsNew,
		Sizes:           draft.Sizes,
		Colors:          draft.Colors,
		Tags:            draft.Tags,
		URL:             draft.URL,
		PriceHistory:    append([]types.PricePoint(nil), history...),
		LastUpdated:     time.Now().UTC(),
	}
}

// cloneProduct copies the slices so callers never alias store state
func cloneProduct(p types.Product) *types.Product {
	clone := p
	clone.Images = append([]string(nil), p.Images...)
	clone.Sizes = append([]string(nil), p.Sizes...)
	clone.Colors = append([]string(nil), p.Colors...)
	clone.Tags = append([]string(nil), p.Tags...)
	clone.PriceHistory = append([]types.PricePoint(nil), p.PriceHistory...)
	return &clone
}

func productMatches(p types.Product, f types.ProductFilters) bool {
	if len(f.BrandIDs) > 0 && !containsInt64(f.BrandIDs, p.BrandID) {
		return false
	}
	if len(f.CategoryIDs) > 0 && !containsInt64(f.CategoryIDs, p.CategoryID) {
		return false
	}
	if f.InStockOnly && !p.InStock {
		return false
	}
	effective := p.EffectivePrice()
	if f.PriceMin != nil && effective < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && effective > *f.PriceMax {
		return false
	}
	if len(f.Sizes) > 0 {
		found := false
		for _, want := range f.Sizes {
			for _, have := range p.Sizes {
				if strings.EqualFold(want, have) {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		name := strings.ToLower(p.Name)
		desc := ""
		if p.Description != nil {
			desc = strings.ToLower(*p.Description)
		}
		if !strings.Contains(name, needle) && !strings.Contains(desc, needle) {
			return false
		}
	}
	return true
}

func containsInt64(haystack []int64, needle int64) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func normalizePage(f types.ProductFilters) (page, limit int) {
	page = f.Page
	if page < 1 {
		page = 1
	}
	limit = f.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	return page, limit
}
