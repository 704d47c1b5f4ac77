package types

import "time"

// APIType identifies the upstream API format a brand exposes
type APIType string

const (
	APITypeShopify     APIType = "shopify"
	APITypeWooCommerce APIType = "woocommerce"
	APITypeGeneric     APIType = "generic"
)

// SyncStatus represents the lifecycle state of a sync run
type SyncStatus string

const (
	SyncStatusRunning SyncStatus = "running"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusFailed  SyncStatus = "failed"
)

// NotificationChannel represents how a price alert is delivered
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
)

// PricePoint is one sample in a product's price history.
// Date is a calendar date in YYYY-MM-DD form (UTC); at most one sample
// exists per date.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// ProductDraft is the canonical product shape emitted by upstream adapters,
// before the catalog has assigned an identity or merged price history.
type ProductDraft struct {
	ExternalID      string   `json:"externalId"`
	Name            string   `json:"name"`
	Description     *string  `json:"description,omitempty"`
	Price           float64  `json:"price"`
	DiscountedPrice *float64 `json:"discountedPrice,omitempty"`
	BrandID         int64    `json:"brandId"`
	CategoryID      int64    `json:"categoryId"`
	Images          []string `json:"images"`
	Rating          *float64 `json:"rating,omitempty"`
	ReviewCount     int      `json:"reviewCount"`
	InStock         bool     `json:"inStock"`
	IsNew           bool     `json:"isNew"`
	Sizes           []string `json:"sizes"`
	Colors          []string `json:"colors"`
	Tags            []string `json:"tags,omitempty"`
	URL             string   `json:"url"`
}

// Product is a canonical catalog record
type Product struct {
	ID              int64        `json:"id"`
	ExternalID      string       `json:"externalId"`
	Name            string       `json:"name"`
	Description     *string      `json:"description,omitempty"`
	Price           float64      `json:"price"`
	DiscountedPrice *float64     `json:"discountedPrice,omitempty"`
	BrandID         int64        `json:"brandId"`
	CategoryID      int64        `json:"categoryId"`
	Images          []string     `json:"images"`
	Rating          *float64     `json:"rating,omitempty"`
	ReviewCount     int          `json:"reviewCount"`
	InStock         bool         `json:"inStock"`
	IsNew           bool         `json:"isNew"`
	Sizes           []string     `json:"sizes"`
	Colors          []string     `json:"colors"`
	Tags            []string     `json:"tags,omitempty"`
	URL             string       `json:"url"`
	PriceHistory    []PricePoint `json:"priceHistory"`
	LastUpdated     time.Time    `json:"lastUpdated"`
}

// EffectivePrice returns the price a shopper would pay right now:
// the discounted price when a promotion is active, the base price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.Price
}

// Brand represents a retail brand whose catalog can be synced.
// A brand without a complete API configuration (key, endpoint, type)
// cannot be synced.
type Brand struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Website     string    `json:"website"`
	APIKey      *string   `json:"apiKey,omitempty"`
	APIEndpoint *string   `json:"apiEndpoint,omitempty"`
	APIType     *string   `json:"apiType,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasAPIConfig reports whether the brand carries everything needed to sync
func (b *Brand) HasAPIConfig() bool {
	return b.APIKey != nil && *b.APIKey != "" &&
		b.APIEndpoint != nil && *b.APIEndpoint != "" &&
		b.APIType != nil && *b.APIType != ""
}

// Category is a product category
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SyncLog records one sync attempt for a brand. It is created at sync start
// with status running and finalized exactly once, success or failure.
type SyncLog struct {
	ID              int64      `json:"id"`
	BrandID         int64      `json:"brandId"`
	StartedAt       time.Time  `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	Status          SyncStatus `json:"status"`
	ProductsAdded   int        `json:"productsAdded"`
	ProductsUpdated int        `json:"productsUpdated"`
	Error           *string    `json:"error,omitempty"`
}

// SyncLogClose carries the terminal fields written when a sync run ends
type SyncLogClose struct {
	CompletedAt     time.Time
	Status          SyncStatus
	ProductsAdded   int
	ProductsUpdated int
	Error           *string
}

// PriceAlert is a user's request to be notified when a product's effective
// price drops to or below the target. The evaluator never deactivates an
// alert; it only stamps LastNotifiedAt when a notification fires.
type PriceAlert struct {
	ID               int64               `json:"id"`
	UserID           string              `json:"userId"`
	ProductID        int64               `json:"productId"`
	TargetPrice      float64             `json:"targetPrice"`
	IsActive         bool                `json:"isActive"`
	NotificationType NotificationChannel `json:"notificationType"`
	CreatedAt        time.Time           `json:"createdAt"`
	LastNotifiedAt   *time.Time          `json:"lastNotifiedAt,omitempty"`
}

// Wishlist is a named collection of saved products owned by a user
type Wishlist struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// WishlistItem is a single saved product within a wishlist
type WishlistItem struct {
	ID         int64     `json:"id"`
	WishlistID int64     `json:"wishlistId"`
	ProductID  int64     `json:"productId"`
	AddedAt    time.Time `json:"addedAt"`
}

// ProductFilters narrows a catalog query
type ProductFilters struct {
	BrandIDs    []int64  `json:"brandIds,omitempty"`
	CategoryIDs []int64  `json:"categoryIds,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
	PriceMin    *float64 `json:"priceMin,omitempty"`
	PriceMax    *float64 `json:"priceMax,omitempty"`
	InStockOnly bool     `json:"inStockOnly,omitempty"`
	Search      string   `json:"search,omitempty"`
	Page        int      `json:"page,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// Float64Ptr returns a pointer to the given float64
func Float64Ptr(f float64) *float64 {
	return &f
}

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}

// TimePtr returns a pointer to the given time
func TimePtr(t time.Time) *time.Time {
	return &t
}

// BoolPtr returns a pointer to the given bool
func BoolPtr(b bool) *bool {
	return &b
}
