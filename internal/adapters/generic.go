package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	httpclient "github.com/stylefeed/catalog-service/internal/http"
	"github.com/stylefeed/catalog-service/internal/types"
)

// envelopeKeys are the top-level keys a generic API may nest its product
// array under, tried in order when the response is not a bare array.
var envelopeKeys = []string{"products", "data", "items", "results"}

// GenericAdapter is a defensive adapter for unknown upstream shapes. It
// tries multiple field-name aliases per logical field and maps malformed
// products with best-effort defaults instead of failing the batch.
type GenericAdapter struct {
	brand    types.Brand
	apiKey   string
	endpoint string
	client   *httpclient.Client
}

// NewGenericAdapter creates an adapter for a brand with an unrecognized or
// explicitly generic API type
func NewGenericAdapter(brand types.Brand, client *httpclient.Client) (Adapter, error) {
	if brand.APIKey == nil || brand.APIEndpoint == nil {
		return nil, &types.ConfigurationError{Brand: brand.Name, Reason: "missing apiKey or apiEndpoint"}
	}
	return &GenericAdapter{
		brand:    brand,
		apiKey:   *brand.APIKey,
		endpoint: *brand.APIEndpoint,
		client:   client,
	}, nil
}

// Name returns the adapter slug
func (a *GenericAdapter) Name() string {
	return string(types.APITypeGeneric)
}

// FetchProducts fetches the brand's endpoint with a bearer token and
// unwraps whichever response envelope is present. A response that is
// neither an array nor an object holding one fails with *types.FormatError.
func (a *GenericAdapter) FetchProducts(ctx context.Context) ([]types.ProductDraft, error) {
	log.Info().Str("brand", a.brand.Name).Msg("Fetching products from generic API")

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+a.apiKey)
	headers.Set("Content-Type", "application/json")

	body, err := a.client.GetBytes(ctx, a.endpoint, headers)
	if err != nil {
		return nil, &types.FetchError{Brand: a.brand.Name, URL: a.endpoint, Err: err}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &types.FetchError{Brand: a.brand.Name, URL: a.endpoint,
			Err: fmt.Errorf("decoding response: %w", err)}
	}

	items, err := unwrapEnvelope(payload, a.brand.Name)
	if err != nil {
		return nil, err
	}

	drafts := make([]types.ProductDraft, 0, len(items))
	now := time.Now()
	for _, item := range items {
		product, ok := item.(map[string]any)
		if !ok {
			// Not even an object. Map it with defaults rather than
			// dropping the batch.
			product = map[string]any{}
		}
		drafts = append(drafts, a.transform(product, now))
	}

	return drafts, nil
}

// unwrapEnvelope accepts either a bare product array or an object nesting
// one under a known key
func unwrapEnvelope(payload any, brandName string) ([]any, error) {
	if items, ok := payload.([]any); ok {
		return items, nil
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, &types.FormatError{Brand: brandName, Detail: "response is neither an array nor an object"}
	}

	for _, key := range envelopeKeys {
		if items, ok := obj[key].([]any); ok {
			return items, nil
		}
	}
	return nil, &types.FormatError{Brand: brandName,
		Detail: fmt.Sprintf("no product array under any of %s", strings.Join(envelopeKeys, ", "))}
}

func (a *GenericAdapter) transform(product map[string]any, now time.Time) types.ProductDraft {
	name := stringField(product, "name", "title", "product_name")

	price := priceField(product, "price", "current_price", "amount", "cost")

	// A larger "was" price means the fetched price is a promotion: the
	// larger value is the base and the fetched one the discounted price.
	var discounted *float64
	for _, key := range []string{"regular_price", "compare_at_price", "original_price"} {
		if was := priceField(product, key); was > price && price > 0 {
			discounted = types.Float64Ptr(price)
			price = was
			break
		}
	}

	return types.ProductDraft{
		ExternalID:      a.externalID(product),
		Name:            name,
		Description:     optionalStringField(product, "description", "body_html"),
		Price:           price,
		DiscountedPrice: discounted,
		BrandID:         a.brand.ID,
		CategoryID:      1, // default category; upstream categories are not mapped
		Images:          imagesField(product),
		Rating:          optionalFloatField(product, "rating", "average_rating"),
		ReviewCount:     intField(product, "review_count", "reviews_count", "rating_count"),
		InStock:         inStockField(product),
		IsNew:           createdWithin(product, now, 30*24*time.Hour),
		Sizes:           sizesField(product),
		Colors:          []string{},
		Tags:            tagsField(product),
		URL:             a.productURL(product),
	}
}

// externalID derives a stable adapter-namespaced key. Upstream IDs win;
// the canonical URL is the fallback when nothing better exists.
func (a *GenericAdapter) externalID(product map[string]any) string {
	if id := stringField(product, "id", "product_id", "sku", "slug", "handle"); id != "" {
		return "generic-" + id
	}
	if u := stringField(product, "url", "permalink", "link"); u != "" {
		return "generic-" + u
	}
	return ""
}

func (a *GenericAdapter) productURL(product map[string]any) string {
	if u := stringField(product, "url", "permalink", "link"); u != "" {
		return u
	}
	slug := stringField(product, "handle", "slug", "id")
	return fmt.Sprintf("%s/products/%s", a.brand.Website, slug)
}

func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
		}
	}
	return ""
}

func optionalStringField(m map[string]any, keys ...string) *string {
	if s := stringField(m, keys...); s != "" {
		return types.StringPtr(s)
	}
	return nil
}

func priceField(m map[string]any, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if price := parsePrice(v); price > 0 {
				return price
			}
		}
	}
	return 0
}

func optionalFloatField(m map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if f := parsePrice(v); f > 0 {
				return types.Float64Ptr(f)
			}
		}
	}
	return nil
}

func intField(m map[string]any, keys ...string) int {
	for _, key := range keys {
		if v, ok := m[key].(float64); ok {
			return int(v)
		}
	}
	return 0
}

// imagesField handles images as an array of strings, an array of objects
// with src/url/source, or a single image field as fallback
func imagesField(m map[string]any) []string {
	images := make([]string, 0)

	if list, ok := m["images"].([]any); ok {
		for _, item := range list {
			switch img := item.(type) {
			case string:
				if img != "" {
					images = append(images, img)
				}
			case map[string]any:
				if src := stringField(img, "src", "url", "source"); src != "" {
					images = append(images, src)
				}
			}
		}
		return images
	}

	switch img := m["image"].(type) {
	case string:
		if img != "" {
			images = append(images, img)
		}
	case map[string]any:
		if src := stringField(img, "src", "url", "source"); src != "" {
			images = append(images, src)
		}
	}
	return images
}

func sizesField(m map[string]any) []string {
	switch v := m["sizes"].(type) {
	case []any:
		sizes := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				sizes = append(sizes, s)
			}
		}
		return sizes
	case string:
		if v != "" {
			return []string{v}
		}
	}

	// Fall back to variant titles/sizes when present.
	variants, ok := m["variants"].([]any)
	if !ok {
		return []string{}
	}
	seen := make(map[string]bool)
	sizes := make([]string, 0)
	for _, item := range variants {
		variant, ok := item.(map[string]any)
		if !ok {
			continue
		}
		size := stringField(variant, "size")
		if size == "" {
			if title := stringField(variant, "title"); title != "" && !strings.Contains(title, "Default") {
				size = title
			}
		}
		if size != "" && !seen[size] {
			seen[size] = true
			sizes = append(sizes, size)
		}
	}
	return sizes
}

// inStockField defaults to available when the upstream says nothing
func inStockField(m map[string]any) bool {
	if v, ok := m["in_stock"].(bool); ok {
		return v
	}
	if v, ok := m["available"].(bool); ok {
		return v
	}
	if qty, ok := m["inventory_quantity"].(float64); ok {
		return qty > 0
	}
	return true
}

func createdWithin(m map[string]any, now time.Time, window time.Duration) bool {
	raw := stringField(m, "created_at", "created")
	if raw == "" {
		return false
	}
	created, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return false
	}
	return now.Sub(created) <= window
}

func tagsField(m map[string]any) []string {
	switch v := m["tags"].(type) {
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				tags = append(tags, s)
			}
		}
		return tags
	case string:
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		tags := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
		return tags
	}
	return nil
}
