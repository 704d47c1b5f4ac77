// Package adapters translates upstream brand API responses (Shopify,
// WooCommerce, and loosely-structured generic REST formats) into canonical
// product drafts.
package adapters

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	httpclient "github.com/stylefeed/catalog-service/internal/http"
	"github.com/stylefeed/catalog-service/internal/http/ratelimit"
	"github.com/stylefeed/catalog-service/internal/types"
)

// Adapter fetches a brand's catalog and emits canonical product drafts.
// Implementations fail with *types.FetchError when the upstream call does
// not succeed or returns an unparseable body; a single malformed product
// never fails the batch.
type Adapter interface {
	Name() string
	FetchProducts(ctx context.Context) ([]types.ProductDraft, error)
}

// Factory builds an adapter for a brand. Construction fails with
// *types.ConfigurationError when credentials are malformed.
type Factory func(brand types.Brand, client *httpclient.Client) (Adapter, error)

var factories = map[string]Factory{
	string(types.APITypeShopify):     NewShopifyAdapter,
	string(types.APITypeWooCommerce): NewWooCommerceAdapter,
}

// Selector picks and builds an adapter for a brand
type Selector func(brand types.Brand) (Adapter, error)

// ForBrand selects an adapter based on the brand's declared API type,
// using default outbound rate limiting. Brands without a complete API
// configuration cannot be synced. Dispatch is case-insensitive; any
// unrecognized type (including "generic" itself) degrades gracefully to
// the generic adapter rather than failing.
func ForBrand(brand types.Brand) (Adapter, error) {
	return NewSelector(ratelimit.DefaultConfig())(brand)
}

// NewSelector returns a Selector whose adapters share the given outbound
// rate limit configuration.
func NewSelector(cfg ratelimit.Config) Selector {
	return func(brand types.Brand) (Adapter, error) {
		if !brand.HasAPIConfig() {
			log.Warn().Str("brand", brand.Name).Msg("Brand does not have valid API configuration")
			return nil, &types.ConfigurationError{
				Brand:  brand.Name,
				Reason: "missing apiKey, apiEndpoint, or apiType",
			}
		}

		client := httpclient.NewClient(cfg)
		apiType := strings.ToLower(strings.TrimSpace(*brand.APIType))
		if factory, ok := factories[apiType]; ok {
			return factory(brand, client)
		}
		return NewGenericAdapter(brand, client)
	}
}
