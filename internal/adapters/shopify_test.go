package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "github.com/stylefeed/catalog-service/internal/http"
	"github.com/stylefeed/catalog-service/internal/http/ratelimit"
	"github.com/stylefeed/catalog-service/internal/types"
)

// fastClient is a test client with no retries and no effective throttle
func fastClient() *httpclient.Client {
	return httpclient.NewClient(ratelimit.Config{
		RequestsPerSecond: 1000,
		Burst:             1000,
		MaxRetries:        0,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        time.Millisecond,
	})
}

func shopifyBrand(endpoint string) types.Brand {
	return types.Brand{
		ID:          1,
		Name:        "Testbrand",
		Website:     "https://testbrand.example",
		APIKey:      types.StringPtr("shpat_test"),
		APIEndpoint: types.StringPtr(endpoint),
		APIType:     types.StringPtr("shopify"),
	}
}

func TestShopifyFetchProducts(t *testing.T) {
	created := time.Now().Add(-5 * 24 * time.Hour).Format(time.RFC3339)
	old := time.Now().Add(-90 * 24 * time.Hour).Format(time.RFC3339)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		fmt.Fprintf(w, `{"products": [
			{
				"id": 101, "title": "Linen Shirt", "body_html": "<p>Soft linen</p>",
				"handle": "linen-shirt", "created_at": %q, "tags": "summer, linen",
				"variants": [
					{"title": "S", "price": "39.99", "compare_at_price": "59.99", "inventory_quantity": 3},
					{"title": "M", "price": "39.99", "compare_at_price": "59.99", "inventory_quantity": 0}
				],
				"images": [{"src": "https://cdn.example/a.jpg"}]
			},
			{
				"id": 102, "title": "Plain Tee", "handle": "plain-tee", "created_at": %q,
				"variants": [{"title": "Default Title", "price": "12.50", "inventory_quantity": 0}],
				"images": []
			}
		]}`, created, old)
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifyBrand(server.URL), fastClient())
	require.NoError(t, err)

	drafts, err := adapter.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	shirt := drafts[0]
	assert.Equal(t, "shopify-101", shirt.ExternalID)
	assert.Equal(t, "Linen Shirt", shirt.Name)
	assert.Equal(t, 59.99, shirt.Price)
	require.NotNil(t, shirt.DiscountedPrice)
	assert.Equal(t, 39.99, *shirt.DiscountedPrice)
	assert.Equal(t, []string{"S", "M"}, shirt.Sizes)
	assert.True(t, shirt.InStock)
	assert.True(t, shirt.IsNew)
	assert.Equal(t, []string{"summer", "linen"}, shirt.Tags)
	assert.Equal(t, "https://testbrand.example/products/linen-shirt", shirt.URL)

	tee := drafts[1]
	assert.Equal(t, "shopify-102", tee.ExternalID)
	assert.Equal(t, 12.50, tee.Price)
	assert.Nil(t, tee.DiscountedPrice)
	assert.Empty(t, tee.Sizes)
	assert.False(t, tee.InStock)
	assert.False(t, tee.IsNew)
}

func TestShopifyPagination(t *testing.T) {
	var pages int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		if pages == 1 {
			// Full page with a next link keeps the walk going.
			products := make([]map[string]any, shopifyPageSize)
			for i := range products {
				products[i] = map[string]any{"id": i + 1, "title": fmt.Sprintf("P%d", i+1)}
			}
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/admin/api/%s/products.json?page_info=abc>; rel="next"`,
				r.Host, shopifyAPIVersion))
			json.NewEncoder(w).Encode(map[string]any{"products": products})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"products": []map[string]any{
			{"id": 999, "title": "Last"},
		}})
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifyBrand(server.URL), fastClient())
	require.NoError(t, err)

	drafts, err := adapter.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Len(t, drafts, shopifyPageSize+1)
	assert.Equal(t, "shopify-999", drafts[shopifyPageSize].ExternalID)
}

func TestShopifyCompareAtBelowPriceIgnored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"products": [{
			"id": 7, "title": "Marked Up", "handle": "marked-up",
			"variants": [{"title": "One Size", "price": "80.00", "compare_at_price": "50.00", "inventory_quantity": 1}]
		}]}`)
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifyBrand(server.URL), fastClient())
	require.NoError(t, err)

	drafts, err := adapter.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, 80.0, drafts[0].Price)
	assert.Nil(t, drafts[0].DiscountedPrice)
}

func TestShopifyFetchErrorOnUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifyBrand(server.URL), fastClient())
	require.NoError(t, err)

	_, err = adapter.FetchProducts(context.Background())
	var fetchErr *types.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "Testbrand", fetchErr.Brand)
}

func TestShopifyFetchErrorOnBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"products": "not an array"`)
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifyBrand(server.URL), fastClient())
	require.NoError(t, err)

	_, err = adapter.FetchProducts(context.Background())
	var fetchErr *types.FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestNewShopifyAdapterMissingConfig(t *testing.T) {
	brand := shopifyBrand("https://shop.example")
	brand.APIKey = nil

	_, err := NewShopifyAdapter(brand, fastClient())
	var cfgErr *types.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNextPageURL(t *testing.T) {
	link := `<https://shop.example/admin/api/2023-07/products.json?page_info=xyz&limit=250>; rel="next", <https://shop.example/prev>; rel="previous"`
	assert.Equal(t, "https://shop.example/admin/api/2023-07/products.json?page_info=xyz&limit=250", nextPageURL(link))
	assert.Equal(t, "", nextPageURL(`<https://shop.example/prev>; rel="previous"`))
	assert.Equal(t, "", nextPageURL(""))
}
