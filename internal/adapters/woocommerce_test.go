package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/catalog-service/internal/types"
)

func wooBrand(endpoint string) types.Brand {
	return types.Brand{
		ID:          2,
		Name:        "Woobrand",
		Website:     "https://woobrand.example",
		APIKey:      types.StringPtr(`{"consumerKey":"ck_test","consumerSecret":"cs_test"}`),
		APIEndpoint: types.StringPtr(endpoint),
		APIType:     types.StringPtr("woocommerce"),
	}
}

func TestWooCommerceFetchProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "ck_test", r.URL.Query().Get("consumer_key"))
		assert.Equal(t, "cs_test", r.URL.Query().Get("consumer_secret"))
		fmt.Fprint(w, `[
			{
				"id": 55, "name": "Wool Coat", "description": "Warm coat",
				"permalink": "https://woobrand.example/product/wool-coat",
				"price": "120.00", "regular_price": "180.00", "sale_price": "120.00",
				"average_rating": "4.6", "rating_count": 12, "in_stock": true,
				"images": [{"src": "https://cdn.example/coat.jpg"}],
				"attributes": [
					{"name": "Size", "options": ["S", "M", "L"]},
					{"name": "Colour", "options": ["Navy", "Camel"]}
				],
				"tags": [{"name": "winter"}]
			},
			{
				"id": 56, "name": "Basic Scarf", "permalink": "https://woobrand.example/product/basic-scarf",
				"price": "15.00", "regular_price": "15.00", "in_stock": false,
				"images": [], "attributes": [], "tags": []
			}
		]`)
	}))
	defer server.Close()

	adapter, err := NewWooCommerceAdapter(wooBrand(server.URL), fastClient())
	require.NoError(t, err)

	drafts, err := adapter.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	coat := drafts[0]
	assert.Equal(t, "woocommerce-55", coat.ExternalID)
	assert.Equal(t, 180.0, coat.Price)
	require.NotNil(t, coat.DiscountedPrice)
	assert.Equal(t, 120.0, *coat.DiscountedPrice)
	assert.Equal(t, []string{"S", "M", "L"}, coat.Sizes)
	assert.Equal(t, []string{"Navy", "Camel"}, coat.Colors)
	require.NotNil(t, coat.Rating)
	assert.Equal(t, 4.6, *coat.Rating)
	assert.Equal(t, 12, coat.ReviewCount)
	assert.True(t, coat.InStock)
	assert.Equal(t, []string{"winter"}, coat.Tags)

	scarf := drafts[1]
	assert.Equal(t, 15.0, scarf.Price)
	assert.Nil(t, scarf.DiscountedPrice)
	assert.Empty(t, scarf.Sizes)
	assert.False(t, scarf.InStock)
}

func TestWooCommercePagination(t *testing.T) {
	var pages int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		if r.URL.Query().Get("page") == "1" {
			products := make([]map[string]any, wooPageSize)
			for i := range products {
				products[i] = map[string]any{"id": i + 1, "name": fmt.Sprintf("P%d", i+1), "price": "1.00"}
			}
			json.NewEncoder(w).Encode(products)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{{"id": 500, "name": "Last", "price": "1.00"}})
	}))
	defer server.Close()

	adapter, err := NewWooCommerceAdapter(wooBrand(server.URL), fastClient())
	require.NoError(t, err)

	drafts, err := adapter.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Len(t, drafts, wooPageSize+1)
}

func TestWooCommerceSalePriceFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 9, "name": "Sale Only", "price": "", "sale_price": "22.00", "regular_price": "40.00", "in_stock": true}]`)
	}))
	defer server.Close()

	adapter, err := NewWooCommerceAdapter(wooBrand(server.URL), fastClient())
	require.NoError(t, err)

	drafts, err := adapter.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, 40.0, drafts[0].Price)
	require.NotNil(t, drafts[0].DiscountedPrice)
	assert.Equal(t, 22.0, *drafts[0].DiscountedPrice)
}

func TestNewWooCommerceAdapterBadCredentials(t *testing.T) {
	brand := wooBrand("https://woobrand.example")
	brand.APIKey = types.StringPtr("not-json")

	_, err := NewWooCommerceAdapter(brand, fastClient())
	var cfgErr *types.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Woobrand", cfgErr.Brand)
}

func TestNewWooCommerceAdapterMissingSecret(t *testing.T) {
	brand := wooBrand("https://woobrand.example")
	brand.APIKey = types.StringPtr(`{"consumerKey":"ck_only"}`)

	_, err := NewWooCommerceAdapter(brand, fastClient())
	var cfgErr *types.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestWooCommerceFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter, err := NewWooCommerceAdapter(wooBrand(server.URL), fastClient())
	require.NoError(t, err)

	_, err = adapter.FetchProducts(context.Background())
	var fetchErr *types.FetchError
	require.ErrorAs(t, err, &fetchErr)
}
