package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/catalog-service/internal/types"
)

func TestForBrandDispatch(t *testing.T) {
	tests := []struct {
		name    string
		apiType string
		apiKey  string
		want    string
	}{
		{"shopify", "shopify", "shpat_x", "shopify"},
		{"shopify uppercase", "Shopify", "shpat_x", "shopify"},
		{"woocommerce", "woocommerce", `{"consumerKey":"ck","consumerSecret":"cs"}`, "woocommerce"},
		{"generic", "generic", "token", "generic"},
		{"unknown type falls back to generic", "magento", "token", "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brand := types.Brand{
				ID:          1,
				Name:        "Somebrand",
				Website:     "https://somebrand.example",
				APIKey:      types.StringPtr(tt.apiKey),
				APIEndpoint: types.StringPtr("https://api.somebrand.example"),
				APIType:     types.StringPtr(tt.apiType),
			}

			adapter, err := ForBrand(brand)
			require.NoError(t, err)
			assert.Equal(t, tt.want, adapter.Name())
		})
	}
}

func TestForBrandWithoutConfig(t *testing.T) {
	tests := []struct {
		name  string
		brand types.Brand
	}{
		{"no config at all", types.Brand{ID: 1, Name: "Bare"}},
		{"missing key", types.Brand{ID: 1, Name: "NoKey",
			APIEndpoint: types.StringPtr("https://x"), APIType: types.StringPtr("shopify")}},
		{"empty endpoint", types.Brand{ID: 1, Name: "EmptyEndpoint",
			APIKey: types.StringPtr("k"), APIEndpoint: types.StringPtr(""), APIType: types.StringPtr("shopify")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ForBrand(tt.brand)
			var cfgErr *types.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.brand.Name, cfgErr.Brand)
		})
	}
}

func TestForBrandBadWooCredentials(t *testing.T) {
	brand := types.Brand{
		ID:          1,
		Name:        "BadWoo",
		APIKey:      types.StringPtr("plain-token"),
		APIEndpoint: types.StringPtr("https://api.badwoo.example"),
		APIType:     types.StringPtr("woocommerce"),
	}

	_, err := ForBrand(brand)
	var cfgErr *types.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 24.99, parsePrice("24.99"))
	assert.Equal(t, 24.99, parsePrice(24.99))
	assert.Equal(t, 10.0, parsePrice(10))
	assert.Equal(t, 0.0, parsePrice("free"))
	assert.Equal(t, 0.0, parsePrice("-5.00"))
	assert.Equal(t, 0.0, parsePrice(nil))
	assert.Equal(t, 0.0, parsePrice(true))

	v, ok := parsePriceString(" 12.50 ")
	assert.True(t, ok)
	assert.Equal(t, 12.50, v)

	_, ok = parsePriceString("")
	assert.False(t, ok)
	_, ok = parsePriceString("n/a")
	assert.False(t, ok)
}
