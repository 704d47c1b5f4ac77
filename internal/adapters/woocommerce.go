package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	httpclient "github.com/stylefeed/catalog-service/internal/http"
	"github.com/stylefeed/catalog-service/internal/types"
)

const (
	wooPageSize = 100
	wooMaxPages = 20
)

// wooCredentials is the JSON payload stored in a WooCommerce brand's apiKey
// field: {"consumerKey": "...", "consumerSecret": "..."}
type wooCredentials struct {
	ConsumerKey    string `json:"consumerKey"`
	ConsumerSecret string `json:"consumerSecret"`
}

// WooCommerceAdapter reads a brand's catalog through the WooCommerce REST API
type WooCommerceAdapter struct {
	brand    types.Brand
	creds    wooCredentials
	endpoint string
	client   *httpclient.Client
}

// NewWooCommerceAdapter creates an adapter for a WooCommerce-backed brand.
// The brand's apiKey must hold a JSON consumer key/secret pair.
func NewWooCommerceAdapter(brand types.Brand, client *httpclient.Client) (Adapter, error) {
	if brand.APIKey == nil || brand.APIEndpoint == nil {
		return nil, &types.ConfigurationError{Brand: brand.Name, Reason: "missing apiKey or apiEndpoint"}
	}

	var creds wooCredentials
	if err := json.Unmarshal([]byte(*brand.APIKey), &creds); err != nil || creds.ConsumerKey == "" || creds.ConsumerSecret == "" {
		return nil, &types.ConfigurationError{Brand: brand.Name, Reason: "apiKey is not a valid consumer key/secret pair"}
	}

	return &WooCommerceAdapter{
		brand:    brand,
		creds:    creds,
		endpoint: strings.TrimRight(*brand.APIEndpoint, "/"),
		client:   client,
	}, nil
}

// Name returns the adapter slug
func (a *WooCommerceAdapter) Name() string {
	return string(types.APITypeWooCommerce)
}

type wooImage struct {
	Src string `json:"src"`
}

type wooAttribute struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

type wooTag struct {
	Name string `json:"name"`
}

type wooProduct struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Permalink     string         `json:"permalink"`
	Price         string         `json:"price"`
	RegularPrice  string         `json:"regular_price"`
	SalePrice     string         `json:"sale_price"`
	AverageRating string         `json:"average_rating"`
	RatingCount   int            `json:"rating_count"`
	InStock       bool           `json:"in_stock"`
	Featured      bool           `json:"featured"`
	Images        []wooImage     `json:"images"`
	Attributes    []wooAttribute `json:"attributes"`
	Tags          []wooTag       `json:"tags"`
}

// FetchProducts walks the paginated WooCommerce product list. Credentials
// ride in the query string as WooCommerce expects for HTTPS endpoints.
func (a *WooCommerceAdapter) FetchProducts(ctx context.Context) ([]types.ProductDraft, error) {
	log.Info().Str("brand", a.brand.Name).Msg("Fetching products from WooCommerce")

	drafts := make([]types.ProductDraft, 0)

	for page := 1; page <= wooMaxPages; page++ {
		pageURL := a.pageURL(page)

		body, err := a.client.GetBytes(ctx, pageURL, nil)
		if err != nil {
			return nil, &types.FetchError{Brand: a.brand.Name, URL: pageURL, Err: err}
		}

		var products []wooProduct
		if err := json.Unmarshal(body, &products); err != nil {
			return nil, &types.FetchError{Brand: a.brand.Name, URL: pageURL,
				Err: fmt.Errorf("decoding product list: %w", err)}
		}

		for _, wp := range products {
			drafts = append(drafts, a.transform(wp))
		}

		if len(products) < wooPageSize {
			break
		}
	}

	return drafts, nil
}

func (a *WooCommerceAdapter) pageURL(page int) string {
	params := url.Values{}
	params.Set("consumer_key", a.creds.ConsumerKey)
	params.Set("consumer_secret", a.creds.ConsumerSecret)
	params.Set("per_page", strconv.Itoa(wooPageSize))
	params.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("%s/wp-json/wc/v3/products?%s", a.endpoint, params.Encode())
}

func (a *WooCommerceAdapter) transform(wp wooProduct) types.ProductDraft {
	// WooCommerce delivers prices as strings. The regular price is the
	// base; when the current price sits below it, the current price is
	// an active promotion.
	current, _ := parsePriceString(wp.Price)
	if current == 0 {
		if sale, ok := parsePriceString(wp.SalePrice); ok {
			current = sale
		}
	}

	price := current
	var discounted *float64
	if regular, ok := parsePriceString(wp.RegularPrice); ok && regular > current && current > 0 {
		price = regular
		discounted = types.Float64Ptr(current)
	}

	var sizes, colors []string
	for _, attr := range wp.Attributes {
		switch strings.ToLower(attr.Name) {
		case "size", "sizes":
			sizes = append(sizes, attr.Options...)
		case "color", "colour", "colors", "colours":
			colors = append(colors, attr.Options...)
		}
	}
	if sizes == nil {
		sizes = []string{}
	}
	if colors == nil {
		colors = []string{}
	}

	images := make([]string, 0, len(wp.Images))
	for _, img := range wp.Images {
		if img.Src != "" {
			images = append(images, img.Src)
		}
	}

	var rating *float64
	if r, ok := parsePriceString(wp.AverageRating); ok && r > 0 {
		rating = types.Float64Ptr(r)
	}

	var description *string
	if wp.Description != "" {
		description = types.StringPtr(wp.Description)
	}

	tags := make([]string, 0, len(wp.Tags))
	for _, t := range wp.Tags {
		tags = append(tags, t.Name)
	}

	return types.ProductDraft{
		ExternalID:      "woocommerce-" + strconv.FormatInt(wp.ID, 10),
		Name:            wp.Name,
		Description:     description,
		Price:           price,
		DiscountedPrice: discounted,
		BrandID:         a.brand.ID,
		CategoryID:      1, // default category; WooCommerce categories are not mapped
		Images:          images,
		Rating:          rating,
		ReviewCount:     wp.RatingCount,
		InStock:         wp.InStock,
		Sizes:           sizes,
		Colors:          colors,
		Tags:            tags,
		URL:             wp.Permalink,
	}
}
