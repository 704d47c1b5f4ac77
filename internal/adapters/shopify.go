package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	httpclient "github.com/stylefeed/catalog-service/internal/http"
	"github.com/stylefeed/catalog-service/internal/types"
)

const (
	shopifyAPIVersion = "2023-07"
	shopifyPageSize   = 250
	shopifyMaxPages   = 20
	// Products created within this window are flagged as new arrivals.
	shopifyNewWindow = 30 * 24 * time.Hour
)

// shopifyLinkNext extracts the next-page URL from a Shopify Link header
var shopifyLinkNext = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// ShopifyAdapter reads a brand's catalog through the Shopify Admin API
type ShopifyAdapter struct {
	brand    types.Brand
	apiKey   string
	endpoint string
	client   *httpclient.Client
}

// NewShopifyAdapter creates an adapter for a Shopify-backed brand
func NewShopifyAdapter(brand types.Brand, client *httpclient.Client) (Adapter, error) {
	if brand.APIKey == nil || brand.APIEndpoint == nil {
		return nil, &types.ConfigurationError{Brand: brand.Name, Reason: "missing apiKey or apiEndpoint"}
	}
	return &ShopifyAdapter{
		brand:    brand,
		apiKey:   *brand.APIKey,
		endpoint: strings.TrimRight(*brand.APIEndpoint, "/"),
		client:   client,
	}, nil
}

// Name returns the adapter slug
func (a *ShopifyAdapter) Name() string {
	return string(types.APITypeShopify)
}

type shopifyVariant struct {
	Title             string  `json:"title"`
	Price             string  `json:"price"`
	CompareAtPrice    *string `json:"compare_at_price"`
	InventoryQuantity int     `json:"inventory_quantity"`
}

type shopifyImage struct {
	Src string `json:"src"`
}

type shopifyProduct struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	BodyHTML  string           `json:"body_html"`
	Handle    string           `json:"handle"`
	CreatedAt *time.Time       `json:"created_at"`
	Tags      string           `json:"tags"`
	Variants  []shopifyVariant `json:"variants"`
	Images    []shopifyImage   `json:"images"`
}

type shopifyProductList struct {
	Products []shopifyProduct `json:"products"`
}

// FetchProducts walks the paginated Shopify product list and maps every
// product to a canonical draft. Transport failures and unparseable bodies
// fail the whole fetch; individual product quirks do not.
func (a *ShopifyAdapter) FetchProducts(ctx context.Context) ([]types.ProductDraft, error) {
	log.Info().Str("brand", a.brand.Name).Msg("Fetching products from Shopify")

	headers := http.Header{}
	headers.Set("X-Shopify-Access-Token", a.apiKey)
	headers.Set("Content-Type", "application/json")

	pageURL := fmt.Sprintf("%s/admin/api/%s/products.json?limit=%d", a.endpoint, shopifyAPIVersion, shopifyPageSize)

	drafts := make([]types.ProductDraft, 0)
	now := time.Now()

	for page := 0; page < shopifyMaxPages && pageURL != ""; page++ {
		resp, err := a.client.Get(ctx, pageURL, headers)
		if err != nil {
			return nil, &types.FetchError{Brand: a.brand.Name, URL: pageURL, Err: err}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, &types.FetchError{Brand: a.brand.Name, URL: pageURL, Err: err}
		}

		var list shopifyProductList
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, &types.FetchError{Brand: a.brand.Name, URL: pageURL,
				Err: fmt.Errorf("decoding product list: %w", err)}
		}

		for _, sp := range list.Products {
			drafts = append(drafts, a.transform(sp, now))
		}

		if len(list.Products) < shopifyPageSize {
			break
		}
		pageURL = nextPageURL(resp.Header.Get("Link"))
	}

	return drafts, nil
}

// nextPageURL pulls the rel="next" target from a Shopify Link header
func nextPageURL(link string) string {
	match := shopifyLinkNext.FindStringSubmatch(link)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

func (a *ShopifyAdapter) transform(sp shopifyProduct, now time.Time) types.ProductDraft {
	var price float64
	var discounted *float64

	if len(sp.Variants) > 0 {
		variant := sp.Variants[0]
		variantPrice, _ := parsePriceString(variant.Price)
		price = variantPrice

		// A compare-at price above the variant price means the variant
		// price is a promotion: compare-at is the base, the variant price
		// is the discounted one.
		if variant.CompareAtPrice != nil {
			if compareAt, ok := parsePriceString(*variant.CompareAtPrice); ok && compareAt > variantPrice {
				price = compareAt
				discounted = types.Float64Ptr(variantPrice)
			}
		}
	}

	sizes := make([]string, 0, len(sp.Variants))
	for _, v := range sp.Variants {
		if v.Title != "" && v.Title != "Default Title" {
			sizes = append(sizes, v.Title)
		}
	}

	inStock := false
	for _, v := range sp.Variants {
		if v.InventoryQuantity > 0 {
			inStock = true
			break
		}
	}

	images := make([]string, 0, len(sp.Images))
	for _, img := range sp.Images {
		if img.Src != "" {
			images = append(images, img.Src)
		}
	}

	var description *string
	if sp.BodyHTML != "" {
		description = types.StringPtr(sp.BodyHTML)
	}

	var tags []string
	if sp.Tags != "" {
		tags = strings.Split(sp.Tags, ", ")
	}

	isNew := sp.CreatedAt != nil && now.Sub(*sp.CreatedAt) <= shopifyNewWindow

	return types.ProductDraft{
		ExternalID:      "shopify-" + strconv.FormatInt(sp.ID, 10),
		Name:            sp.Title,
		Description:     description,
		Price:           price,
		DiscountedPrice: discounted,
		BrandID:         a.brand.ID,
		CategoryID:      1, // default category; Shopify collections are not mapped
		Images:          images,
		ReviewCount:     0,
		InStock:         inStock,
		IsNew:           isNew,
		Sizes:           sizes,
		Colors:          []string{},
		Tags:            tags,
		URL:             fmt.Sprintf("%s/products/%s", a.brand.Website, sp.Handle),
	}
}
