// Package handlers exposes the catalog HTTP API.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/stylefeed/catalog-service/internal/alerts"
	"github.com/stylefeed/catalog-service/internal/middleware"
	"github.com/stylefeed/catalog-service/internal/store"
	"github.com/stylefeed/catalog-service/internal/sync"
)

// Handler bundles the dependencies the HTTP API needs
type Handler struct {
	store     store.Store
	sync      *sync.Service
	evaluator *alerts.Evaluator
	logger    *zerolog.Logger
}

// New creates a handler set
func New(st store.Store, syncService *sync.Service, evaluator *alerts.Evaluator, logger *zerolog.Logger) *Handler {
	return &Handler{
		store:     st,
		sync:      syncService,
		evaluator: evaluator,
		logger:    logger,
	}
}

// RouterConfig tunes the HTTP router
type RouterConfig struct {
	InternalAPIKey     string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Router builds the gin engine with all routes and middleware. Internal
// routes (sync triggers, alert checks) sit behind the API key; public
// catalog reads are only rate limited.
func (h *Handler) Router(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(h.logger))

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.ClientRateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	{
		api.GET("/brands", h.ListBrands)
		api.GET("/brands/:id/sync-logs", h.ListSyncLogs)
		api.GET("/categories", h.ListCategories)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/products/:id/price-history", h.GetPriceHistory)
		api.GET("/users/:userId/alerts", h.ListUserAlerts)
		api.POST("/alerts", h.CreateAlert)
		api.PATCH("/alerts/:id", h.UpdateAlert)
		api.DELETE("/alerts/:id", h.DeleteAlert)
		api.GET("/users/:userId/wishlists", h.ListWishlists)
		api.POST("/wishlists", h.CreateWishlist)
		api.POST("/wishlists/:id/items", h.AddWishlistItem)
		api.GET("/wishlists/:id/items", h.ListWishlistItems)
	}

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuth(cfg.InternalAPIKey))
	{
		internal.POST("/brands", h.CreateBrand)
		internal.POST("/brands/:id/sync", h.TriggerSync)
		internal.POST("/sync", h.TriggerSyncAll)
		internal.POST("/alerts/check", h.CheckAlerts)
	}

	return router
}
