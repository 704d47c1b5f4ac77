package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stylefeed/catalog-service/internal/types"
)

// CreateAlertRequest represents a new price alert
type CreateAlertRequest struct {
	UserID           string  `json:"userId" binding:"required" jsonschema:"required"`
	ProductID        int64   `json:"productId" binding:"required" jsonschema:"required,minimum=1"`
	TargetPrice      float64 `json:"targetPrice" binding:"required,gt=0" jsonschema:"required,exclusiveMinimum=0"`
	NotificationType string  `json:"notificationType" jsonschema:"enum=email,enum=sms"`
}

// CreateAlert registers a price alert for a product
func (h *Handler) CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel := types.NotificationChannel(req.NotificationType)
	if channel == "" {
		channel = types.ChannelEmail
	}
	if channel != types.ChannelEmail && channel != types.ChannelSMS {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notificationType must be email or sms"})
		return
	}

	// The alert must reference a real product.
	if _, err := h.store.GetProduct(c.Request.Context(), req.ProductID); err != nil {
		var notFound *types.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}

	alert, err := h.store.CreateAlert(c.Request.Context(), types.PriceAlert{
		UserID:           req.UserID,
		ProductID:        req.ProductID,
		TargetPrice:      req.TargetPrice,
		NotificationType: channel,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create alert"})
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// UpdateAlertRequest represents a partial alert update
type UpdateAlertRequest struct {
	TargetPrice *float64 `json:"targetPrice" jsonschema:"exclusiveMinimum=0"`
	IsActive    *bool    `json:"isActive"`
}

// UpdateAlert changes an alert's target price or active flag
func (h *Handler) UpdateAlert(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	var req UpdateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TargetPrice != nil && *req.TargetPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "targetPrice must be positive"})
		return
	}

	alert, err := h.store.UpdateAlert(c.Request.Context(), id, req.TargetPrice, req.IsActive)
	if err != nil {
		var notFound *types.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update alert"})
		return
	}
	c.JSON(http.StatusOK, alert)
}

// DeleteAlert removes an alert
func (h *Handler) DeleteAlert(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	if err := h.store.DeleteAlert(c.Request.Context(), id); err != nil {
		var notFound *types.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete alert"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUserAlerts returns every alert belonging to a user
func (h *Handler) ListUserAlerts(c *gin.Context) {
	alerts, err := h.store.ListAlertsByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// CreateWishlistRequest represents a new wishlist
type CreateWishlistRequest struct {
	UserID string `json:"userId" binding:"required" jsonschema:"required"`
	Name   string `json:"name" binding:"required" jsonschema:"required"`
}

// CreateWishlist creates a named wishlist for a user
func (h *Handler) CreateWishlist(c *gin.Context) {
	var req CreateWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wishlist, err := h.store.CreateWishlist(c.Request.Context(), types.Wishlist{
		UserID: req.UserID,
		Name:   req.Name,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create wishlist"})
		return
	}
	c.JSON(http.StatusCreated, wishlist)
}

// ListWishlists returns a user's wishlists
func (h *Handler) ListWishlists(c *gin.Context) {
	lists, err := h.store.ListWishlists(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list wishlists"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlists": lists})
}

// AddWishlistItemRequest represents a product saved to a wishlist
type AddWishlistItemRequest struct {
	ProductID int64 `json:"productId" binding:"required" jsonschema:"required,minimum=1"`
}

// AddWishlistItem saves a product to a wishlist
func (h *Handler) AddWishlistItem(c *gin.Context) {
	wishlistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wishlist id"})
		return
	}

	var req AddWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.store.AddWishlistItem(c.Request.Context(), types.WishlistItem{
		WishlistID: wishlistID,
		ProductID:  req.ProductID,
	})
	if err != nil {
		var notFound *types.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add wishlist item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// ListWishlistItems returns the products saved to a wishlist
func (h *Handler) ListWishlistItems(c *gin.Context) {
	wishlistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wishlist id"})
		return
	}

	items, err := h.store.ListWishlistItems(c.Request.Context(), wishlistID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list wishlist items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
