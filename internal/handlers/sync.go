package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stylefeed/catalog-service/internal/types"
)

// syncTimeout bounds a background sync kicked off over HTTP
const syncTimeout = 10 * time.Minute

// TriggerSync starts a sync for one brand. The sync runs in the
// background; the response only confirms it was accepted.
func (h *Handler) TriggerSync(c *gin.Context) {
	brandID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid brand id"})
		return
	}

	// Reject unknown brands synchronously so the caller gets a 404
	// instead of a silent background failure.
	if _, err := h.store.GetBrand(c.Request.Context(), brandID); err != nil {
		var notFound *types.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load brand"})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if _, err := h.sync.SyncBrandProducts(ctx, brandID); err != nil {
			h.logger.Error().Err(err).Int64("brand_id", brandID).Msg("Background sync failed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "sync started", "brandId": brandID})
}

// TriggerSyncAll starts a sync for every configured brand
func (h *Handler) TriggerSyncAll(c *gin.Context) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if _, err := h.sync.SyncAllBrands(ctx); err != nil {
			h.logger.Error().Err(err).Msg("Background sync-all failed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "sync started"})
}

// ListSyncLogsResponse represents the sync run history for a brand
type ListSyncLogsResponse struct {
	SyncLogs []types.SyncLog `json:"syncLogs" jsonschema:"required"`
}

// ListSyncLogs returns the sync run history for a brand, newest first
func (h *Handler) ListSyncLogs(c *gin.Context) {
	brandID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid brand id"})
		return
	}

	logs, err := h.store.ListSyncLogs(c.Request.Context(), brandID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sync logs"})
		return
	}

	c.JSON(http.StatusOK, ListSyncLogsResponse{SyncLogs: logs})
}

// CheckAlerts runs one price alert evaluation pass synchronously
func (h *Handler) CheckAlerts(c *gin.Context) {
	summary, err := h.evaluator.CheckPriceAlerts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
