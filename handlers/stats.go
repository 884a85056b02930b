package handlers

import (
	"net/http"
	"time"

	"github.com/eerojala/My-video-game-collection/auth"
	"github.com/eerojala/My-video-game-collection/concurrent"
	"github.com/gin-gonic/gin"
)

// GetCatalogStats - admin dashboard numbers, computed concurrently
func (h *Handler) GetCatalogStats(c *gin.Context) {
	if _, err := h.authorize(c, auth.ResourceStats, auth.ActionRead, "Must be logged in as admin to view statistics"); err != nil {
		h.fail(c, err)
		return
	}

	start := time.Now()
	stats, err := concurrent.CalculateCatalogStats(c.Request.Context(), h.store)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.ObserveCatalog(stats)

	c.JSON(http.StatusOK, gin.H{
		"statistics":       stats,
		"calculation_time": time.Since(start).String(),
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
