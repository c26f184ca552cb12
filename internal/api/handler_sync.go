package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSyncStatus returns the summary of the last sync run.
func (h *Handler) GetSyncStatus(c *gin.Context) {
	if h.sync == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync is not configured"})
		return
	}
	c.JSON(http.StatusOK, h.sync.Status())
}
