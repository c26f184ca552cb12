package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegistrantResponse represents the API response for a single registrant.
type RegistrantResponse struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	ContactName       string    `json:"contactName"`
	ContactTelephone  string    `json:"contactTelephone"`
	UpstreamUpdatedAt string    `json:"upstreamUpdatedAt"`
	TotalLobbyists    int64     `json:"totalLobbyists"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ListRegistrants handles GET /api/registrants.
func (h *Handler) ListRegistrants(c *gin.Context) {
	summaries, err := h.store.ListRegistrants(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve registrants"})
		return
	}

	responses := make([]RegistrantResponse, 0, len(summaries))
	for _, s := range summaries {
		responses = append(responses, RegistrantResponse{
			ID:                s.ID,
			Name:              s.Name,
			Description:       s.Description,
			ContactName:       s.ContactName,
			ContactTelephone:  s.ContactTelephone,
			UpstreamUpdatedAt: s.UpstreamUpdatedAt,
			TotalLobbyists:    s.LobbyistCount,
			UpdatedAt:         s.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, responses)
}
