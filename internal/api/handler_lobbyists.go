package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"senate-lobbyist-source/internal/model"
	"senate-lobbyist-source/internal/store"
)

const maxPageSize = 500

// LobbyistResponse represents the API response for a single lobbyist.
type LobbyistResponse struct {
	ID             int64           `json:"id"`
	Prefix         string          `json:"prefix,omitempty"`
	FirstName      string          `json:"firstName"`
	Nickname       string          `json:"nickname,omitempty"`
	MiddleName     string          `json:"middleName,omitempty"`
	LastName       string          `json:"lastName"`
	Suffix         string          `json:"suffix,omitempty"`
	RegistrantID   int64           `json:"registrantId"`
	RegistrantName string          `json:"registrantName"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Record         json.RawMessage `json:"record,omitempty"`
}

type lobbyistListResponse struct {
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	Total    int64              `json:"total"`
	Items    []LobbyistResponse `json:"items"`
}

func toLobbyistResponse(l model.Lobbyist, withRecord bool) LobbyistResponse {
	resp := LobbyistResponse{
		ID:             l.ID,
		Prefix:         l.Prefix,
		FirstName:      l.FirstName,
		Nickname:       l.Nickname,
		MiddleName:     l.MiddleName,
		LastName:       l.LastName,
		Suffix:         l.Suffix,
		RegistrantID:   l.RegistrantID,
		RegistrantName: l.Registrant.Name,
		UpdatedAt:      l.UpdatedAt,
	}
	if withRecord && l.Payload != "" {
		resp.Record = json.RawMessage(l.Payload)
	}
	return resp
}

// ListLobbyists handles GET /api/lobbyists.
func (h *Handler) ListLobbyists(c *gin.Context) {
	filter := store.LobbyistFilter{Page: 1, PageSize: 50}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &filter.Page}, {"page_size", &filter.PageSize}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + p.name})
			return
		}
		*p.dst = n
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	if raw := c.Query("registrant_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid registrant_id"})
			return
		}
		filter.RegistrantID = id
	}

	lobbyists, total, err := h.store.ListLobbyists(c.Request.Context(), filter)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lobbyists"})
		return
	}

	items := make([]LobbyistResponse, 0, len(lobbyists))
	for _, l := range lobbyists {
		items = append(items, toLobbyistResponse(l, false))
	}
	c.JSON(http.StatusOK, lobbyistListResponse{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
		Items:    items,
	})
}

// GetLobbyist handles GET /api/lobbyists/:id.
func (h *Handler) GetLobbyist(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid lobbyist ID"})
		return
	}

	lobbyist, err := h.store.GetLobbyist(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "lobbyist not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lobbyist"})
		return
	}

	c.JSON(http.StatusOK, toLobbyistResponse(*lobbyist, true))
}
