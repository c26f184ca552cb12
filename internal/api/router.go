package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"senate-lobbyist-source/config"
	"senate-lobbyist-source/internal/mw"
	"senate-lobbyist-source/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, sync SyncStatusProvider) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, sync)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)
	if n, ok := sync.(SyncNotifier); ok {
		n.OnSynced(cacheStore.Flush)
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/lobbyists", caching, handler.ListLobbyists)
		api.GET("/lobbyists/:id", caching, handler.GetLobbyist)
		api.GET("/registrants", caching, handler.ListRegistrants)

		// Not cached: reflects the live sync.
		api.GET("/sync/status", handler.GetSyncStatus)
	}

	return r
}
