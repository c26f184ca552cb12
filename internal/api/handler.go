package api

import (
	"senate-lobbyist-source/internal/store"
	"senate-lobbyist-source/internal/syncer"
)

// SyncStatusProvider reports the state of the background sync.
type SyncStatusProvider interface {
	Status() syncer.Status
}

// SyncNotifier is implemented by sync providers that can report finished
// runs. The router flushes its response cache on each one.
type SyncNotifier interface {
	OnSynced(fn func())
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store store.Store
	sync  SyncStatusProvider
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, sync SyncStatusProvider) *Handler {
	return &Handler{
		store: s,
		sync:  sync,
	}
}
