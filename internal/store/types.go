package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// LobbyistFilter narrows and pages ListLobbyists.
type LobbyistFilter struct {
	RegistrantID int64
	Page         int
	PageSize     int
}

// RegistrantSummary is a registrant with the number of stored lobbyists.
type RegistrantSummary struct {
	ID                int64
	Name              string
	Description       string
	ContactName       string
	ContactTelephone  string
	UpstreamUpdatedAt string
	LobbyistCount     int64
	UpdatedAt         time.Time
}
