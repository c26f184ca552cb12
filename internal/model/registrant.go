package model

import "time"

// Registrant is the organisation a lobbyist is registered on behalf of.
type Registrant struct {
	ID                int64  `gorm:"primaryKey"` // Upstream ID
	Name              string `gorm:"size:512;not null"`
	Description       string
	ContactName       string `gorm:"size:256"`
	ContactTelephone  string `gorm:"size:64"`
	UpstreamUpdatedAt string `gorm:"size:64"` // dt_updated as sent by the API
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Associations
	Lobbyists []Lobbyist `gorm:"foreignKey:RegistrantID"`
}
