package model

import "time"

// Lobbyist is one flattened record of the lobbyists stream.
type Lobbyist struct {
	ID           int64  `gorm:"primaryKey"` // Upstream ID
	RegistrantID int64  `gorm:"index;not null"`
	Prefix       string `gorm:"size:32"`
	FirstName    string `gorm:"size:128"`
	Nickname     string `gorm:"size:128"`
	MiddleName   string `gorm:"size:128"`
	LastName     string `gorm:"size:128;index"`
	Suffix       string `gorm:"size:32"`
	Payload      string `gorm:"type:text;not null"` // Full flattened record as JSON
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Associations
	Registrant Registrant `gorm:"constraint:OnDelete:CASCADE"`
}
