package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"senate-lobbyist-source/internal/model"
	"senate-lobbyist-source/internal/source"
)

// Store defines the interface for all database operations.
type Store interface {
	UpsertRecords(ctx context.Context, records []source.Record) (int, error)
	ListLobbyists(ctx context.Context, filter LobbyistFilter) ([]model.Lobbyist, int64, error)
	GetLobbyist(ctx context.Context, id int64) (*model.Lobbyist, error)
	ListRegistrants(ctx context.Context) ([]RegistrantSummary, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// UpsertRecords stores flattened lobbyist records. Registrants are derived
// from the registrant_* fields and written first so lobbyists can reference
// them. It returns the number of lobbyists written.
func (s *gormStore) UpsertRecords(ctx context.Context, records []source.Record) (int, error) {
	registrants, lobbyists := toModels(records)
	if len(lobbyists) == 0 {
		return 0, nil
	}

	registrantList := make([]model.Registrant, 0, len(registrants))
	for _, r := range registrants {
		registrantList = append(registrantList, r)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "contact_name", "contact_telephone", "upstream_updated_at", "updated_at"}),
		}).Omit(clause.Associations).Create(&registrantList).Error; err != nil {
			return fmt.Errorf("batch upsert registrants failed: %w", err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"registrant_id", "prefix", "first_name", "nickname", "middle_name", "last_name", "suffix", "payload", "updated_at"}),
		}).Omit(clause.Associations).Create(&lobbyists).Error; err != nil {
			return fmt.Errorf("batch upsert lobbyists failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(lobbyists), nil
}

// ListLobbyists returns one page of lobbyists ordered by id, and the total
// number matching the filter.
func (s *gormStore) ListLobbyists(ctx context.Context, filter LobbyistFilter) ([]model.Lobbyist, int64, error) {
	query := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&model.Lobbyist{})
		if filter.RegistrantID != 0 {
			q = q.Where("registrant_id = ?", filter.RegistrantID)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count lobbyists: %w", err)
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	if page-1 > math.MaxInt/size {
		return []model.Lobbyist{}, total, nil
	}

	var lobbyists []model.Lobbyist
	if err := query().
		Preload("Registrant").
		Order("id").
		Offset((page - 1) * size).
		Limit(size).
		Find(&lobbyists).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list lobbyists: %w", err)
	}
	return lobbyists, total, nil
}

// GetLobbyist returns ErrNotFound when no lobbyist has the id.
func (s *gormStore) GetLobbyist(ctx context.Context, id int64) (*model.Lobbyist, error) {
	var lobbyist model.Lobbyist
	err := s.db.WithContext(ctx).Preload("Registrant").First(&lobbyist, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lobbyist %d: %w", id, err)
	}
	return &lobbyist, nil
}

// ListRegistrants returns all registrants by name with their lobbyist counts.
func (s *gormStore) ListRegistrants(ctx context.Context) ([]RegistrantSummary, error) {
	var registrants []model.Registrant
	if err := s.db.WithContext(ctx).Order("name").Find(&registrants).Error; err != nil {
		return nil, fmt.Errorf("failed to list registrants: %w", err)
	}

	type aggRow struct {
		RegistrantID int64
		Total        int64
	}
	var aggs []aggRow
	if err := s.db.WithContext(ctx).
		Model(&model.Lobbyist{}).
		Select("registrant_id, COUNT(*) as total").
		Group("registrant_id").
		Scan(&aggs).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate lobbyists: %w", err)
	}

	counts := make(map[int64]int64, len(aggs))
	for _, a := range aggs {
		counts[a.RegistrantID] = a.Total
	}

	summaries := make([]RegistrantSummary, 0, len(registrants))
	for _, r := range registrants {
		summaries = append(summaries, RegistrantSummary{
			ID:                r.ID,
			Name:              r.Name,
			Description:       r.Description,
			ContactName:       r.ContactName,
			ContactTelephone:  r.ContactTelephone,
			UpstreamUpdatedAt: r.UpstreamUpdatedAt,
			LobbyistCount:     counts[r.ID],
			UpdatedAt:         r.UpdatedAt,
		})
	}
	return summaries, nil
}

// toModels converts flattened records. Later records win when an id repeats.
func toModels(records []source.Record) (map[int64]model.Registrant, []model.Lobbyist) {
	registrants := make(map[int64]model.Registrant)
	seen := make(map[int64]int)
	var lobbyists []model.Lobbyist

	for _, record := range records {
		id, ok := int64Field(record, "id")
		if !ok {
			log.Printf("Skipping record without a numeric id: %v", record["id"])
			continue
		}
		registrantID, ok := int64Field(record, "registrant_id")
		if !ok {
			log.Printf("Skipping lobbyist %d without a numeric registrant_id", id)
			continue
		}

		payload, err := json.Marshal(record)
		if err != nil {
			log.Printf("Skipping lobbyist %d: failed to encode payload: %v", id, err)
			continue
		}

		registrants[registrantID] = model.Registrant{
			ID:                registrantID,
			Name:              stringField(record, "registrant_name"),
			Description:       stringField(record, "registrant_description"),
			ContactName:       stringField(record, "registrant_contact_name"),
			ContactTelephone:  stringField(record, "registrant_telephone"),
			UpstreamUpdatedAt: stringField(record, "registrant_updated_at"),
		}

		lobbyist := model.Lobbyist{
			ID:           id,
			RegistrantID: registrantID,
			Prefix:       stringField(record, "prefix"),
			FirstName:    stringField(record, "first_name"),
			Nickname:     stringField(record, "nickname"),
			MiddleName:   stringField(record, "middle_name"),
			LastName:     stringField(record, "last_name"),
			Suffix:       stringField(record, "suffix"),
			Payload:      string(payload),
		}
		if i, dup := seen[id]; dup {
			lobbyists[i] = lobbyist
			continue
		}
		seen[id] = len(lobbyists)
		lobbyists = append(lobbyists, lobbyist)
	}
	return registrants, lobbyists
}

func int64Field(record source.Record, key string) (int64, bool) {
	switch v := record[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// stringField treats null and non-string values as empty.
func stringField(record source.Record, key string) string {
	s, _ := record[key].(string)
	return s
}
