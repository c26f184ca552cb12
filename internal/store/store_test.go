package store

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"senate-lobbyist-source/internal/model"
	"senate-lobbyist-source/internal/source"
)

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteDB opens a private in-memory database with the schema migrated.
func newSQLiteDB(t *testing.T) *gorm.DB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gormDB, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.Registrant{}, &model.Lobbyist{}))

	sqlDB, _ := gormDB.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return gormDB
}

func record(id, registrantID float64, firstName, lastName, registrantName string) source.Record {
	return source.Record{
		"id":         id,
		"first_name": firstName,
		"last_name":  lastName,
		"registrant": map[string]any{
			"id":   registrantID,
			"name": registrantName,
		},
		"registrant_id":           registrantID,
		"registrant_name":         registrantName,
		"registrant_description":  nil,
		"registrant_contact_name": "Contact",
		"registrant_telephone":    "555-0100",
		"registrant_updated_at":   "2021-01-01T00:00:00Z",
	}
}

func TestGormStore_UpsertRecords(t *testing.T) {
	gormDB := newSQLiteDB(t)
	s := NewGormStore(gormDB)
	ctx := context.Background()

	n, err := s.UpsertRecords(ctx, []source.Record{
		record(1, 10, "Jane", "Doe", "Acme"),
		record(2, 10, "John", "Roe", "Acme"),
		record(3, 11, "Ann", "Poe", "Globex"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var registrantCount, lobbyistCount int64
	gormDB.Model(&model.Registrant{}).Count(&registrantCount)
	gormDB.Model(&model.Lobbyist{}).Count(&lobbyistCount)
	assert.Equal(t, int64(2), registrantCount)
	assert.Equal(t, int64(3), lobbyistCount)

	var acme model.Registrant
	require.NoError(t, gormDB.First(&acme, 10).Error)
	assert.Equal(t, "Acme", acme.Name)
	assert.Equal(t, "", acme.Description)
	assert.Equal(t, "Contact", acme.ContactName)
	assert.Equal(t, "555-0100", acme.ContactTelephone)
	assert.Equal(t, "2021-01-01T00:00:00Z", acme.UpstreamUpdatedAt)

	var jane model.Lobbyist
	require.NoError(t, gormDB.First(&jane, 1).Error)
	assert.Equal(t, int64(10), jane.RegistrantID)
	assert.Equal(t, "Doe", jane.LastName)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(jane.Payload), &payload))
	assert.Equal(t, "Acme", payload["registrant_name"])
	assert.Contains(t, payload, "registrant")
}

func TestGormStore_UpsertRecords_UpdatesExisting(t *testing.T) {
	gormDB := newSQLiteDB(t)
	s := NewGormStore(gormDB)
	ctx := context.Background()

	_, err := s.UpsertRecords(ctx, []source.Record{record(1, 10, "Jane", "Doe", "Acme")})
	require.NoError(t, err)

	_, err = s.UpsertRecords(ctx, []source.Record{record(1, 11, "Jane", "Smith", "Globex")})
	require.NoError(t, err)

	var lobbyistCount int64
	gormDB.Model(&model.Lobbyist{}).Count(&lobbyistCount)
	assert.Equal(t, int64(1), lobbyistCount)

	var jane model.Lobbyist
	require.NoError(t, gormDB.First(&jane, 1).Error)
	assert.Equal(t, "Smith", jane.LastName)
	assert.Equal(t, int64(11), jane.RegistrantID)
}

func TestGormStore_UpsertRecords_DuplicateIDsInBatch(t *testing.T) {
	gormDB := newSQLiteDB(t)
	s := NewGormStore(gormDB)

	n, err := s.UpsertRecords(context.Background(), []source.Record{
		record(1, 10, "Jane", "Doe", "Acme"),
		record(1, 10, "Jane", "Dough", "Acme"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var jane model.Lobbyist
	require.NoError(t, gormDB.First(&jane, 1).Error)
	assert.Equal(t, "Dough", jane.LastName, "the last occurrence should win")
}

func TestGormStore_UpsertRecords_SkipsInvalid(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	// Neither record is usable, so no statement may reach the database.
	n, err := s.UpsertRecords(context.Background(), []source.Record{
		{"first_name": "No id"},
		{"id": float64(5), "first_name": "No registrant"},
	})
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListLobbyists(t *testing.T) {
	gormDB := newSQLiteDB(t)
	s := NewGormStore(gormDB)
	ctx := context.Background()

	_, err := s.UpsertRecords(ctx, []source.Record{
		record(3, 10, "C", "C", "Acme"),
		record(1, 10, "A", "A", "Acme"),
		record(2, 11, "B", "B", "Globex"),
	})
	require.NoError(t, err)

	testCases := []struct {
		name        string
		filter      LobbyistFilter
		expectedIDs []int64
		total       int64
	}{
		{name: "All with defaults", filter: LobbyistFilter{}, expectedIDs: []int64{1, 2, 3}, total: 3},
		{name: "Second page", filter: LobbyistFilter{Page: 2, PageSize: 2}, expectedIDs: []int64{3}, total: 3},
		{name: "By registrant", filter: LobbyistFilter{RegistrantID: 10}, expectedIDs: []int64{1, 3}, total: 2},
		{name: "Unknown registrant", filter: LobbyistFilter{RegistrantID: 99}, expectedIDs: nil, total: 0},
		{name: "Page past int range", filter: LobbyistFilter{Page: math.MaxInt, PageSize: 500}, expectedIDs: nil, total: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lobbyists, total, err := s.ListLobbyists(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.total, total)

			var ids []int64
			for _, l := range lobbyists {
				ids = append(ids, l.ID)
				assert.Equal(t, l.RegistrantID, l.Registrant.ID, "registrant should be preloaded")
			}
			assert.Equal(t, tc.expectedIDs, ids)
		})
	}
}

func TestGormStore_ListRegistrants(t *testing.T) {
	gormDB := newSQLiteDB(t)
	s := NewGormStore(gormDB)
	ctx := context.Background()

	_, err := s.UpsertRecords(ctx, []source.Record{
		record(1, 10, "A", "A", "Globex"),
		record(2, 11, "B", "B", "Acme"),
		record(3, 11, "C", "C", "Acme"),
	})
	require.NoError(t, err)

	summaries, err := s.ListRegistrants(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Acme", summaries[0].Name)
	assert.Equal(t, int64(2), summaries[0].LobbyistCount)
	assert.Equal(t, "Globex", summaries[1].Name)
	assert.Equal(t, int64(1), summaries[1].LobbyistCount)
}

func TestGormStore_GetLobbyist(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		gormDB := newSQLiteDB(t)
		s := NewGormStore(gormDB)
		_, err := s.UpsertRecords(context.Background(), []source.Record{record(7, 10, "Jane", "Doe", "Acme")})
		require.NoError(t, err)

		lobbyist, err := s.GetLobbyist(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "Jane", lobbyist.FirstName)
		assert.Equal(t, "Acme", lobbyist.Registrant.Name)
	})

	t.Run("not found", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "lobbyists" WHERE "lobbyists"."id" = $1 ORDER BY "lobbyists"."id" LIMIT`)).
			WithArgs(int64(42), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "registrant_id"}))

		_, err := s.GetLobbyist(context.Background(), 42)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "lobbyists"`)).
			WithArgs(int64(43), 1).
			WillReturnError(errors.New("connection reset"))

		_, err := s.GetLobbyist(context.Background(), 43)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInt64Field(t *testing.T) {
	testCases := []struct {
		name     string
		value    any
		expected int64
		ok       bool
	}{
		{name: "float64", value: float64(12), expected: 12, ok: true},
		{name: "json number", value: json.Number("13"), expected: 13, ok: true},
		{name: "numeric string", value: "14", expected: 14, ok: true},
		{name: "int", value: 15, expected: 15, ok: true},
		{name: "nil", value: nil},
		{name: "word", value: "abc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := int64Field(source.Record{"id": tc.value}, "id")
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}
