package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"senate-lobbyist-source/config"
	"senate-lobbyist-source/internal/api"
	"senate-lobbyist-source/internal/db"
	"senate-lobbyist-source/internal/model"
	"senate-lobbyist-source/internal/source"
	"senate-lobbyist-source/internal/store"
	"senate-lobbyist-source/internal/syncer"
)

type apiRegistrant struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ContactName      string `json:"contact_name"`
	ContactTelephone string `json:"contact_telephone"`
	DtUpdated        string `json:"dt_updated"`
}

type apiLobbyist struct {
	ID         int64         `json:"id"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	Registrant apiRegistrant `json:"registrant"`
}

type apiPage struct {
	Count   int           `json:"count"`
	Next    *string       `json:"next"`
	Results []apiLobbyist `json:"results"`
}

// TestSyncLifecycle runs a full sync against a fake LDA API into SQLite and
// reads the result back through the HTTP API.
func TestSyncLifecycle(t *testing.T) {
	// --- Test Setup ---
	testDB, err := gorm.Open(sqlite.Open("file:sync_lifecycle?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(testDB))

	acme := apiRegistrant{ID: 9, Name: "Acme", Description: "Widgets", ContactName: "Wile", ContactTelephone: "555-0100", DtUpdated: "2021-01-01T00:00:00Z"}
	globex := apiRegistrant{ID: 10, Name: "Globex", ContactName: "Hank", ContactTelephone: "555-0101", DtUpdated: "2022-02-02T00:00:00Z"}

	var requestedPages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token abc123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}

		page := r.URL.Query().Get("page")
		requestedPages = append(requestedPages, page)

		var resp apiPage
		switch page {
		case "1":
			next := fmt.Sprintf("http://%s/api/v1/lobbyists/?page=2", r.Host)
			resp = apiPage{Count: 3, Next: &next, Results: []apiLobbyist{
				{ID: 1, FirstName: "Jane", LastName: "Doe", Registrant: acme},
				{ID: 2, FirstName: "John", LastName: "Roe", Registrant: acme},
			}}
		case "2":
			resp = apiPage{Count: 3, Results: []apiLobbyist{
				{ID: 3, FirstName: "Ann", LastName: "Poe", Registrant: globex},
			}}
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	cfg := &config.Config{
		Source: config.SourceConfig{APIKey: "abc123", BaseURL: server.URL},
		Sync:   config.SyncConfig{Enabled: true, BatchSize: 2},
	}
	cfg.ApplyDefaults()

	src, err := source.New(&cfg.Source)
	require.NoError(t, err)

	ok, err := src.CheckConnection(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	appStore := store.NewGormStore(testDB)
	syncSvc := syncer.NewService(&cfg.Sync, src, appStore)

	// --- Sync ---
	require.NoError(t, syncSvc.SyncOnce(context.Background()))
	assert.Equal(t, []string{"1", "2"}, requestedPages)

	var lobbyistCount, registrantCount int64
	testDB.Model(&model.Lobbyist{}).Count(&lobbyistCount)
	testDB.Model(&model.Registrant{}).Count(&registrantCount)
	assert.Equal(t, int64(3), lobbyistCount)
	assert.Equal(t, int64(2), registrantCount)

	var stored model.Registrant
	require.NoError(t, testDB.First(&stored, 9).Error)
	assert.Equal(t, "Widgets", stored.Description)
	assert.Equal(t, "Wile", stored.ContactName)
	assert.Equal(t, "555-0100", stored.ContactTelephone)
	assert.Equal(t, "2021-01-01T00:00:00Z", stored.UpstreamUpdatedAt)

	// --- Read back through the API ---
	router := api.NewRouter(&cfg.Server, appStore, syncSvc)

	t.Run("List By Registrant", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/lobbyists?registrant_id=9", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Total int64                  `json:"total"`
			Items []api.LobbyistResponse `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, int64(2), body.Total)
		require.Len(t, body.Items, 2)
		assert.Equal(t, "Jane", body.Items[0].FirstName)
		assert.Equal(t, "Acme", body.Items[0].RegistrantName)
	})

	t.Run("Get Includes Flattened Record", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/lobbyists/3", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var body api.LobbyistResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

		var record map[string]any
		require.NoError(t, json.Unmarshal(body.Record, &record))
		assert.Equal(t, float64(10), record["registrant_id"])
		assert.Equal(t, "Globex", record["registrant_name"])
		assert.Equal(t, "", record["registrant_description"])
		assert.Equal(t, "Hank", record["registrant_contact_name"])
		assert.Equal(t, "555-0101", record["registrant_telephone"])
		assert.Equal(t, "2022-02-02T00:00:00Z", record["registrant_updated_at"])
		assert.Contains(t, record, "registrant")
	})

	t.Run("Sync Status", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/sync/status", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var status syncer.Status
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, 3, status.Records)
		assert.Equal(t, 3, status.Stored)
		assert.Equal(t, 2, status.Pages)
	})
}
