package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LightBlast-creator/cuex/internal/api"
	"github.com/LightBlast-creator/cuex/internal/config"
	"github.com/LightBlast-creator/cuex/internal/export"
	"github.com/LightBlast-creator/cuex/internal/extraction"
	"github.com/LightBlast-creator/cuex/internal/show"
	"github.com/LightBlast-creator/cuex/internal/storage/sqlite"
	"github.com/LightBlast-creator/cuex/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo, err := show.NewRepository(sqlite.NewShowStorage(db, log), log)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	cfg := config.Default()
	pipeline := extraction.NewPipeline(extraction.Config{
		RoleStoplist:      cfg.Extraction.RoleStoplist,
		TechnicalMarkers:  cfg.Extraction.TechnicalMarkers,
		MinTechnicalLen:   cfg.Extraction.MinTechnicalLen,
		RolesSectionLimit: cfg.Extraction.RolesSectionLimit,
	}, nil, log)

	router := api.NewRouter(
		repo,
		sqlite.NewContactStorage(db, log),
		pipeline,
		export.NewEncoder("CueX", "test"),
		cfg,
		log,
	)

	srv := httptest.NewServer(router.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func createTestShow(t *testing.T, srv *httptest.Server, name string) *show.Show {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/shows", map[string]string{"name": name})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var s show.Show
	decodeBody(t, resp, &s)
	return &s
}

func TestShowLifecycle(t *testing.T) {
	srv := newTestServer(t)

	s := createTestShow(t, srv, "Sommernacht")
	if s.ID == 0 || s.MA3SequenceID != 101 {
		t.Fatalf("unexpected created show: %+v", s)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/shows", nil)
	var shows []*show.Show
	decodeBody(t, resp, &shows)
	if len(shows) != 1 {
		t.Fatalf("unexpected show count: %d", len(shows))
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/shows/1/meta", map[string]string{
		"name":            "Sommernacht 2026",
		"ma3_sequence_id": "bogus",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("meta update failed: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/shows/1", nil)
	var got struct {
		show.Show
		Contacts []*show.ContactPerson `json:"contacts"`
	}
	decodeBody(t, resp, &got)
	if got.Name != "Sommernacht 2026" {
		t.Fatalf("unexpected name: %q", got.Name)
	}
	if got.MA3SequenceID != 101 {
		t.Fatalf("malformed sequence ID should fall back to 101, got %d", got.MA3SequenceID)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/shows/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete failed: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/shows/1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSongEndpoints(t *testing.T) {
	srv := newTestServer(t)
	createTestShow(t, srv, "Test")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/shows/1/songs", map[string]string{"name": "Intro"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create song failed: %d", resp.StatusCode)
	}
	var song show.Song
	decodeBody(t, resp, &song)
	if song.OrderIndex != 1 {
		t.Fatalf("unexpected order_index: %d", song.OrderIndex)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/shows/1/songs", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for nameless song, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/shows/1/songs/9999/move", map[string]string{"direction": "up"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown song, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestContactEndpoints(t *testing.T) {
	srv := newTestServer(t)
	createTestShow(t, srv, "Test")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/shows/1/contacts", map[string]string{
		"role": "Technischer Leiter",
		"name": "Alex",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create contact failed: %d", resp.StatusCode)
	}
	var contact show.ContactPerson
	decodeBody(t, resp, &contact)
	if contact.ID == 0 || contact.ShowID != 1 {
		t.Fatalf("unexpected contact: %+v", contact)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/shows/1/contacts", nil)
	var contacts []*show.ContactPerson
	decodeBody(t, resp, &contacts)
	if len(contacts) != 1 || contacts[0].Name != "Alex" {
		t.Fatalf("unexpected contacts: %+v", contacts)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/shows/1/contacts/9999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown contact, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t)
	createTestShow(t, srv, "Test")
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/shows/1/songs", map[string]string{"name": "Intro"})
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/shows/1/export/nomad-csv", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export failed: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type: %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("unexpected content disposition: %q", cd)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/shows/1/export/betamax", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCommitScriptImport(t *testing.T) {
	srv := newTestServer(t)
	createTestShow(t, srv, "Test")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/shows/1/import/script/commit", map[string]interface{}{
		"cues": []map[string]interface{}{
			{"scene": "Szene 1", "role": "MARA", "text": "Hallo."},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("commit failed: %d", resp.StatusCode)
	}
	var result map[string]int
	decodeBody(t, resp, &result)
	if result["added"] != 1 {
		t.Fatalf("unexpected commit result: %v", result)
	}

	// A broken payload is rejected and echoed for diagnosis
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/shows/1/import/script/commit",
		strings.NewReader(`{"cues": [`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for broken payload, got %d", resp.StatusCode)
	}
	var echoed map[string]string
	decodeBody(t, resp, &echoed)
	if echoed["payload"] != `{"cues": [` {
		t.Fatalf("expected offending payload echoed, got %v", echoed)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
}
