package radarr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sweeparr/sweeparr/internal/config"
	"github.com/sweeparr/sweeparr/internal/models"
)

const movieFixture = `[
  {
    "id": 5,
    "title": "Dune: Part Two",
    "year": 2024,
    "path": "/movies/Dune Part Two (2024)",
    "sizeOnDisk": 48318382080
  },
  {
    "id": 9,
    "title": "Heat",
    "year": 1995,
    "path": "/movies/Heat (1995)",
    "sizeOnDisk": 32212254720
  }
]`

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	client, err := NewClient(&config.Config{RadarrURL: server.URL, RadarrAPIKey: "test-key"}, logger)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestFetchCatalog(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/movie" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("missing or wrong X-Api-Key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(movieFixture))
	}))

	items, err := client.FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("FetchCatalog failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.ID != 5 || first.Title != "Dune: Part Two" || first.Year != 2024 {
		t.Errorf("unexpected first item: %+v", first)
	}
	if first.Size != 48318382080 {
		t.Errorf("size must come from sizeOnDisk, got %d", first.Size)
	}
	if first.Source != models.SourceRadarr {
		t.Errorf("source = %q, want radarr", first.Source)
	}
}

func TestDelete(t *testing.T) {
	var gotPath, gotQuery string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.Delete(context.Background(), 5, false); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if gotPath != "/api/v3/movie/5" {
		t.Errorf("path = %s, want /api/v3/movie/5", gotPath)
	}
	if gotQuery != "deleteFiles=false" {
		t.Errorf("query = %s, want deleteFiles=false", gotQuery)
	}
}

func TestAuthErrorClassification(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.FetchCatalog(context.Background())
	if !errors.Is(err, models.ErrAuth) {
		t.Errorf("403 should classify as ErrAuth, got %v", err)
	}
}
