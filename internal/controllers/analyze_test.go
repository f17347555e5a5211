package controllers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sweeparr/sweeparr/internal/config"
	"github.com/sweeparr/sweeparr/internal/models"
	"github.com/sweeparr/sweeparr/internal/reconcile"
)

type fakeCatalog struct {
	items    []models.CatalogItem
	fetchErr error

	deleted     []int64
	removeFiles []bool
	deleteErr   map[int64]error
}

func (f *fakeCatalog) FetchCatalog(ctx context.Context) ([]models.CatalogItem, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.items, nil
}

func (f *fakeCatalog) Delete(ctx context.Context, id int64, removeFiles bool) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	f.removeFiles = append(f.removeFiles, removeFiles)
	return nil
}

type fakeHistory struct {
	events   []models.WatchEvent
	fetchErr error
	calls    int
}

func (f *fakeHistory) FetchHistory(ctx context.Context, mode models.Mode, libraryName string, after time.Time) ([]models.WatchEvent, error) {
	f.calls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.events, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ShowCount:        100,
		MovieCount:       100,
		TVLibraryName:    "TV Shows",
		MovieLibraryName: "Films",
		ReportPath:       t.TempDir(),
	}
}

func newTestAnalyze(t *testing.T, catalog CatalogService, history, fallback HistoryService, now time.Time) *AnalyzeController {
	t.Helper()
	ctrl := NewAnalyzeController(catalog, history, fallback, testConfig(t), models.ModeSonarr, testLogger())
	ctrl.now = func() time.Time { return now }
	return ctrl
}

func TestUnwatchedWorkedExample(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	catalog := &fakeCatalog{items: []models.CatalogItem{
		{ID: 1, Title: "Show A", Size: 100, Source: models.SourceSonarr},
		{ID: 2, Title: "Show B", Size: 50, Source: models.SourceSonarr},
	}}
	history := &fakeHistory{events: []models.WatchEvent{
		{Title: "show a", PlayedAt: reconcile.Cutoff(now, 10), Source: models.SourceTautulli},
	}}

	ctrl := newTestAnalyze(t, catalog, history, nil, now)
	rep, err := ctrl.Unwatched(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("Unwatched failed: %v", err)
	}

	if len(rep.Entries) != 1 || rep.Entries[0].Title != "Show A" {
		t.Fatalf("expected report [Show A], got %+v", rep.Entries)
	}
	if rep.TotalBytes != 100 {
		t.Errorf("total = %d, want 100", rep.TotalBytes)
	}
}

func TestUnwatchedExcludesRecentlyWatched(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	catalog := &fakeCatalog{items: []models.CatalogItem{
		{ID: 1, Title: "Recent", Size: 100},
		{ID: 2, Title: "Stale", Size: 50},
	}}
	history := &fakeHistory{events: []models.WatchEvent{
		{Title: "Recent", PlayedAt: now.AddDate(0, 0, -7)},
		{Title: "Stale", PlayedAt: now.AddDate(0, -6, 0)},
	}}

	ctrl := newTestAnalyze(t, catalog, history, nil, now)
	rep, err := ctrl.Unwatched(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("Unwatched failed: %v", err)
	}

	if len(rep.Entries) != 1 || rep.Entries[0].Title != "Stale" {
		t.Fatalf("expected only the stale entry, got %+v", rep.Entries)
	}
}

func TestUnwatchedFailOpenOnCatalogError(t *testing.T) {
	catalog := &fakeCatalog{fetchErr: fmt.Errorf("wrapped: %w", models.ErrAuth)}
	history := &fakeHistory{}

	ctrl := newTestAnalyze(t, catalog, history, nil, time.Now())
	rep, err := ctrl.Unwatched(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("a failing catalog source must not abort the run: %v", err)
	}
	if len(rep.Entries) != 0 {
		t.Errorf("empty catalog should produce an empty report")
	}
}

func TestUnwatchedFailOpenOnHistoryError(t *testing.T) {
	catalog := &fakeCatalog{items: []models.CatalogItem{
		{ID: 1, Title: "Show A", Size: 100},
	}}
	history := &fakeHistory{fetchErr: errors.New("connection refused")}

	ctrl := newTestAnalyze(t, catalog, history, nil, time.Now())
	rep, err := ctrl.Unwatched(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("a failing history source must not abort the run: %v", err)
	}

	// No history means everything surfaces as a candidate
	if len(rep.Entries) != 1 {
		t.Fatalf("expected the item to surface as unwatched, got %d entries", len(rep.Entries))
	}
	if rep.Entries[0].EverWatched {
		t.Errorf("item should be marked never watched")
	}
}

func TestFallbackToPlexWhenTautulliFails(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	catalog := &fakeCatalog{items: []models.CatalogItem{
		{ID: 1, Title: "Show A", Size: 100},
	}}
	tautulli := &fakeHistory{fetchErr: errors.New("timeout")}
	plex := &fakeHistory{events: []models.WatchEvent{
		{Title: "Show A", PlayedAt: now.AddDate(0, 0, -1), Source: models.SourcePlex},
	}}

	ctrl := newTestAnalyze(t, catalog, tautulli, plex, now)
	rep, err := ctrl.Unwatched(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("Unwatched failed: %v", err)
	}

	if plex.calls != 1 {
		t.Errorf("Plex fallback should have been consulted")
	}
	if len(rep.Entries) != 0 {
		t.Errorf("recently watched item from Plex history should be excluded, got %+v", rep.Entries)
	}
}

func TestFallbackSkippedWhenTautulliHasEvents(t *testing.T) {
	now := time.Now()

	catalog := &fakeCatalog{items: []models.CatalogItem{{ID: 1, Title: "Show A", Size: 1}}}
	tautulli := &fakeHistory{events: []models.WatchEvent{{Title: "Show A", PlayedAt: now}}}
	plex := &fakeHistory{}

	ctrl := newTestAnalyze(t, catalog, tautulli, plex, now)
	if _, err := ctrl.Unwatched(context.Background(), 2, 0); err != nil {
		t.Fatalf("Unwatched failed: %v", err)
	}
	if plex.calls != 0 {
		t.Errorf("Plex must not be consulted when Tautulli delivered events")
	}
}

func TestLimitDefaultsToConfiguredCount(t *testing.T) {
	now := time.Now()

	catalog := &fakeCatalog{items: []models.CatalogItem{
		{ID: 1, Title: "Big", Size: 100},
		{ID: 2, Title: "Small", Size: 10},
	}}
	ctrl := NewAnalyzeController(catalog, &fakeHistory{}, nil, &config.Config{
		ShowCount:     1,
		TVLibraryName: "TV Shows",
		ReportPath:    t.TempDir(),
	}, models.ModeSonarr, testLogger())
	ctrl.now = func() time.Time { return now }

	rep, err := ctrl.Unwatched(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("Unwatched failed: %v", err)
	}
	if len(rep.Entries) != 1 || rep.Entries[0].Title != "Big" {
		t.Fatalf("expected the configured count to cap the report at the largest item, got %+v", rep.Entries)
	}
}

func TestGenerateReportWritesArtifacts(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	catalog := &fakeCatalog{items: []models.CatalogItem{{ID: 1, Title: "Show A", Size: 100}}}
	ctrl := newTestAnalyze(t, catalog, &fakeHistory{}, nil, now)

	rep, err := ctrl.GenerateReport(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}
	if rep.UnwatchedCount != 1 {
		t.Errorf("unwatched count = %d, want 1", rep.UnwatchedCount)
	}

	entries, err := os.ReadDir(ctrl.cfg.ReportPath)
	if err != nil {
		t.Fatalf("failed to list report dir: %v", err)
	}
	var haveJSON, haveHTML bool
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".json":
			haveJSON = strings.HasPrefix(e.Name(), "unwatched_report_")
		case ".html":
			haveHTML = strings.HasPrefix(e.Name(), "unwatched_report_")
		}
	}
	if !haveJSON || !haveHTML {
		t.Errorf("expected JSON and HTML artifacts, got %v", entries)
	}
}
