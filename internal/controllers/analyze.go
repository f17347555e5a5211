package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sweeparr/sweeparr/internal/config"
	"github.com/sweeparr/sweeparr/internal/models"
	"github.com/sweeparr/sweeparr/internal/reconcile"
	"github.com/sweeparr/sweeparr/internal/report"
	"golang.org/x/sync/errgroup"
)

// CatalogService lists library items and deletes them.
// Implemented by the sonarr and radarr clients.
type CatalogService interface {
	FetchCatalog(ctx context.Context) ([]models.CatalogItem, error)
	Delete(ctx context.Context, id int64, removeFiles bool) error
}

// HistoryService reports watch events after a cutoff.
// Implemented by the tautulli and plex clients.
type HistoryService interface {
	FetchHistory(ctx context.Context, mode models.Mode, libraryName string, after time.Time) ([]models.WatchEvent, error)
}

// AnalyzeController runs the fetch, reconcile and report pipeline
type AnalyzeController struct {
	catalog  CatalogService
	history  HistoryService
	fallback HistoryService // optional Plex fallback, may be nil
	cfg      *config.Config
	mode     models.Mode
	logger   *logrus.Logger

	now func() time.Time
}

// NewAnalyzeController creates a new analyze controller
func NewAnalyzeController(catalog CatalogService, history, fallback HistoryService, cfg *config.Config, mode models.Mode, logger *logrus.Logger) *AnalyzeController {
	return &AnalyzeController{
		catalog:  catalog,
		history:  history,
		fallback: fallback,
		cfg:      cfg,
		mode:     mode,
		logger:   logger,
		now:      time.Now,
	}
}

// Unwatched fetches catalog and history concurrently, reconciles them and
// builds the ranked report. A failing source contributes an empty
// collection instead of aborting the run, so its items surface as
// unwatched candidates rather than disappearing.
func (c *AnalyzeController) Unwatched(ctx context.Context, months, limit int) (*models.Report, error) {
	now := c.now()
	cutoff := reconcile.Cutoff(now, months)

	c.logger.WithFields(logrus.Fields{
		"mode":   c.mode,
		"months": months,
		"cutoff": cutoff.Format(time.RFC3339),
	}).Info("Analyzing library for unwatched items")

	var (
		items  []models.CatalogItem
		events []models.WatchEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := c.catalog.FetchCatalog(gctx)
		if err != nil {
			c.reportFetchError(string(c.mode), err)
			return nil
		}
		items = fetched
		return nil
	})
	g.Go(func() error {
		events = c.fetchHistory(gctx, cutoff)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	classifications := reconcile.Classify(items, events, cutoff)
	unwatched := reconcile.Unwatched(classifications)

	c.logger.WithFields(logrus.Fields{
		"catalog":   len(items),
		"history":   len(events),
		"unwatched": len(unwatched),
	}).Info("Reconciliation complete")

	if limit <= 0 {
		limit = c.cfg.ItemCount(c.mode)
	}

	return report.Build(c.mode, months, limit, cutoff, now, unwatched), nil
}

// GenerateReport runs the pipeline and writes the JSON and HTML artifacts
func (c *AnalyzeController) GenerateReport(ctx context.Context, months, limit int) (*models.Report, error) {
	rep, err := c.Unwatched(ctx, months, limit)
	if err != nil {
		return nil, err
	}

	jsonPath, htmlPath, err := report.WriteFiles(rep, c.cfg.ReportPath)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"json": jsonPath,
		"html": htmlPath,
	}).Info("Report generated")
	c.logger.WithFields(logrus.Fields{
		"unwatched":   rep.UnwatchedCount,
		"reclaimable": rep.TotalHuman,
	}).Info("Analysis complete")

	return rep, nil
}

// fetchHistory pulls watch events from Tautulli, falling back to Plex when
// Tautulli fails or reports nothing
func (c *AnalyzeController) fetchHistory(ctx context.Context, cutoff time.Time) []models.WatchEvent {
	libraryName := c.cfg.LibraryName(c.mode)

	events, err := c.history.FetchHistory(ctx, c.mode, libraryName, cutoff)
	if err == nil && len(events) > 0 {
		return events
	}
	if err != nil {
		c.reportFetchError("tautulli", err)
	}

	if c.fallback == nil {
		return events
	}

	c.logger.Info("Falling back to Plex history")
	fallbackEvents, err := c.fallback.FetchHistory(ctx, c.mode, libraryName, cutoff)
	if err != nil {
		c.reportFetchError("plex", err)
		return events
	}
	return fallbackEvents
}

// reportFetchError logs a fetch failure; the source is treated as empty
func (c *AnalyzeController) reportFetchError(source string, err error) {
	entry := c.logger.WithField("source", source).WithError(err)
	if errors.Is(err, models.ErrAuth) {
		entry.Error("Authentication failed, treating source as empty")
		return
	}
	entry.Warn("Fetch failed, treating source as empty")
}
