package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sweeparr/sweeparr/internal/models"
	"github.com/sweeparr/sweeparr/internal/reconcile"
	"github.com/sweeparr/sweeparr/internal/utils"
)

// timestampLayout names the report artifacts of one run
const timestampLayout = "2006-01-02_15-04-05"

// Build ranks the unwatched classifications into a report: size descending,
// title ascending on ties, truncated to limit when limit > 0. The total
// reclaimable figure covers only the entries kept after truncation, so it
// reflects what acting on the shown list would actually free.
func Build(mode models.Mode, months, limit int, cutoff, generatedAt time.Time, unwatched []reconcile.Classification) *models.Report {
	entries := make([]models.UnwatchedEntry, 0, len(unwatched))
	for _, c := range unwatched {
		entries = append(entries, models.UnwatchedEntry{
			CatalogItem:      c.Item,
			SizeHuman:        utils.HumanSize(c.Item.Size),
			EverWatched:      c.LastWatchedAt != nil,
			LastWatchedAt:    c.LastWatchedAt,
			ReclaimableBytes: c.Item.Size,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Size != entries[j].Size {
			return entries[i].Size > entries[j].Size
		}
		ti, tj := strings.ToLower(entries[i].Title), strings.ToLower(entries[j].Title)
		if ti != tj {
			return ti < tj
		}
		return entries[i].ID < entries[j].ID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	var total int64
	for _, e := range entries {
		total += e.ReclaimableBytes
	}

	return &models.Report{
		GeneratedAt:    generatedAt,
		Mode:           mode,
		Months:         months,
		Cutoff:         cutoff,
		Limit:          limit,
		UnwatchedCount: len(entries),
		TotalBytes:     total,
		TotalHuman:     utils.HumanSize(total),
		Entries:        entries,
	}
}

// WriteFiles renders the JSON and HTML artifacts into dir.
// Both are views of the same in-memory report, so they always list
// identical entries in identical order.
func WriteFiles(r *models.Report, dir string) (jsonPath, htmlPath string, err error) {
	ts := r.GeneratedAt.Format(timestampLayout)
	jsonPath = filepath.Join(dir, fmt.Sprintf("unwatched_report_%s.json", ts))
	htmlPath = filepath.Join(dir, fmt.Sprintf("unwatched_report_%s.html", ts))

	jsonData, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write JSON report: %w", err)
	}

	htmlData, err := renderHTML(r)
	if err != nil {
		return "", "", fmt.Errorf("failed to render HTML report: %w", err)
	}
	if err := os.WriteFile(htmlPath, htmlData, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write HTML report: %w", err)
	}

	return jsonPath, htmlPath, nil
}
