// Package reconcile matches catalog items against watch history.
//
// Titles are the only join key between the management service and the
// history source; no stable cross-service ID exists. Matching is strict
// normalized-string equality: lowercase, surrounding whitespace trimmed.
// An item with no matching history is always classified unwatched, so a
// history source that returned nothing surfaces every candidate rather
// than hiding them.
package reconcile

import (
	"strings"
	"time"

	"github.com/sweeparr/sweeparr/internal/models"
)

// Classification is the watch verdict for one catalog item
type Classification struct {
	Item          models.CatalogItem
	Watched       bool
	LastWatchedAt *time.Time // nil when no history matched the title
}

// NormalizeTitle produces the join key for title matching
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// LatestByTitle folds watch events into a map of normalized title to the
// most recent play timestamp. When several sources report the same title,
// the later timestamp wins.
func LatestByTitle(events []models.WatchEvent) map[string]time.Time {
	latest := make(map[string]time.Time, len(events))
	for _, ev := range events {
		key := NormalizeTitle(ev.Title)
		if key == "" {
			continue
		}
		if cur, ok := latest[key]; !ok || ev.PlayedAt.After(cur) {
			latest[key] = ev.PlayedAt
		}
	}
	return latest
}

// Classify produces exactly one classification per catalog item. An item
// is watched when its latest play is at or after the cutoff; everything
// else, including items with no history at all, is unwatched.
func Classify(items []models.CatalogItem, events []models.WatchEvent, cutoff time.Time) []Classification {
	latest := LatestByTitle(events)

	out := make([]Classification, 0, len(items))
	for _, item := range items {
		c := Classification{Item: item}
		if ts, ok := latest[NormalizeTitle(item.Title)]; ok {
			played := ts
			c.LastWatchedAt = &played
			c.Watched = !played.Before(cutoff)
		}
		out = append(out, c)
	}
	return out
}

// Unwatched filters classifications down to the items a report should list
func Unwatched(classifications []Classification) []Classification {
	out := make([]Classification, 0, len(classifications))
	for _, c := range classifications {
		if !c.Watched {
			out = append(out, c)
		}
	}
	return out
}

// Cutoff returns now minus the given number of calendar months, keeping
// the day-of-month where possible and clamping to the last valid day of
// the target month (e.g. March 31 minus one month is February 28/29).
func Cutoff(now time.Time, months int) time.Time {
	year, month, day := now.Date()
	hour, minute, sec := now.Clock()

	firstOfTarget := time.Date(year, month, 1, 0, 0, 0, 0, now.Location()).AddDate(0, -months, 0)
	if last := daysIn(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, minute, sec, now.Nanosecond(), now.Location())
}

// daysIn returns the number of days in the given month
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
