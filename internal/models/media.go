package models

import "time"

// CatalogItem is one library entry reported by Sonarr or Radarr.
// It is an immutable snapshot taken at fetch time.
type CatalogItem struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Year   int    `json:"year,omitempty"`
	Size   int64  `json:"size"` // bytes on disk
	Path   string `json:"path"`
	Source Source `json:"source"`
}

// WatchEvent is one play record reported by Tautulli or Plex
type WatchEvent struct {
	Title    string
	PlayedAt time.Time
	Source   Source
}

// UnwatchedEntry pairs a catalog item with its watch classification.
// ReclaimableBytes equals the item's on-disk size.
type UnwatchedEntry struct {
	CatalogItem
	SizeHuman        string     `json:"size_human"`
	EverWatched      bool       `json:"ever_watched"`
	LastWatchedAt    *time.Time `json:"last_watched_at,omitempty"`
	ReclaimableBytes int64      `json:"reclaimable_bytes"`
}

// Report is the ranked, truncated output of one run
type Report struct {
	GeneratedAt    time.Time        `json:"generated_at"`
	Mode           Mode             `json:"mode"`
	Months         int              `json:"months_threshold"`
	Cutoff         time.Time        `json:"cutoff"`
	Limit          int              `json:"limit,omitempty"`
	UnwatchedCount int              `json:"unwatched_count"`
	TotalBytes     int64            `json:"total_reclaimable_bytes"`
	TotalHuman     string           `json:"total_reclaimable_human"`
	Entries        []UnwatchedEntry `json:"unwatched_items"`
}
