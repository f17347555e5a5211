package models

// Mode selects which management service the run operates against
type Mode string

const (
	ModeSonarr Mode = "sonarr"
	ModeRadarr Mode = "radarr"
)

// Valid reports whether the mode names a supported service
func (m Mode) Valid() bool {
	return m == ModeSonarr || m == ModeRadarr
}

// ItemType returns the vendor's name for library entries ("series" or "movie")
func (m Mode) ItemType() string {
	if m == ModeSonarr {
		return "series"
	}
	return "movie"
}

// Source identifies which service produced a record
type Source string

const (
	SourceSonarr   Source = "sonarr"
	SourceRadarr   Source = "radarr"
	SourceTautulli Source = "tautulli"
	SourcePlex     Source = "plex"
)
