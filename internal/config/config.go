package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/sweeparr/sweeparr/internal/models"
)

// Config holds all application configuration
type Config struct {
	// Sonarr
	SonarrURL    string
	SonarrAPIKey string
	ShowCount    int // Top N shows by size to consider (default: 100)

	// Radarr
	RadarrURL    string
	RadarrAPIKey string
	MovieCount   int // Top N movies by size to consider (default: 100)

	// Tautulli
	TautulliURL      string
	TautulliAPIKey   string
	TVLibraryName    string // Plex library name for shows (default: "TV Shows")
	MovieLibraryName string // Plex library name for movies (default: "Films")

	// Plex (fallback history source)
	PlexURL   string
	PlexToken string

	// Report
	ReportPath string
}

// Load loads configuration from an INI file
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s not found: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")

	// Defaults matching the documented config surface
	v.SetDefault("sonarr.show_count", 100)
	v.SetDefault("radarr.movie_count", 100)
	v.SetDefault("tautulli.tv_library_name", "TV Shows")
	v.SetDefault("tautulli.movie_library_name", "Films")
	v.SetDefault("report.path", "./report")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	reportPath, err := filepath.Abs(v.GetString("report.path"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve report path: %w", err)
	}

	config := &Config{
		// Sonarr
		SonarrURL:    v.GetString("sonarr.url"),
		SonarrAPIKey: v.GetString("sonarr.api_key"),
		ShowCount:    v.GetInt("sonarr.show_count"),

		// Radarr
		RadarrURL:    v.GetString("radarr.url"),
		RadarrAPIKey: v.GetString("radarr.api_key"),
		MovieCount:   v.GetInt("radarr.movie_count"),

		// Tautulli
		TautulliURL:      v.GetString("tautulli.url"),
		TautulliAPIKey:   v.GetString("tautulli.api_key"),
		TVLibraryName:    v.GetString("tautulli.tv_library_name"),
		MovieLibraryName: v.GetString("tautulli.movie_library_name"),

		// Plex
		PlexURL:   v.GetString("plex.url"),
		PlexToken: v.GetString("plex.token"),

		// Report
		ReportPath: reportPath,
	}

	return config, nil
}

// Validate checks that every key the selected mode needs is present.
// Plex settings stay optional: the Plex client is only a fallback history
// source and is skipped when no token is configured.
func (c *Config) Validate(mode models.Mode) error {
	switch mode {
	case models.ModeSonarr:
		if c.SonarrURL == "" {
			return fmt.Errorf("sonarr.url is required")
		}
		if c.SonarrAPIKey == "" {
			return fmt.Errorf("sonarr.api_key is required")
		}
	case models.ModeRadarr:
		if c.RadarrURL == "" {
			return fmt.Errorf("radarr.url is required")
		}
		if c.RadarrAPIKey == "" {
			return fmt.Errorf("radarr.api_key is required")
		}
	default:
		return fmt.Errorf("invalid mode %q, must be 'sonarr' or 'radarr'", mode)
	}

	if c.TautulliURL == "" {
		return fmt.Errorf("tautulli.url is required")
	}
	if c.TautulliAPIKey == "" {
		return fmt.Errorf("tautulli.api_key is required")
	}

	return nil
}

// ItemCount returns the configured library slice size for the mode
func (c *Config) ItemCount(mode models.Mode) int {
	if mode == models.ModeSonarr {
		return c.ShowCount
	}
	return c.MovieCount
}

// LibraryName returns the Tautulli/Plex library name for the mode
func (c *Config) LibraryName(mode models.Mode) string {
	if mode == models.ModeSonarr {
		return c.TVLibraryName
	}
	return c.MovieLibraryName
}

// EnsureReportPath creates the report directory if it does not exist
func (c *Config) EnsureReportPath() error {
	if err := os.MkdirAll(c.ReportPath, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	return nil
}
