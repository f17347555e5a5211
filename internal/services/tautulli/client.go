package tautulli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sweeparr/sweeparr/internal/config"
	"github.com/sweeparr/sweeparr/internal/models"
)

// historyPageSize is large enough to cover the whole lookback window in
// one request, matching how much history a single run inspects
const historyPageSize = 10000

// Library represents one library section from cmd=get_libraries
type Library struct {
	SectionID   json.Number `json:"section_id"`
	SectionName string      `json:"section_name"`
	SectionType string      `json:"section_type"` // "show" or "movie"
}

// HistoryItem represents one play record from cmd=get_history
type HistoryItem struct {
	Title            string `json:"title"`
	GrandparentTitle string `json:"grandparent_title"`
	MediaType        string `json:"media_type"`
	Date             int64  `json:"date"`
	Stopped          int64  `json:"stopped"`
}

// envelope is the common Tautulli API v2 response wrapper
type envelope struct {
	Response struct {
		Result  string          `json:"result"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	} `json:"response"`
}

type historyData struct {
	Data []HistoryItem `json:"data"`
}

// Client wraps the Tautulli v2 HTTP API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Tautulli client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.TautulliURL == "" {
		return nil, fmt.Errorf("tautulli URL is required")
	}
	if cfg.TautulliAPIKey == "" {
		return nil, fmt.Errorf("tautulli API key is required")
	}

	return &Client{
		baseURL: cfg.TautulliURL,
		apiKey:  cfg.TautulliAPIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// FetchHistory retrieves play events for the named library after the given
// cutoff. mode selects the section type ("show" for sonarr, "movie" for
// radarr) and which title field identifies the catalog entry.
func (c *Client) FetchHistory(ctx context.Context, mode models.Mode, libraryName string, after time.Time) ([]models.WatchEvent, error) {
	section, err := c.findSection(ctx, mode, libraryName)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("cmd", "get_history")
	params.Set("section_id", section.SectionID.String())
	params.Set("length", strconv.Itoa(historyPageSize))
	params.Set("order_column", "date")
	params.Set("order_dir", "desc")
	params.Set("after", strconv.FormatInt(after.Unix(), 10))

	var data historyData
	if err := c.doRequest(ctx, params, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	events := make([]models.WatchEvent, 0, len(data.Data))
	for _, item := range data.Data {
		// Shows are identified by the series title, movies by their own
		title := item.Title
		if mode == models.ModeSonarr {
			title = item.GrandparentTitle
		}
		if title == "" {
			continue
		}

		ts := item.Stopped
		if ts == 0 {
			ts = item.Date
		}

		events = append(events, models.WatchEvent{
			Title:    title,
			PlayedAt: time.Unix(ts, 0),
			Source:   models.SourceTautulli,
		})
	}

	c.logger.WithFields(logrus.Fields{
		"library": section.SectionName,
		"count":   len(events),
	}).Debug("Fetched Tautulli history")

	return events, nil
}

// findSection resolves the configured library name to a section. When no
// section carries that name, the first section of the right type is used
// so a renamed library degrades to a warning instead of an empty report.
func (c *Client) findSection(ctx context.Context, mode models.Mode, libraryName string) (*Library, error) {
	params := url.Values{}
	params.Set("cmd", "get_libraries")

	var libraries []Library
	if err := c.doRequest(ctx, params, &libraries); err != nil {
		return nil, fmt.Errorf("failed to fetch library sections: %w", err)
	}

	sectionType := "movie"
	if mode == models.ModeSonarr {
		sectionType = "show"
	}

	for i := range libraries {
		if libraries[i].SectionType == sectionType && libraries[i].SectionName == libraryName {
			return &libraries[i], nil
		}
	}

	for i := range libraries {
		if libraries[i].SectionType == sectionType {
			c.logger.WithFields(logrus.Fields{
				"wanted":   libraryName,
				"fallback": libraries[i].SectionName,
			}).Warn("Configured library not found, falling back to first matching section")
			return &libraries[i], nil
		}
	}

	return nil, fmt.Errorf("no %s library section found in Tautulli", sectionType)
}

// doRequest performs a Tautulli API v2 request and unwraps the response envelope
func (c *Client) doRequest(ctx context.Context, params url.Values, result interface{}) error {
	params.Set("apikey", c.apiKey)
	fullURL := strings.TrimRight(c.baseURL, "/") + "/api/v2?" + params.Encode()

	c.logger.WithField("cmd", params.Get("cmd")).Trace("Making Tautulli API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &models.StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Response.Result != "success" {
		// Tautulli reports bad credentials inside a 200 envelope
		if strings.Contains(strings.ToLower(env.Response.Message), "apikey") {
			return fmt.Errorf("%w: %s", models.ErrAuth, env.Response.Message)
		}
		return fmt.Errorf("tautulli API error: %s", env.Response.Message)
	}

	if result != nil {
		if err := json.Unmarshal(env.Response.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}
