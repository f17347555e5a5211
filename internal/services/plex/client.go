package plex

import (
	"context"
	"encoding/xml"
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

// sectionList represents the XML response from /library/sections
type sectionList struct {
	XMLName     xml.Name    `xml:"MediaContainer"`
	Directories []Directory `xml:"Directory"`
}

// Directory represents one Plex library section
type Directory struct {
	Key   string `xml:"key,attr"`
	Type  string `xml:"type,attr"` // "show" or "movie"
	Title string `xml:"title,attr"`
}

// historyList represents the XML response from /status/sessions/history/all
type historyList struct {
	XMLName xml.Name `xml:"MediaContainer"`
	Videos  []Video  `xml:"Video"`
}

// Video represents one played item in the Plex history
type Video struct {
	Title            string `xml:"title,attr"`
	GrandparentTitle string `xml:"grandparentTitle,attr"`
	Type             string `xml:"type,attr"`
	ViewedAt         int64  `xml:"viewedAt,attr"`
}

// Client wraps the Plex HTTP API, used as a fallback history source
// when Tautulli is unavailable
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Plex client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.PlexURL == "" {
		return nil, fmt.Errorf("plex URL is required")
	}
	if cfg.PlexToken == "" {
		return nil, fmt.Errorf("plex token is required")
	}

	return &Client{
		baseURL: cfg.PlexURL,
		token:   cfg.PlexToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// FetchHistory retrieves play events for the named library after the cutoff
func (c *Client) FetchHistory(ctx context.Context, mode models.Mode, libraryName string, after time.Time) ([]models.WatchEvent, error) {
	section, err := c.findSection(ctx, mode, libraryName)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("librarySectionID", section.Key)
	params.Set("viewedAt>", strconv.FormatInt(after.Unix(), 10))
	params.Set("sort", "viewedAt:desc")

	var history historyList
	if err := c.doRequest(ctx, "/status/sessions/history/all", params, &history); err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	events := make([]models.WatchEvent, 0, len(history.Videos))
	for _, v := range history.Videos {
		title := v.Title
		if mode == models.ModeSonarr && v.GrandparentTitle != "" {
			title = v.GrandparentTitle
		}
		if title == "" || v.ViewedAt == 0 {
			continue
		}

		events = append(events, models.WatchEvent{
			Title:    title,
			PlayedAt: time.Unix(v.ViewedAt, 0),
			Source:   models.SourcePlex,
		})
	}

	c.logger.WithFields(logrus.Fields{
		"library": section.Title,
		"count":   len(events),
	}).Debug("Fetched Plex history")

	return events, nil
}

// findSection resolves the library name to a Plex section, falling back
// to the first section of the right type like the Tautulli lookup does
func (c *Client) findSection(ctx context.Context, mode models.Mode, libraryName string) (*Directory, error) {
	var sections sectionList
	if err := c.doRequest(ctx, "/library/sections", nil, &sections); err != nil {
		return nil, fmt.Errorf("failed to fetch library sections: %w", err)
	}

	sectionType := "movie"
	if mode == models.ModeSonarr {
		sectionType = "show"
	}

	for i := range sections.Directories {
		if sections.Directories[i].Type == sectionType && sections.Directories[i].Title == libraryName {
			return &sections.Directories[i], nil
		}
	}

	for i := range sections.Directories {
		if sections.Directories[i].Type == sectionType {
			c.logger.WithFields(logrus.Fields{
				"wanted":   libraryName,
				"fallback": sections.Directories[i].Title,
			}).Warn("Configured library not found, falling back to first matching section")
			return &sections.Directories[i], nil
		}
	}

	return nil, fmt.Errorf("no %s library section found in Plex", sectionType)
}

// doRequest performs a token-authenticated request and decodes the XML response
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result interface{}) error {
	fullURL := strings.TrimRight(c.baseURL, "/") + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	c.logger.WithField("url", fullURL).Trace("Making Plex API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &models.StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if result != nil {
		if err := xml.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
