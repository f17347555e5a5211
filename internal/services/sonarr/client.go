package sonarr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sweeparr/sweeparr/internal/config"
	"github.com/sweeparr/sweeparr/internal/models"
)

// Series represents a series entry from the Sonarr v3 API
type Series struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Year       int    `json:"year"`
	Path       string `json:"path"`
	Statistics struct {
		SizeOnDisk int64 `json:"sizeOnDisk"`
	} `json:"statistics"`
}

// Client wraps the Sonarr v3 HTTP API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Sonarr client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.SonarrURL == "" {
		return nil, fmt.Errorf("sonarr URL is required")
	}
	if cfg.SonarrAPIKey == "" {
		return nil, fmt.Errorf("sonarr API key is required")
	}

	return &Client{
		baseURL: cfg.SonarrURL,
		apiKey:  cfg.SonarrAPIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// FetchCatalog retrieves all series with their on-disk sizes
func (c *Client) FetchCatalog(ctx context.Context) ([]models.CatalogItem, error) {
	var series []Series
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/series", &series); err != nil {
		return nil, fmt.Errorf("failed to fetch series list: %w", err)
	}

	items := make([]models.CatalogItem, 0, len(series))
	for _, s := range series {
		items = append(items, models.CatalogItem{
			ID:     s.ID,
			Title:  s.Title,
			Year:   s.Year,
			Size:   s.Statistics.SizeOnDisk,
			Path:   s.Path,
			Source: models.SourceSonarr,
		})
	}

	c.logger.WithField("count", len(items)).Debug("Fetched Sonarr catalog")
	return items, nil
}

// Delete removes a series from Sonarr, optionally deleting its files on disk
func (c *Client) Delete(ctx context.Context, id int64, removeFiles bool) error {
	path := fmt.Sprintf("/api/v3/series/%d?deleteFiles=%s", id, strconv.FormatBool(removeFiles))
	if err := c.doRequest(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("failed to delete series %d: %w", id, err)
	}
	return nil
}

// doRequest performs an authenticated request against the Sonarr API
func (c *Client) doRequest(ctx context.Context, method, path string, result interface{}) error {
	fullURL := strings.TrimRight(c.baseURL, "/") + path

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    fullURL,
	}).Trace("Making Sonarr API request")

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

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
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
