package radarr

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

// Movie represents a movie entry from the Radarr v3 API
type Movie struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Year       int    `json:"year"`
	Path       string `json:"path"`
	SizeOnDisk int64  `json:"sizeOnDisk"`
}

// Client wraps the Radarr v3 HTTP API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Radarr client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.RadarrURL == "" {
		return nil, fmt.Errorf("radarr URL is required")
	}
	if cfg.RadarrAPIKey == "" {
		return nil, fmt.Errorf("radarr API key is required")
	}

	return &Client{
		baseURL: cfg.RadarrURL,
		apiKey:  cfg.RadarrAPIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// FetchCatalog retrieves all movies with their on-disk sizes
func (c *Client) FetchCatalog(ctx context.Context) ([]models.CatalogItem, error) {
	var movies []Movie
	if err := c.doRequest(ctx, http.MethodGet, "/api/v3/movie", &movies); err != nil {
		return nil, fmt.Errorf("failed to fetch movie list: %w", err)
	}

	items := make([]models.CatalogItem, 0, len(movies))
	for _, m := range movies {
		items = append(items, models.CatalogItem{
			ID:     m.ID,
			Title:  m.Title,
			Year:   m.Year,
			Size:   m.SizeOnDisk,
			Path:   m.Path,
			Source: models.SourceRadarr,
		})
	}

	c.logger.WithField("count", len(items)).Debug("Fetched Radarr catalog")
	return items, nil
}

// Delete removes a movie from Radarr, optionally deleting its files on disk
func (c *Client) Delete(ctx context.Context, id int64, removeFiles bool) error {
	path := fmt.Sprintf("/api/v3/movie/%d?deleteFiles=%s", id, strconv.FormatBool(removeFiles))
	if err := c.doRequest(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("failed to delete movie %d: %w", id, err)
	}
	return nil
}

// doRequest performs an authenticated request against the Radarr API
func (c *Client) doRequest(ctx context.Context, method, path string, result interface{}) error {
	fullURL := strings.TrimRight(c.baseURL, "/") + path

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    fullURL,
	}).Trace("Making Radarr API request")

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
