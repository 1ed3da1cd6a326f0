package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newscache/internal/domain"
)

// publishedAtLayout is the timestamp format NewsAPI uses. Rows whose
// timestamps fail this exact layout are dropped individually, never
// failing the batch.
const publishedAtLayout = "2006-01-02T15:04:05Z"

// Config holds NewsAPI client configuration.
type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client fetches headlines and the source catalogue from NewsAPI.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string

	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	logger *slog.Logger
}

// New creates a NewsAPI client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", "newsapi"),
	}
}

// TopHeadlinesBySources fetches headlines for a list of source ids.
func (c *Client) TopHeadlinesBySources(ctx context.Context, sourceIDs []string, pageSize int) ([]domain.Article, error) {
	params := url.Values{}
	params.Set("sources", strings.Join(sourceIDs, ","))
	params.Set("pageSize", strconv.Itoa(pageSize))

	return c.fetchHeadlines(ctx, params)
}

// TopHeadlinesByCountry fetches headlines for a country code.
func (c *Client) TopHeadlinesByCountry(ctx context.Context, country string, pageSize int) ([]domain.Article, error) {
	params := url.Values{}
	params.Set("country", country)
	params.Set("pageSize", strconv.Itoa(pageSize))

	return c.fetchHeadlines(ctx, params)
}

func (c *Client) fetchHeadlines(ctx context.Context, params url.Values) ([]domain.Article, error) {
	var resp headlinesResponse
	if err := c.get(ctx, "/top-headlines", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "ok" {
		return nil, fmt.Errorf("api status %q: %s", resp.Status, resp.Message)
	}

	return c.transform(resp.Articles), nil
}

// Sources fetches the source catalogue. Both filters are optional;
// empty means no filter.
func (c *Client) Sources(ctx context.Context, category, language string) ([]domain.Source, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	if language != "" {
		params.Set("language", language)
	}

	var resp sourcesResponse
	if err := c.get(ctx, "/sources", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "ok" {
		return nil, fmt.Errorf("api status %q: %s", resp.Status, resp.Message)
	}

	sources := make([]domain.Source, 0, len(resp.Sources))
	for _, s := range resp.Sources {
		sources = append(sources, toDomainSource(s))
	}

	return sources, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("apiKey", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = c.doRequest(ctx, reqURL, out)
		if err == nil {
			return nil
		}

		if attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"path", path,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
}

func (c *Client) doRequest(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "NewsCache/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

func (c *Client) transform(articles []apiArticle) []domain.Article {
	result := make([]domain.Article, 0, len(articles))

	for _, a := range articles {
		publishedAt, err := time.Parse(publishedAtLayout, a.PublishedAt)
		if err != nil {
			c.logger.Warn("failed to parse publishedAt, dropping row",
				"url", a.URL,
				"published_at", a.PublishedAt,
			)
			continue
		}

		description := "No description"
		if a.Description != nil && *a.Description != "" {
			description = *a.Description
		}

		imageURL := ""
		if a.URLToImage != nil {
			imageURL = *a.URLToImage
		}

		result = append(result, domain.Article{
			Title:       a.Title,
			Description: description,
			URL:         a.URL,
			ImageURL:    imageURL,
			Source:      toDomainSource(a.Source),
			PublishedAt: publishedAt,
		})
	}

	return result
}

func toDomainSource(s apiSource) domain.Source {
	id := "unknown"
	if s.ID != nil && *s.ID != "" {
		id = *s.ID
	}
	return domain.Source{ID: id, Name: s.Name}
}
