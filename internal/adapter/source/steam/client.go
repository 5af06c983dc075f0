package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/backlog/internal/domain"
)

const (
	DefaultBaseURL   = "https://api.steampowered.com"
	DefaultBatchSize = 100
	defaultTimeout   = 60 * time.Second

	ownedGamesPath = "/IPlayerService/GetOwnedGames/v0001/"
	getAppsPath    = "/ICommunityService/GetApps/v1/"
)

// StatusError is returned when the Steam Web API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("steam %s: unexpected status code: %d", e.Path, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return domain.ErrUnexpectedStatus }

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL   string
	BatchSize int
	Timeout   time.Duration
}

// Client implements domain.OwnedGamesRepository for the Steam Web API.
// Requests are never retried.
type Client struct {
	baseURL    string
	apiKey     string
	batchSize  int
	httpClient *http.Client
	logger     *slog.Logger
}

var _ domain.OwnedGamesRepository = (*Client)(nil)

// NewClient creates a new Steam Web API client
func NewClient(apiKey string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		apiKey:    apiKey,
		batchSize: opts.BatchSize,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger: logger,
	}
}

// doRequest performs a keyed GET against the Steam Web API and returns the body.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	logQuery := query.Encode()
	query.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("steam request", "path", path, "query", logQuery)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("steam request failed", "path", path, "error", redact(err, c.apiKey))
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceOffline, path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("steam request error", "status", resp.StatusCode, "path", path, "body", string(body))
		return nil, &StatusError{StatusCode: resp.StatusCode, Path: path, Body: string(body)}
	}

	return body, nil
}

// ListOwnedItems returns the app ids owned by a Steam user (steamid64).
func (c *Client) ListOwnedItems(ctx context.Context, userID string) ([]domain.AppID, error) {
	query := url.Values{}
	query.Set("steamid", userID)
	query.Set("format", "json")

	body, err := c.doRequest(ctx, ownedGamesPath, query)
	if err != nil {
		return nil, err
	}

	var resp OwnedGamesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	ids, err := MapOwnedGames(resp)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("listed owned games", "count", len(ids))
	return ids, nil
}

// ResolveMetadata resolves names and icons for ids. Ids are sent in batches
// of the configured size; results are concatenated in batch order.
func (c *Client) ResolveMetadata(ctx context.Context, ids []domain.AppID, onProgress domain.ProgressFunc) ([]domain.AppInfo, error) {
	var all []domain.AppInfo
	loaded := 0

	for _, batch := range chunk(ids, c.batchSize) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		apps, err := c.getApps(ctx, batch)
		if err != nil {
			return nil, err
		}
		all = append(all, apps...)

		loaded += len(batch)
		if onProgress != nil {
			onProgress(loaded, len(ids))
		}
	}

	c.logger.Debug("resolved app metadata", "requested", len(ids), "resolved", len(all))
	return all, nil
}

func (c *Client) getApps(ctx context.Context, ids []domain.AppID) ([]domain.AppInfo, error) {
	query := url.Values{}
	for i, id := range ids {
		query.Set(fmt.Sprintf("appids[%d]", i), id.String())
	}

	body, err := c.doRequest(ctx, getAppsPath, query)
	if err != nil {
		return nil, err
	}

	var resp AppsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return MapApps(resp)
}

// chunk splits ids into consecutive slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]T
	for len(items) > 0 {
		n := min(size, len(items))
		out = append(out, items[:n:n])
		items = items[n:]
	}
	return out
}

// redact strips the API key from transport errors, which embed the request URL.
func redact(err error, key string) string {
	msg := err.Error()
	var urlErr *url.Error
	if key != "" && errors.As(err, &urlErr) {
		msg = strings.ReplaceAll(msg, key, "REDACTED")
	}
	return msg
}
