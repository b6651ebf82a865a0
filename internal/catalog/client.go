package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lehigh-university-libraries/bhl-commons/internal/restyutil"
)

const DefaultBaseURL = "https://www.biodiversitylibrary.org/api3"

// ErrNotFound is returned when the API answers ok but with no result.
var ErrNotFound = errors.New("not found")

// APIError is a failed or malformed api3 response.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Options configures a catalog client
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retries int
}

// Client is a BHL api3 client
type Client struct {
	BaseURL string
	apiKey  string
	http    *resty.Client
}

// NewClient creates a new catalog client. The API key lives as long as the
// client does.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("api key required for BHL api3")
	}

	httpClient, err := restyutil.New(restyutil.Options{
		Timeout: opts.Timeout,
		Retries: opts.Retries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	return &Client{
		BaseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		http:    httpClient,
	}, nil
}

// GetItemMetadata fetches an item including page-level details
func (c *Client) GetItemMetadata(ctx context.Context, itemID string) (*Item, error) {
	items, err := get[Item](ctx, c, "GetItemMetadata", map[string]string{
		"id":    itemID,
		"pages": "true",
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}

	item := items[0]
	slog.Info("Fetched item metadata", "item_id", item.ItemID, "title_id", item.TitleID, "pages", len(item.Pages))
	return &item, nil
}

// GetTitleMetadata fetches the title the item belongs to
func (c *Client) GetTitleMetadata(ctx context.Context, item *Item) (*Title, error) {
	if item == nil || item.TitleID == 0 {
		return nil, &APIError{Op: "GetTitleMetadata", Message: "item has no title id"}
	}

	titleID := strconv.Itoa(item.TitleID)
	titles, err := get[Title](ctx, c, "GetTitleMetadata", map[string]string{
		"id": titleID,
	})
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("title %s: %w", titleID, ErrNotFound)
	}

	title := titles[0]
	slog.Info("Fetched title metadata", "title_id", title.TitleID, "short_title", title.ShortTitle)
	return &title, nil
}

func get[T any](ctx context.Context, c *Client, op string, params map[string]string) ([]T, error) {
	slog.Debug("Calling BHL api3", "op", op, "params", params)

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("op", op).
		SetQueryParam("format", "json").
		SetQueryParam("apikey", c.apiKey).
		Get(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", op, err)
	}

	var body apiResponse[T]
	decodeErr := json.Unmarshal(res.Body(), &body)

	if res.IsError() {
		msg := body.ErrorMessage
		if decodeErr != nil || msg == "" {
			msg = string(res.Body())
		}
		return nil, &APIError{Op: op, StatusCode: res.StatusCode(), Message: msg}
	}
	if decodeErr != nil {
		return nil, &APIError{Op: op, Message: fmt.Sprintf("malformed response: %v", decodeErr)}
	}
	if body.Status != "ok" {
		msg := body.ErrorMessage
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, &APIError{Op: op, Message: msg}
	}

	return body.Result, nil
}
