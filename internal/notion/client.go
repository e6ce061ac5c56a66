package notion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fund-dashboard-go/internal/config"
	"fund-dashboard-go/internal/upstream"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	baseURL       = "https://api.notion.com/v1"
	notionVersion = "2022-06-28"

	// DefaultPageSize is the largest page the query endpoint allows.
	DefaultPageSize = 100
)

// ClientInterface defines the interface for the document store client.
type ClientInterface interface {
	QueryDatabase(ctx context.Context, databaseID string, query *QueryRequest) (*QueryResponse, error)
	CreatePage(ctx context.Context, databaseID string, properties map[string]any) error
	UpdatePage(ctx context.Context, pageID string, properties map[string]any) error
}

// Client is a client for the Notion REST API.
// It implements the ClientInterface.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new document store client.
func NewClient(cfg *config.Notion, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(cfg.Token).
		SetHeader("Notion-Version", notionVersion).
		SetHeader("Content-Type", "application/json")

	// The hosted store enforces an average of 3 requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// Sort is a single sort instruction for a database query.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// QueryRequest is the body of a database query call.
type QueryRequest struct {
	Filter      map[string]any `json:"filter,omitempty"`
	Sorts       []Sort         `json:"sorts,omitempty"`
	StartCursor string         `json:"start_cursor,omitempty"`
	PageSize    int            `json:"page_size,omitempty"`
}

// QueryResponse is one page of database query results.
type QueryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// Page is a single record of a database.
type Page struct {
	ID          string              `json:"id"`
	CreatedTime time.Time           `json:"created_time"`
	Properties  map[string]Property `json:"properties"`
}

// doRequest executes the request behind the rate limiter. Upstream
// failures come back as *upstream.Error; no retries are attempted.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	c.logger.Debug("Executing store request", zap.String("method", method), zap.String("url", url))
	resp, err := req.Execute(method, url)
	if err != nil {
		return fmt.Errorf("notion %s %s failed: %w", method, url, err)
	}
	if resp.IsError() {
		return &upstream.Error{Service: "notion", StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// QueryDatabase runs a single query call against a database.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, query *QueryRequest) (*QueryResponse, error) {
	var result QueryResponse
	req := c.client.R().
		SetContext(ctx).
		SetBody(query).
		SetResult(&result)

	url := fmt.Sprintf("/databases/%s/query", databaseID)
	if err := c.doRequest(ctx, http.MethodPost, url, req); err != nil {
		return nil, err
	}
	return &result, nil
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

type createPageRequest struct {
	Parent     pageParent     `json:"parent"`
	Properties map[string]any `json:"properties"`
}

type updatePageRequest struct {
	Properties map[string]any `json:"properties"`
}

// CreatePage creates a new record in a database.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties map[string]any) error {
	req := c.client.R().
		SetContext(ctx).
		SetBody(createPageRequest{
			Parent:     pageParent{DatabaseID: databaseID},
			Properties: properties,
		})

	return c.doRequest(ctx, http.MethodPost, "/pages", req)
}

// UpdatePage patches the properties of an existing record.
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]any) error {
	req := c.client.R().
		SetContext(ctx).
		SetBody(updatePageRequest{Properties: properties})

	return c.doRequest(ctx, http.MethodPatch, fmt.Sprintf("/pages/%s", pageID), req)
}
