package dispatch

import (
	"context"
	"fmt"
	"net/http"

	"fund-dashboard-go/internal/config"
	"fund-dashboard-go/internal/upstream"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	baseURL = "https://api.github.com"

	// ModeProfit recomputes the profit figures. It is currently the only
	// workflow mode.
	ModeProfit = "profit"
)

var allowedModes = map[string]struct{}{
	ModeProfit: {},
}

// IsAllowedMode reports whether mode may be dispatched.
func IsAllowedMode(mode string) bool {
	_, ok := allowedModes[mode]
	return ok
}

// ClientInterface defines the interface for the workflow dispatcher.
type ClientInterface interface {
	Dispatch(ctx context.Context, mode string) error
}

// Client triggers the remote automation workflow that recomputes the fund
// figures. It implements the ClientInterface.
type Client struct {
	client       *resty.Client
	repo         string
	workflowFile string
	ref          string
	logger       *zap.Logger
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new workflow dispatch client.
func NewClient(cfg *config.GitHub, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(cfg.Token).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("Content-Type", "application/json")

	return &Client{
		client:       client,
		repo:         cfg.Repo,
		workflowFile: cfg.WorkflowFile,
		ref:          cfg.Ref,
		logger:       logger,
	}
}

type dispatchRequest struct {
	Ref    string            `json:"ref"`
	Inputs map[string]string `json:"inputs"`
}

// Dispatch fires a single workflow run carrying the mode as an input.
// A failed dispatch is reported, not retried; resubmission is the
// caller's job. Upstream failures come back as *upstream.Error so the
// HTTP layer can forward status and body verbatim.
func (c *Client) Dispatch(ctx context.Context, mode string) error {
	if !IsAllowedMode(mode) {
		return fmt.Errorf("unsupported mode: %s", mode)
	}

	url := fmt.Sprintf("/repos/%s/actions/workflows/%s/dispatches", c.repo, c.workflowFile)
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(dispatchRequest{
			Ref:    c.ref,
			Inputs: map[string]string{"mode": mode},
		}).
		Execute(http.MethodPost, url)
	if err != nil {
		return fmt.Errorf("workflow dispatch failed: %w", err)
	}
	if resp.IsError() {
		return &upstream.Error{Service: "github", StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	c.logger.Info("Workflow dispatched",
		zap.String("repo", c.repo),
		zap.String("workflow", c.workflowFile),
		zap.String("ref", c.ref),
		zap.String("mode", mode),
	)
	return nil
}
