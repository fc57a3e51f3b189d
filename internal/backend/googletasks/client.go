// Package googletasks implements the service.Service interface on the user's
// default Google Tasks list.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todo/internal/config"
	"todo/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks requested per page.
	PageSize = 100

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc     *tasks.Service
	listID  string
	timeout time.Duration
	log     *zap.Logger
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Token source refreshes the access token as needed
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	return &Client{
		svc:     svc,
		listID:  DefaultListID,
		timeout: cfg.Timeout,
		log:     cfg.Logger().Named("googletasks"),
	}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and endpoint
// (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		svc:     svc,
		listID:  DefaultListID,
		timeout: config.DefaultTimeout,
		log:     zap.NewNop(),
	}, nil
}

// OAuthConfig reads oauth_client.json from the config directory.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oauthConfig, nil
}

// ListTasks returns every task of the default list, completed ones included.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result []service.Task
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				result = append(result, toTask(t))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	c.log.Debug("tasks listed", zap.Int("count", len(result)))
	return result, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, task service.NewTask) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	created, err := c.svc.Tasks.Insert(c.listID, &tasks.Task{
		Title: task.Title,
		Notes: task.Description,
	}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(created), nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := &tasks.Task{}
	if patch.Title != nil {
		body.Title = *patch.Title
		body.ForceSendFields = append(body.ForceSendFields, "Title")
	}
	if patch.Description != nil {
		body.Notes = *patch.Description
		body.ForceSendFields = append(body.ForceSendFields, "Notes")
	}
	if patch.Completed != nil {
		if *patch.Completed {
			body.Status = statusCompleted
		} else {
			// Reopening also requires clearing the completion time
			body.Status = statusNeedsAction
			body.NullFields = append(body.NullFields, "Completed")
		}
	}

	updated, err := c.svc.Tasks.Patch(c.listID, id, body).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(updated), nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// toTask maps a Google task. Google Tasks keeps no creation time, so the last
// modification time stands in for it.
func toTask(t *tasks.Task) service.Task {
	task := service.Task{
		ID:          t.Id,
		Title:       t.Title,
		Description: t.Notes,
		Completed:   t.Status == statusCompleted,
	}
	if ts, err := time.Parse(time.RFC3339, t.Updated); err == nil {
		task.CreatedAt = ts
	}
	return task
}

// wrapError adds a hint for the API errors a user can act on.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("token expired or revoked (run: todo login): %w", err)
	case http.StatusNotFound:
		return fmt.Errorf("not found: %w", err)
	}
	return err
}
