// Package restapi implements the service.Service interface over the task
// store's REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
)

const (
	collectionPath = "/api/tasks"
	itemPath       = "/api/tasks/{id}"
)

// Client implements service.Service against a REST task store.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     *zap.Logger
}

// New creates a REST client from configuration.
func New(cfg *config.Config) (*Client, error) {
	return NewWithHTTPClient(cfg.APIURL, http.DefaultClient, cfg.Timeout, cfg.Logger())
}

// NewWithHTTPClient creates a client with a custom HTTP client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, timeout time.Duration, log *zap.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api url: %s", baseURL)
	}
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return &Client{
		base:    base,
		http:    httpClient,
		timeout: timeout,
		log:     logging.OrNop(log).Named("restapi"),
	}, nil
}

// taskJSON is the wire form of a task. Stores differ in how they name and
// type the identifier, so both "id" and "_id" are accepted as strings or
// numbers.
type taskJSON struct {
	ID          any        `json:"id,omitempty"`
	MongoID     any        `json:"_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

func (t taskJSON) toTask() service.Task {
	id := formatID(t.ID)
	if id == "" {
		id = formatID(t.MongoID)
	}
	task := service.Task{
		ID:          id,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
	}
	if t.CreatedAt != nil {
		task.CreatedAt = *t.CreatedAt
	}
	return task
}

func formatID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

type createBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type patchBody struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var raw []taskJSON
	if err := c.do(ctx, http.MethodGet, c.endpoint(collectionPath, ""), nil, &raw); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]service.Task, 0, len(raw))
	for _, t := range raw {
		tasks = append(tasks, t.toTask())
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, task service.NewTask) (service.Task, error) {
	body := createBody{Title: task.Title, Description: task.Description}

	var raw taskJSON
	if err := c.do(ctx, http.MethodPost, c.endpoint(collectionPath, ""), body, &raw); err != nil {
		return service.Task{}, fmt.Errorf("create task: %w", err)
	}
	return raw.toTask(), nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	body := patchBody{Title: patch.Title, Description: patch.Description, Completed: patch.Completed}

	var raw taskJSON
	if err := c.do(ctx, http.MethodPut, c.endpoint(itemPath, id), body, &raw); err != nil {
		return service.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	return raw.toTask(), nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, c.endpoint(itemPath, id), nil, nil); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// endpoint joins path onto the base address and expands {id}.
func (c *Client) endpoint(path, id string) *url.URL {
	u := *c.base
	u.Path = strings.TrimSuffix(c.base.Path, "/") + path
	u.RawPath = ""
	if id != "" {
		googleapi.Expand(&u, map[string]string{"id": id})
	}
	return &u
}

// do sends one request. in is encoded as the JSON body when non-nil; out
// receives the decoded response when non-nil. Any non-2xx status is an error.
func (c *Client) do(ctx context.Context, method string, u *url.URL, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := sonic.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.Stringer("url", u), zap.Error(err))
		return err
	}
	defer googleapi.CloseBody(res)

	c.log.Debug("request done",
		zap.String("method", method),
		zap.Stringer("url", u),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := googleapi.CheckResponse(res); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := sonic.ConfigStd.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
