package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
)

// maxBodyInError is the max number of body bytes kept in error messages.
const maxBodyInError = 512

// ClientConfig configures the HTTP job backend client.
type ClientConfig struct {
	// BaseURL is the backend root (e.g. "http://localhost:8080").
	BaseURL string
	// HTTPClient is the HTTP client used for all the calls.
	HTTPClient *http.Client
	// Timeout is used when no HTTP client is provided.
	Timeout time.Duration
	// Logger for logging.
	Logger log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = model.DefaultHTTPTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "backend.API"})
	return nil
}

// Client talks with the job backend over HTTP using JSON bodies.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     log.Logger
}

// NewClient returns a new backend HTTP client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", cfg.BaseURL)
	}

	return &Client{
		baseURL:    u,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}, nil
}

// Submit posts the body to the operation endpoint.
func (c *Client) Submit(ctx context.Context, op model.Operation, body model.Body) (*model.Submission, error) {
	spec, err := model.SpecFor(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrSubmission, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("could not marshal body: %w: %w", model.ErrSubmission, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(spec.Path), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w: %w", model.ErrSubmission, err)
	}
	applyHeaders(req)

	respBody, status, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("could not call %s: %w: %w", spec.Path, model.ErrSubmission, err)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%s rejected the request: %w: http %d: %s", spec.Path, model.ErrSubmission, status, truncate(respBody))
	}

	var raw json.RawMessage
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("could not decode %s response: %w: %w", spec.Path, model.ErrSubmission, err)
	}

	if taskID := taskIDFrom(raw); taskID != "" {
		c.logger.Debugf("Operation %s accepted as task %s", op, taskID)
		return &model.Submission{TaskID: taskID}, nil
	}

	if !spec.AllowsInline {
		return nil, fmt.Errorf("%s response lacks a task identifier: %w", spec.Path, model.ErrSubmission)
	}

	c.logger.Debugf("Operation %s answered inline", op)
	return &model.Submission{Immediate: raw}, nil
}

type taskResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// GetTask queries the status of a task.
func (c *Client) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve("task", url.PathEscape(taskID)), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	applyHeaders(req)

	respBody, status, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("could not query task %s: %w", taskID, err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("task %s: %w", taskID, model.ErrNotFound)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("could not query task %s: http %d: %s", taskID, status, truncate(respBody))
	}

	var tr taskResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return nil, fmt.Errorf("could not decode task %s: %w", taskID, err)
	}

	result := tr.Result
	if string(bytes.TrimSpace(result)) == "null" {
		result = nil
	}

	return &model.Task{
		ID:     taskID,
		Status: model.TaskStatus(tr.Status),
		Result: result,
		Error:  tr.Error,
	}, nil
}

func (c *Client) do(req *http.Request) (body []byte, status int, err error) {
	c.logger.Debugf("%s %s", req.Method, req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("could not read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// resolve joins already escaped path elements to the base URL.
func (c *Client) resolve(elem ...string) string {
	return c.baseURL.JoinPath(elem...).String()
}

func applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
}

// taskIDFrom returns the task identifier of a deferred response, if any.
func taskIDFrom(raw json.RawMessage) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}

	var id string
	if err := json.Unmarshal(obj["taskID"], &id); err != nil {
		return ""
	}
	return id
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxBodyInError {
		return s[:maxBodyInError] + "..."
	}
	return s
}
