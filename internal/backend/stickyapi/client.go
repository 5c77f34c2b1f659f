// Package stickyapi implements service.Service and service.Authenticator
// against the Sticky List REST API.
package stickyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"stickylist/internal/config"
	"stickylist/internal/logging"
	"stickylist/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = config.DefaultTimeout

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Client implements service.Service using the Sticky List API.
type Client struct {
	baseURL string
	timeout time.Duration
	// anon sends login/register; authed sends everything else.
	anon   *http.Client
	authed *http.Client
	log    log.FieldLogger
}

// New creates a client for cfg.BaseURL. Authenticated calls draw their
// bearer token from tokens when cfg.SendAuthHeader is set.
func New(cfg *config.Config, tokens oauth2.TokenSource, logger log.FieldLogger) *Client {
	base := &http.Client{Transport: http.DefaultTransport}
	authed := base
	if cfg.SendAuthHeader && tokens != nil {
		authed = &http.Client{Transport: &oauth2.Transport{Source: tokens, Base: http.DefaultTransport}}
	}
	return newClient(cfg.BaseURL, cfg.Timeout, base, authed, logger)
}

// NewWithHTTPClient creates a client that sends every request through
// httpClient (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return newClient(baseURL, APITimeout, httpClient, httpClient, nil)
}

func newClient(baseURL string, timeout time.Duration, anon, authed *http.Client, logger log.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = APITimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		anon:    anon,
		authed:  authed,
		log:     logger,
	}
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, c.anon, http.MethodPost, "/api/auth/login", credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return resp.Token, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.do(ctx, c.anon, http.MethodPost, "/api/auth/register", credentials{Email: email, Password: password}, nil)
}

// ListChecklists returns all checklists in server order.
func (c *Client) ListChecklists(ctx context.Context) ([]service.Checklist, error) {
	var resp checklistsResponse
	if err := c.do(ctx, c.authed, http.MethodGet, "/api/checklists", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Checklists == nil {
		return []service.Checklist{}, nil
	}
	return resp.Checklists, nil
}

// CreateChecklist creates a checklist and returns the server's copy.
func (c *Client) CreateChecklist(ctx context.Context, title string) (service.Checklist, error) {
	var resp checklistResponse
	if err := c.do(ctx, c.authed, http.MethodPost, "/api/checklists", createChecklistRequest{Title: title}, &resp); err != nil {
		return service.Checklist{}, err
	}
	if resp.Checklist.ID == "" {
		return service.Checklist{}, fmt.Errorf("create response carried no checklist")
	}
	return resp.Checklist, nil
}

// DeleteChecklist deletes a checklist by ID.
func (c *Client) DeleteChecklist(ctx context.Context, checklistID string) error {
	return c.do(ctx, c.authed, http.MethodDelete, "/api/checklists/"+url.PathEscape(checklistID), nil, nil)
}

// ListTasks returns all tasks of a checklist in server order.
func (c *Client) ListTasks(ctx context.Context, checklistID string) ([]service.Task, error) {
	var resp tasksResponse
	if err := c.do(ctx, c.authed, http.MethodGet, "/api/tasks/checklist/"+url.PathEscape(checklistID), nil, &resp); err != nil {
		return nil, err
	}
	tasks := make([]service.Task, 0, len(resp.Tasks))
	for _, t := range resp.Tasks {
		tasks = append(tasks, t.toTask(checklistID))
	}
	return tasks, nil
}

// CreateTask creates a task and returns the server's copy.
func (c *Client) CreateTask(ctx context.Context, checklistID, text string, color service.Color) (service.Task, error) {
	req := createTaskRequest{Title: text, Checklist: checklistID, Color: color}
	var resp taskResponse
	if err := c.do(ctx, c.authed, http.MethodPost, "/api/tasks", req, &resp); err != nil {
		return service.Task{}, err
	}
	if resp.Task.ID == "" {
		return service.Task{}, fmt.Errorf("create response carried no task")
	}
	return resp.Task.toTask(checklistID), nil
}

// DeleteTask deletes a task. Tasks are addressed globally, so checklistID
// is not sent.
func (c *Client) DeleteTask(ctx context.Context, checklistID, taskID string) error {
	return c.do(ctx, c.authed, http.MethodDelete, "/api/tasks/"+url.PathEscape(taskID), nil, nil)
}

// do sends one JSON request and decodes a 2xx body into out (if non-nil).
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.log.WithFields(log.Fields{"method": method, "path": path}).WithError(err).Debug("request failed")
		return wrapError(err)
	}
	defer resp.Body.Close()

	c.log.WithFields(log.Fields{
		"method":  method,
		"path":    path,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("request complete")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return wrapError(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// decodeError turns a non-2xx response into a *service.RemoteError,
// picking up a {"message"} or {"error"} body when present.
func decodeError(resp *http.Response) error {
	remote := &service.RemoteError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return remote
	}
	var body errorResponse
	if json.Unmarshal(data, &body) == nil {
		remote.Message = strings.TrimSpace(body.Message)
		if remote.Message == "" {
			remote.Message = strings.TrimSpace(body.Error)
		}
	}
	return remote
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.ErrTimeout
	}
	if errors.Is(err, service.ErrNotLoggedIn) {
		return service.ErrNotLoggedIn
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return service.ErrTimeout
	}
	return err
}
