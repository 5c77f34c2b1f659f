// Package googletasks implements the service.Service interface using Google Tasks API.
// Checklists map to task lists and tasks to tasks. The task color is kept
// in the task notes; pins are not stored remotely.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"stickylist/internal/config"
	"stickylist/internal/service"
)

const (
	// PageSize is the number of items requested per page.
	PageSize = 100

	// Scope is the OAuth scope for Google Tasks.
	Scope = tasks.TasksScope

	// colorPrefix marks the color line in task notes.
	colorPrefix = "color:"

	statusCompleted = "completed"
)

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc     *tasks.Service
	timeout time.Duration
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and google_token.json in the config dir.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := LoadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	tokenData, err := os.ReadFile(cfg.GoogleTokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s (run: stickylist google-login)", service.ErrNotLoggedIn, config.GoogleTokenFile)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.GoogleTokenFile, err)
	}

	// Token source refreshes as needed
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, timeout: cfg.Timeout}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and
// endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc, timeout: config.DefaultTimeout}, nil
}

// LoadOAuthConfig reads the OAuth client credentials from the config dir.
func LoadOAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}
	return oauthConfig, nil
}

// ListChecklists returns all task lists in API order.
func (c *Client) ListChecklists(ctx context.Context) ([]service.Checklist, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := []service.Checklist{}
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			result = append(result, toChecklist(list))
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// CreateChecklist creates a new task list.
func (c *Client) CreateChecklist(ctx context.Context, title string) (service.Checklist, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return service.Checklist{}, wrapError(err)
	}
	return toChecklist(list), nil
}

// DeleteChecklist deletes a task list by ID.
func (c *Client) DeleteChecklist(ctx context.Context, checklistID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasklists.Delete(checklistID).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// ListTasks returns all tasks of a list, completed ones included.
func (c *Client) ListTasks(ctx context.Context, checklistID string) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := []service.Task{}
	err := c.svc.Tasks.List(checklistID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, task := range resp.Items {
				result = append(result, toTask(checklistID, task))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// CreateTask creates a new task in the specified list.
func (c *Client) CreateTask(ctx context.Context, checklistID, text string, color service.Color) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	task, err := c.svc.Tasks.Insert(checklistID, &tasks.Task{
		Title: text,
		Notes: colorPrefix + string(color),
	}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(checklistID, task), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, checklistID, taskID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(checklistID, taskID).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

func toChecklist(list *tasks.TaskList) service.Checklist {
	c := service.Checklist{ID: list.Id, Title: list.Title}
	if t, err := time.Parse(time.RFC3339, list.Updated); err == nil {
		c.CreatedAt = t
	}
	return c
}

func toTask(checklistID string, task *tasks.Task) service.Task {
	return service.Task{
		ID:        task.Id,
		Text:      task.Title,
		Color:     colorFromNotes(task.Notes),
		Completed: task.Status == statusCompleted,
		Checklist: checklistID,
	}
}

// colorFromNotes finds a "color:<hex>" line in notes.
func colorFromNotes(notes string) service.Color {
	for _, line := range strings.Split(notes, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, colorPrefix) {
			continue
		}
		if c := service.Color(strings.TrimPrefix(line, colorPrefix)); c.Valid() {
			return c
		}
	}
	return service.DefaultColor
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.ErrTimeout
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: token expired or revoked (run: stickylist google-login)", service.ErrNotLoggedIn)
		}
		return &service.RemoteError{StatusCode: gerr.Code, Message: gerr.Message}
	}
	return err
}
