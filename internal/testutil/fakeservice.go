// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stickylist/internal/service"
)

// FakeService is an in-memory implementation of service.Service and
// service.Authenticator for testing.
type FakeService struct {
	mu         sync.RWMutex
	checklists []service.Checklist
	tasks      map[string][]service.Task // checklistID -> tasks
	accounts   map[string]string         // email -> password
	seq        int
	calls      []string

	// Now stamps created checklists.
	Now func() time.Time

	// Token is returned by a successful Login.
	Token string

	// Block, when set, is received from before each checklist/task call
	// returns, letting tests hold a request in flight.
	Block chan struct{}

	// Error injection for testing
	LoginErr           error
	RegisterErr        error
	ListChecklistsErr  error
	CreateChecklistErr error
	DeleteChecklistErr error
	ListTasksErr       error
	CreateTaskErr      error
	DeleteTaskErr      error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		tasks:    make(map[string][]service.Task),
		accounts: make(map[string]string),
		Token:    "fake-token",
		Now:      func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

// AddChecklist appends a checklist.
func (f *FakeService) AddChecklist(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checklists = append(f.checklists, service.Checklist{ID: id, Title: title, CreatedAt: f.Now()})
	if _, ok := f.tasks[id]; !ok {
		f.tasks[id] = nil
	}
}

// AddTask appends a task to a checklist.
func (f *FakeService) AddTask(checklistID string, task service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.Checklist = checklistID
	if task.Color == "" {
		task.Color = service.DefaultColor
	}
	f.tasks[checklistID] = append(f.tasks[checklistID], task)
}

// AddAccount registers an account directly.
func (f *FakeService) AddAccount(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[email] = password
}

// Calls returns the names of the service methods called so far.
func (f *FakeService) Calls() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.calls...)
}

// ServerTasks returns the tasks stored for a checklist.
func (f *FakeService) ServerTasks(checklistID string) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task(nil), f.tasks[checklistID]...)
}

// ServerChecklists returns the stored checklists.
func (f *FakeService) ServerChecklists() []service.Checklist {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Checklist(nil), f.checklists...)
}

func (f *FakeService) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *FakeService) wait(ctx context.Context) error {
	if f.Block == nil {
		return nil
	}
	select {
	case <-f.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeService) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

// Login implements service.Authenticator.
func (f *FakeService) Login(ctx context.Context, email, password string) (string, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if pw, ok := f.accounts[email]; !ok || pw != password {
		return "", &service.RemoteError{StatusCode: 401, Message: "Invalid credentials"}
	}
	return f.Token, nil
}

// Register implements service.Authenticator.
func (f *FakeService) Register(ctx context.Context, email, password string) error {
	f.record("Register")
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[email]; ok {
		return &service.RemoteError{StatusCode: 400, Message: "User already exists"}
	}
	f.accounts[email] = password
	return nil
}

// ListChecklists implements service.Service.
func (f *FakeService) ListChecklists(ctx context.Context) ([]service.Checklist, error) {
	f.record("ListChecklists")
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.ListChecklistsErr != nil {
		return nil, f.ListChecklistsErr
	}
	return f.ServerChecklists(), nil
}

// CreateChecklist implements service.Service. New checklists go first,
// like the real API's newest-first ordering.
func (f *FakeService) CreateChecklist(ctx context.Context, title string) (service.Checklist, error) {
	f.record("CreateChecklist")
	if err := f.wait(ctx); err != nil {
		return service.Checklist{}, err
	}
	if f.CreateChecklistErr != nil {
		return service.Checklist{}, f.CreateChecklistErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := service.Checklist{ID: f.nextID("c"), Title: title, CreatedAt: f.Now()}
	f.checklists = append([]service.Checklist{c}, f.checklists...)
	f.tasks[c.ID] = nil
	return c, nil
}

// DeleteChecklist implements service.Service.
func (f *FakeService) DeleteChecklist(ctx context.Context, checklistID string) error {
	f.record("DeleteChecklist")
	if err := f.wait(ctx); err != nil {
		return err
	}
	if f.DeleteChecklistErr != nil {
		return f.DeleteChecklistErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.checklists {
		if c.ID == checklistID {
			f.checklists = append(f.checklists[:i:i], f.checklists[i+1:]...)
			delete(f.tasks, checklistID)
			return nil
		}
	}
	return &service.RemoteError{StatusCode: 404, Message: "Checklist not found"}
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, checklistID string) ([]service.Task, error) {
	f.record("ListTasks")
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	tasks, ok := f.tasks[checklistID]
	if !ok {
		return nil, &service.RemoteError{StatusCode: 404, Message: "Checklist not found"}
	}
	return append([]service.Task(nil), tasks...), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, checklistID, text string, color service.Color) (service.Task, error) {
	f.record("CreateTask")
	if err := f.wait(ctx); err != nil {
		return service.Task{}, err
	}
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[checklistID]; !ok {
		return service.Task{}, &service.RemoteError{StatusCode: 404, Message: "Checklist not found"}
	}
	t := service.Task{ID: f.nextID("t"), Text: text, Color: color, Checklist: checklistID}
	f.tasks[checklistID] = append([]service.Task{t}, f.tasks[checklistID]...)
	return t, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, checklistID, taskID string) error {
	f.record("DeleteTask")
	if err := f.wait(ctx); err != nil {
		return err
	}
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, tasks := range f.tasks {
		for i, t := range tasks {
			if t.ID == taskID {
				f.tasks[id] = append(tasks[:i:i], tasks[i+1:]...)
				return nil
			}
		}
	}
	return &service.RemoteError{StatusCode: 404, Message: "Task not found"}
}
