package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"stickylist/internal/mirror"
	"stickylist/internal/service"
)

// Delete confirmation prompt.
const (
	DeleteTitle   = "Delete Task"
	DeleteMessage = "Are you sure?"
)

// Tasks is the task synchronizer for a single checklist.
type Tasks struct {
	svc         service.Service
	store       mirror.Store
	log         log.FieldLogger
	checklistID string
	key         string

	inflight pending

	mu     sync.Mutex
	items  []service.Task
	notice func(error)
}

// NewTasks creates an empty task synchronizer bound to checklistID.
func NewTasks(svc service.Service, store mirror.Store, checklistID string, logger log.FieldLogger) *Tasks {
	return &Tasks{
		svc:         svc,
		store:       store,
		checklistID: checklistID,
		key:         mirror.TasksKey(checklistID),
		log:         orDiscard(logger).WithFields(log.Fields{"component": "tasks", "checklist": checklistID}),
	}
}

// OnMirrorFailure sets the callback told about failed mirror writes.
// The error matches service.ErrMirrorWriteFailed.
func (t *Tasks) OnMirrorFailure(fn func(error)) {
	t.mu.Lock()
	t.notice = fn
	t.mu.Unlock()
}

// ChecklistID returns the checklist this synchronizer is bound to.
func (t *Tasks) ChecklistID() string {
	return t.checklistID
}

// Load replaces the in-memory tasks with the server's.
func (t *Tasks) Load(ctx context.Context) error {
	done, err := t.inflight.begin()
	if err != nil {
		return err
	}
	defer done()

	items, err := t.svc.ListTasks(ctx, t.checklistID)
	if err != nil {
		return fmt.Errorf("%w: %w", service.ErrLoadFailed, err)
	}

	t.replace(append([]service.Task(nil), items...))
	t.log.WithField("count", len(items)).Debug("tasks loaded")
	t.mirror(ctx)
	return nil
}

// Create adds a task with the trimmed text and color. An empty color
// means service.DefaultColor. The server's copy is prepended on success.
func (t *Tasks) Create(ctx context.Context, text string, color service.Color) (service.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return service.Task{}, ErrBlank
	}
	if color == "" {
		color = service.DefaultColor
	}
	if !color.Valid() {
		return service.Task{}, fmt.Errorf("%w: unknown color: %s", service.ErrValidationFailed, color)
	}

	done, err := t.inflight.begin()
	if err != nil {
		return service.Task{}, err
	}
	defer done()

	created, err := t.svc.CreateTask(ctx, t.checklistID, text, color)
	if err != nil {
		return service.Task{}, fmt.Errorf("%w: %w", service.ErrCreateFailed, err)
	}

	t.mu.Lock()
	t.items = append([]service.Task{created}, t.items...)
	t.mu.Unlock()

	t.log.WithField("id", created.ID).Debug("task created")
	t.mirror(ctx)
	return created, nil
}

// ToggleCompleted flips the completed flag of the task with id.
// Nothing is sent to the server.
func (t *Tasks) ToggleCompleted(ctx context.Context, id string) (service.Task, bool) {
	return t.toggle(ctx, id, func(task *service.Task) { task.Completed = !task.Completed })
}

// TogglePinned flips the pinned flag of the task with id.
// Nothing is sent to the server.
func (t *Tasks) TogglePinned(ctx context.Context, id string) (service.Task, bool) {
	return t.toggle(ctx, id, func(task *service.Task) { task.Pinned = !task.Pinned })
}

func (t *Tasks) toggle(ctx context.Context, id string, flip func(*service.Task)) (service.Task, bool) {
	t.mu.Lock()
	var (
		updated service.Task
		found   bool
	)
	next := make([]service.Task, len(t.items))
	for i, task := range t.items {
		if task.ID == id {
			flip(&task)
			updated, found = task, true
		}
		next[i] = task
	}
	if found {
		t.items = next
	}
	t.mu.Unlock()

	if !found {
		return service.Task{}, false
	}
	t.mirror(ctx)
	return updated, true
}

// Delete removes the task with id after confirm accepts and the server
// confirms. It reports whether the task was deleted; a declined
// confirmation returns false and a nil error.
func (t *Tasks) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if confirm != nil {
		ok, err := confirm.Confirm(ctx, DeleteTitle, DeleteMessage)
		if err != nil || !ok {
			return false, err
		}
	}

	done, err := t.inflight.begin()
	if err != nil {
		return false, err
	}
	defer done()

	if err := t.svc.DeleteTask(ctx, t.checklistID, id); err != nil {
		return false, fmt.Errorf("%w: %w", service.ErrDeleteFailed, err)
	}

	t.mu.Lock()
	kept := make([]service.Task, 0, len(t.items))
	for _, task := range t.items {
		if task.ID != id {
			kept = append(kept, task)
		}
	}
	t.items = kept
	t.mu.Unlock()

	t.log.WithField("id", id).Debug("task deleted")
	t.mirror(ctx)
	return true, nil
}

// Restore replaces the in-memory tasks with the mirror copy. It reports
// false when the mirror holds none for this checklist.
func (t *Tasks) Restore(ctx context.Context) (bool, error) {
	var items []service.Task
	ok, err := mirror.GetJSON(ctx, t.store, t.key, &items)
	if err != nil || !ok {
		return false, err
	}
	t.replace(items)
	return true, nil
}

// Items returns a copy of the tasks in list order.
func (t *Tasks) Items() []service.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]service.Task(nil), t.items...)
}

// Display returns the tasks in render order: pinned first.
func (t *Tasks) Display() []service.Task {
	return Partition(t.Items())
}

func (t *Tasks) replace(items []service.Task) {
	t.mu.Lock()
	t.items = items
	t.mu.Unlock()
}

// mirror writes the full list under tasks_{checklistID}. An empty list is
// written too. Failures go to the log and the notice callback.
func (t *Tasks) mirror(ctx context.Context) {
	items := t.Items()
	if items == nil {
		items = []service.Task{}
	}
	err := mirror.PutJSON(ctx, t.store, t.key, items)
	if err == nil {
		return
	}

	err = errors.Join(service.ErrMirrorWriteFailed, err)
	t.log.WithError(err).WithField("key", t.key).Warn("failed to save tasks")

	t.mu.Lock()
	notice := t.notice
	t.mu.Unlock()
	if notice != nil {
		notice(err)
	}
}
