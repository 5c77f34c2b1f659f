package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"stickylist/internal/service"
	"stickylist/internal/syncer"
)

// ErrTaskRefRequired indicates no task number was provided.
var ErrTaskRefRequired = refErr(service.ErrValidationFailed, "task number required")

// refError is a user-facing lookup failure. It matches its kind with
// errors.Is but prints only its message.
type refError struct {
	kind error
	msg  string
}

func refErr(kind error, format string, args ...any) error {
	return &refError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func (e *refError) Error() string { return e.msg }
func (e *refError) Unwrap() error { return e.kind }

// ParseTaskNumber parses a 1-based task number.
func ParseTaskNumber(s string) (int, error) {
	if !isAllDigits(s) {
		return 0, refErr(service.ErrValidationFailed, "invalid task number: %s", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, refErr(service.ErrNotFound, "task number out of range: %s", s)
	}
	return n, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// loadChecklists fills a checklist synchronizer. With preferMirror the
// mirror copy is used when present; otherwise the server is asked.
func loadChecklists(ctx context.Context, env *Env, preferMirror bool) (*syncer.Checklists, error) {
	store, err := env.Store(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := env.Service(ctx)
	if err != nil {
		return nil, err
	}
	lists := syncer.NewChecklists(svc, store, env.Log)
	if preferMirror {
		ok, err := lists.Restore(ctx)
		if err != nil {
			env.Log.WithError(err).Warn("failed to read checklists from mirror")
		}
		if ok {
			return lists, nil
		}
	}
	if err := lists.Load(ctx); err != nil {
		return nil, err
	}
	return lists, nil
}

// resolveChecklist finds the checklist named by ref (position or title).
func resolveChecklist(ctx context.Context, env *Env, ref string, preferMirror bool) (*syncer.Checklists, service.Checklist, error) {
	lists, err := loadChecklists(ctx, env, preferMirror)
	if err != nil {
		return nil, service.Checklist{}, err
	}
	c, err := lists.Resolve(ref)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return nil, service.Checklist{}, refErr(service.ErrNotFound, "checklist not found: %s", ref)
	case errors.Is(err, service.ErrAmbiguous):
		return nil, service.Checklist{}, refErr(service.ErrAmbiguous, "ambiguous checklist name: %s", ref)
	case err != nil:
		return nil, service.Checklist{}, err
	}
	return lists, c, nil
}

// loadTasks fills a task synchronizer for checklistID. With preferMirror a
// non-empty mirror copy is used; otherwise the server is asked. Mirror
// write failures are reported on ErrOut as warnings.
func loadTasks(ctx context.Context, env *Env, checklistID string, preferMirror bool) (*syncer.Tasks, error) {
	store, err := env.Store(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := env.Service(ctx)
	if err != nil {
		return nil, err
	}
	tasks := syncer.NewTasks(svc, store, checklistID, env.Log)
	tasks.OnMirrorFailure(func(err error) {
		fmt.Fprintf(env.ErrOut, "warning: %v\n", err)
	})
	if preferMirror {
		ok, err := tasks.Restore(ctx)
		if err != nil {
			env.Log.WithError(err).Warn("failed to read tasks from mirror")
		}
		if ok && len(tasks.Items()) > 0 {
			return tasks, nil
		}
	}
	if err := tasks.Load(ctx); err != nil {
		return nil, err
	}
	return tasks, nil
}

// taskAt returns the n-th task (1-based) in display order.
func taskAt(tasks *syncer.Tasks, n int) (service.Task, error) {
	display := tasks.Display()
	if n < 1 || n > len(display) {
		return service.Task{}, refErr(service.ErrNotFound, "task number out of range: %d", n)
	}
	return display[n-1], nil
}

// checklistAndTask parses "<checklist> <n>" arguments and looks the task up.
func checklistAndTask(ctx context.Context, env *Env, args []string) (*syncer.Tasks, service.Task, error) {
	if len(args) == 0 {
		return nil, service.Task{}, refErr(service.ErrValidationFailed, "checklist required")
	}
	if len(args) < 2 {
		return nil, service.Task{}, ErrTaskRefRequired
	}
	if len(args) > 2 {
		return nil, service.Task{}, refErr(service.ErrValidationFailed, "unexpected argument: %s", args[2])
	}
	n, err := ParseTaskNumber(args[1])
	if err != nil {
		return nil, service.Task{}, err
	}
	// The checklist mirror is not rewritten when the last checklist goes,
	// so checklists come from the server. Tasks keep their local toggles.
	_, c, err := resolveChecklist(ctx, env, args[0], false)
	if err != nil {
		return nil, service.Task{}, err
	}
	tasks, err := loadTasks(ctx, env, c.ID, true)
	if err != nil {
		return nil, service.Task{}, err
	}
	task, err := taskAt(tasks, n)
	if err != nil {
		return nil, service.Task{}, err
	}
	return tasks, task, nil
}
