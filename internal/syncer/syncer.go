// Package syncer keeps in-memory checklist and task state consistent with
// a remote service and mirrors it into a local store.
//
// Creates and deletes are pessimistic: state changes only after the
// service confirms. Task completion and pin toggles are local only and
// persist through the mirror.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"stickylist/internal/logging"
	"stickylist/internal/service"
)

var (
	// ErrBlank is returned when a title or text is empty after trimming.
	// No request is sent and state is unchanged.
	ErrBlank = fmt.Errorf("%w: blank input", service.ErrValidationFailed)

	// ErrBusy is returned when the synchronizer already has a request
	// in flight.
	ErrBusy = errors.New("another request is in progress")
)

// pending allows one outstanding network operation at a time.
type pending struct {
	mu sync.Mutex
}

func (p *pending) begin() (func(), error) {
	if !p.mu.TryLock() {
		return nil, ErrBusy
	}
	return p.mu.Unlock, nil
}

// Confirmer asks the user a yes/no question before a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, title, message string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, title, message string) (bool, error) {
	return f(ctx, title, message)
}

// AlwaysConfirm accepts every confirmation.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string, string) (bool, error) {
	return true, nil
})

func orDiscard(logger log.FieldLogger) log.FieldLogger {
	if logger != nil {
		return logger
	}
	return logging.Discard()
}
