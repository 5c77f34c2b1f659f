package syncer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"stickylist/internal/mirror"
	"stickylist/internal/service"
)

// Checklists is the checklist synchronizer. It holds the account's
// checklists in server order, newest creations first.
type Checklists struct {
	svc   service.Service
	store mirror.Store
	log   log.FieldLogger

	inflight pending

	mu    sync.Mutex
	items []service.Checklist
}

// NewChecklists creates an empty checklist synchronizer.
func NewChecklists(svc service.Service, store mirror.Store, logger log.FieldLogger) *Checklists {
	return &Checklists{
		svc:   svc,
		store: store,
		log:   orDiscard(logger).WithField("component", "checklists"),
	}
}

// Load replaces the in-memory checklists with the server's.
// On failure the previous state is kept.
func (c *Checklists) Load(ctx context.Context) error {
	done, err := c.inflight.begin()
	if err != nil {
		return err
	}
	defer done()

	items, err := c.svc.ListChecklists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", service.ErrLoadFailed, err)
	}

	c.mu.Lock()
	c.items = append([]service.Checklist(nil), items...)
	c.mu.Unlock()

	c.log.WithField("count", len(items)).Debug("checklists loaded")
	c.mirror(ctx)
	return nil
}

// Create adds a checklist titled title (trimmed). The server's copy,
// not the local title, is prepended on success.
func (c *Checklists) Create(ctx context.Context, title string) (service.Checklist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return service.Checklist{}, ErrBlank
	}

	done, err := c.inflight.begin()
	if err != nil {
		return service.Checklist{}, err
	}
	defer done()

	created, err := c.svc.CreateChecklist(ctx, title)
	if err != nil {
		return service.Checklist{}, fmt.Errorf("%w: %w", service.ErrCreateFailed, err)
	}

	c.mu.Lock()
	c.items = append([]service.Checklist{created}, c.items...)
	c.mu.Unlock()

	c.log.WithField("id", created.ID).Debug("checklist created")
	c.mirror(ctx)
	return created, nil
}

// Delete removes the checklist with id once the server confirms.
func (c *Checklists) Delete(ctx context.Context, id string) error {
	done, err := c.inflight.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := c.svc.DeleteChecklist(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", service.ErrDeleteFailed, err)
	}

	c.mu.Lock()
	kept := make([]service.Checklist, 0, len(c.items))
	for _, item := range c.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.mu.Unlock()

	c.log.WithField("id", id).Debug("checklist deleted")
	c.mirror(ctx)
	return nil
}

// Restore replaces the in-memory checklists with the mirror copy.
// It reports false when the mirror holds none.
func (c *Checklists) Restore(ctx context.Context) (bool, error) {
	var items []service.Checklist
	ok, err := mirror.GetJSON(ctx, c.store, mirror.KeyChecklists, &items)
	if err != nil || !ok {
		return false, err
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return true, nil
}

// Items returns a copy of the in-memory checklists.
func (c *Checklists) Items() []service.Checklist {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]service.Checklist(nil), c.items...)
}

// Filter returns the checklists whose title contains query, ignoring case.
func (c *Checklists) Filter(query string) []service.Checklist {
	return FilterChecklists(c.Items(), query)
}

// Resolve finds a checklist by 1-based position or by title
// (case-insensitive, trimmed).
func (c *Checklists) Resolve(ref string) (service.Checklist, error) {
	ref = strings.TrimSpace(ref)
	items := c.Items()

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(items) {
			return service.Checklist{}, fmt.Errorf("%w: checklist %d", service.ErrNotFound, n)
		}
		return items[n-1], nil
	}

	var matches []service.Checklist
	for _, item := range items {
		if strings.EqualFold(strings.TrimSpace(item.Title), ref) {
			matches = append(matches, item)
		}
	}

	switch len(matches) {
	case 0:
		return service.Checklist{}, fmt.Errorf("%w: checklist %s", service.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return service.Checklist{}, fmt.Errorf("%w: checklist %s", service.ErrAmbiguous, ref)
	}
}

// mirror writes the sequence to the store when it is non-empty.
// Failures are logged and dropped.
func (c *Checklists) mirror(ctx context.Context) {
	items := c.Items()
	if len(items) == 0 {
		return
	}
	if err := mirror.PutJSON(ctx, c.store, mirror.KeyChecklists, items); err != nil {
		err = errors.Join(service.ErrMirrorWriteFailed, err)
		c.log.WithError(err).WithField("key", mirror.KeyChecklists).Warn("failed to save checklists")
	}
}
