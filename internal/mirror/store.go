// Package mirror provides the local key-value store used as a best-effort
// copy of server data.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
)

// Mirror keys.
const (
	KeyToken      = "token"
	KeyChecklists = "checklists"
	tasksPrefix   = "tasks_"
)

// TasksKey returns the key holding the task list of a checklist.
func TasksKey(checklistID string) string {
	return tasksPrefix + checklistID
}

// Store is an async-style string key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}

// PutJSON serializes v and stores it under key.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}

// GetJSON loads key into v. It reports false when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
