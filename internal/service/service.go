// Package service defines the backend-agnostic interface for checklist operations.
package service

import "context"

// Service defines the interface for checklist backend operations.
// All remote calls go through this interface.
// Synchronizers and commands never import a backend directly.
type Service interface {
	// ListChecklists returns all checklists of the current account in server order.
	ListChecklists(ctx context.Context) ([]Checklist, error)

	// CreateChecklist creates a checklist and returns the server's copy.
	CreateChecklist(ctx context.Context, title string) (Checklist, error)

	// DeleteChecklist deletes a checklist by ID.
	DeleteChecklist(ctx context.Context, checklistID string) error

	// ListTasks returns all tasks of a checklist in server order.
	ListTasks(ctx context.Context, checklistID string) ([]Task, error)

	// CreateTask creates a task in a checklist and returns the server's copy.
	CreateTask(ctx context.Context, checklistID, text string, color Color) (Task, error)

	// DeleteTask deletes a task.
	// Backends that address tasks globally ignore checklistID.
	DeleteTask(ctx context.Context, checklistID, taskID string) error
}

// Authenticator is implemented by backends that own account management.
type Authenticator interface {
	// Login exchanges credentials for a session token.
	Login(ctx context.Context, email, password string) (string, error)

	// Register creates a new account.
	Register(ctx context.Context, email, password string) error
}
