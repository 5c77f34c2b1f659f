package stickyapi

import "stickylist/internal/service"

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type checklistsResponse struct {
	Checklists []service.Checklist `json:"checklists"`
}

type checklistResponse struct {
	Checklist service.Checklist `json:"checklist"`
}

type createChecklistRequest struct {
	Title string `json:"title"`
}

// createTaskRequest carries the task text under "title".
type createTaskRequest struct {
	Title     string        `json:"title"`
	Checklist string        `json:"checklist"`
	Color     service.Color `json:"color"`
}

type tasksResponse struct {
	Tasks []wireTask `json:"tasks"`
}

type taskResponse struct {
	Task wireTask `json:"task"`
}

// wireTask accepts both "text" and "title" for the task body, and a
// missing checklist reference.
type wireTask struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Title     string        `json:"title"`
	Color     service.Color `json:"color"`
	Completed bool          `json:"completed"`
	Pinned    bool          `json:"pinned"`
	Checklist string        `json:"checklist"`
}

func (w wireTask) toTask(checklistID string) service.Task {
	t := service.Task{
		ID:        w.ID,
		Text:      w.Text,
		Color:     w.Color,
		Completed: w.Completed,
		Pinned:    w.Pinned,
		Checklist: w.Checklist,
	}
	if t.Text == "" {
		t.Text = w.Title
	}
	if t.Checklist == "" {
		t.Checklist = checklistID
	}
	if t.Color == "" {
		t.Color = service.DefaultColor
	}
	return t
}
