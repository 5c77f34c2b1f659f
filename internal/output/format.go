// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"stickylist/internal/service"
	"stickylist/internal/session"
)

// DateLayout is used for checklist creation dates.
const DateLayout = "2006-01-02"

// FormatChecklist formats a checklist line.
// Format: "{N:>4}  {TITLE}  {DATE}\n"; the date is left out when unknown.
func FormatChecklist(w io.Writer, num int, c service.Checklist) {
	title := normalizeTitle(c.Title)
	if c.CreatedAt.IsZero() {
		fmt.Fprintf(w, "%4d  %s\n", num, title)
		return
	}
	fmt.Fprintf(w, "%4d  %s  %s\n", num, title, c.CreatedAt.UTC().Format(DateLayout))
}

// FormatTask formats a task line.
// Format: "{N:>4}  [x] * {TEXT} ({COLOR})\n" where [x] marks completed and
// * marks pinned tasks.
func FormatTask(w io.Writer, num int, task service.Task) {
	check := "[ ]"
	if task.Completed {
		check = "[x]"
	}
	pin := " "
	if task.Pinned {
		pin = "*"
	}
	fmt.Fprintf(w, "%4d  %s %s %s (%s)\n", num, check, pin, normalizeTitle(task.Text), task.Color.Name())
}

// FormatTasks formats tasks already in display order, numbered from 1.
func FormatTasks(w io.Writer, tasks []service.Task) {
	for i, task := range tasks {
		FormatTask(w, i+1, task)
	}
}

// FormatStatus formats the session status.
func FormatStatus(w io.Writer, st session.Status, now time.Time) {
	if !st.LoggedIn {
		fmt.Fprintln(w, "not logged in")
		return
	}
	fmt.Fprintln(w, "logged in")
	if st.Opaque {
		return
	}
	if st.Subject != "" {
		fmt.Fprintf(w, "user:    %s\n", st.Subject)
	}
	if st.Email != "" {
		fmt.Fprintf(w, "email:   %s\n", st.Email)
	}
	if !st.ExpiresAt.IsZero() {
		suffix := ""
		if st.Expired(now) {
			suffix = " (expired)"
		}
		fmt.Fprintf(w, "expires: %s%s\n", st.ExpiresAt.UTC().Format(time.RFC3339), suffix)
	}
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
