// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/service"
)

const (
	// DateLayout is the layout used for creation dates.
	DateLayout = "2006-01-02"

	// EmptyList is printed when there are no tasks.
	EmptyList = "no tasks yet"
)

// FormatTask formats a task line followed by its description and creation
// date on indented continuation lines.
// Format: "{N:>4}  [x] {TITLE}\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, checkbox(task.Completed), normalizeTitle(task.Title))
	formatDetails(w, task)
}

// FormatEditing formats the row of a task in edit mode with the values of
// the edit draft instead of the stored ones.
func FormatEditing(w io.Writer, num int, title, description string) {
	fmt.Fprintf(w, "%4d  [~] %s (editing)\n", num, normalizeTitle(title))
	if d := normalizeText(description); d != "" {
		fmt.Fprintf(w, "          %s\n", d)
	}
}

// FormatHeader formats the list header with the task count.
func FormatHeader(w io.Writer, count int) {
	fmt.Fprintf(w, "Tasks (%d)\n", count)
}

// FormatList formats every task, or EmptyList when there are none.
func FormatList(w io.Writer, tasks []service.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, EmptyList)
		return
	}
	for i, task := range tasks {
		FormatTask(w, i+1, task)
	}
}

func formatDetails(w io.Writer, task service.Task) {
	if d := normalizeText(task.Description); d != "" {
		fmt.Fprintf(w, "          %s\n", d)
	}
	if !task.CreatedAt.IsZero() {
		fmt.Fprintf(w, "          created %s\n", task.CreatedAt.Local().Format(DateLayout))
	}
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = normalizeText(title)
	if title == "" {
		return "(untitled)"
	}
	return title
}

// normalizeText replaces newlines with spaces and trims the result.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
