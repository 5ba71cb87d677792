package task

import (
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/example/task-tracker/domain/task"
)

// TaskInput carries the client-supplied fields of a task. Enum fields are
// matched case-insensitively.
type TaskInput struct {
	UserID      int64    `json:"userId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	DueDate     *DueDate `json:"dueDate,omitempty"`
}

// dueDateLayouts are tried in order. Values without a zone are UTC.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// DueDate is a client-supplied due date. It accepts RFC3339, a zone-less
// date-time and a plain date.
type DueDate time.Time

// UnmarshalJSON parses any of the accepted layouts.
func (d *DueDate) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("dueDate must be a string: %w", err)
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			*d = DueDate(t)
			return nil
		}
	}
	return fmt.Errorf("invalid dueDate %q", raw)
}

// MarshalJSON renders the date as RFC3339.
func (d DueDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d))
}

// Time converts d for storage. A nil d yields nil.
func (d *DueDate) Time() *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}

// UpdateTaskRequest is the request for the update-task service.
type UpdateTaskRequest struct {
	ID   int64     `json:"id"`
	Task TaskInput `json:"task"`
}

// TaskIDRequest addresses a single task.
type TaskIDRequest struct {
	ID int64 `json:"id"`
}

// ListTasksRequest filters the list-tasks service. A zero UserID lists all
// tasks; Status is only honoured together with a UserID.
type ListTasksRequest struct {
	UserID int64  `json:"userId,omitempty"`
	Status string `json:"status,omitempty"`
}

// TaskListResponse wraps a task list.
type TaskListResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// HistoryResponse wraps the history of a task.
type HistoryResponse struct {
	Entries []domain.History `json:"entries"`
}

// DeleteTaskResponse confirms a deletion.
type DeleteTaskResponse struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}
