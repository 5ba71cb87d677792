package task

import "time"

// Task is a unit of work owned by a single user.
type Task struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64      `gorm:"not null;index" json:"userId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Category    Category   `gorm:"size:50;not null" json:"category"`
	Priority    Priority   `gorm:"size:50;not null" json:"priority"`
	Status      Status     `gorm:"size:50;not null;index" json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName returns the table name for Task.
func (Task) TableName() string {
	return "tasks"
}

// ApplyStatus moves the task to next and keeps CompletedAt consistent with
// it: set to now when entering DONE, cleared when leaving it, untouched on
// DONE -> DONE.
func (t *Task) ApplyStatus(next Status, now time.Time) {
	switch {
	case next == StatusDone && t.Status != StatusDone:
		ts := now
		t.CompletedAt = &ts
	case next != StatusDone:
		t.CompletedAt = nil
	}
	t.Status = next
}

// Complete marks the task DONE and stamps CompletedAt with now, even when the
// task was already DONE.
func (t *Task) Complete(now time.Time) {
	ts := now
	t.Status = StatusDone
	t.CompletedAt = &ts
}

// History is one immutable audit record of a task mutation. It keeps no
// foreign key to tasks so that records survive the deletion of their task.
type History struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID      int64     `gorm:"not null;index" json:"taskId"`
	Action      Action    `gorm:"size:50;not null" json:"action"`
	OldStatus   *Status   `gorm:"size:50" json:"oldStatus"`
	NewStatus   *Status   `gorm:"size:50" json:"newStatus"`
	Description string    `gorm:"size:500" json:"description"`
	ChangedAt   time.Time `gorm:"not null;index" json:"changedAt"`
}

// TableName returns the table name for History.
func (History) TableName() string {
	return "task_history"
}
