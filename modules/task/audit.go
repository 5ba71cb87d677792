package task

import (
	"context"
	"time"

	"github.com/example/task-tracker/domain/apperr"
	domain "github.com/example/task-tracker/domain/task"
)

// AuditRecorder appends history records for task mutations.
type AuditRecorder struct {
	store HistoryStore
	now   func() time.Time
}

// NewAuditRecorder creates a recorder stamping records with now.
func NewAuditRecorder(store HistoryStore, now func() time.Time) *AuditRecorder {
	if now == nil {
		now = time.Now
	}
	return &AuditRecorder{store: store, now: now}
}

// Append writes exactly one history record. Failures come back as audit
// errors; callers decide whether to surface them.
func (a *AuditRecorder) Append(ctx context.Context, taskID int64, action domain.Action, oldStatus, newStatus *domain.Status, description string) error {
	entry := &domain.History{
		TaskID:      taskID,
		Action:      action,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		Description: description,
		ChangedAt:   a.now(),
	}
	if err := a.store.Append(ctx, entry); err != nil {
		return apperr.Audit(err, "failed to record %s for task %d", action, taskID)
	}
	return nil
}

// History returns the records of a task, newest first.
func (a *AuditRecorder) History(ctx context.Context, taskID int64) ([]domain.History, error) {
	return a.store.FindByTaskID(ctx, taskID)
}

func statusPtr(s domain.Status) *domain.Status {
	return &s
}
