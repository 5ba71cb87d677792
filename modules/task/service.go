package task

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/task-tracker/domain/apperr"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/sirupsen/logrus"
)

const maxTitleLength = 255

// TaskService owns the task lifecycle. Every successful write is followed by
// a best-effort history append.
type TaskService struct {
	tasks TaskStore
	audit *AuditRecorder
	log   *logrus.Entry
	now   func() time.Time
}

// NewTaskService creates a new TaskService. A nil now uses time.Now.
func NewTaskService(tasks TaskStore, audit *AuditRecorder, log *logrus.Entry, now func() time.Time) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{tasks: tasks, audit: audit, log: log, now: now}
}

// Create validates in and stores a new task. An empty status defaults to
// IN_PROGRESS.
func (s *TaskService) Create(ctx context.Context, in TaskInput) (*domain.Task, error) {
	if strings.TrimSpace(in.Status) == "" {
		in.Status = string(domain.StatusInProgress)
	}
	fields, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Category:    fields.category,
		Priority:    fields.priority,
		DueDate:     in.DueDate.Time(),
	}
	task.ApplyStatus(fields.status, s.now())

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, task.ID, domain.ActionCreated, nil, statusPtr(task.Status), "Task created: "+task.Title)
	return task, nil
}

// Update overwrites the editable fields of task id.
func (s *TaskService) Update(ctx context.Context, id int64, in TaskInput) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Ownership is fixed at creation.
	in.UserID = task.UserID

	fields, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	task.Title = in.Title
	task.Description = in.Description
	task.Category = fields.category
	task.Priority = fields.priority
	task.DueDate = in.DueDate.Time()
	task.ApplyStatus(fields.status, s.now())

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	action := domain.ActionStatusChanged
	if oldStatus == task.Status {
		action = domain.ActionEdited
	}
	s.recordHistory(ctx, task.ID, action, statusPtr(oldStatus), statusPtr(task.Status), "Task updated: "+task.Title)
	return task, nil
}

// MarkCompleted moves task id to DONE and restamps CompletedAt.
func (s *TaskService) MarkCompleted(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	task.Complete(s.now())

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, task.ID, domain.ActionCompleted, statusPtr(oldStatus), statusPtr(domain.StatusDone), "Task marked as completed: "+task.Title)
	return task, nil
}

// Delete removes task id. The history record is written first so it exists
// even though the task row is gone afterwards.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}

	s.recordHistory(ctx, task.ID, domain.ActionDeleted, statusPtr(task.Status), nil, "Task deleted: "+task.Title)

	return s.tasks.Delete(ctx, id)
}

// FindByID returns task id.
func (s *TaskService) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

// FindByUserID lists the tasks of userID.
func (s *TaskService) FindByUserID(ctx context.Context, userID int64) ([]domain.Task, error) {
	return s.tasks.FindByUserID(ctx, userID)
}

// FindByUserIDAndStatus lists the tasks of userID in status.
func (s *TaskService) FindByUserIDAndStatus(ctx context.Context, userID int64, status string) ([]domain.Task, error) {
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.tasks.FindByUserIDAndStatus(ctx, userID, st)
}

// FindAll lists every task.
func (s *TaskService) FindAll(ctx context.Context) ([]domain.Task, error) {
	return s.tasks.FindAll(ctx)
}

// History returns the audit trail of task id, newest first. Deleted tasks
// keep their history.
func (s *TaskService) History(ctx context.Context, id int64) ([]domain.History, error) {
	return s.audit.History(ctx, id)
}

// recordHistory appends a history record. A failure is logged and counted
// but never returned: the task write it describes has already happened.
func (s *TaskService) recordHistory(ctx context.Context, taskID int64, action domain.Action, oldStatus, newStatus *domain.Status, description string) {
	mutationsTotal.WithLabelValues(string(action)).Inc()

	if err := s.audit.Append(ctx, taskID, action, oldStatus, newStatus, description); err != nil {
		auditFailuresTotal.WithLabelValues(string(action)).Inc()
		s.log.WithFields(logrus.Fields{
			"task_id": taskID,
			"action":  action,
		}).WithError(err).Warn("failed to record task history")
	}
}

type validatedFields struct {
	category domain.Category
	priority domain.Priority
	status   domain.Status
}

func validateInput(in TaskInput) (validatedFields, error) {
	var f validatedFields

	if strings.TrimSpace(in.Title) == "" {
		return f, apperr.Validation("Title is required")
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLength {
		return f, apperr.Validation("Title must be at most %d characters", maxTitleLength)
	}
	if in.UserID <= 0 {
		return f, apperr.Validation("User ID is required")
	}

	var err error
	if f.category, err = domain.ParseCategory(in.Category); err != nil {
		return f, err
	}
	if f.priority, err = domain.ParsePriority(in.Priority); err != nil {
		return f, err
	}
	if f.status, err = domain.ParseStatus(in.Status); err != nil {
		return f, err
	}
	return f, nil
}
