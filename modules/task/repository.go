package task

import (
	"context"
	"errors"

	"github.com/example/task-tracker/domain/apperr"
	domain "github.com/example/task-tracker/domain/task"
	"gorm.io/gorm"
)

// TaskStore is the persistence port for tasks.
type TaskStore interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id int64) error
	FindByUserID(ctx context.Context, userID int64) ([]domain.Task, error)
	FindByUserIDAndStatus(ctx context.Context, userID int64, status domain.Status) ([]domain.Task, error)
	FindAll(ctx context.Context) ([]domain.Task, error)
}

// HistoryStore is the persistence port for the audit trail.
type HistoryStore interface {
	Append(ctx context.Context, entry *domain.History) error
	FindByTaskID(ctx context.Context, taskID int64) ([]domain.History, error)
}

// TaskRepository stores tasks with GORM.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts task; the store assigns ID and timestamps.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return apperr.Persistence(err, "failed to create task")
	}
	return nil
}

// FindByID returns a NotFound error when no task has id.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Task not found with id: %d", id)
		}
		return nil, apperr.Persistence(err, "failed to find task")
	}
	return &task, nil
}

// Update overwrites the mutable columns of task. completed_at and due_date
// are written even when nil.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	result := r.db.WithContext(ctx).
		Model(task).
		Select("title", "description", "category", "priority", "status", "due_date", "completed_at", "updated_at").
		Updates(task)
	if result.Error != nil {
		return apperr.Persistence(result.Error, "failed to update task")
	}
	if result.RowsAffected == 0 {
		return apperr.Persistence(nil, "no task was updated for id %d", task.ID)
	}
	return nil
}

// Delete removes the task with id.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Task{}, id)
	if result.Error != nil {
		return apperr.Persistence(result.Error, "failed to delete task")
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Task not found with id: %d", id)
	}
	return nil
}

// FindByUserID lists a user's tasks, newest first.
func (r *TaskRepository) FindByUserID(ctx context.Context, userID int64) ([]domain.Task, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// FindByUserIDAndStatus lists a user's tasks in status, newest first.
func (r *TaskRepository) FindByUserIDAndStatus(ctx context.Context, userID int64, status domain.Status) ([]domain.Task, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ? AND status = ?", userID, status))
}

// FindAll lists every task, newest first.
func (r *TaskRepository) FindAll(ctx context.Context) ([]domain.Task, error) {
	return r.list(r.db.WithContext(ctx))
}

func (r *TaskRepository) list(q *gorm.DB) ([]domain.Task, error) {
	tasks := []domain.Task{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to list tasks")
	}
	return tasks, nil
}

// HistoryRepository stores audit records with GORM.
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts entry. Records are never updated afterwards.
func (r *HistoryRepository) Append(ctx context.Context, entry *domain.History) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperr.Persistence(err, "failed to append task history")
	}
	return nil
}

// FindByTaskID returns the history of a task, newest first.
func (r *HistoryRepository) FindByTaskID(ctx context.Context, taskID int64) ([]domain.History, error) {
	entries := []domain.History{}
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("changed_at DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load task history")
	}
	return entries, nil
}
