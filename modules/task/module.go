package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker/database"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/logger"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TaskModule provides the task lifecycle and its audit trail.
type TaskModule struct {
	db      *gorm.DB
	log     *logrus.Entry
	service *TaskService
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule backed by db.
func NewModule(db *gorm.DB, log *logrus.Entry) *TaskModule {
	return &TaskModule{
		db:  db,
		log: logger.ForModule(log, "task"),
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// Start migrates the task tables and wires the service.
func (m *TaskModule) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not set")
	}
	if err := m.db.AutoMigrate(&domain.Task{}, &domain.History{}); err != nil {
		return fmt.Errorf("failed to migrate task tables: %w", err)
	}

	m.service = NewTaskService(
		NewTaskRepository(m.db),
		NewAuditRecorder(NewHistoryRepository(m.db), nil),
		m.log,
		nil,
	)

	m.log.Info("module started")
	return nil
}

// Stop shuts down the module. The shared connection is closed by its owner.
func (m *TaskModule) Stop(_ context.Context) error {
	m.log.Info("module stopped")
	return nil
}

// Health pings the database.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if err := database.Ping(ctx, m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: err.Error(),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: database.Stats(m.db),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "complete-task", json.Unmarshal, json.Marshal, m.completeTask,
	); err != nil {
		return fmt.Errorf("failed to register complete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "task-history", json.Unmarshal, json.Marshal, m.taskHistory,
	); err != nil {
		return fmt.Errorf("failed to register task-history service: %w", err)
	}

	m.log.Info("registered services: create-task, get-task, update-task, complete-task, delete-task, list-tasks, task-history")
	return nil
}

func (m *TaskModule) createTask(ctx context.Context, req TaskInput, _ *mono.Msg) (domain.Task, error) {
	task, err := m.service.Create(ctx, req)
	if err != nil {
		return domain.Task{}, err
	}
	return *task, nil
}

func (m *TaskModule) getTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (domain.Task, error) {
	task, err := m.service.FindByID(ctx, req.ID)
	if err != nil {
		return domain.Task{}, err
	}
	return *task, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (domain.Task, error) {
	task, err := m.service.Update(ctx, req.ID, req.Task)
	if err != nil {
		return domain.Task{}, err
	}
	return *task, nil
}

func (m *TaskModule) completeTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (domain.Task, error) {
	task, err := m.service.MarkCompleted(ctx, req.ID)
	if err != nil {
		return domain.Task{}, err
	}
	return *task, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.ID); err != nil {
		return DeleteTaskResponse{}, err
	}
	return DeleteTaskResponse{ID: req.ID, Deleted: true}, nil
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (TaskListResponse, error) {
	var (
		tasks []domain.Task
		err   error
	)
	switch {
	case req.UserID != 0 && req.Status != "":
		tasks, err = m.service.FindByUserIDAndStatus(ctx, req.UserID, req.Status)
	case req.UserID != 0:
		tasks, err = m.service.FindByUserID(ctx, req.UserID)
	default:
		tasks, err = m.service.FindAll(ctx)
	}
	if err != nil {
		return TaskListResponse{}, err
	}
	return TaskListResponse{Tasks: tasks}, nil
}

func (m *TaskModule) taskHistory(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (HistoryResponse, error) {
	entries, err := m.service.History(ctx, req.ID)
	if err != nil {
		return HistoryResponse{}, err
	}
	return HistoryResponse{Entries: entries}, nil
}
