package task

import (
	"context"
	"encoding/json"

	"github.com/example/task-tracker/domain/apperr"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort is the interface other modules use to reach the task module.
type TaskPort interface {
	CreateTask(ctx context.Context, in TaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int64, in TaskInput) (*domain.Task, error)
	CompleteTask(ctx context.Context, id int64) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ListTasks(ctx context.Context, filter ListTasksRequest) ([]domain.Task, error)
	TaskHistory(ctx context.Context, id int64) ([]domain.History, error)
}

// taskAdapter implements TaskPort over the task module's service container.
// Errors are rebuilt into typed application errors.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	err := helper.CallRequestReplyService(ctx, container, service, json.Marshal, json.Unmarshal, req, resp)
	return apperr.FromRemote(err)
}

// CreateTask creates a task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, in TaskInput) (*domain.Task, error) {
	var resp domain.Task
	if err := call(ctx, a.container, "create-task", &in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTask retrieves a task via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	var resp domain.Task
	if err := call(ctx, a.container, "get-task", &TaskIDRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateTask updates a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, id int64, in TaskInput) (*domain.Task, error) {
	var resp domain.Task
	if err := call(ctx, a.container, "update-task", &UpdateTaskRequest{ID: id, Task: in}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CompleteTask marks a task done via the complete-task service.
func (a *taskAdapter) CompleteTask(ctx context.Context, id int64) (*domain.Task, error) {
	var resp domain.Task
	if err := call(ctx, a.container, "complete-task", &TaskIDRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, id int64) error {
	var resp DeleteTaskResponse
	return call(ctx, a.container, "delete-task", &TaskIDRequest{ID: id}, &resp)
}

// ListTasks lists tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, filter ListTasksRequest) ([]domain.Task, error) {
	var resp TaskListResponse
	if err := call(ctx, a.container, "list-tasks", &filter, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// TaskHistory loads a task's audit trail via the task-history service.
func (a *taskAdapter) TaskHistory(ctx context.Context, id int64) ([]domain.History, error) {
	var resp HistoryResponse
	if err := call(ctx, a.container, "task-history", &TaskIDRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}
