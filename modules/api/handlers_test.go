package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/domain/apperr"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/logger"
	"github.com/example/task-tracker/modules/task"
	"github.com/example/task-tracker/modules/user"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskPort implements task.TaskPort for testing
type mockTaskPort struct {
	createFunc   func(ctx context.Context, in task.TaskInput) (*domain.Task, error)
	getFunc      func(ctx context.Context, id int64) (*domain.Task, error)
	updateFunc   func(ctx context.Context, id int64, in task.TaskInput) (*domain.Task, error)
	completeFunc func(ctx context.Context, id int64) (*domain.Task, error)
	deleteFunc   func(ctx context.Context, id int64) error
	listFunc     func(ctx context.Context, filter task.ListTasksRequest) ([]domain.Task, error)
	historyFunc  func(ctx context.Context, id int64) ([]domain.History, error)
}

func (m *mockTaskPort) CreateTask(ctx context.Context, in task.TaskInput) (*domain.Task, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, in)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) UpdateTask(ctx context.Context, id int64, in task.TaskInput) (*domain.Task, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, in)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) CompleteTask(ctx context.Context, id int64) (*domain.Task, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) DeleteTask(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errNotImplemented
}

func (m *mockTaskPort) ListTasks(ctx context.Context, filter task.ListTasksRequest) ([]domain.Task, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) TaskHistory(ctx context.Context, id int64) ([]domain.History, error) {
	if m.historyFunc != nil {
		return m.historyFunc(ctx, id)
	}
	return nil, errNotImplemented
}

var testLimit = config.RateLimitConfig{Max: 100, Window: time.Minute}

func newTestApp(users *mockUserPort, tasks *mockTaskPort) *fiber.App {
	if users.validateTokenFunc == nil {
		users.validateTokenFunc = validTokenPort().validateTokenFunc
	}
	return newApp(logger.Discard(), testLimit, nil, users, tasks)
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string, authed bool) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer valid-token")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	app := newTestApp(&mockUserPort{}, &mockTaskPort{})

	for _, path := range []string{"/health", "/api/health"} {
		resp := doRequest(t, app, http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "UP", body.Status)
		assert.False(t, body.Timestamp.IsZero())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(&mockUserPort{}, &mockTaskPort{})
	doRequest(t, app, http.MethodGet, "/health", "", false)

	resp := doRequest(t, app, http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestRegister(t *testing.T) {
	var got user.CreateUserInput
	users := &mockUserPort{
		registerFunc: func(_ context.Context, in user.CreateUserInput) (*user.AuthResponse, error) {
			got = in
			return &user.AuthResponse{UserID: 1, Username: in.Username, Email: in.Email, Message: "User registered successfully", Token: "tok"}, nil
		},
	}
	app := newTestApp(users, &mockTaskPort{})

	resp := doRequest(t, app, http.MethodPost, "/api/users/register",
		`{"username":"alice","email":"alice@example.com","password":"secret","firstName":"Alice"}`, false)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "Alice", got.FirstName)

	var body user.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "tok", body.Token)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		err         error
		wantStatus  int
		wantLabel   string
		wantMessage string
	}{
		{
			name:        "malformed body",
			body:        `{"username":`,
			wantStatus:  http.StatusBadRequest,
			wantLabel:   "Bad Request",
			wantMessage: "Invalid request body",
		},
		{
			name:        "validation",
			body:        `{"username":"","email":"a@b.c","password":"x"}`,
			err:         apperr.Validation("Username is required"),
			wantStatus:  http.StatusBadRequest,
			wantLabel:   "Validation Error",
			wantMessage: "Username is required",
		},
		{
			name:        "duplicate",
			body:        `{"username":"alice","email":"a@b.c","password":"x"}`,
			err:         apperr.Duplicate("Username already exists"),
			wantStatus:  http.StatusBadRequest,
			wantLabel:   "Bad Request",
			wantMessage: "Username already exists",
		},
		{
			name:        "internal failure hides details",
			body:        `{"username":"alice","email":"a@b.c","password":"x"}`,
			err:         apperr.Persistence(errors.New("disk full"), "failed to create user"),
			wantStatus:  http.StatusInternalServerError,
			wantLabel:   "Internal Server Error",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mockUserPort{
				registerFunc: func(context.Context, user.CreateUserInput) (*user.AuthResponse, error) {
					return nil, tt.err
				},
			}
			app := newTestApp(users, &mockTaskPort{})

			resp := doRequest(t, app, http.MethodPost, "/api/users/register", tt.body, false)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.wantLabel, body.Error)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, tt.wantStatus, body.Status)
		})
	}
}

func TestLogin(t *testing.T) {
	users := &mockUserPort{
		loginFunc: func(_ context.Context, username, password string) (*user.AuthResponse, error) {
			if username == "alice" && password == "secret" {
				return &user.AuthResponse{UserID: 1, Username: "alice", Message: "Login successful", Token: "tok"}, nil
			}
			return nil, apperr.Unauthorized("Invalid username or password")
		},
	}
	app := newTestApp(users, &mockTaskPort{})

	resp := doRequest(t, app, http.MethodPost, "/api/users/login", `{"username":"alice","password":"secret"}`, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPost, "/api/users/login", `{"username":"alice","password":"wrong"}`, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "Invalid username or password", body.Message)

	resp = doRequest(t, app, http.MethodPost, "/api/users/login", `{"username":"alice"}`, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_RateLimited(t *testing.T) {
	users := &mockUserPort{
		loginFunc: func(context.Context, string, string) (*user.AuthResponse, error) {
			return nil, apperr.Unauthorized("Invalid username or password")
		},
	}
	users.validateTokenFunc = validTokenPort().validateTokenFunc
	limit := config.RateLimitConfig{Max: 2, Window: time.Minute}
	app := newApp(logger.Discard(), limit, nil, users, &mockTaskPort{})

	for i := 0; i < 2; i++ {
		resp := doRequest(t, app, http.MethodPost, "/api/users/login", `{"username":"a","password":"b"}`, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := doRequest(t, app, http.MethodPost, "/api/users/login", `{"username":"a","password":"b"}`, false)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
	body := decodeError(t, resp)
	assert.Equal(t, "Too Many Requests", body.Error)

	// Registration is not limited.
	users.registerFunc = func(context.Context, user.CreateUserInput) (*user.AuthResponse, error) {
		return &user.AuthResponse{}, nil
	}
	resp = doRequest(t, app, http.MethodPost, "/api/users/register", `{"username":"a"}`, false)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(&mockUserPort{}, &mockTaskPort{})

	for _, path := range []string{"/api/users", "/api/users/1", "/api/tasks", "/api/tasks/1", "/api/tasks/1/history"} {
		resp := doRequest(t, app, http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestUserRoutes(t *testing.T) {
	users := &mockUserPort{
		getUserFunc: func(_ context.Context, id int64) (*user.UserResponse, error) {
			if id != 1 {
				return nil, apperr.NotFound("User not found with id: %d", id)
			}
			return &user.UserResponse{ID: 1, Username: "alice"}, nil
		},
		listUsersFunc: func(context.Context) ([]user.UserResponse, error) {
			return []user.UserResponse{{ID: 1}, {ID: 2}}, nil
		},
		updateUserFunc: func(_ context.Context, id int64, in user.UpdateUserInput) (*user.UserResponse, error) {
			return &user.UserResponse{ID: id, Username: in.Username}, nil
		},
		deleteUserFunc: func(context.Context, int64) error { return nil },
	}
	app := newTestApp(users, &mockTaskPort{})

	resp := doRequest(t, app, http.MethodGet, "/api/users/1", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/users/9", "", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found with id: 9", decodeError(t, resp).Message)

	resp = doRequest(t, app, http.MethodGet, "/api/users", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list []user.UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 2)

	resp = doRequest(t, app, http.MethodPut, "/api/users/1", `{"username":"bob"}`, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated user.UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, "bob", updated.Username)

	resp = doRequest(t, app, http.MethodDelete, "/api/users/1", "", true)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/users/abc", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateTask_DefaultsOwnerToCaller(t *testing.T) {
	var got task.TaskInput
	tasks := &mockTaskPort{
		createFunc: func(_ context.Context, in task.TaskInput) (*domain.Task, error) {
			got = in
			return &domain.Task{ID: 1, UserID: in.UserID, Title: in.Title, Status: domain.StatusInProgress}, nil
		},
	}
	app := newTestApp(&mockUserPort{}, tasks)

	resp := doRequest(t, app, http.MethodPost, "/api/tasks",
		`{"title":"Write report","category":"WORK","priority":"HIGH"}`, true)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(7), got.UserID)

	resp = doRequest(t, app, http.MethodPost, "/api/tasks",
		`{"userId":3,"title":"Write report","category":"WORK","priority":"HIGH"}`, true)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(3), got.UserID)
}

func TestTaskRoutes_Errors(t *testing.T) {
	tasks := &mockTaskPort{
		getFunc: func(_ context.Context, id int64) (*domain.Task, error) {
			return nil, apperr.NotFound("Task not found with id: %d", id)
		},
		updateFunc: func(context.Context, int64, task.TaskInput) (*domain.Task, error) {
			return nil, apperr.Validation("Invalid status. Valid values are: IN_PROGRESS, DONE")
		},
	}
	app := newTestApp(&mockUserPort{}, tasks)

	resp := doRequest(t, app, http.MethodGet, "/api/tasks/42", "", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "Not Found", body.Error)
	assert.Equal(t, "Task not found with id: 42", body.Message)

	resp = doRequest(t, app, http.MethodGet, "/api/tasks/abc", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Bad Request", decodeError(t, resp).Error)

	resp = doRequest(t, app, http.MethodPut, "/api/tasks/1", `{"status":"BOGUS"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeError(t, resp)
	assert.Equal(t, "Validation Error", body.Error)
	assert.Equal(t, "Invalid status. Valid values are: IN_PROGRESS, DONE", body.Message)

	resp = doRequest(t, app, http.MethodPut, "/api/tasks/1", `not json`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListUserTasks_PassesFilter(t *testing.T) {
	var got []task.ListTasksRequest
	tasks := &mockTaskPort{
		listFunc: func(_ context.Context, filter task.ListTasksRequest) ([]domain.Task, error) {
			got = append(got, filter)
			return []domain.Task{}, nil
		},
	}
	app := newTestApp(&mockUserPort{}, tasks)

	resp := doRequest(t, app, http.MethodGet, "/api/tasks", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doRequest(t, app, http.MethodGet, "/api/tasks/user/5", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doRequest(t, app, http.MethodGet, "/api/tasks/user/5/status/done", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(body))

	assert.Equal(t, []task.ListTasksRequest{
		{},
		{UserID: 5},
		{UserID: 5, Status: "done"},
	}, got)
}

func TestCompleteTask(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tasks := &mockTaskPort{
		completeFunc: func(_ context.Context, id int64) (*domain.Task, error) {
			return &domain.Task{ID: id, Status: domain.StatusDone, CompletedAt: &now}, nil
		},
	}
	app := newTestApp(&mockUserPort{}, tasks)

	resp := doRequest(t, app, http.MethodPatch, "/api/tasks/3/complete", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got domain.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, domain.StatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, now.Equal(*got.CompletedAt))
}

func TestDeleteTask(t *testing.T) {
	var deleted int64
	tasks := &mockTaskPort{
		deleteFunc: func(_ context.Context, id int64) error {
			if id == 404 {
				return apperr.NotFound("Task not found with id: %d", id)
			}
			deleted = id
			return nil
		},
	}
	app := newTestApp(&mockUserPort{}, tasks)

	resp := doRequest(t, app, http.MethodDelete, "/api/tasks/3", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), deleted)
	body := decodeError(t, resp)
	assert.Equal(t, ErrorResponse{Error: "Success", Message: "Task deleted successfully", Status: http.StatusOK}, body)

	resp = doRequest(t, app, http.MethodDelete, "/api/tasks/404", "", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskHistory(t *testing.T) {
	done := domain.StatusDone
	tasks := &mockTaskPort{
		historyFunc: func(_ context.Context, id int64) ([]domain.History, error) {
			return []domain.History{
				{ID: 2, TaskID: id, Action: domain.ActionCompleted, NewStatus: &done},
				{ID: 1, TaskID: id, Action: domain.ActionCreated},
			}, nil
		},
	}
	app := newTestApp(&mockUserPort{}, tasks)

	resp := doRequest(t, app, http.MethodGet, "/api/tasks/3/history", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []domain.History
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionCompleted, entries[0].Action)
	assert.Equal(t, int64(3), entries[1].TaskID)
}

func TestCreateTask_DueDateFormats(t *testing.T) {
	tests := []struct {
		name       string
		dueDate    string
		wantStatus int
		want       time.Time
	}{
		{"rfc3339", `"2024-06-01T10:00:00Z"`, http.StatusCreated, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
		{"zone-less date-time", `"2024-06-01T10:00:00"`, http.StatusCreated, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
		{"date only", `"2024-06-01"`, http.StatusCreated, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"malformed", `"01/06/2024"`, http.StatusBadRequest, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *time.Time
			tasks := &mockTaskPort{
				createFunc: func(_ context.Context, in task.TaskInput) (*domain.Task, error) {
					got = in.DueDate.Time()
					return &domain.Task{ID: 1, UserID: in.UserID, Title: in.Title, DueDate: got}, nil
				},
			}
			app := newTestApp(&mockUserPort{}, tasks)

			resp := doRequest(t, app, http.MethodPost, "/api/tasks",
				`{"title":"Due","category":"WORK","priority":"HIGH","dueDate":`+tt.dueDate+`}`, true)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus != http.StatusCreated {
				assert.Equal(t, "Bad Request", decodeError(t, resp).Error)
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestTaskPayload_NullTimestampsArePresent(t *testing.T) {
	tasks := &mockTaskPort{
		getFunc: func(_ context.Context, id int64) (*domain.Task, error) {
			return &domain.Task{ID: id, Status: domain.StatusInProgress}, nil
		},
	}
	app := newTestApp(&mockUserPort{}, tasks)

	resp := doRequest(t, app, http.MethodGet, "/api/tasks/1", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	for _, key := range []string{"dueDate", "completedAt"} {
		v, ok := body[key]
		assert.True(t, ok, "missing key %s", key)
		assert.Nil(t, v, key)
	}
}
