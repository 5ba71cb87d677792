package api

import (
	"strconv"
	"time"

	"github.com/example/task-tracker/domain/apperr"
	"github.com/example/task-tracker/modules/task"
	"github.com/example/task-tracker/modules/user"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	users user.UserPort
	tasks task.TaskPort
	now   func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(users user.UserPort, tasks task.TaskPort) *Handlers {
	return &Handlers{
		users: users,
		tasks: tasks,
		now:   time.Now,
	}
}

// Health reports liveness.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "UP",
		Message:   "Task tracker API is running",
		Timestamp: h.now(),
	})
}

// Register handles user registration and returns a token.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req user.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}

	resp, err := h.users.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login exchanges credentials for a token.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req user.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return apperr.Validation("Username and password are required")
	}

	resp, err := h.users.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			return apperr.Unauthorized("Invalid username or password")
		}
		return err
	}
	return c.JSON(resp)
}

// ListUsers lists all users.
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// GetUser returns one user.
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.users.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

// UpdateUser changes a user.
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req user.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}

	u, err := h.users.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

// DeleteUser removes a user.
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateTask creates a task. The owner defaults to the caller.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var req task.TaskInput
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}
	if req.UserID == 0 {
		if claims, ok := claimsFrom(c); ok {
			req.UserID = claims.UserID
		}
	}

	t, err := h.tasks.CreateTask(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// ListTasks lists all tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.ListTasks(c.UserContext(), task.ListTasksRequest{})
	if err != nil {
		return err
	}
	return c.JSON(tasks)
}

// ListUserTasks lists a user's tasks, optionally filtered by status.
func (h *Handlers) ListUserTasks(c *fiber.Ctx) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	tasks, err := h.tasks.ListTasks(c.UserContext(), task.ListTasksRequest{
		UserID: userID,
		Status: c.Params("status"),
	})
	if err != nil {
		return err
	}
	return c.JSON(tasks)
}

// GetTask returns one task.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.tasks.GetTask(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(t)
}

// UpdateTask overwrites a task.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req task.TaskInput
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}

	t, err := h.tasks.UpdateTask(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(t)
}

// CompleteTask marks a task done.
func (h *Handlers) CompleteTask(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.tasks.CompleteTask(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(t)
}

// DeleteTask removes a task.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.tasks.DeleteTask(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(ErrorResponse{
		Error:   "Success",
		Message: "Task deleted successfully",
		Status:  fiber.StatusOK,
	})
}

// TaskHistory returns the audit trail of a task, newest first.
func (h *Handlers) TaskHistory(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.tasks.TaskHistory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("Invalid %s: %s", name, raw)
	}
	return id, nil
}
