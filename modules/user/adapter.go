package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker/domain/apperr"
	domain "github.com/example/task-tracker/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// UserPort defines the user operations other modules depend on.
type UserPort interface {
	Register(ctx context.Context, in CreateUserInput) (*AuthResponse, error)
	Login(ctx context.Context, username, password string) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, id int64) (*UserResponse, error)
	ListUsers(ctx context.Context) ([]UserResponse, error)
	UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*UserResponse, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UserAdapter implements UserPort using the service container.
type UserAdapter struct {
	container mono.ServiceContainer
}

// NewUserAdapter creates a new UserAdapter.
func NewUserAdapter(container mono.ServiceContainer) *UserAdapter {
	return &UserAdapter{
		container: container,
	}
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	err := helper.CallRequestReplyService(ctx, container, service, json.Marshal, json.Unmarshal, req, resp)
	return apperr.FromRemote(err)
}

// Register creates an account and returns its first token.
func (a *UserAdapter) Register(ctx context.Context, in CreateUserInput) (*AuthResponse, error) {
	var resp AuthResponse
	if err := call(ctx, a.container, "register", &in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a token.
func (a *UserAdapter) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	req := LoginRequest{Username: username, Password: password}
	var resp AuthResponse
	if err := call(ctx, a.container, "login", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateToken validates a token and returns its claims.
func (a *UserAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := call(ctx, a.container, "validate-token", &req, &resp); err != nil {
		return nil, fmt.Errorf("validate-token request failed: %w", err)
	}

	if !resp.Valid {
		return nil, apperr.Unauthorized("token validation failed: %s", resp.Error)
	}

	return &domain.Claims{
		UserID:   resp.UserID,
		Username: resp.Username,
		Email:    resp.Email,
		Role:     resp.Role,
	}, nil
}

// GetUser retrieves a user by ID.
func (a *UserAdapter) GetUser(ctx context.Context, id int64) (*UserResponse, error) {
	var resp UserResponse
	if err := call(ctx, a.container, "get-user", &UserIDRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListUsers lists all users.
func (a *UserAdapter) ListUsers(ctx context.Context) ([]UserResponse, error) {
	var resp UserListResponse
	if err := call(ctx, a.container, "list-users", &ListUsersRequest{}, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// UpdateUser updates a user.
func (a *UserAdapter) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*UserResponse, error) {
	var resp UserResponse
	if err := call(ctx, a.container, "update-user", &UpdateUserRequest{ID: id, User: in}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteUser deletes a user.
func (a *UserAdapter) DeleteUser(ctx context.Context, id int64) error {
	var resp DeleteUserResponse
	return call(ctx, a.container, "delete-user", &UserIDRequest{ID: id}, &resp)
}
