package user

import (
	"time"

	domain "github.com/example/task-tracker/domain/user"
)

// CreateUserInput is the request for the register service.
type CreateUserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// UpdateUserInput carries the fields to change; blanks and nils are kept.
type UpdateUserInput struct {
	Username  string  `json:"username,omitempty"`
	Email     string  `json:"email,omitempty"`
	Password  string  `json:"password,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// UpdateUserRequest is the request for the update-user service.
type UpdateUserRequest struct {
	ID   int64           `json:"id"`
	User UpdateUserInput `json:"user"`
}

// UserIDRequest addresses a single user.
type UserIDRequest struct {
	ID int64 `json:"id"`
}

// ListUsersRequest is the (empty) request for the list-users service.
type ListUsersRequest struct{}

// LoginRequest is the request for the login service.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the outbound view of a user. It never carries the digest.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserListResponse wraps a user list.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// DeleteUserResponse confirms a deletion.
type DeleteUserResponse struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Token    string `json:"token"`
}

// ValidateTokenRequest is the request for the validate-token service.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse is the response for the validate-token service.
type ValidateTokenResponse struct {
	Valid    bool   `json:"valid"`
	UserID   int64  `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ToUserResponse strips the password digest from u.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
