package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/database"
	"github.com/example/task-tracker/domain/apperr"
	domain "github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/logger"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserModule provides identity, credential and token services.
type UserModule struct {
	db       *gorm.DB
	log      *logrus.Entry
	jwt      config.JWTConfig
	password config.PasswordConfig
	service  *UserService
	tokens   *TokenIssuer
}

// Compile-time interface checks.
var _ mono.Module = (*UserModule)(nil)
var _ mono.ServiceProviderModule = (*UserModule)(nil)
var _ mono.HealthCheckableModule = (*UserModule)(nil)

// NewModule creates a new UserModule.
func NewModule(db *gorm.DB, cfg *config.Config, log *logrus.Entry) *UserModule {
	return &UserModule{
		db:       db,
		log:      logger.ForModule(log, "user"),
		jwt:      cfg.JWT,
		password: cfg.Password,
	}
}

// Name returns the module name.
func (m *UserModule) Name() string {
	return "user"
}

// Start migrates the users table and wires the service.
func (m *UserModule) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not set")
	}
	if err := m.db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}

	hasher := NewPasswordHasher(m.password.Scheme, m.password.BcryptCost)
	m.service = NewUserService(NewUserRepository(m.db), hasher, m.log)
	m.tokens = NewTokenIssuer(TokenConfig{
		SecretKey: m.jwt.SecretKey,
		Issuer:    m.jwt.Issuer,
		TTL:       m.jwt.TTL,
	}, nil)

	m.log.WithField("password_scheme", m.password.Scheme).Info("module started")
	return nil
}

// Stop shuts down the module.
func (m *UserModule) Stop(_ context.Context) error {
	m.log.Info("module stopped")
	return nil
}

// Health pings the database.
func (m *UserModule) Health(ctx context.Context) mono.HealthStatus {
	if err := database.Ping(ctx, m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: err.Error(),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"password_scheme": m.password.Scheme,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *UserModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-users", json.Unmarshal, json.Marshal, m.handleListUsers,
	); err != nil {
		return fmt.Errorf("failed to register list-users service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-user", json.Unmarshal, json.Marshal, m.handleUpdateUser,
	); err != nil {
		return fmt.Errorf("failed to register update-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-user", json.Unmarshal, json.Marshal, m.handleDeleteUser,
	); err != nil {
		return fmt.Errorf("failed to register delete-user service: %w", err)
	}

	m.log.Info("registered services: register, login, validate-token, get-user, list-users, update-user, delete-user")
	return nil
}

// handleRegister creates the account and signs the caller in.
func (m *UserModule) handleRegister(ctx context.Context, req CreateUserInput, _ *mono.Msg) (AuthResponse, error) {
	user, err := m.service.Create(ctx, req)
	if err != nil {
		return AuthResponse{}, err
	}
	return m.authResponse(user, "User registered successfully")
}

// handleLogin checks credentials. Every credential failure yields the same
// unauthorized error.
func (m *UserModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (AuthResponse, error) {
	user, err := m.service.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return AuthResponse{}, err
	}
	if user == nil {
		return AuthResponse{}, apperr.Unauthorized("Invalid username or password")
	}
	return m.authResponse(user, "Login successful")
}

// handleValidateToken reports validation failures in the response body.
func (m *UserModule) handleValidateToken(_ context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.tokens.Validate(req.Token)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, ErrExpiredToken) {
			errMsg = "token expired"
		}
		return ValidateTokenResponse{
			Valid: false,
			Error: errMsg,
		}, nil
	}

	return ValidateTokenResponse{
		Valid:    true,
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}

func (m *UserModule) handleGetUser(ctx context.Context, req UserIDRequest, _ *mono.Msg) (UserResponse, error) {
	user, err := m.service.FindByID(ctx, req.ID)
	if err != nil {
		return UserResponse{}, err
	}
	return ToUserResponse(user), nil
}

func (m *UserModule) handleListUsers(ctx context.Context, _ ListUsersRequest, _ *mono.Msg) (UserListResponse, error) {
	users, err := m.service.FindAll(ctx)
	if err != nil {
		return UserListResponse{}, err
	}
	resp := UserListResponse{Users: make([]UserResponse, len(users))}
	for i := range users {
		resp.Users[i] = ToUserResponse(&users[i])
	}
	return resp, nil
}

func (m *UserModule) handleUpdateUser(ctx context.Context, req UpdateUserRequest, _ *mono.Msg) (UserResponse, error) {
	user, err := m.service.Update(ctx, req.ID, req.User)
	if err != nil {
		return UserResponse{}, err
	}
	return ToUserResponse(user), nil
}

func (m *UserModule) handleDeleteUser(ctx context.Context, req UserIDRequest, _ *mono.Msg) (DeleteUserResponse, error) {
	if err := m.service.Delete(ctx, req.ID); err != nil {
		return DeleteUserResponse{}, err
	}
	return DeleteUserResponse{ID: req.ID, Deleted: true}, nil
}

func (m *UserModule) authResponse(user *domain.User, message string) (AuthResponse, error) {
	token, err := m.tokens.Issue(user)
	if err != nil {
		return AuthResponse{}, apperr.Persistence(err, "failed to issue token")
	}
	return AuthResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Message:  message,
		Token:    token,
	}, nil
}
