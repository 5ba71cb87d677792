package user

import (
	"context"
	"net/mail"
	"strings"

	"github.com/example/task-tracker/domain/apperr"
	domain "github.com/example/task-tracker/domain/user"
	"github.com/sirupsen/logrus"
)

const maxUsernameLength = 100

// UserService handles identity uniqueness, password hashing and credential
// checks.
type UserService struct {
	users  UserStore
	hasher PasswordHasher
	log    *logrus.Entry
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, hasher PasswordHasher, log *logrus.Entry) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		log:    log,
	}
}

// Create registers a new user. Username is checked before email.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, apperr.Validation("Password is required")
	}
	if err := s.validatePasswordLength(in.Password); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to hash password")
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: digest,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Update changes the account of id. Blank username/email keep the current
// value, a blank password keeps the current digest, nil names are left
// untouched.
func (s *UserService) Update(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username != "" && username != user.Username {
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		exists, err := s.users.UsernameExists(ctx, username, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.Duplicate("Username already exists")
		}
		user.Username = username
	}

	if email != "" && email != user.Email {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		exists, err := s.users.EmailExists(ctx, email, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.Duplicate("Email already exists")
		}
		user.Email = email
	}

	if in.Password != "" {
		if err := s.validatePasswordLength(in.Password); err != nil {
			return nil, err
		}
		digest, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, apperr.Persistence(err, "failed to hash password")
		}
		user.PasswordHash = digest
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the account of id.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

// FindByID returns the account of id.
func (s *UserService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// FindAll lists all accounts.
func (s *UserService) FindAll(ctx context.Context) ([]domain.User, error) {
	return s.users.FindAll(ctx)
}

// Authenticate returns the user whose username and password match, or nil
// when they do not. The username is matched exactly. Unknown users and
// wrong passwords are not told apart.
// Only storage failures produce an error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, password)
	}
	return user, nil
}

// rehash upgrades a digest produced by a retired scheme. Failure keeps the
// old digest, which still verifies.
func (s *UserService) rehash(ctx context.Context, user *domain.User, password string) {
	digest, err := s.hasher.Hash(password)
	if err == nil {
		previous := user.PasswordHash
		user.PasswordHash = digest
		if err = s.users.Update(ctx, user); err != nil {
			user.PasswordHash = previous
		}
	}
	if err != nil {
		s.log.WithField("user_id", user.ID).WithError(err).Warn("failed to upgrade password digest")
		return
	}
	s.log.WithField("user_id", user.ID).Info("password digest upgraded")
}

func (s *UserService) ensureUnique(ctx context.Context, username, email string) error {
	exists, err := s.users.UsernameExists(ctx, username, 0)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Duplicate("Username already exists")
	}

	exists, err = s.users.EmailExists(ctx, email, 0)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Duplicate("Email already exists")
	}
	return nil
}

func (s *UserService) validatePasswordLength(password string) error {
	if limit := s.hasher.MaxPasswordBytes(); limit > 0 && len(password) > limit {
		return apperr.Validation("Password must be at most %d bytes", limit)
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return apperr.Validation("Username is required")
	}
	if len(username) > maxUsernameLength {
		return apperr.Validation("Username must be at most %d characters", maxUsernameLength)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.Validation("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.Validation("Email format is invalid")
	}
	return nil
}
