package user

import (
	"errors"
	"time"

	domain "github.com/example/task-tracker/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// RoleUser is the only role issued today.
const RoleUser = "user"

// TokenConfig holds token signing configuration.
type TokenConfig struct {
	SecretKey string
	Issuer    string
	TTL       time.Duration
}

// TokenClaims are the claims carried by issued tokens.
type TokenClaims struct {
	UserID int64    `json:"userId"`
	Email  string   `json:"email"`
	Role   string   `json:"role"`
	Groups []string `json:"groups,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates HS256 tokens.
type TokenIssuer struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenIssuer creates a new TokenIssuer. A nil now uses time.Now.
func NewTokenIssuer(config TokenConfig, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{config: config, now: now}
}

// Issue returns a signed token asserting user's identity. The subject is
// the username; the token expires after the configured TTL.
func (t *TokenIssuer) Issue(user *domain.User) (string, error) {
	now := t.now()
	claims := TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   RoleUser,
		Groups: []string{RoleUser},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.config.Issuer,
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.config.SecretKey))
}

// Validate checks signature, algorithm, issuer and expiry of tokenString.
func (t *TokenIssuer) Validate(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(t.config.SecretKey), nil
	},
		jwt.WithIssuer(t.config.Issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return &domain.Claims{
		UserID:   claims.UserID,
		Username: claims.Subject,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}
