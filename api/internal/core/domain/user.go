package domain

import (
	"context"
	"strconv"
	"time"
)

// Roles understood by the role gate.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Defaults applied to new accounts' API configuration.
const (
	DefaultAIModel     = "gpt-3.5-turbo"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
)

// User is an account record. APIKey holds the sealed third-party credential
// and is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email"`
	Nickname     *string   `json:"nickname"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	AIModel      string    `json:"-"`
	APIKey       *string   `json:"-"`
	APIBaseURL   *string   `json:"-"`
	MaxTokens    int       `json:"-"`
	Temperature  float64   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnerID is the owner token the credential cipher binds this user's
// credentials to.
func (u *User) OwnerID() string {
	return strconv.FormatInt(u.ID, 10)
}

// HasRole reports whether the user holds any of the given roles.
func (u *User) HasRole(roles ...string) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// APIConfig is the display-safe view of a user's third-party API settings.
type APIConfig struct {
	AIModel      string  `json:"aiModel"`
	MaskedAPIKey string  `json:"apiKey"`
	APIBaseURL   string  `json:"apiBaseUrl"`
	MaxTokens    int     `json:"maxTokens"`
	Temperature  float64 `json:"temperature"`
	HasAPIKey    bool    `json:"hasApiKey"`
}

// APIConfigUpdate is a partial update; nil fields are left untouched. An
// APIKey pointing at "" clears the stored credential.
type APIConfigUpdate struct {
	AIModel     *string
	APIKey      *string
	APIBaseURL  *string
	MaxTokens   *int
	Temperature *float64
}

// UserRepository is the persistence contract of the Account Store.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByLogin matches either username or email.
	GetByLogin(ctx context.Context, login string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	// EmailExists ignores the account identified by excludeID.
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Update(ctx context.Context, user *User) error
}
