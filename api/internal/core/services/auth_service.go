package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/irgordon/keyward/api/internal/core/domain"
)

// Domain errors specific to account management.
var (
	ErrUsernameTaken   = fmt.Errorf("%w: username already exists", domain.ErrConflict)
	ErrEmailTaken      = fmt.Errorf("%w: email already registered", domain.ErrConflict)
	ErrAccountDisabled = fmt.Errorf("%w: account suspended", domain.ErrInvalidCredentials)
	ErrWrongPassword   = fmt.Errorf("%w: current password is incorrect", domain.ErrInvalidInput)
)

// RegisterInput is an already-validated registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// ProfileUpdate is a partial profile change; nil fields are untouched.
type ProfileUpdate struct {
	Email    *string
	Nickname *string
}

// AuthService owns account lifecycle: registration, login and profile
// maintenance. Session tokens come from the injected issuer.
type AuthService struct {
	repo       domain.UserRepository
	tokens     domain.TokenIssuer
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) {
		s.bcryptCost = cost
	}
}

func NewAuthService(repo domain.UserRepository, tokens domain.TokenIssuer, logger *slog.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		repo:       repo,
		tokens:     tokens,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a regular account and issues its first session token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, "", ErrUsernameTaken
	}

	taken, err = s.repo.EmailExists(ctx, email, 0)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        &email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		IsActive:     true,
		AIModel:      domain.DefaultAIModel,
		MaxTokens:    domain.DefaultMaxTokens,
		Temperature:  domain.DefaultTemperature,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("account registered", slog.Int64("user_id", user.ID))
	return user, token, nil
}

// Login accepts a username or an email address.
func (s *AuthService) Login(ctx context.Context, login, password string) (*domain.User, string, error) {
	user, err := s.repo.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// 🛡️ Burn the same bcrypt time as a real check so unknown logins are not distinguishable
			_ = bcrypt.CompareHashAndPassword(s.placeholderHash(), []byte(password))
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to record login: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// UpdateProfile applies email and nickname changes. Emails stay unique.
func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, upd ProfileUpdate) (*domain.User, error) {
	updated := *user

	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		taken, err := s.repo.EmailExists(ctx, email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		updated.Email = &email
	}

	if upd.Nickname != nil {
		nickname := strings.TrimSpace(*upd.Nickname)
		if nickname == "" {
			updated.Nickname = nil
		} else {
			updated.Nickname = &nickname
		}
	}

	updated.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &updated, nil
}

// ChangePassword requires the current password.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, current, next string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	updated := *user
	updated.PasswordHash = string(hash)
	updated.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, &updated); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password changed", slog.Int64("user_id", user.ID))
	return nil
}

func (s *AuthService) placeholderHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("keyward-placeholder-password"), s.bcryptCost)
	})
	return s.dummyHash
}
