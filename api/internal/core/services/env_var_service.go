package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/irgordon/keyward/api/internal/core/domain"
	"github.com/irgordon/keyward/api/internal/infrastructure/crypto"
)

// Limits enforced on the per-user model parameters.
const (
	MinMaxTokens   = 100
	MaxMaxTokens   = 4000
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// CredentialService manages a user's third-party API configuration. It is the
// only caller of the credential cipher.
type CredentialService struct {
	repo   domain.UserRepository
	cipher domain.CredentialCipher
	logger *slog.Logger
	now    func() time.Time
}

func NewCredentialService(repo domain.UserRepository, cipher domain.CredentialCipher, logger *slog.Logger) *CredentialService {
	return &CredentialService{
		repo:   repo,
		cipher: cipher,
		logger: logger,
		now:    time.Now,
	}
}

// GetAPIConfig returns the display-safe configuration. A stored credential
// that cannot be opened is reported as absent, never as an error.
func (s *CredentialService) GetAPIConfig(ctx context.Context, user *domain.User) domain.APIConfig {
	cfg := domain.APIConfig{
		AIModel:     user.AIModel,
		MaxTokens:   user.MaxTokens,
		Temperature: user.Temperature,
	}
	if user.APIBaseURL != nil {
		cfg.APIBaseURL = *user.APIBaseURL
	}

	cred, err := s.cipher.Decrypt(user.APIKey, user.OwnerID())
	if err != nil {
		s.logger.WarnContext(ctx, "stored API credential is unusable; treating as absent",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
		return cfg
	}
	if !cred.Present() {
		return cfg
	}

	if cred.Binding == domain.BindingLegacyUnbound {
		s.logger.WarnContext(ctx, "API credential predates owner binding",
			slog.Int64("user_id", user.ID),
			slog.String("binding", cred.Binding.String()),
		)
	}

	cfg.HasAPIKey = true
	cfg.MaskedAPIKey = crypto.Mask(cred.Plaintext)
	return cfg
}

// UpdateAPIConfig applies a partial update. The write is all-or-nothing: a
// credential that fails validation or encryption leaves the record untouched.
func (s *CredentialService) UpdateAPIConfig(ctx context.Context, user *domain.User, upd domain.APIConfigUpdate) (*domain.User, error) {
	updated := *user

	if upd.AIModel != nil {
		model := strings.TrimSpace(*upd.AIModel)
		if model == "" {
			return nil, fmt.Errorf("%w: aiModel must not be empty", domain.ErrInvalidInput)
		}
		updated.AIModel = model
	}

	if upd.APIKey != nil {
		apiKey := strings.TrimSpace(*upd.APIKey)
		if apiKey != "" && !crypto.ValidateFormat(apiKey) {
			return nil, domain.ErrInvalidFormat
		}

		// 🛡️ Bind the ciphertext to this account so a copied column value is useless elsewhere
		sealed, err := s.cipher.Encrypt(apiKey, user.OwnerID())
		if err != nil {
			s.logger.ErrorContext(ctx, "API credential encryption failed", slog.Int64("user_id", user.ID))
			return nil, fmt.Errorf("%w: %v", domain.ErrEncryptionFailure, err)
		}
		updated.APIKey = sealed

		s.logger.InfoContext(ctx, "API credential updated",
			slog.Int64("user_id", user.ID),
			slog.Bool("cleared", sealed == nil),
			slog.Int("length", len(apiKey)),
		)
	}

	if upd.APIBaseURL != nil {
		if base := strings.TrimSpace(*upd.APIBaseURL); base != "" {
			updated.APIBaseURL = &base
		} else {
			updated.APIBaseURL = nil
		}
	}

	if upd.MaxTokens != nil {
		if *upd.MaxTokens < MinMaxTokens || *upd.MaxTokens > MaxMaxTokens {
			return nil, fmt.Errorf("%w: maxTokens must be between %d and %d", domain.ErrInvalidInput, MinMaxTokens, MaxMaxTokens)
		}
		updated.MaxTokens = *upd.MaxTokens
	}

	if upd.Temperature != nil {
		if *upd.Temperature < MinTemperature || *upd.Temperature > MaxTemperature {
			return nil, fmt.Errorf("%w: temperature must be between 0 and 2", domain.ErrInvalidInput)
		}
		updated.Temperature = *upd.Temperature
	}

	updated.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to persist API configuration: %w", err)
	}
	return &updated, nil
}

// TestAPIKey performs the pre-flight syntax check on a candidate key.
func (s *CredentialService) TestAPIKey(apiKey string) error {
	if !crypto.ValidateFormat(apiKey) {
		return domain.ErrInvalidFormat
	}
	return nil
}
