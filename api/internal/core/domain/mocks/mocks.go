// Package mocks provides testify mock implementations of the domain ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/irgordon/keyward/api/internal/core/domain"
)

// MockUserRepository is a mock implementation of domain.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NextID is assigned to users passed to Create when the call succeeds.
const NextID int64 = 1001

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		// Simulate the database assigning the serial id
		user.ID = NextID
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockSecurityEventRepository is a mock implementation of domain.SecurityEventRepository.
type MockSecurityEventRepository struct {
	mock.Mock
}

func (m *MockSecurityEventRepository) Record(ctx context.Context, event *domain.SecurityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockSecurityEventRepository) List(ctx context.Context, limit, offset int) ([]domain.SecurityEvent, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SecurityEvent), args.Error(1)
}

func (m *MockSecurityEventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockCredentialCipher is a mock implementation of domain.CredentialCipher.
type MockCredentialCipher struct {
	mock.Mock
}

func (m *MockCredentialCipher) Encrypt(plaintext string, ownerID string) (*string, error) {
	args := m.Called(plaintext, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockCredentialCipher) Decrypt(ciphertext *string, ownerID string) (domain.DecryptedCredential, error) {
	args := m.Called(ciphertext, ownerID)
	return args.Get(0).(domain.DecryptedCredential), args.Error(1)
}

// MockTokenVerifier is a mock implementation of domain.TokenVerifier.
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(token string) (int64, error) {
	args := m.Called(token)
	return args.Get(0).(int64), args.Error(1)
}
