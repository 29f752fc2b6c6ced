package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/irgordon/keyward/api/internal/api/handlers"
	"github.com/irgordon/keyward/api/internal/core/domain"
	"github.com/irgordon/keyward/api/internal/core/domain/mocks"
	"github.com/irgordon/keyward/api/internal/core/services"
	"github.com/irgordon/keyward/api/internal/infrastructure/crypto"
)

func newAPIConfigHandler(t *testing.T, repo *mocks.MockUserRepository) *handlers.APIConfigHandler {
	t.Helper()
	cipher, err := crypto.NewCredentialCipher("handlers-test-master-secret")
	require.NoError(t, err)
	return handlers.NewAPIConfigHandler(services.NewCredentialService(repo, cipher, discardLogger()), discardLogger())
}

func configOwner() *domain.User {
	return &domain.User{
		ID:          7,
		Username:    "alice",
		Role:        domain.RoleUser,
		IsActive:    true,
		AIModel:     domain.DefaultAIModel,
		MaxTokens:   domain.DefaultMaxTokens,
		Temperature: domain.DefaultTemperature,
	}
}

type apiConfigResponse struct {
	Data domain.APIConfig `json:"data"`
}

func TestAPIConfigHandler_UpdateThenGetIsMasked(t *testing.T) {
	repo := &mocks.MockUserRepository{}
	var saved *domain.User
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.User) }).
		Return(nil)

	h := newAPIConfigHandler(t, repo)

	w := httptest.NewRecorder()
	h.Update(w, asUser(jsonRequest(http.MethodPut, "/api/auth/api-config",
		`{"apiKey":"sk-abcdef1234567890","maxTokens":2000,"temperature":0}`), configOwner()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, saved)
	assert.Equal(t, 0.0, saved.Temperature)

	w = httptest.NewRecorder()
	h.Get(w, asUser(httptest.NewRequest(http.MethodGet, "/api/auth/api-config", nil), saved))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "sk-abcdef1234567890", "SECURITY VIOLATION: plaintext credential in response")

	var resp apiConfigResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.HasAPIKey)
	assert.Equal(t, "sk-abcde***********", resp.Data.MaskedAPIKey)
	assert.Equal(t, 2000, resp.Data.MaxTokens)
}

func TestAPIConfigHandler_UpdateRejections(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"Invalid key format", `{"apiKey":"short"}`, "invalid_format"},
		{"Max tokens too high", `{"maxTokens":5000}`, "validation_error"},
		{"Max tokens zero", `{"maxTokens":0}`, "validation_error"},
		{"Temperature negative", `{"temperature":-0.5}`, "validation_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockUserRepository{}
			h := newAPIConfigHandler(t, repo)

			w := httptest.NewRecorder()
			h.Update(w, asUser(jsonRequest(http.MethodPut, "/api/auth/api-config", tt.body), configOwner()))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestAPIConfigHandler_GetWithoutKey(t *testing.T) {
	h := newAPIConfigHandler(t, &mocks.MockUserRepository{})

	w := httptest.NewRecorder()
	h.Get(w, asUser(httptest.NewRequest(http.MethodGet, "/api/auth/api-config", nil), configOwner()))
	require.Equal(t, http.StatusOK, w.Code)

	var resp apiConfigResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.HasAPIKey)
	assert.Empty(t, resp.Data.MaskedAPIKey)
	assert.Equal(t, domain.DefaultAIModel, resp.Data.AIModel)
	assert.Equal(t, domain.DefaultTemperature, resp.Data.Temperature)
}

func TestAPIConfigHandler_TestAPI(t *testing.T) {
	h := newAPIConfigHandler(t, &mocks.MockUserRepository{})

	t.Run("Valid format", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.TestAPI(w, asUser(jsonRequest(http.MethodPost, "/api/auth/test-api", `{"apiKey":"api-0123456789"}`), configOwner()))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"API key format accepted","model":"gpt-3.5-turbo"}`, w.Body.String())
	})

	t.Run("Invalid format", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.TestAPI(w, asUser(jsonRequest(http.MethodPost, "/api/auth/test-api", `{"apiKey":"abc!defghijk"}`), configOwner()))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing key", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.TestAPI(w, asUser(jsonRequest(http.MethodPost, "/api/auth/test-api", `{}`), configOwner()))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
