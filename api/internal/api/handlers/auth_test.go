package handlers_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/irgordon/keyward/api/internal/api/handlers"
	"github.com/irgordon/keyward/api/internal/api/middleware"
	"github.com/irgordon/keyward/api/internal/core/domain"
	"github.com/irgordon/keyward/api/internal/core/domain/mocks"
	"github.com/irgordon/keyward/api/internal/core/services"
)

const testSecret = "handlers-test-signing-secret-0123456789"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthHandler(repo *mocks.MockUserRepository) (*handlers.AuthHandler, *services.TokenService) {
	tokens := services.NewTokenService(testSecret)
	svc := services.NewAuthService(repo, tokens, discardLogger(), services.WithBcryptCost(bcrypt.MinCost))
	return handlers.NewAuthHandler(svc, discardLogger()), tokens
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, user *domain.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

type sessionResponse struct {
	Message string `json:"message"`
	Data    struct {
		User  map[string]interface{} `json:"user"`
		Token string                 `json:"token"`
	} `json:"data"`
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := &mocks.MockUserRepository{}
		repo.On("UsernameExists", mock.Anything, "alice_01").Return(false, nil)
		repo.On("EmailExists", mock.Anything, "alice@example.com", int64(0)).Return(false, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

		h, tokens := newAuthHandler(repo)
		w := httptest.NewRecorder()
		h.Register(w, jsonRequest(http.MethodPost, "/api/auth/register",
			`{"username":"alice_01","email":"alice@example.com","password":"hunter22"}`))

		require.Equal(t, http.StatusCreated, w.Code)

		var resp sessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "alice_01", resp.Data.User["username"])
		assert.Equal(t, "user", resp.Data.User["role"])
		assert.NotContains(t, w.Body.String(), "password", "SECURITY VIOLATION: hash serialized")
		assert.NotContains(t, w.Body.String(), "api_key")

		subject, err := tokens.Verify(resp.Data.Token)
		require.NoError(t, err)
		assert.Equal(t, mocks.NextID, subject)
	})

	t.Run("CJK username accepted", func(t *testing.T) {
		repo := &mocks.MockUserRepository{}
		repo.On("UsernameExists", mock.Anything, "张三丰").Return(false, nil)
		repo.On("EmailExists", mock.Anything, "zs@example.com", int64(0)).Return(false, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		h, _ := newAuthHandler(repo)
		w := httptest.NewRecorder()
		h.Register(w, jsonRequest(http.MethodPost, "/api/auth/register",
			`{"username":"张三丰","email":"zs@example.com","password":"hunter22"}`))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	invalid := []struct {
		name string
		body string
	}{
		{"Username too short", `{"username":"ab","email":"a@example.com","password":"hunter22"}`},
		{"Username with punctuation", `{"username":"bad-name!","email":"a@example.com","password":"hunter22"}`},
		{"Bad email", `{"username":"alice","email":"not-an-email","password":"hunter22"}`},
		{"Short password", `{"username":"alice","email":"a@example.com","password":"12345"}`},
		{"Missing fields", `{}`},
		{"Broken JSON", `{"username":`},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockUserRepository{}
			h, _ := newAuthHandler(repo)

			w := httptest.NewRecorder()
			h.Register(w, jsonRequest(http.MethodPost, "/api/auth/register", tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("Duplicate username", func(t *testing.T) {
		repo := &mocks.MockUserRepository{}
		repo.On("UsernameExists", mock.Anything, "alice").Return(true, nil)

		h, _ := newAuthHandler(repo)
		w := httptest.NewRecorder()
		h.Register(w, jsonRequest(http.MethodPost, "/api/auth/register",
			`{"username":"alice","email":"a@example.com","password":"hunter22"}`))
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.User{ID: 7, Username: "alice", PasswordHash: string(hash), Role: domain.RoleUser, IsActive: true}

	t.Run("Success by email", func(t *testing.T) {
		repo := &mocks.MockUserRepository{}
		repo.On("GetByLogin", mock.Anything, "alice@example.com").Return(stored, nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		h, tokens := newAuthHandler(repo)
		w := httptest.NewRecorder()
		h.Login(w, jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice@example.com","password":"hunter22"}`))
		require.Equal(t, http.StatusOK, w.Code)

		var resp sessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		subject, err := tokens.Verify(resp.Data.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), subject)
	})

	t.Run("Wrong password", func(t *testing.T) {
		repo := &mocks.MockUserRepository{}
		repo.On("GetByLogin", mock.Anything, "alice").Return(stored, nil)

		h, _ := newAuthHandler(repo)
		w := httptest.NewRecorder()
		h.Login(w, jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"nope"}`))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotContains(t, w.Body.String(), "token")
	})
}

func TestAuthHandler_MeAndProfile(t *testing.T) {
	user := &domain.User{ID: 7, Username: "alice", Role: domain.RoleUser, IsActive: true}

	t.Run("Me returns the gate's user", func(t *testing.T) {
		h, _ := newAuthHandler(&mocks.MockUserRepository{})
		w := httptest.NewRecorder()
		h.Me(w, asUser(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), user))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"alice"`)
	})

	t.Run("Me without identity", func(t *testing.T) {
		h, _ := newAuthHandler(&mocks.MockUserRepository{})
		w := httptest.NewRecorder()
		h.Me(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Update profile", func(t *testing.T) {
		repo := &mocks.MockUserRepository{}
		repo.On("EmailExists", mock.Anything, "new@example.com", int64(7)).Return(false, nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		h, _ := newAuthHandler(repo)
		w := httptest.NewRecorder()
		h.UpdateProfile(w, asUser(jsonRequest(http.MethodPut, "/api/auth/profile", `{"email":"new@example.com"}`), user))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"email":"new@example.com"`)
	})

	t.Run("Change password with wrong current password", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
		require.NoError(t, err)
		withHash := *user
		withHash.PasswordHash = string(hash)

		repo := &mocks.MockUserRepository{}
		h, _ := newAuthHandler(repo)
		w := httptest.NewRecorder()
		h.ChangePassword(w, asUser(jsonRequest(http.MethodPut, "/api/auth/password",
			`{"currentPassword":"guess","newPassword":"new-password"}`), &withHash))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Logout", func(t *testing.T) {
		h, _ := newAuthHandler(&mocks.MockUserRepository{})
		w := httptest.NewRecorder()
		h.Logout(w, asUser(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), user))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
