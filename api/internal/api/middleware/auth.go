package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/irgordon/keyward/api/internal/api/httputil"
	"github.com/irgordon/keyward/api/internal/core/domain"
)

type contextKey string

const userKey contextKey = "authenticated_user"

const bearerPrefix = "bearer "

// Per-IP budget for security event writes. Rejections beyond it are still
// answered and logged, just not stored.
const (
	DefaultEventRatePerSec = 0.2
	DefaultEventBurst      = 5
)

const eventWriteTimeout = 2 * time.Second

type AuthMiddleware struct {
	Tokens domain.TokenVerifier
	Users  domain.UserRepository
	Events domain.SecurityEventRepository // optional
	Logger *slog.Logger

	// EventLimiter bounds how many events one client can write.
	EventLimiter *RateLimiter

	now func() time.Time
}

func NewAuthMiddleware(tokens domain.TokenVerifier, users domain.UserRepository, events domain.SecurityEventRepository, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		Tokens: tokens,
		Users:  users,
		Events: events,
		Logger: logger,

		EventLimiter: NewRateLimiter(DefaultEventRatePerSec, DefaultEventBurst),

		now: time.Now,
	}
}

// WithUser stores the authenticated account in ctx.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the account placed by RequireAuthentication.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok && user != nil
}

// ==============================================================================
// 1. Identity & Zero-Trust Access
// ==============================================================================

// RequireAuthentication admits a request only when it carries a valid bearer
// token whose subject is an existing, active account.
func (m *AuthMiddleware) RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := extractBearer(r)
		if !ok {
			m.reject(w, r, domain.EventMissingToken, domain.ErrMissingOrMalformedToken, nil)
			return
		}

		subject, err := m.Tokens.Verify(tokenString)
		if err != nil {
			m.reject(w, r, domain.EventInvalidToken, err, nil)
			return
		}

		// 🛡️ Zero-Trust: a valid signature is not enough, the account must still exist and be active
		user, err := m.Users.GetByID(r.Context(), subject)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			m.Logger.Error("failed to resolve token subject", slog.Int64("user_id", subject), slog.Any("error", err))
			httputil.HandleError(w, err, nil)
			return
		}
		if user == nil || !user.IsActive {
			m.reject(w, r, domain.EventUnknownSubject, domain.ErrUnknownSubject, &subject)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// reject answers 401 or 403. The body never varies with the reason; the
// reason goes to the log and the security event store.
func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, kind string, reason error, subject *int64) {
	status := http.StatusUnauthorized
	if errors.Is(reason, domain.ErrForbidden) {
		status = http.StatusForbidden
	}

	attrs := []any{
		slog.String("kind", kind),
		slog.String("reason", reason.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	}
	if subject != nil {
		attrs = append(attrs, slog.Int64("user_id", *subject))
	}
	m.Logger.Warn("request rejected by auth gate", attrs...)

	m.record(r, kind, reason, subject)

	if status == http.StatusForbidden {
		httputil.HandleError(w, reason, nil)
		return
	}
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.UnauthorizedResponse)
}

// record is best effort; a storage failure never changes the response.
func (m *AuthMiddleware) record(r *http.Request, kind string, reason error, subject *int64) {
	if m.Events == nil {
		return
	}

	// 🛡️ Anonymous floods must not turn into unbounded INSERTs
	if m.EventLimiter != nil && !m.EventLimiter.Allow(clientIP(r)) {
		m.Logger.Debug("security event suppressed", slog.String("kind", kind), slog.String("remote_addr", r.RemoteAddr))
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	event := &domain.SecurityEvent{
		ID:         id,
		Kind:       kind,
		Reason:     reason.Error(),
		SubjectID:  subject,
		Method:     r.Method,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		RequestID:  middleware.GetReqID(r.Context()),
		CreatedAt:  m.now().UTC(),
	}
	ctx, cancel := context.WithTimeout(r.Context(), eventWriteTimeout)
	defer cancel()
	if err := m.Events.Record(ctx, event); err != nil {
		m.Logger.Error("failed to record security event", slog.String("kind", kind), slog.Any("error", err))
	}
}

// extractBearer reads "Authorization: Bearer <token>"; the scheme is
// case-insensitive.
func extractBearer(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
