package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/irgordon/keyward/api/internal/core/domain"
)

// RequireRole admits an authenticated request whose account holds one of
// roles. It must run after RequireAuthentication.
func (m *AuthMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 🛡️ Safe context retrieval; a missing identity is an authentication failure, not a 500
			user, ok := UserFromContext(r.Context())
			if !ok {
				m.reject(w, r, domain.EventMissingToken, domain.ErrMissingOrMalformedToken, nil)
				return
			}

			if !user.HasRole(roles...) {
				reason := fmt.Errorf("%w: role %q not in [%s]", domain.ErrForbidden, user.Role, strings.Join(roles, ","))
				id := user.ID
				m.reject(w, r, domain.EventForbidden, reason, &id)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
