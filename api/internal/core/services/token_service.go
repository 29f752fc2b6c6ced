package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/irgordon/keyward/api/internal/core/domain"
)

// TokenTTL is the fixed session lifetime. There is no refresh; an expired
// session requires a new login.
const TokenTTL = 7 * 24 * time.Hour

// TokenIssuer is the iss claim stamped on and required of every session.
const TokenIssuer = "keyward"

// InsecureDefaultSigningSecret keeps an unconfigured development server
// functional. Tokens signed with it can be forged by anyone with the source.
const InsecureDefaultSigningSecret = "keyward-insecure-dev-signing-secret"

// SessionClaims is the signed (not encrypted) token payload. Never put
// secrets in it.
type SessionClaims struct {
	jwt.RegisteredClaims
}

type TokenService struct {
	secret          []byte
	now             func() time.Time
	insecureDefault bool
}

var (
	_ domain.TokenIssuer   = (*TokenService)(nil)
	_ domain.TokenVerifier = (*TokenService)(nil)
)

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests that cross the expiry boundary.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService builds the HS256 signer. An empty secret falls back to
// InsecureDefaultSigningSecret.
func NewTokenService(secret string, opts ...TokenOption) *TokenService {
	s := &TokenService{secret: []byte(secret), now: time.Now}
	if secret == "" {
		s.secret = []byte(InsecureDefaultSigningSecret)
		s.insecureDefault = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UsesInsecureDefault reports whether tokens are signed with the hardcoded
// development secret.
func (s *TokenService) UsesInsecureDefault() bool {
	return s.insecureDefault
}

// Issue mints a session token for subject valid for TokenTTL. The issue
// time T is the current time truncated to the second, matching the
// precision of the iat and exp claims; the token expires at exactly T+TTL.
func (s *TokenService) Issue(subject int64) (string, error) {
	now := s.now().Truncate(time.Second)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subject, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			Issuer:    TokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature first, then expiry, and returns the subject.
// Every failure wraps domain.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (int64, error) {
	parser := jwt.NewParser(
		// 🛡️ Zero-Trust: pin the algorithm, no "none" or RSA/HMAC confusion
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithTimeFunc(s.now),
	)

	claims := &SessionClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return 0, classifyTokenError(err)
	}
	if !token.Valid {
		return 0, domain.ErrTokenMalformed
	}

	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject claim", domain.ErrTokenMalformed)
	}
	return subject, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
}
