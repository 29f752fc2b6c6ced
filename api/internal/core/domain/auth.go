package domain

// TokenIssuer mints session tokens after a successful login or registration.
type TokenIssuer interface {
	Issue(subject int64) (string, error)
}

// TokenVerifier resolves a presented session token to its subject.
// Errors wrap ErrInvalidToken.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}
