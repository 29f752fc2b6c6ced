package domain

import (
	"errors"
	"fmt"
)

// Account Store errors.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Credential Cipher errors.
//
// ErrEncryptionFailure must fail the surrounding write. ErrDecryptionFailure is
// a read-path condition: callers treat the credential as unavailable.
var (
	ErrEncryptionFailure = errors.New("credential encryption failed")
	ErrDecryptionFailure = errors.New("credential decryption failed")
	ErrOwnerMismatch     = fmt.Errorf("%w: owner mismatch", ErrDecryptionFailure)
	ErrInvalidFormat     = errors.New("invalid credential format")
)

// Token Guard errors. The first three all surface as 401 with an identical
// body; they stay distinct so logs and security events can tell them apart.
var (
	ErrMissingOrMalformedToken = errors.New("missing or malformed authorization header")
	ErrInvalidToken            = errors.New("invalid session token")
	ErrBadSignature            = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrTokenExpired            = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrTokenMalformed          = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrUnknownSubject          = errors.New("token subject does not resolve to an active account")
	ErrForbidden               = errors.New("insufficient privileges")
)

// IsUnauthorized reports whether err belongs to the unauthorized class of
// Token Guard rejections.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrMissingOrMalformedToken) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrUnknownSubject)
}
