package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/irgordon/keyward/api/internal/core/domain"
)

// InsecureDefaultMasterSecret keeps an unconfigured development server
// functional. Anything encrypted under it is readable by anyone with the
// source. Production configuration refuses to start with it.
const InsecureDefaultMasterSecret = "keyward-insecure-dev-master-secret"

// ownerDelimiter separates the credential from its owner token in the sealed
// payload. Decryption splits on the right-most occurrence.
const ownerDelimiter = ":"

// CredentialCipher seals third-party API credentials with AES-256-GCM under a
// key derived from the process master secret. It holds no mutable state and
// is safe for concurrent use.
type CredentialCipher struct {
	// 🛡️ Pre-built AEAD; the derived key never leaves the cipher.Block
	aead            cipher.AEAD
	insecureDefault bool
}

var _ domain.CredentialCipher = (*CredentialCipher)(nil)

// NewCredentialCipher derives a 256-bit key as SHA-256(masterSecret). An empty
// secret falls back to InsecureDefaultMasterSecret.
func NewCredentialCipher(masterSecret string) (*CredentialCipher, error) {
	insecure := false
	if masterSecret == "" {
		masterSecret = InsecureDefaultMasterSecret
		insecure = true
	}

	key := sha256.Sum256([]byte(masterSecret))
	defer func() {
		for i := range key {
			key[i] = 0
		}
	}()

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: block cipher failure: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: GCM failure: %w", err)
	}

	return &CredentialCipher{aead: aesGCM, insecureDefault: insecure}, nil
}

// UsesInsecureDefault reports whether the cipher was built from the
// hardcoded development secret.
func (c *CredentialCipher) UsesInsecureDefault() bool {
	return c.insecureDefault
}

// Encrypt seals plaintext bound to ownerID. An empty plaintext yields nil:
// there is no credential to store. ownerID must not contain the delimiter. Every call draws a fresh nonce, so equal
// inputs never produce equal output.
func (c *CredentialCipher) Encrypt(plaintext string, ownerID string) (*string, error) {
	if plaintext == "" {
		return nil, nil
	}

	// 🛡️ Decrypt splits on the right-most delimiter; an owner containing one could never be opened
	if strings.Contains(ownerID, ownerDelimiter) {
		return nil, fmt.Errorf("%w: owner id must not contain %q", domain.ErrEncryptionFailure, ownerDelimiter)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce generation: %v", domain.ErrEncryptionFailure, err)
	}

	payload := []byte(plaintext + ownerDelimiter + ownerID)
	sealed := c.aead.Seal(nonce, nonce, payload, nil)

	encoded := base64.URLEncoding.EncodeToString(sealed)
	return &encoded, nil
}

// Decrypt opens a credential sealed by Encrypt. A nil or empty ciphertext is
// not an error and yields a BindingNone result.
//
// Payloads without a delimiter predate owner binding and are returned as
// BindingLegacyUnbound without an owner check.
func (c *CredentialCipher) Decrypt(ciphertext *string, ownerID string) (domain.DecryptedCredential, error) {
	if ciphertext == nil || *ciphertext == "" {
		return domain.DecryptedCredential{Binding: domain.BindingNone}, nil
	}

	data, err := base64.URLEncoding.DecodeString(*ciphertext)
	if err != nil {
		return domain.DecryptedCredential{}, fmt.Errorf("%w: base64 decode", domain.ErrDecryptionFailure)
	}

	ns := c.aead.NonceSize()
	if len(data) < ns+c.aead.Overhead() {
		return domain.DecryptedCredential{}, fmt.Errorf("%w: ciphertext too short", domain.ErrDecryptionFailure)
	}

	nonce, sealed := data[:ns], data[ns:]

	// 🛡️ AEAD verification: tampered or foreign ciphertext stops here
	payload, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return domain.DecryptedCredential{}, fmt.Errorf("%w: integrity check", domain.ErrDecryptionFailure)
	}

	text := string(payload)
	idx := strings.LastIndex(text, ownerDelimiter)
	if idx < 0 {
		return domain.DecryptedCredential{Plaintext: text, Binding: domain.BindingLegacyUnbound}, nil
	}

	plaintext, storedOwner := text[:idx], text[idx+len(ownerDelimiter):]
	if subtle.ConstantTimeCompare([]byte(storedOwner), []byte(ownerID)) != 1 {
		return domain.DecryptedCredential{}, domain.ErrOwnerMismatch
	}

	return domain.DecryptedCredential{Plaintext: plaintext, Binding: domain.BindingOwner}, nil
}
