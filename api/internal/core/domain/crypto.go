package domain

// Binding describes how a decrypted credential was tied to its owner.
type Binding int

const (
	// BindingNone means there was no stored credential to decrypt.
	BindingNone Binding = iota

	// BindingOwner means the payload carried an owner token that matched the caller.
	BindingOwner

	// BindingLegacyUnbound means the payload predates owner binding. The
	// plaintext was authenticated by the cipher but never checked against an
	// owner, so it carries a weaker guarantee than BindingOwner.
	BindingLegacyUnbound
)

func (b Binding) String() string {
	switch b {
	case BindingOwner:
		return "owner"
	case BindingLegacyUnbound:
		return "legacy_unbound"
	default:
		return "none"
	}
}

// DecryptedCredential is the result of opening a stored credential.
type DecryptedCredential struct {
	Plaintext string
	Binding   Binding
}

// Present reports whether a usable plaintext was recovered.
func (d DecryptedCredential) Present() bool {
	return d.Binding != BindingNone
}

// CredentialCipher seals third-party API credentials for storage.
// 🛡️ Encrypted values are bound to an owner; opening one under a different
// owner fails closed with ErrOwnerMismatch.
type CredentialCipher interface {
	// Encrypt returns nil for an empty plaintext; there is nothing to store.
	Encrypt(plaintext string, ownerID string) (*string, error)

	// Decrypt returns a BindingNone result for a nil or empty ciphertext.
	Decrypt(ciphertext *string, ownerID string) (DecryptedCredential, error)
}
