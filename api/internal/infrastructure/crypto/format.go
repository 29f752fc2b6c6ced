package crypto

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinCredentialLength is the shortest credential ValidateFormat accepts.
const MinCredentialLength = 10

// KnownProviderPrefixes are accepted without further character checks.
var KnownProviderPrefixes = []string{"sk-", "api-", "key-"}

// ValidateFormat is a syntactic plausibility check on a third-party API key.
// It says nothing about whether the provider will accept the key.
func ValidateFormat(candidate string) bool {
	if candidate == "" || utf8.RuneCountInString(candidate) < MinCredentialLength {
		return false
	}

	for _, prefix := range KnownProviderPrefixes {
		if strings.HasPrefix(candidate, prefix) {
			return true
		}
	}

	rest := strings.NewReplacer("-", "", "_", "").Replace(candidate)
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
