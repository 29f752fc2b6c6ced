package crypto

import "strings"

// DefaultVisiblePrefix is how many leading characters Mask leaves readable.
const DefaultVisiblePrefix = 8

// MaskChar replaces every hidden character.
const MaskChar = "*"

// Mask hides all but the first DefaultVisiblePrefix characters of a credential.
func Mask(plaintext string) string {
	return MaskPrefix(plaintext, DefaultVisiblePrefix)
}

// MaskPrefix hides all but the first visible characters, preserving length.
// Credentials no longer than visible are masked entirely.
func MaskPrefix(plaintext string, visible int) string {
	if plaintext == "" {
		return ""
	}
	if visible < 0 {
		visible = 0
	}

	runes := []rune(plaintext)
	if len(runes) <= visible {
		return strings.Repeat(MaskChar, len(runes))
	}

	return string(runes[:visible]) + strings.Repeat(MaskChar, len(runes)-visible)
}
