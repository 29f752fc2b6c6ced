package crypto_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/irgordon/keyward/api/internal/infrastructure/crypto"
)

func TestMask(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"shorter than prefix", "abc", "***"},
		{"exactly prefix", "abcdefgh", "********"},
		{"one past prefix", "abcdefghi", "abcdefgh*"},
		{"provider key", "sk-abcdef1234567890", "sk-abcde***********"},
		{"multibyte", "密钥密钥密钥密钥密钥", "密钥密钥密钥密钥**"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, crypto.Mask(tc.input))
		})
	}
}

func TestMask_PreservesLength(t *testing.T) {
	for n := 1; n <= 40; n++ {
		input := strings.Repeat("k", n)
		masked := crypto.Mask(input)
		assert.Equal(t, n, utf8.RuneCountInString(masked), "length %d", n)

		if n <= crypto.DefaultVisiblePrefix {
			assert.Equal(t, strings.Repeat(crypto.MaskChar, n), masked, "short input leaked characters")
		}
	}
}

func TestMaskPrefix(t *testing.T) {
	assert.Equal(t, "sk-*****", crypto.MaskPrefix("sk-12345", 3))
	assert.Equal(t, "*****", crypto.MaskPrefix("12345", 0))
	assert.Equal(t, "*****", crypto.MaskPrefix("12345", -4))
}
