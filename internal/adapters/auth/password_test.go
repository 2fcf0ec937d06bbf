package auth

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_GenerateSalt(t *testing.T) {
	h := NewBcryptHasher(10)
	hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		salt, err := h.GenerateSalt()
		require.NoError(t, err)
		assert.Regexp(t, hexRe, salt, "salt should be 64 hex characters")
		_, dup := seen[salt]
		assert.False(t, dup, "salts should not repeat")
		seen[salt] = struct{}{}
	}
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(10)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
	}{
		{"ordinary password", "correct horse battery staple"},
		{"over bcrypt's 72-byte limit", strings.Repeat("a", 100)},
		{"unicode", "contraseña-ñandú-🎉"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(salt, tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)

			require.NoError(t, h.Compare(hash, salt, tt.password))
			assert.Error(t, h.Compare(hash, salt, tt.password+"x"))
		})
	}
}

func TestBcryptHasher_Compare_wrongSalt(t *testing.T) {
	h := NewBcryptHasher(10)
	salt1, err := h.GenerateSalt()
	require.NoError(t, err)
	salt2, err := h.GenerateSalt()
	require.NoError(t, err)

	hash, err := h.Hash(salt1, "password")
	require.NoError(t, err)

	assert.Error(t, h.Compare(hash, salt2, "password"))
}
