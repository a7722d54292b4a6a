package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSealer_SealOpen(t *testing.T) {
	sealer, err := NewTokenSealer("correct horse battery staple")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		plaintext string
	}{
		{name: "jwt-like token", plaintext: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJEQy0xMDAxIn0.sig"},
		{name: "opaque token", plaintext: "sandbox-2f1c"},
		{name: "empty string", plaintext: ""},
		{name: "unicode", plaintext: "tökéletes-fogsor"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sealed, err := sealer.Seal(tc.plaintext)
			require.NoError(t, err)

			if tc.plaintext == "" {
				assert.Equal(t, "", sealed)
				return
			}

			assert.True(t, IsSealed(sealed))
			assert.False(t, strings.Contains(sealed, tc.plaintext))

			opened, err := sealer.Open(sealed)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, opened)
		})
	}
}

func TestTokenSealer_NonceIsRandom(t *testing.T) {
	sealer, err := NewTokenSealer("key")
	require.NoError(t, err)

	a, err := sealer.Seal("same-token")
	require.NoError(t, err)
	b, err := sealer.Seal("same-token")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestTokenSealer_OpenPlainValue(t *testing.T) {
	sealer, err := NewTokenSealer("key")
	require.NoError(t, err)

	opened, err := sealer.Open("legacy-plain-token")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plain-token", opened)
}

func TestTokenSealer_WrongKey(t *testing.T) {
	a, err := NewTokenSealer("first")
	require.NoError(t, err)
	b, err := NewTokenSealer("second")
	require.NoError(t, err)

	sealed, err := a.Seal("token")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrWrongKey)
}

func TestTokenSealer_Corrupted(t *testing.T) {
	sealer, err := NewTokenSealer("key")
	require.NoError(t, err)

	_, err = sealer.Open(sealedPrefix + "!!!not-base64")
	assert.Error(t, err)

	_, err = sealer.Open(sealedPrefix + "AAAA")
	assert.Error(t, err)
}

func TestNewTokenSealer_EmptyPassphrase(t *testing.T) {
	_, err := NewTokenSealer("   ")
	assert.Error(t, err)
}
