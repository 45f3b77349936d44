package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateKeypair(t *testing.T) {
	secret, addr, err := GenerateKeypair()
	require.NoError(t, err)
	require.Len(t, secret, 64)
	require.NotEmpty(t, addr)

	// The printed address must match what the secret re-derives to.
	derived, err := AddressFromSecret(secret)
	require.NoError(t, err)
	require.Equal(t, addr, derived)
}

func TestAddressFromSecretDeterministic(t *testing.T) {
	secret, _, err := GenerateKeypair()
	require.NoError(t, err)

	first, err := AddressFromSecret(secret)
	require.NoError(t, err)
	second, err := AddressFromSecret(secret)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestAddressFromSecretRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"not hex", "zz"},
		{"empty", ""},
		{"short", "deadbeef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddressFromSecret(tt.secret)
			require.Error(t, err)
		})
	}
}

func TestSign(t *testing.T) {
	secret, _, err := GenerateKeypair()
	require.NoError(t, err)

	sig, err := Sign(secret, []byte("challenge"))
	require.NoError(t, err)
	require.NotEmpty(t, sig)

	// Signing is deterministic (RFC 6979 nonces).
	again, err := Sign(secret, []byte("challenge"))
	require.NoError(t, err)
	require.Equal(t, sig, again)
}
