package cryptox_test

import (
	"testing"

	"github.com/marabinga/passport-dc/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newSealer(t *testing.T, secret string) *cryptox.Sealer {
	t.Helper()
	key, err := cryptox.DeriveKey([]byte(secret), cryptox.PurposeTokenSealing)
	require.NoError(t, err)
	s, err := cryptox.NewSealer(key)
	require.NoError(t, err)
	return s
}

func TestDeriveKey(t *testing.T) {
	t.Run("deterministic per purpose", func(t *testing.T) {
		a, err := cryptox.DeriveKey([]byte("root"), cryptox.PurposeTokenSealing)
		require.NoError(t, err)
		b, err := cryptox.DeriveKey([]byte("root"), cryptox.PurposeTokenSealing)
		require.NoError(t, err)
		require.Equal(t, a, b)
		require.Len(t, a, 32)
	})

	t.Run("purposes are independent", func(t *testing.T) {
		a, err := cryptox.DeriveKey([]byte("root"), cryptox.PurposeTokenSealing)
		require.NoError(t, err)
		b, err := cryptox.DeriveKey([]byte("root"), cryptox.PurposeSessionSigning)
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		_, err := cryptox.DeriveKey(nil, cryptox.PurposeTokenSealing)
		require.ErrorIs(t, err, cryptox.ErrEmptySecret)
	})
}

func TestSealOpen(t *testing.T) {
	s := newSealer(t, "test-root-secret")

	sealed1, err := s.Seal("access-token-value")
	require.NoError(t, err)
	sealed2, err := s.Seal("access-token-value")
	require.NoError(t, err)
	require.NotEqual(t, sealed1, sealed2, "nonce must differ per seal")

	opened, err := s.Open(sealed1)
	require.NoError(t, err)
	require.Equal(t, "access-token-value", opened)
}

func TestSealEmpty(t *testing.T) {
	s := newSealer(t, "test-root-secret")

	sealed, err := s.Seal("")
	require.NoError(t, err)
	require.Nil(t, sealed)

	opened, err := s.Open(nil)
	require.NoError(t, err)
	require.Empty(t, opened)
}

func TestOpenFailures(t *testing.T) {
	s := newSealer(t, "secret-one")

	t.Run("short input", func(t *testing.T) {
		_, err := s.Open([]byte{1, 2, 3})
		require.ErrorIs(t, err, cryptox.ErrCiphertextTooShort)
	})

	t.Run("wrong key", func(t *testing.T) {
		sealed, err := s.Seal("token")
		require.NoError(t, err)

		_, err = newSealer(t, "secret-two").Open(sealed)
		require.Error(t, err)
	})

	t.Run("tampered", func(t *testing.T) {
		sealed, err := s.Seal("token")
		require.NoError(t, err)
		sealed[len(sealed)-1] ^= 0xff

		_, err = s.Open(sealed)
		require.Error(t, err)
	})
}

func TestNewSealerKeySize(t *testing.T) {
	_, err := cryptox.NewSealer(make([]byte, 16))
	require.Error(t, err)
}
