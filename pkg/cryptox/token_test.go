package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	t.Run("is deterministic", func(t *testing.T) {
		require.Equal(t, FingerprintToken("abc"), FingerprintToken("abc"))
	})

	t.Run("differs per input", func(t *testing.T) {
		require.NotEqual(t, FingerprintToken("abc"), FingerprintToken("abd"))
	})

	t.Run("never echoes the input", func(t *testing.T) {
		fp := FingerprintToken("super-secret-token")
		require.NotContains(t, fp, "super-secret-token")
		require.Len(t, fp, 43)
	})
}

func TestGenerateNumericCode(t *testing.T) {
	t.Parallel()

	t.Run("produces only digits of the requested length", func(t *testing.T) {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		require.Regexp(t, `^[0-9]{6}$`, code)
	})

	t.Run("rejects non-positive lengths", func(t *testing.T) {
		_, err := GenerateNumericCode(0)
		require.Error(t, err)
	})
}

func TestConstantTimeEquals(t *testing.T) {
	t.Parallel()

	require.True(t, ConstantTimeEquals("123456", "123456"))
	require.False(t, ConstantTimeEquals("123456", "123457"))
	require.False(t, ConstantTimeEquals("123456", "12345"))
}
