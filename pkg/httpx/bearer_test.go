package httpx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractBearer(t *testing.T) {
	t.Parallel()

	t.Run("accepts well formed bearer header", func(t *testing.T) {
		token, ok := ExtractBearer("Bearer aaa.bbb.ccc")
		require.True(t, ok)
		require.Equal(t, "aaa.bbb.ccc", token)
	})

	t.Run("tolerates formatting variance", func(t *testing.T) {
		for _, header := range []string{
			"bearer aaa.bbb.ccc",
			"BEARER   aaa.bbb.ccc  ",
			"Bearer, aaa.bbb.ccc",
			"Bearer aaa.bbb.ccc,",
		} {
			token, ok := ExtractBearer(header)
			require.True(t, ok, "header %q", header)
			require.Equal(t, "aaa.bbb.ccc", token)
		}
	})

	t.Run("accepts a bare dotted token", func(t *testing.T) {
		token, ok := ExtractBearer("aaa.bbb.ccc")
		require.True(t, ok)
		require.Equal(t, "aaa.bbb.ccc", token)
	})

	t.Run("keeps a bare token starting with the scheme word", func(t *testing.T) {
		token, ok := ExtractBearer("bearerish.token")
		require.True(t, ok)
		require.Equal(t, "bearerish.token", token)
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		for _, header := range []string{
			"",
			"Bearer",
			"Bearer ",
			"Bearer no-dots-here",
			"Bearer one.two three.four",
			"Basic dXNlcjpwYXNz",
		} {
			_, ok := ExtractBearer(header)
			require.False(t, ok, "header %q", header)
		}
	})
}
