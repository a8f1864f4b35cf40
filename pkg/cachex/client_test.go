package cachex

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, srv
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty address", func(t *testing.T) {
		_, err := Connect(context.Background(), Config{})
		require.Error(t, err)
	})

	t.Run("pings on connect", func(t *testing.T) {
		client, _ := testClient(t)
		require.NoError(t, client.Ping(context.Background()))
	})
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	client, srv := testClient(t)
	ctx := context.Background()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, client.SetJSON(ctx, "k", record{Name: "a", Count: 2}, time.Minute))

	var got record
	require.NoError(t, client.GetJSON(ctx, "k", &got))
	require.Equal(t, record{Name: "a", Count: 2}, got)

	t.Run("miss after expiry", func(t *testing.T) {
		srv.FastForward(2 * time.Minute)
		require.ErrorIs(t, client.GetJSON(ctx, "k", &got), ErrMiss)
	})

	t.Run("miss for absent key", func(t *testing.T) {
		require.ErrorIs(t, client.GetJSON(ctx, "absent", &got), ErrMiss)
	})
}

func TestHashOps(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t)
	ctx := context.Background()

	require.NoError(t, client.HSet(ctx, "h", "f1", "v1"))
	require.NoError(t, client.HSet(ctx, "h", "f2", "v2"))

	fields, err := client.HGetAll(ctx, "h")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"f1": "v1", "f2": "v2"}, fields)

	require.NoError(t, client.HDelete(ctx, "h", "f1"))
	fields, err = client.HGetAll(ctx, "h")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"f2": "v2"}, fields)

	t.Run("absent hash yields empty map", func(t *testing.T) {
		fields, err := client.HGetAll(ctx, "absent")
		require.NoError(t, err)
		require.Empty(t, fields)
	})
}

func TestIncrement(t *testing.T) {
	t.Parallel()

	client, srv := testClient(t)
	ctx := context.Background()

	n, err := client.Increment(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = client.Increment(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	t.Run("window resets the counter", func(t *testing.T) {
		srv.FastForward(2 * time.Minute)
		n, err := client.Increment(ctx, "counter", time.Minute)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})
}
