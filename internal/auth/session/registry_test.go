package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/cartside/cartside/pkg/cachex"
	"github.com/cartside/cartside/pkg/jwtx"
)

func testDeps(t *testing.T) (*cachex.Client, *miniredis.Miniredis, *jwtx.Codec) {
	t.Helper()

	srv := miniredis.RunT(t)
	cache, err := cachex.Connect(context.Background(), cachex.Config{Addr: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	codec, err := jwtx.NewCodec("cartside-test", jwtx.Secrets{
		Access:       []byte("access-secret"),
		Refresh:      []byte("refresh-secret"),
		AdminAccess:  []byte("admin-access-secret"),
		AdminRefresh: []byte("admin-refresh-secret"),
	}, jwtx.TTLs{})
	require.NoError(t, err)

	return cache, srv, codec
}

func identity(subject string, admin bool) jwtx.Identity {
	role := "user"
	if admin {
		role = "admin"
	}
	return jwtx.Identity{Subject: subject, Email: subject + "@x.com", Name: "T", Role: role, Admin: admin}
}

func TestRegistrySaveAndVerify(t *testing.T) {
	t.Parallel()

	cache, _, codec := testDeps(t)
	reg := NewRegistry(cache, codec)
	ctx := context.Background()

	t.Run("saved token verifies with original claims", func(t *testing.T) {
		token, err := codec.IssueRefresh(identity("sub-1", false), false)
		require.NoError(t, err)
		require.NoError(t, reg.Save(ctx, token, false))

		claims, err := reg.Verify(ctx, token)
		require.NoError(t, err)
		require.Equal(t, "sub-1", claims.Subject)
		require.Equal(t, jwtx.KindRefresh, claims.Kind)
	})

	t.Run("elevated token verifies under elevated domain", func(t *testing.T) {
		token, err := codec.IssueRefresh(identity("adm-1", true), true)
		require.NoError(t, err)
		require.NoError(t, reg.Save(ctx, token, true))

		claims, err := reg.Verify(ctx, token)
		require.NoError(t, err)
		require.True(t, claims.Admin)
	})

	t.Run("unsaved token reads as revoked", func(t *testing.T) {
		token, err := codec.IssueRefresh(identity("sub-2", false), false)
		require.NoError(t, err)

		_, err = reg.Verify(ctx, token)
		require.ErrorIs(t, err, ErrRevoked)
	})

	t.Run("garbage is malformed, not revoked", func(t *testing.T) {
		_, err := reg.Verify(ctx, "garbage")
		require.ErrorIs(t, err, ErrMalformedToken)

		require.ErrorIs(t, reg.Save(ctx, "garbage", false), ErrMalformedToken)
	})
}

func TestRegistrySaveExpired(t *testing.T) {
	t.Parallel()

	cache, _, _ := testDeps(t)

	shortCodec, err := jwtx.NewCodec("cartside-test", jwtx.Secrets{
		Access:       []byte("a"),
		Refresh:      []byte("r"),
		AdminAccess:  []byte("aa"),
		AdminRefresh: []byte("ar"),
	}, jwtx.TTLs{Refresh: time.Millisecond})
	require.NoError(t, err)

	reg := NewRegistry(cache, shortCodec)

	token, err := shortCodec.IssueRefresh(identity("sub-1", false), false)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.ErrorIs(t, reg.Save(context.Background(), token, false), ErrTokenExpired)
}

func TestRegistryRecordExpiry(t *testing.T) {
	t.Parallel()

	cache, srv, codec := testDeps(t)
	reg := NewRegistry(cache, codec)
	ctx := context.Background()

	token, err := codec.IssueRefresh(identity("sub-1", false), false)
	require.NoError(t, err)
	require.NoError(t, reg.Save(ctx, token, false))

	// Past the standard refresh lifetime the record evaporates on its own.
	srv.FastForward(codec.RefreshTTL(false) + time.Minute)

	_, err = reg.Verify(ctx, token)
	require.ErrorIs(t, err, ErrRevoked)
}

func TestRegistryRawTokenMismatch(t *testing.T) {
	t.Parallel()

	cache, _, codec := testDeps(t)
	reg := NewRegistry(cache, codec)
	ctx := context.Background()

	token, err := codec.IssueRefresh(identity("sub-1", false), false)
	require.NoError(t, err)
	require.NoError(t, reg.Save(ctx, token, false))

	// Overwrite the stored raw token; the presented one no longer matches.
	claims, err := codec.Decode(token)
	require.NoError(t, err)
	require.NoError(t, cache.SetJSON(ctx, recordKey(claims.Subject, claims.ID), map[string]string{
		"subject": claims.Subject,
		"jti":     claims.ID,
		"token":   "something-else",
	}, time.Hour))

	_, err = reg.Verify(ctx, token)
	require.ErrorIs(t, err, ErrRevoked)
}

func TestRegistryRevoke(t *testing.T) {
	t.Parallel()

	cache, _, codec := testDeps(t)
	reg := NewRegistry(cache, codec)
	ctx := context.Background()

	t.Run("revoked token never verifies again", func(t *testing.T) {
		token, err := codec.IssueRefresh(identity("sub-1", false), false)
		require.NoError(t, err)
		require.NoError(t, reg.Save(ctx, token, false))

		require.True(t, reg.Revoke(ctx, token))

		for range 3 {
			_, err = reg.Verify(ctx, token)
			require.ErrorIs(t, err, ErrRevoked)
		}
	})

	t.Run("revoking one token leaves siblings alive", func(t *testing.T) {
		first, err := codec.IssueRefresh(identity("sub-2", false), false)
		require.NoError(t, err)
		second, err := codec.IssueRefresh(identity("sub-2", false), false)
		require.NoError(t, err)
		require.NoError(t, reg.Save(ctx, first, false))
		require.NoError(t, reg.Save(ctx, second, false))

		require.True(t, reg.Revoke(ctx, first))

		_, err = reg.Verify(ctx, first)
		require.ErrorIs(t, err, ErrRevoked)

		_, err = reg.Verify(ctx, second)
		require.NoError(t, err)
	})

	t.Run("garbage revocation reports false without failing", func(t *testing.T) {
		require.False(t, reg.Revoke(ctx, "garbage"))
	})
}

func TestRegistryRevokeAll(t *testing.T) {
	t.Parallel()

	cache, _, codec := testDeps(t)
	reg := NewRegistry(cache, codec)
	ctx := context.Background()

	var tokens []string
	for range 3 {
		token, err := codec.IssueRefresh(identity("sub-1", false), false)
		require.NoError(t, err)
		require.NoError(t, reg.Save(ctx, token, false))
		tokens = append(tokens, token)
	}

	// A different subject's session must survive the purge.
	other, err := codec.IssueRefresh(identity("sub-2", false), false)
	require.NoError(t, err)
	require.NoError(t, reg.Save(ctx, other, false))

	require.True(t, reg.RevokeAll(ctx, "sub-1"))

	for _, token := range tokens {
		_, err := reg.Verify(ctx, token)
		require.ErrorIs(t, err, ErrRevoked)
	}

	_, err = reg.Verify(ctx, other)
	require.NoError(t, err)

	// The index itself is gone, not just emptied.
	fields, err := cache.HGetAll(ctx, indexKey("sub-1"))
	require.NoError(t, err)
	require.Empty(t, fields)
}
