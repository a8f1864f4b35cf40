package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/cartside/cartside/internal/auth/domain"
	"github.com/cartside/cartside/internal/auth/session"
	"github.com/cartside/cartside/internal/auth/store/drivers/memory"
	"github.com/cartside/cartside/pkg/cachex"
	"github.com/cartside/cartside/pkg/cryptox"
	"github.com/cartside/cartside/pkg/idx"
	"github.com/cartside/cartside/pkg/jwtx"
)

type fixture struct {
	store *memory.Store
	cache *cachex.Client
	redis *miniredis.Miniredis
	codec *jwtx.Codec
	auth  *AuthService
}

func newFixture(t *testing.T) *fixture {
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

	st := memory.NewStore()
	return &fixture{
		store: st,
		cache: cache,
		redis: srv,
		codec: codec,
		auth: &AuthService{
			Store:     st,
			Codec:     codec,
			Registry:  session.NewRegistry(cache, codec),
			Blacklist: session.NewBlacklist(cache, codec),
		},
	}
}

// seedUser inserts a user directly, bypassing Register.
func (f *fixture) seedUser(t *testing.T, email, password string, role domain.Role) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         "Seeded User",
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.store.Users().CreateUser(context.Background(), user))
	return user
}

func TestRegister(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	t.Run("creates a standard user and signs them in", func(t *testing.T) {
		sess, err := f.auth.Register(ctx, RegisterParams{
			Email:    "Shopper@Example.COM",
			Name:     "  Shopper  ",
			Password: "hunter2hunter2",
		})
		require.NoError(t, err)
		require.Equal(t, "shopper@example.com", sess.User.Email)
		require.Equal(t, "Shopper", sess.User.Name)
		require.Equal(t, domain.RoleUser, sess.User.Role)
		require.False(t, sess.Elevated)
		require.NotEmpty(t, sess.AccessToken)
		require.NotEmpty(t, sess.RefreshToken)

		// The refresh token comes out already registered.
		_, err = f.auth.Registry.Verify(ctx, sess.RefreshToken)
		require.NoError(t, err)

		// And the access token verifies under the standard domain.
		claims, err := f.codec.Verify(sess.AccessToken, jwtx.KindAccess, false)
		require.NoError(t, err)
		require.Equal(t, sess.User.ID, claims.Subject)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := f.auth.Register(ctx, RegisterParams{
			Email:    "shopper@example.com",
			Name:     "Imposter",
			Password: "different-password",
		})
		require.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "shopper@example.com", "correct horse", domain.RoleUser)
	f.seedUser(t, "root@example.com", "admin password", domain.RoleAdmin)

	t.Run("valid credentials", func(t *testing.T) {
		sess, err := f.auth.Login(ctx, "shopper@example.com", "correct horse")
		require.NoError(t, err)
		require.False(t, sess.Elevated)
		require.Equal(t, f.codec.AccessTTL(false), sess.AccessTTL)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "  SHOPPER@example.com ", "correct horse")
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "shopper@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "nobody@example.com", "whatever")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("admin account refused on the standard door", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "root@example.com", "admin password")
		require.ErrorIs(t, err, ErrAdminAccount)
	})

	t.Run("admin with wrong password reads as invalid, not admin", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "root@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAdminLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "shopper@example.com", "correct horse", domain.RoleUser)
	admin := f.seedUser(t, "root@example.com", "admin password", domain.RoleAdmin)

	t.Run("issues elevated tokens", func(t *testing.T) {
		sess, err := f.auth.AdminLogin(ctx, "root@example.com", "admin password")
		require.NoError(t, err)
		require.True(t, sess.Elevated)
		require.Equal(t, f.codec.AccessTTL(true), sess.AccessTTL)

		claims, err := f.codec.Verify(sess.AccessToken, jwtx.KindAccess, true)
		require.NoError(t, err)
		require.Equal(t, admin.ID, claims.Subject)
		require.True(t, claims.Admin)

		// The same token must not pass under the standard domain.
		_, err = f.codec.Verify(sess.AccessToken, jwtx.KindAccess, false)
		require.ErrorIs(t, err, jwtx.ErrInvalidSignature)
	})

	t.Run("standard user reads as invalid credentials", func(t *testing.T) {
		_, err := f.auth.AdminLogin(ctx, "shopper@example.com", "correct horse")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "shopper@example.com", "correct horse", domain.RoleUser)

	sess, err := f.auth.Login(ctx, "shopper@example.com", "correct horse")
	require.NoError(t, err)

	t.Run("reissues access, keeps the refresh token", func(t *testing.T) {
		refreshed, err := f.auth.Refresh(ctx, sess.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, sess.RefreshToken, refreshed.RefreshToken)
		require.NotEmpty(t, refreshed.AccessToken)
		require.LessOrEqual(t, refreshed.RefreshTTL, f.codec.RefreshTTL(false))

		_, err = f.codec.Verify(refreshed.AccessToken, jwtx.KindAccess, false)
		require.NoError(t, err)
	})

	t.Run("revoked token is refused", func(t *testing.T) {
		f.auth.Logout(ctx, sess.User.ID, "", sess.RefreshToken, false)

		_, err := f.auth.Refresh(ctx, sess.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("garbage is refused", func(t *testing.T) {
		_, err := f.auth.Refresh(ctx, "garbage")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("access token is not a refresh credential", func(t *testing.T) {
		again, err := f.auth.Login(ctx, "shopper@example.com", "correct horse")
		require.NoError(t, err)

		_, err = f.auth.Refresh(ctx, again.AccessToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "shopper@example.com", "correct horse", domain.RoleUser)

	t.Run("blacklists access and revokes refresh", func(t *testing.T) {
		sess, err := f.auth.Login(ctx, "shopper@example.com", "correct horse")
		require.NoError(t, err)

		f.auth.Logout(ctx, sess.User.ID, sess.AccessToken, sess.RefreshToken, false)

		found, err := f.auth.Blacklist.Contains(ctx, sess.AccessToken)
		require.NoError(t, err)
		require.True(t, found)

		_, err = f.auth.Registry.Verify(ctx, sess.RefreshToken)
		require.ErrorIs(t, err, session.ErrRevoked)
	})

	t.Run("bearer-only logout revokes every refresh token", func(t *testing.T) {
		first, err := f.auth.Login(ctx, "shopper@example.com", "correct horse")
		require.NoError(t, err)
		second, err := f.auth.Login(ctx, "shopper@example.com", "correct horse")
		require.NoError(t, err)

		// No refresh token supplied and no subject resolved upstream; the
		// access token alone must still end every session.
		f.auth.Logout(ctx, "", first.AccessToken, "", false)

		_, err = f.auth.Registry.Verify(ctx, first.RefreshToken)
		require.ErrorIs(t, err, session.ErrRevoked)
		_, err = f.auth.Registry.Verify(ctx, second.RefreshToken)
		require.ErrorIs(t, err, session.ErrRevoked)
	})

	t.Run("everywhere clears all sessions", func(t *testing.T) {
		first, err := f.auth.Login(ctx, "shopper@example.com", "correct horse")
		require.NoError(t, err)
		second, err := f.auth.Login(ctx, "shopper@example.com", "correct horse")
		require.NoError(t, err)

		f.auth.Logout(ctx, first.User.ID, first.AccessToken, first.RefreshToken, true)

		_, err = f.auth.Registry.Verify(ctx, first.RefreshToken)
		require.ErrorIs(t, err, session.ErrRevoked)
		_, err = f.auth.Registry.Verify(ctx, second.RefreshToken)
		require.ErrorIs(t, err, session.ErrRevoked)
	})

	t.Run("survives a dead cache", func(t *testing.T) {
		sess, err := f.auth.Login(ctx, "shopper@example.com", "correct horse")
		require.NoError(t, err)

		f.redis.SetError("cache down")
		defer f.redis.SetError("")

		// Must not panic or error; failures are logged and swallowed.
		f.auth.Logout(ctx, sess.User.ID, sess.AccessToken, sess.RefreshToken, false)
	})
}
