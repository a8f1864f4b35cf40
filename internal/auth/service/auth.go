package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cartside/cartside/internal/auth/domain"
	"github.com/cartside/cartside/internal/auth/session"
	"github.com/cartside/cartside/internal/auth/store"
	"github.com/cartside/cartside/pkg/cryptox"
	"github.com/cartside/cartside/pkg/idx"
	"github.com/cartside/cartside/pkg/jwtx"
	"github.com/cartside/cartside/pkg/slogx"
)

// dummyHash is verified against when the user lookup misses, so a failed
// sign-in costs the same whether or not the email exists.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=2$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

type AuthService struct {
	Store     store.Store
	Codec     *jwtx.Codec
	Registry  *session.Registry
	Blacklist *session.Blacklist
}

type RegisterParams struct {
	Email    string
	Name     string
	Phone    string
	Password string
}

// Register creates a standard-role user. Admin accounts are never created
// through this path; they are provisioned out of band.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (domain.Session, error) {
	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("service: failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        normalizeEmail(p.Email),
		Name:         strings.TrimSpace(p.Name),
		Phone:        strings.TrimSpace(p.Phone),
		Role:         domain.RoleUser,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Session{}, ErrEmailTaken
		}
		return domain.Session{}, err
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", user.ID))
	return s.issueSession(ctx, user, false)
}

// Login authenticates a standard user by email and password. Admin
// identities are turned away with ErrAdminAccount after the password has
// been verified, never before, so the error does not become an oracle.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	user, err := s.lookupByEmail(ctx, email, password)
	if err != nil {
		return domain.Session{}, err
	}
	if user.Role == domain.RoleAdmin {
		slogx.FromContext(ctx).Info("admin account refused on standard sign-in", slog.String("user_id", user.ID))
		return domain.Session{}, ErrAdminAccount
	}
	return s.issueSession(ctx, user, false)
}

// AdminLogin authenticates an admin and issues tokens under the elevated
// signing domain. Non-admin identities read as invalid credentials; this
// endpoint does not reveal which accounts exist.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (domain.Session, error) {
	user, err := s.lookupByEmail(ctx, email, password)
	if err != nil {
		return domain.Session{}, err
	}
	if user.Role != domain.RoleAdmin {
		return domain.Session{}, ErrInvalidCredentials
	}
	return s.issueSession(ctx, user, true)
}

// Refresh exchanges a live refresh token for a fresh access token. The
// refresh token itself is returned unchanged; its registry record and
// expiry carry over, so a client's sign-in horizon never silently extends.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.Session, error) {
	claims, err := s.Registry.Verify(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrRevoked) || errors.Is(err, session.ErrMalformedToken) ||
			errors.Is(err, jwtx.ErrExpired) || errors.Is(err, jwtx.ErrInvalidSignature) ||
			errors.Is(err, jwtx.ErrWrongKind) {
			return domain.Session{}, ErrInvalidRefresh
		}
		return domain.Session{}, err
	}

	// Re-read the user so the new access token reflects the current role
	// and profile, not a month-old snapshot.
	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidRefresh
		}
		return domain.Session{}, err
	}

	elevated := claims.Admin
	access, err := s.Codec.IssueAccess(user.Identity(), elevated)
	if err != nil {
		return domain.Session{}, fmt.Errorf("service: failed to issue access token: %w", err)
	}

	return domain.Session{
		User:         user,
		AccessToken:  access,
		RefreshToken: refreshToken,
		AccessTTL:    s.Codec.AccessTTL(elevated),
		RefreshTTL:   claims.ExpiresIn(time.Now().UTC()),
		Elevated:     elevated,
	}, nil
}

// Logout ends a session. Every step is best effort: a cache outage must
// never trap a user in a signed-in state they asked to leave, so failures
// are logged and the call still succeeds.
//
// A presented refresh token is revoked on its own; without one (or with
// everywhere set) every refresh token the subject holds is revoked, so a
// bearer-only sign-out still invalidates the sessions it cannot name.
func (s *AuthService) Logout(ctx context.Context, subject, accessToken, refreshToken string, everywhere bool) {
	if accessToken != "" {
		slogx.BestEffort(ctx, "logout.blacklist", func() error {
			return s.Blacklist.Add(ctx, accessToken)
		})
	}

	if refreshToken != "" && !everywhere {
		s.Registry.Revoke(ctx, refreshToken)
		return
	}

	if subject == "" {
		subject = s.logoutSubject(accessToken, refreshToken)
	}
	if subject == "" {
		return
	}
	if !s.Registry.RevokeAll(ctx, subject) {
		slogx.FromContext(ctx).Warn("sign-out left stale tokens", slog.String("subject", subject))
	}
}

// logoutSubject resolves whose tokens a blanket revocation covers. The
// access token is trusted only after verification; the refresh token's
// unverified subject is safe here because revocation is subject-scoped
// destruction, not a grant.
func (s *AuthService) logoutSubject(accessToken, refreshToken string) string {
	if accessToken != "" {
		if claims, err := s.Codec.Verify(accessToken, jwtx.KindAccess, false); err == nil {
			return claims.Subject
		}
		if claims, err := s.Codec.Verify(accessToken, jwtx.KindAccess, true); err == nil {
			return claims.Subject
		}
	}
	if refreshToken != "" {
		if claims, err := s.Codec.Decode(refreshToken); err == nil {
			return claims.Subject
		}
	}
	return ""
}

// lookupByEmail resolves and password-checks a user. Misses and mismatches
// both cost a full argon2 verification and both return ErrInvalidCredentials.
func (s *AuthService) lookupByEmail(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, dummyHash)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		slogx.FromContext(ctx).Info("password verification failed", slog.String("user_id", user.ID))
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// issueSession mints the access/refresh pair for a user and registers the
// refresh token. A session whose refresh token cannot be registered is
// never handed out.
func (s *AuthService) issueSession(ctx context.Context, user domain.User, elevated bool) (domain.Session, error) {
	id := user.Identity()

	access, err := s.Codec.IssueAccess(id, elevated)
	if err != nil {
		return domain.Session{}, fmt.Errorf("service: failed to issue access token: %w", err)
	}
	refresh, err := s.Codec.IssueRefresh(id, elevated)
	if err != nil {
		return domain.Session{}, fmt.Errorf("service: failed to issue refresh token: %w", err)
	}

	if err := s.Registry.Save(ctx, refresh, elevated); err != nil {
		return domain.Session{}, err
	}

	return domain.Session{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    s.Codec.AccessTTL(elevated),
		RefreshTTL:   s.Codec.RefreshTTL(elevated),
		Elevated:     elevated,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
