package domain

import (
	"errors"
	"time"

	"github.com/cartside/cartside/pkg/jwtx"
)

// Role is the closed set of roles an identity can hold. The values mirror
// the role claim constants so a stored role embeds into tokens unchanged.
type Role string

const (
	RoleUser  = Role(jwtx.RoleUser)
	RoleAdmin = Role(jwtx.RoleAdmin)
)

// ErrUnknownRole reports a role value outside the closed set.
var ErrUnknownRole = errors.New("domain: unknown role")

// ParseRole validates a role string against the closed set. Every
// deserialization boundary (token claims, stored documents) goes through
// this rather than trusting the decoded shape.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	default:
		return "", ErrUnknownRole
	}
}

// User is a registered identity.
type User struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	Phone        string    `bson:"phone,omitempty"`
	Role         Role      `bson:"role"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// Identity is the token payload for this user. Admin mirrors the role so the
// elevated signing domain can be selected without re-reading the store.
func (u User) Identity() jwtx.Identity {
	return jwtx.Identity{
		Subject: u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    string(u.Role),
		Admin:   u.Role == RoleAdmin,
	}
}
