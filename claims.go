package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the signed, self-contained claims structure carried by
// access tokens. It snapshots identity and both role axes at issuance time.
//
// MemberRole holds the role of the user's earliest membership with no club
// identifier attached. Role changes, including membership changes in other
// clubs, do not propagate until the access token expires and is refreshed.
type AccessClaims struct {
	jwt.RegisteredClaims
	UID        string        `json:"uid,omitempty"`
	Uname      string        `json:"username,omitempty"`
	UserStatus AccountStatus `json:"status,omitempty"`
	SysRole    SystemRole    `json:"sys_role,omitempty"`
	MemRole    MemberRole    `json:"mem_role,omitempty"`
}

// NewAccessClaims snapshots a user and membership role into claims.
// Registered time claims are stamped by the token service at signing time.
func NewAccessClaims(user *User, memberRole MemberRole) *AccessClaims {
	return &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.ID.String(),
		},
		UID:        user.ID.String(),
		Uname:      user.Username,
		UserStatus: user.Status,
		SysRole:    user.SystemRole,
		MemRole:    memberRole,
	}
}

// UserID returns the user ID claim, falling back to the subject.
func (c *AccessClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// UserUUID parses the user ID claim.
func (c *AccessClaims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID())
}

// Username returns the username snapshot.
func (c *AccessClaims) Username() string {
	return c.Uname
}

// Status returns the account status snapshot.
func (c *AccessClaims) Status() AccountStatus {
	return c.UserStatus
}

// SystemRole returns the platform role snapshot.
func (c *AccessClaims) SystemRole() SystemRole {
	return c.SysRole
}

// MemberRole returns the membership role snapshot, empty when the user had
// no membership at issuance.
func (c *AccessClaims) MemberRole() MemberRole {
	return c.MemRole
}

// Expires returns the expiration time
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *AccessClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
