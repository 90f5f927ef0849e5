package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SystemRole is the platform-wide role axis
type SystemRole = string

const (
	// SystemRoleUser is a normal platform user (coach, player)
	SystemRoleUser SystemRole = "USER"
	// SystemRoleReviewer can see and approve clubs
	SystemRoleReviewer SystemRole = "REVIEWER"
	// SystemRoleAdmin is the super admin
	SystemRoleAdmin SystemRole = "ADMIN"
)

// MemberRole is the club-scoped role axis
type MemberRole = string

const (
	// MemberRoleOwner owns the club
	MemberRoleOwner MemberRole = "OWNER"
	// MemberRoleManager manages club operations
	MemberRoleManager MemberRole = "MANAGER"
	// MemberRoleCoach coaches a club team
	MemberRoleCoach MemberRole = "COACH"
	// MemberRolePlayer is a regular club player
	MemberRolePlayer MemberRole = "PLAYER"
)

// AccountStatus is the lifecycle state of a user account
type AccountStatus = string

const (
	// StatusPendingVerification is the default on sign up
	StatusPendingVerification AccountStatus = "PENDING_VERIFICATION"
	// StatusActive means verified and good to go
	StatusActive AccountStatus = "ACTIVE"
	// StatusBanned set by an admin
	StatusBanned AccountStatus = "BANNED"
	// StatusDeactivated set by the user
	StatusDeactivated AccountStatus = "DEACTIVATED"
	// StatusSoftDeleted marks a user-initiated deletion
	StatusSoftDeleted AccountStatus = "SOFT_DELETED"
)

// MemberStatus is the lifecycle state of a club membership
type MemberStatus = string

const (
	// MemberStatusPending invited or awaiting approval
	MemberStatusPending MemberStatus = "PENDING"
	// MemberStatusActive fully active in the club
	MemberStatusActive MemberStatus = "ACTIVE"
	// MemberStatusInactive has left or been removed
	MemberStatusInactive MemberStatus = "INACTIVE"
)

// TokenType tags persisted opaque tokens
type TokenType = string

const (
	// TokenTypeRefresh rotates on every refresh call
	TokenTypeRefresh TokenType = "REFRESH"
	// TokenTypeEmailVerify is a single use email verification token
	TokenTypeEmailVerify TokenType = "EMAIL_VERIFY"
	// TokenTypePasswordReset is a single use password reset token
	TokenTypePasswordReset TokenType = "PASSWORD_RESET"
)

// User is the identity record
type User struct {
	bun.BaseModel        `bun:"table:users,alias:usr"`
	ID                   uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email                string        `bun:"email,notnull,unique" json:"email,omitempty"`
	Username             string        `bun:"username,notnull,unique" json:"username,omitempty"`
	PasswordHash         string        `bun:"password_hash" json:"-"`
	FirstName            string        `bun:"first_name" json:"first_name,omitempty"`
	LastName             string        `bun:"last_name" json:"last_name,omitempty"`
	IsVerified           bool          `bun:"is_verified" json:"is_verified,omitempty"`
	Status               AccountStatus `bun:"status,notnull" json:"status,omitempty"`
	SystemRole           SystemRole    `bun:"system_role,notnull" json:"system_role,omitempty"`
	ProfileImageURL      string        `bun:"profile_image_url" json:"profile_image_url,omitempty"`
	Memberships          []*Membership `bun:"rel:has-many,join:id=user_id" json:"memberships,omitempty"`
	Tokens               []*Token      `bun:"rel:has-many,join:id=user_id" json:"tokens,omitempty"`
	LastSecurityActionAt *time.Time    `bun:"last_security_action_at,nullzero" json:"last_security_action_at,omitempty"`
	CreatedAt            *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt            *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt            *time.Time    `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus normalizes a zero status to the sign up default
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = StatusPendingVerification
	}
}

// DisplayName resolves the name used in notification emails:
// first name, else last name, else username.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.LastName != "" {
		return u.LastName
	}
	return u.Username
}

// Membership joins a User to a club-scoped role and an optional team.
// A user holds at most one membership per club.
type Membership struct {
	bun.BaseModel `bun:"table:members,alias:mbr"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID    `bun:"user_id,notnull,type:uuid,unique:user_club" json:"user_id,omitempty"`
	User          *User        `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	ClubID        uuid.UUID    `bun:"club_id,notnull,type:uuid,unique:user_club" json:"club_id,omitempty"`
	TeamID        *uuid.UUID   `bun:"team_id,nullzero,type:uuid" json:"team_id,omitempty"`
	Role          MemberRole   `bun:"role,notnull" json:"role,omitempty"`
	Status        MemberStatus `bun:"status,notnull" json:"status,omitempty"`
	JoinedAt      *time.Time   `bun:"joined_at,nullzero,default:current_timestamp" json:"joined_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time   `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Token is a persisted opaque credential. Only the SHA-256 digest of the
// raw value is ever stored; lookups compare digests.
type Token struct {
	bun.BaseModel `bun:"table:tokens,alias:tkn"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	TokenHash     string     `bun:"token_hash,notnull" json:"-"`
	Type          TokenType  `bun:"type,notnull" json:"type,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// TokenPair is the access/refresh pair returned by the authentication flows.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
