package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenStore persists hashed, typed, expiring opaque tokens.
//
// Consume is the central concurrency contract of the subsystem: the
// lookup-then-delete MUST execute as one atomic unit so that two concurrent
// callers holding the same raw token can never both observe a live record.
// Implementations use a conditional delete returning the prior row (SQL) or
// perform the check and delete under one lock (memory).
type TokenStore interface {
	// Put persists a token record. The record carries a digest, never a
	// raw token value.
	Put(ctx context.Context, token *Token) (*Token, error)

	// Consume atomically finds an unexpired token by digest and type and
	// deletes it, returning the prior record. A miss (unknown digest, wrong
	// type, or expired) returns a not-found error.
	Consume(ctx context.Context, digest string, tokenType TokenType, now time.Time) (*Token, error)

	// DeleteByUserAndType removes every token of the given type owned by the
	// user. Used to keep at most one live verification token per user.
	DeleteByUserAndType(ctx context.Context, userID uuid.UUID, tokenType TokenType) error
}

// MembershipProvider resolves the membership snapshot embedded in access
// claims. Implementations decide which membership wins when a user belongs
// to several clubs; the default picks the earliest by join date.
type MembershipProvider interface {
	FirstForUser(ctx context.Context, userID uuid.UUID) (*Membership, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
