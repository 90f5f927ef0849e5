package auth

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when a Config does not override it.
var DefaultBcryptCost = 12

// HashPassword will generate a password hash using the given cost, or
// DefaultBcryptCost when the cost is zero.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	if cost <= 0 {
		cost = DefaultBcryptCost
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// dummyPasswordHash is a valid bcrypt hash of a random value. Login compares
// against it when the identifier matches no user so that the missing-user and
// wrong-password paths burn the same bcrypt work and stay indistinguishable.
var dummyPasswordHash = func() string {
	h, err := HashPassword(uuid.NewString(), 0)
	if err != nil {
		// bcrypt only fails on empty input or an out-of-range cost
		panic(err)
	}
	return h
}()

// CompareDummyPassword runs a bcrypt comparison that always fails, taking the
// same time as a real mismatch.
func CompareDummyPassword(password string) error {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
	return ErrMismatchedHashAndPassword
}

// RandomPasswordHash is a temporary password
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String(), 0)
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
