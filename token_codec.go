package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultTokenBytes is the entropy of generated opaque tokens. The hex
// encoded raw token is twice this length.
const DefaultTokenBytes = 32

// GenerateOpaqueToken returns a hex encoded random token of n bytes read
// from the platform CSPRNG.
func GenerateOpaqueToken(n int) (string, error) {
	if n <= 0 {
		n = DefaultTokenBytes
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read random bytes")
	}

	return hex.EncodeToString(buf), nil
}

// GenerateToken generates an opaque token of the default byte length.
func GenerateToken() (string, error) {
	return GenerateOpaqueToken(DefaultTokenBytes)
}

// DigestToken computes the deterministic SHA-256 hex digest stored in place
// of the raw token. Stored digests are comparable without storing secrets.
func DigestToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
