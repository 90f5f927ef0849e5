package auth_test

import (
	"encoding/hex"
	"testing"

	auth "github.com/clubkit/go-club-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOpaqueToken(t *testing.T) {
	t.Run("default length is twice the entropy bytes", func(t *testing.T) {
		token, err := auth.GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, auth.DefaultTokenBytes*2)

		_, err = hex.DecodeString(token)
		assert.NoError(t, err, "token should be hex encoded")
	})

	t.Run("custom byte length", func(t *testing.T) {
		token, err := auth.GenerateOpaqueToken(16)
		require.NoError(t, err)
		assert.Len(t, token, 32)
	})

	t.Run("non positive length falls back to default", func(t *testing.T) {
		token, err := auth.GenerateOpaqueToken(0)
		require.NoError(t, err)
		assert.Len(t, token, auth.DefaultTokenBytes*2)

		token, err = auth.GenerateOpaqueToken(-5)
		require.NoError(t, err)
		assert.Len(t, token, auth.DefaultTokenBytes*2)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			token, err := auth.GenerateToken()
			require.NoError(t, err)
			assert.False(t, seen[token], "token generated twice")
			seen[token] = true
		}
	})
}

func TestDigestToken(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, auth.DigestToken("abc"), auth.DigestToken("abc"))
	})

	t.Run("sha256 hex length", func(t *testing.T) {
		assert.Len(t, auth.DigestToken("anything"), 64)
	})

	t.Run("different inputs differ", func(t *testing.T) {
		assert.NotEqual(t, auth.DigestToken("abc"), auth.DigestToken("abd"))
	})

	t.Run("digest never equals the raw token", func(t *testing.T) {
		raw, err := auth.GenerateToken()
		require.NoError(t, err)
		assert.NotEqual(t, raw, auth.DigestToken(raw))
	})
}
