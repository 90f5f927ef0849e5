package auth_test

import (
	"testing"

	auth "github.com/clubkit/go-club-auth"
	"github.com/stretchr/testify/assert"
)

func TestSimpleConfigDefaults(t *testing.T) {
	cfg := auth.SimpleConfig{SigningKey: "key"}

	assert.Equal(t, "key", cfg.GetSigningKey())
	assert.Equal(t, 3600, cfg.GetAccessTokenTTL())
	assert.Equal(t, 7*24*3600, cfg.GetRefreshTokenTTL())
	assert.Equal(t, 24*3600, cfg.GetEmailVerifyTokenTTL())
	assert.Equal(t, 3600, cfg.GetPasswordResetTokenTTL())
	assert.Equal(t, auth.DefaultBcryptCost, cfg.GetBcryptCost())
	assert.Empty(t, cfg.GetIssuer())
	assert.Empty(t, cfg.GetBaseURL())
	assert.Empty(t, cfg.GetAPIPrefix())
}

func TestSimpleConfigOverrides(t *testing.T) {
	cfg := auth.SimpleConfig{
		SigningKey:            "key",
		Issuer:                "clubkit",
		AccessTokenTTL:        900,
		RefreshTokenTTL:       3600,
		EmailVerifyTokenTTL:   600,
		PasswordResetTokenTTL: 300,
		BaseURL:               "https://example.com",
		APIPrefix:             "api",
		BcryptCost:            10,
	}

	assert.Equal(t, "clubkit", cfg.GetIssuer())
	assert.Equal(t, 900, cfg.GetAccessTokenTTL())
	assert.Equal(t, 3600, cfg.GetRefreshTokenTTL())
	assert.Equal(t, 600, cfg.GetEmailVerifyTokenTTL())
	assert.Equal(t, 300, cfg.GetPasswordResetTokenTTL())
	assert.Equal(t, "https://example.com", cfg.GetBaseURL())
	assert.Equal(t, "api", cfg.GetAPIPrefix())
	assert.Equal(t, 10, cfg.GetBcryptCost())
}
