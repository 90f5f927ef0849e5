package auth

// Config holds auth options. TTL values are expressed in seconds.
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAccessTokenTTL() int
	GetRefreshTokenTTL() int
	GetEmailVerifyTokenTTL() int
	GetPasswordResetTokenTTL() int
	GetBaseURL() string
	GetAPIPrefix() string
	GetBcryptCost() int
}

const (
	defaultAccessTokenTTL        = 3600          // 1h
	defaultRefreshTokenTTL       = 7 * 24 * 3600 // 7d
	defaultEmailVerifyTokenTTL   = 24 * 3600     // 24h
	defaultPasswordResetTokenTTL = 3600          // 1h
)

// SimpleConfig is an immutable Config value meant to be constructed once and
// passed into the service constructors. Zero TTLs fall back to defaults.
type SimpleConfig struct {
	SigningKey            string
	Issuer                string
	AccessTokenTTL        int
	RefreshTokenTTL       int
	EmailVerifyTokenTTL   int
	PasswordResetTokenTTL int
	BaseURL               string
	APIPrefix             string
	BcryptCost            int
}

var _ Config = SimpleConfig{}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }
func (c SimpleConfig) GetIssuer() string     { return c.Issuer }

func (c SimpleConfig) GetAccessTokenTTL() int {
	if c.AccessTokenTTL <= 0 {
		return defaultAccessTokenTTL
	}
	return c.AccessTokenTTL
}

func (c SimpleConfig) GetRefreshTokenTTL() int {
	if c.RefreshTokenTTL <= 0 {
		return defaultRefreshTokenTTL
	}
	return c.RefreshTokenTTL
}

func (c SimpleConfig) GetEmailVerifyTokenTTL() int {
	if c.EmailVerifyTokenTTL <= 0 {
		return defaultEmailVerifyTokenTTL
	}
	return c.EmailVerifyTokenTTL
}

func (c SimpleConfig) GetPasswordResetTokenTTL() int {
	if c.PasswordResetTokenTTL <= 0 {
		return defaultPasswordResetTokenTTL
	}
	return c.PasswordResetTokenTTL
}

func (c SimpleConfig) GetBaseURL() string   { return c.BaseURL }
func (c SimpleConfig) GetAPIPrefix() string { return c.APIPrefix }

func (c SimpleConfig) GetBcryptCost() int {
	if c.BcryptCost <= 0 {
		return DefaultBcryptCost
	}
	return c.BcryptCost
}
