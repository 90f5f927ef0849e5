package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// TokenService orchestrates the token lifecycle: opaque refresh,
// verification and reset tokens against the TokenStore, and signed access
// tokens. Configuration is captured at construction and never mutated.
type TokenService struct {
	cfg        Config
	store      TokenStore
	signingKey []byte
	logger     Logger
	now        func() time.Time
}

// NewTokenService creates a TokenService bound to a store and configuration.
func NewTokenService(cfg Config, store TokenStore) *TokenService {
	return &TokenService{
		cfg:        cfg,
		store:      store,
		signingKey: []byte(cfg.GetSigningKey()),
		logger:     defLogger{},
		now:        time.Now,
	}
}

func (ts *TokenService) WithLogger(logger Logger) *TokenService {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

// WithClock injects a custom clock (useful for tests).
func (ts *TokenService) WithClock(clock func() time.Time) *TokenService {
	if clock != nil {
		ts.now = clock
	}
	return ts
}

// TTLFor returns the configured lifetime for a token type.
func (ts *TokenService) TTLFor(tokenType TokenType) time.Duration {
	switch tokenType {
	case TokenTypeRefresh:
		return time.Duration(ts.cfg.GetRefreshTokenTTL()) * time.Second
	case TokenTypeEmailVerify:
		return time.Duration(ts.cfg.GetEmailVerifyTokenTTL()) * time.Second
	case TokenTypePasswordReset:
		return time.Duration(ts.cfg.GetPasswordResetTokenTTL()) * time.Second
	default:
		return 0
	}
}

// IssueTypedToken generates a raw opaque token, stores its digest with the
// type's TTL (or the override when given), and returns the raw value. This
// is the only moment the raw token exists outside the client.
//
// EMAIL_VERIFY issuance first deletes any prior unconsumed verification
// tokens for the user, keeping at most one live verification token.
func (ts *TokenService) IssueTypedToken(ctx context.Context, userID uuid.UUID, tokenType TokenType, ttlOverride ...time.Duration) (string, error) {
	ttl := ts.TTLFor(tokenType)
	if len(ttlOverride) > 0 && ttlOverride[0] > 0 {
		ttl = ttlOverride[0]
	}

	if ttl <= 0 {
		return "", goerrors.New("no TTL configured for token type", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"type": tokenType})
	}

	if tokenType == TokenTypeEmailVerify {
		if err := ts.store.DeleteByUserAndType(ctx, userID, TokenTypeEmailVerify); err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear prior verification tokens")
		}
	}

	raw, err := GenerateToken()
	if err != nil {
		return "", err
	}

	record := &Token{
		TokenHash: DigestToken(raw),
		Type:      tokenType,
		UserID:    userID,
		ExpiresAt: ts.now().Add(ttl),
	}

	if _, err := ts.store.Put(ctx, record); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist token record")
	}

	return raw, nil
}

// IssueRefreshToken issues an opaque REFRESH token for the user.
func (ts *TokenService) IssueRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return ts.IssueTypedToken(ctx, userID, TokenTypeRefresh)
}

// ConsumeTypedToken digests the raw token, atomically removes the matching
// unexpired record of the given type, and returns the owning user id.
// Returns ErrInvalidOrExpiredToken when no live record matches; a token can
// be consumed exactly once even under concurrent callers.
func (ts *TokenService) ConsumeTypedToken(ctx context.Context, raw string, tokenType TokenType) (uuid.UUID, error) {
	record, err := ts.store.Consume(ctx, DigestToken(raw), tokenType, ts.now())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return uuid.Nil, ErrInvalidOrExpiredToken
		}
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume token")
	}

	return record.UserID, nil
}

// IssueAccessToken stamps registered claims and signs the access token with
// the configured HS256 key.
func (ts *TokenService) IssueAccessToken(claims *AccessClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	now := ts.now()
	ttl := time.Duration(ts.cfg.GetAccessTokenTTL()) * time.Second

	claims.RegisteredClaims.Issuer = ts.cfg.GetIssuer()
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		ts.logger.Error("TokenService failed to sign access token", "error", err)
		return "", ErrSigning
	}

	return signed, nil
}

// ValidateAccessToken parses and validates an access token string, returning
// the structured claims.
func (ts *TokenService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if issuer := ts.cfg.GetIssuer(); issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*AccessClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}
