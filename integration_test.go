package auth_test

import (
	"context"
	"database/sql"
	"net/url"
	"testing"
	"time"

	auth "github.com/clubkit/go-club-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, model := range []any{(*auth.User)(nil), (*auth.Membership)(nil), (*auth.Token)(nil)} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	// the shared cache keeps rows across connections; start clean
	for _, model := range []any{(*auth.Token)(nil), (*auth.Membership)(nil), (*auth.User)(nil)} {
		_, err := db.NewDelete().Model(model).Where("1 = 1").ForceDelete().Exec(ctx)
		require.NoError(t, err)
	}

	return db
}

func TestRepositoryLifecycleIntegration(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	sink := &capturingSink{}
	auther := auth.NewAuthenticator(repo, newTestConfig()).
		WithLogger(quietLogger{}).
		WithNotificationSink(sink)

	pair, err := auther.SignUp(ctx, auth.SignUpInput{
		Email:     "grace@example.com",
		Username:  "grace",
		Password:  "compilers-are-people",
		FirstName: "Grace",
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	user, err := repo.Users().GetByEmail(ctx, "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, auth.StatusPendingVerification, user.Status)
	assert.NotEqual(t, uuid.Nil, user.ID)

	t.Run("login by username", func(t *testing.T) {
		_, err := auther.Login(ctx, "grace", "compilers-are-people")
		assert.NoError(t, err)
	})

	t.Run("refresh rotates against the database", func(t *testing.T) {
		next, err := auther.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		_, err = auther.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("email verification commits token and status together", func(t *testing.T) {
		evt := sink.lastOfType("auth.verification_requested")
		require.NotNil(t, evt)

		link, err := url.Parse(evt.(auth.VerificationRequestedEvent).URL)
		require.NoError(t, err)
		raw := link.Query().Get("token")
		require.NotEmpty(t, raw)

		_, err = auther.VerifyEmail(ctx, user.ID, raw)
		require.NoError(t, err)

		verified, err := repo.Users().GetByEmail(ctx, "grace@example.com")
		require.NoError(t, err)
		assert.Equal(t, auth.StatusActive, verified.Status)
		assert.True(t, verified.IsVerified)

		_, err = auther.VerifyEmail(ctx, user.ID, raw)
		assert.Error(t, err, "verification token is single use")
	})

	t.Run("forgot and reset password", func(t *testing.T) {
		require.NoError(t, auther.ForgotPassword(ctx, "grace@example.com"))

		evt := sink.lastOfType("auth.reset_requested")
		require.NotNil(t, evt)

		link, err := url.Parse(evt.(auth.ResetRequestedEvent).URL)
		require.NoError(t, err)
		raw := link.Query().Get("token")
		require.NotEmpty(t, raw)

		_, err = auther.ResetPassword(ctx, "new-database-password", raw)
		require.NoError(t, err)

		_, err = auther.Login(ctx, "grace", "new-database-password")
		assert.NoError(t, err)

		_, err = auther.Login(ctx, "grace", "compilers-are-people")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestTokensRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := auth.NewRepositoryManager(db)

	user, err := repo.Users().Create(ctx, &auth.User{
		Email:        "tokens@example.com",
		Username:     "tokens",
		PasswordHash: auth.RandomPasswordHash(),
	})
	require.NoError(t, err)

	now := time.Now()
	digest := auth.DigestToken("integration-raw")

	_, err = repo.Tokens().Create(ctx, &auth.Token{
		TokenHash: digest,
		Type:      auth.TokenTypeRefresh,
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	t.Run("conditional delete returns the consumed row", func(t *testing.T) {
		record, err := repo.Tokens().Consume(ctx, digest, auth.TokenTypeRefresh, now)
		require.NoError(t, err)
		assert.Equal(t, user.ID, record.UserID)

		_, err = repo.Tokens().Consume(ctx, digest, auth.TokenTypeRefresh, now)
		assert.Error(t, err)
	})

	t.Run("expired rows are invisible to consume", func(t *testing.T) {
		expiredDigest := auth.DigestToken("expired-raw")
		_, err := repo.Tokens().Create(ctx, &auth.Token{
			TokenHash: expiredDigest,
			Type:      auth.TokenTypePasswordReset,
			UserID:    user.ID,
			ExpiresAt: now.Add(-time.Minute),
		})
		require.NoError(t, err)

		_, err = repo.Tokens().Consume(ctx, expiredDigest, auth.TokenTypePasswordReset, now)
		assert.Error(t, err)

		pruned, err := repo.Tokens().DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.EqualValues(t, 1, pruned)
	})

	t.Run("delete by user and type", func(t *testing.T) {
		for _, raw := range []string{"verify-1", "verify-2"} {
			_, err := repo.Tokens().Create(ctx, &auth.Token{
				TokenHash: auth.DigestToken(raw),
				Type:      auth.TokenTypeEmailVerify,
				UserID:    user.ID,
				ExpiresAt: now.Add(time.Hour),
			})
			require.NoError(t, err)
		}

		require.NoError(t, repo.Tokens().DeleteByUserAndType(ctx, user.ID, auth.TokenTypeEmailVerify))

		_, err := repo.Tokens().Consume(ctx, auth.DigestToken("verify-1"), auth.TokenTypeEmailVerify, now)
		assert.Error(t, err)
	})
}

func TestMembershipsRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := auth.NewRepositoryManager(db)

	user, err := repo.Users().Create(ctx, &auth.User{
		Email:        "member@example.com",
		Username:     "member",
		PasswordHash: auth.RandomPasswordHash(),
	})
	require.NoError(t, err)

	t.Run("no membership yields nil without error", func(t *testing.T) {
		first, err := repo.Memberships().FirstForUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, first)
	})

	older := time.Now().Add(-72 * time.Hour)
	newer := time.Now().Add(-1 * time.Hour)

	_, err = repo.Memberships().Create(ctx, &auth.Membership{
		UserID:   user.ID,
		ClubID:   uuid.New(),
		Role:     auth.MemberRoleOwner,
		Status:   auth.MemberStatusActive,
		JoinedAt: &older,
	})
	require.NoError(t, err)

	_, err = repo.Memberships().Create(ctx, &auth.Membership{
		UserID:   user.ID,
		ClubID:   uuid.New(),
		Role:     auth.MemberRolePlayer,
		Status:   auth.MemberStatusActive,
		JoinedAt: &newer,
	})
	require.NoError(t, err)

	t.Run("earliest membership wins", func(t *testing.T) {
		first, err := repo.Memberships().FirstForUser(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.Equal(t, auth.MemberRoleOwner, first.Role)
	})

	t.Run("list orders by join date", func(t *testing.T) {
		list, err := repo.Memberships().ListForUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, auth.MemberRoleOwner, list[0].Role)
		assert.Equal(t, auth.MemberRolePlayer, list[1].Role)
	})
}
