package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SignUpInput carries the registration payload into the sign up flow.
type SignUpInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Auther owns the authentication state transitions: sign up, login, token
// refresh, email verification, and the forgot/reset/change password flows.
// Side effects (email delivery) leave through the NotificationSink and never
// fail the triggering operation.
type Auther struct {
	repo      RepositoryManager
	tokens    *TokenService
	states    *AccountStateMachine
	cfg       Config
	sink      NotificationSink
	logger    Logger
	useHashid bool
	now       func() time.Time
}

// NewAuthenticator wires an Auther over the repository manager. The token
// service is bound to the token repository so opaque token consumption runs
// against the same storage as the rest of the flows.
func NewAuthenticator(repo RepositoryManager, cfg Config) *Auther {
	return &Auther{
		repo:   repo,
		tokens: NewTokenService(cfg, repo.Tokens()),
		states: NewAccountStateMachine(),
		cfg:    cfg,
		sink:   noopNotificationSink{},
		logger: defLogger{},
		now:    time.Now,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
		s.tokens = s.tokens.WithLogger(logger)
	}
	return s
}

// WithNotificationSink configures the sink consuming emitted auth events.
func (s *Auther) WithNotificationSink(sink NotificationSink) *Auther {
	s.sink = normalizeNotificationSink(sink)
	return s
}

// WithHashidIDs derives new user IDs deterministically from the email.
func (s *Auther) WithHashidIDs(enabled bool) *Auther {
	s.useHashid = enabled
	return s
}

// WithClock injects a custom clock (useful for tests).
func (s *Auther) WithClock(clock func() time.Time) *Auther {
	if clock != nil {
		s.now = clock
		s.tokens = s.tokens.WithClock(clock)
		s.states = s.states.WithClock(clock)
	}
	return s
}

// TokenService exposes the underlying token lifecycle service.
func (s *Auther) TokenService() *TokenService {
	return s.tokens
}

// SignUp registers a new user. Email and username collisions are checked in
// one existence query and reported with a field-specific Conflict error. The
// user is persisted PENDING_VERIFICATION, a verification email is requested,
// and a token pair is returned immediately: verification gates some
// operations, not login itself.
func (s *Auther) SignUp(ctx context.Context, input SignUpInput) (*TokenPair, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during sign up")
	default:
	}

	existing, err := s.repo.Users().FindByEmailOrUsername(ctx, input.Email, input.Username)
	if err != nil && !repository.IsRecordNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing user")
	}

	if existing != nil {
		if existing.Email == input.Email {
			return nil, ErrEmailTaken
		}
		return nil, ErrUsernameTaken
	}

	hash, err := HashPassword(input.Password, s.cfg.GetBcryptCost())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	now := s.now()
	user := &User{
		Email:                input.Email,
		Username:             input.Username,
		PasswordHash:         hash,
		FirstName:            input.FirstName,
		LastName:             input.LastName,
		Status:               StatusPendingVerification,
		SystemRole:           SystemRoleUser,
		LastSecurityActionAt: &now,
	}

	if s.useHashid {
		if id, err := hashid.NewUUID(input.Email); err == nil {
			user.ID = id
		}
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := s.repo.Users().CreateTx(ctx, tx, user)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}
		user = created
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "sign up transaction failed")
	}

	s.logger.Info("user signed up", "username", user.Username)

	if err := s.requestVerification(ctx, user); err != nil {
		s.logger.Error("failed to issue verification token", "error", err, "user_id", user.ID.String())
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue verification token")
	}

	return s.issuePair(ctx, user)
}

// Login authenticates an email-or-username identifier and password, and
// returns a fresh token pair. Absent users and wrong passwords are
// indistinguishable: both paths burn a bcrypt comparison and both return
// ErrInvalidCredentials.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	user, err := s.repo.Users().GetByLoginIdentifier(ctx, identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// burn the same bcrypt work as a real mismatch
			_ = CompareDummyPassword(password)
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Info("login rejected", "identifier", identifier)
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("login", "username", user.Username)

	return s.issuePair(ctx, user)
}

// Refresh rotates a refresh token: the presented token is consumed
// atomically and a new pair is issued. A consumed or unknown token is
// Unauthorized; a vanished owning user is BadRequest.
func (s *Auther) Refresh(ctx context.Context, rawRefreshToken string) (*TokenPair, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during refresh")
	default:
	}

	userID, err := s.tokens.ConsumeTypedToken(ctx, rawRefreshToken, TokenTypeRefresh)
	if err != nil {
		if goerrors.Is(err, ErrInvalidOrExpiredToken) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	user, err := s.repo.Users().GetByID(ctx, userID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user during refresh")
	}

	return s.issuePair(ctx, user)
}

// VerifyEmail consumes an EMAIL_VERIFY token for a PENDING_VERIFICATION
// user, flips the account to ACTIVE, and returns a fresh pair so the client
// is logged in with verified claims. Token consumption and the user mutation
// commit as one transaction.
func (s *Auther) VerifyEmail(ctx context.Context, userID uuid.UUID, rawToken string) (*TokenPair, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during email verification")
	default:
	}

	user, err := s.repo.Users().GetByID(ctx, userID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user during verification")
	}

	if user.Status != StatusPendingVerification {
		return nil, ErrNotPendingVerification
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.repo.Tokens().ConsumeTx(ctx, tx, DigestToken(rawToken), TokenTypeEmailVerify, s.now())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidOrExpiredToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume verification token")
		}

		if record.UserID != user.ID {
			return ErrInvalidOrExpiredToken
		}

		updated, err := s.repo.Users().MarkVerifiedTx(ctx, tx, user.ID, s.now())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark user verified")
		}

		user = updated
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "email verification transaction failed")
	}

	s.emit(ctx, SecurityUpdateEvent{UserID: user.ID.String(), Action: "email-verified"})

	return s.issuePair(ctx, user)
}

// RequestEmailVerification re-issues the verification token for an
// unverified user, replacing any prior one, and emits the notification.
func (s *Auther) RequestEmailVerification(ctx context.Context, userID uuid.UUID) error {
	user, err := s.repo.Users().GetByID(ctx, userID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for verification request")
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	return s.requestVerification(ctx, user)
}

// ForgotPassword issues a PASSWORD_RESET token and emits the reset
// notification. An unknown email returns success with no side effect so the
// endpoint cannot disclose account existence.
func (s *Auther) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Debug("forgot password for unknown email")
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	raw, err := s.tokens.IssueTypedToken(ctx, user.ID, TokenTypePasswordReset)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue reset token")
	}

	s.emit(ctx, ResetRequestedEvent{
		Email: user.Email,
		Name:  user.DisplayName(),
		URL:   embedTokenIntoURL(s.cfg, passwordResetRoute, raw),
	})

	return nil
}

// ResetPassword consumes a PASSWORD_RESET token, replaces the password hash,
// and returns a fresh pair. Consumption and the hash replacement commit as
// one transaction, so a crash cannot leave a consumed-but-ineffective token.
func (s *Auther) ResetPassword(ctx context.Context, newPassword, rawToken string) (*TokenPair, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password reset")
	default:
	}

	hash, err := HashPassword(newPassword, s.cfg.GetBcryptCost())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash new password")
	}

	var user *User

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.repo.Tokens().ConsumeTx(ctx, tx, DigestToken(rawToken), TokenTypePasswordReset, s.now())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidResetToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume reset token")
		}

		updated, err := s.repo.Users().UpdatePasswordTx(ctx, tx, record.UserID, hash, s.now())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
		}

		user = updated
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "password reset transaction failed")
	}

	s.emit(ctx, SecurityUpdateEvent{UserID: user.ID.String(), Action: "password-reset"})

	return s.issuePair(ctx, user)
}

// ChangePassword verifies the current password and defers the actual
// mutation to the reset flow: a PASSWORD_RESET token travels to the user's
// mailbox and only ResetPassword applies the change. Proving control of the
// registered mailbox is the step-up confirmation.
func (s *Auther) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword string) error {
	user, err := s.repo.Users().GetByID(ctx, userID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for password change")
	}

	if err := ComparePasswordAndHash(currentPassword, user.PasswordHash); err != nil {
		return ErrInvalidCurrentPassword
	}

	raw, err := s.tokens.IssueTypedToken(ctx, user.ID, TokenTypePasswordReset)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue change confirmation token")
	}

	s.emit(ctx, ChangeConfirmationRequestedEvent{
		Email: user.Email,
		Name:  user.DisplayName(),
		URL:   embedTokenIntoURL(s.cfg, passwordResetRoute, raw),
	})

	return nil
}

// SetAccountStatus moves a user through the account lifecycle graph and
// persists the new status. The state machine validates the move before
// storage is touched, so illegal transitions (reviving a soft deleted
// account, deactivating a banned one) surface as validation errors.
func (s *Auther) SetAccountStatus(ctx context.Context, userID uuid.UUID, target AccountStatus) (*User, error) {
	user, err := s.repo.Users().GetByID(ctx, userID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for status change")
	}

	from := s.states.CurrentStatus(user)
	if err := s.states.Transition(user, target); err != nil {
		return nil, err
	}

	if from == user.Status {
		return user, nil
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		updated, err := s.repo.Users().UpdateStatusTx(ctx, tx, user.ID, user.Status)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist account status")
		}
		user = updated
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account status transaction failed")
	}

	s.logger.Info("account status changed", "user_id", user.ID.String(), "from", from, "to", user.Status)
	s.emit(ctx, SecurityUpdateEvent{UserID: user.ID.String(), Action: "status-changed"})

	return user, nil
}

// issuePair snapshots the user's earliest membership into claims and mints
// an access/refresh pair.
func (s *Auther) issuePair(ctx context.Context, user *User) (*TokenPair, error) {
	memberRole := MemberRole("")
	membership, err := s.repo.Memberships().FirstForUser(ctx, user.ID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load membership snapshot")
	}
	if membership != nil {
		memberRole = membership.Role
	}

	access, err := s.tokens.IssueAccessToken(NewAccessClaims(user, memberRole))
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// requestVerification replaces any live verification token and emits the
// verification-requested event.
func (s *Auther) requestVerification(ctx context.Context, user *User) error {
	raw, err := s.tokens.IssueTypedToken(ctx, user.ID, TokenTypeEmailVerify)
	if err != nil {
		return err
	}

	s.emit(ctx, VerificationRequestedEvent{
		Email: user.Email,
		Name:  user.DisplayName(),
		URL:   embedTokenIntoURL(s.cfg, verifyEmailRoute, raw),
	})

	return nil
}

// emit hands an event to the sink. Sink failures are logged, never returned;
// delivery is best effort by contract.
func (s *Auther) emit(ctx context.Context, event Event) {
	sink := normalizeNotificationSink(s.sink)
	if err := sink.Emit(ctx, event); err != nil {
		s.logger.Warn("notification sink emit error", "event", event.Type(), "error", err)
	}
}
