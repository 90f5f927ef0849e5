package auth_test

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	auth "github.com/clubkit/go-club-auth"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// quietLogger drops every log line so test output stays readable.
type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Info(string, ...any)  {}
func (quietLogger) Warn(string, ...any)  {}
func (quietLogger) Error(string, ...any) {}

// capturingSink records emitted events for assertions.
type capturingSink struct {
	mu     sync.Mutex
	events []auth.Event
}

func (c *capturingSink) Emit(_ context.Context, evt auth.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *capturingSink) all() []auth.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]auth.Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *capturingSink) lastOfType(eventType string) auth.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Type() == eventType {
			return c.events[i]
		}
	}
	return nil
}

// fakeUsers is an in-memory Users implementation backing the flow tests.
// The embedded interface covers methods the flows never reach.
type fakeUsers struct {
	auth.Users

	mu   sync.Mutex
	byID map[uuid.UUID]*auth.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[uuid.UUID]*auth.User)}
}

func (f *fakeUsers) add(user *auth.User) *auth.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	f.byID[clone.ID] = &clone
	return user
}

func (f *fakeUsers) get(id uuid.UUID) *auth.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record, ok := f.byID[id]; ok {
		clone := *record
		return &clone
	}
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parsed, err := uuid.Parse(id)
	if err == nil {
		if record, ok := f.byID[parsed]; ok {
			clone := *record
			return &clone, nil
		}
	}
	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"id": id})
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, record := range f.byID {
		if record.Email == email {
			clone := *record
			return &clone, nil
		}
	}
	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"email": email})
}

func (f *fakeUsers) GetByLoginIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byEmail := strings.Contains(identifier, "@")
	for _, record := range f.byID {
		if !auth.CanAuthenticate(record.Status) {
			continue
		}
		if byEmail && record.Email == identifier {
			clone := *record
			return &clone, nil
		}
		if !byEmail && record.Username == identifier {
			clone := *record
			return &clone, nil
		}
	}
	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"identifier": identifier})
}

func (f *fakeUsers) FindByEmailOrUsername(ctx context.Context, email, username string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, record := range f.byID {
		if record.Email == email || record.Username == username {
			clone := *record
			return &clone, nil
		}
	}
	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"email": email, "username": username})
}

func (f *fakeUsers) CreateTx(ctx context.Context, tx bun.IDB, record *auth.User, criteria ...repository.InsertCriteria) (*auth.User, error) {
	return f.add(record), nil
}

func (f *fakeUsers) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.byID[id]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}

	record.IsVerified = true
	record.Status = auth.StatusActive
	stamp := at
	record.LastSecurityActionAt = &stamp

	clone := *record
	return &clone, nil
}

func (f *fakeUsers) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string, at time.Time) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.byID[id]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}

	record.PasswordHash = passwordHash
	stamp := at
	record.LastSecurityActionAt = &stamp

	clone := *record
	return &clone, nil
}

func (f *fakeUsers) UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status auth.AccountStatus) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.byID[id]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}

	record.Status = status
	now := time.Now()
	record.LastSecurityActionAt = &now

	clone := *record
	return &clone, nil
}

// fakeTokens routes the TokenStore surface to a MemoryTokenStore. Setting
// failPut makes token persistence fail, for exercising issuance errors.
type fakeTokens struct {
	auth.Tokens
	store   *auth.MemoryTokenStore
	failPut error
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{store: auth.NewMemoryTokenStore()}
}

func (f *fakeTokens) Put(ctx context.Context, record *auth.Token) (*auth.Token, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	return f.store.Put(ctx, record)
}

func (f *fakeTokens) Consume(ctx context.Context, digest string, tokenType auth.TokenType, now time.Time) (*auth.Token, error) {
	return f.store.Consume(ctx, digest, tokenType, now)
}

func (f *fakeTokens) ConsumeTx(ctx context.Context, tx bun.IDB, digest string, tokenType auth.TokenType, now time.Time) (*auth.Token, error) {
	return f.store.Consume(ctx, digest, tokenType, now)
}

func (f *fakeTokens) DeleteByUserAndType(ctx context.Context, userID uuid.UUID, tokenType auth.TokenType) error {
	return f.store.DeleteByUserAndType(ctx, userID, tokenType)
}

// fakeMemberships serves the claims snapshot lookup.
type fakeMemberships struct {
	auth.Memberships

	mu     sync.Mutex
	byUser map[uuid.UUID][]*auth.Membership
}

func newFakeMemberships() *fakeMemberships {
	return &fakeMemberships{byUser: make(map[uuid.UUID][]*auth.Membership)}
}

func (f *fakeMemberships) add(m *auth.Membership) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	f.byUser[m.UserID] = append(f.byUser[m.UserID], m)
}

func (f *fakeMemberships) FirstForUser(ctx context.Context, userID uuid.UUID) (*auth.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var earliest *auth.Membership
	for _, m := range f.byUser[userID] {
		if earliest == nil {
			earliest = m
			continue
		}
		if m.JoinedAt != nil && earliest.JoinedAt != nil && m.JoinedAt.Before(*earliest.JoinedAt) {
			earliest = m
		}
	}

	if earliest == nil {
		return nil, nil
	}

	clone := *earliest
	return &clone, nil
}

// fakeRepo wires the fakes into a RepositoryManager. RunInTx executes the
// callback directly; the fakes apply each mutation immediately.
type fakeRepo struct {
	users       *fakeUsers
	memberships *fakeMemberships
	tokens      *fakeTokens
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       newFakeUsers(),
		memberships: newFakeMemberships(),
		tokens:      newFakeTokens(),
	}
}

func (f *fakeRepo) Users() auth.Users             { return f.users }
func (f *fakeRepo) Memberships() auth.Memberships { return f.memberships }
func (f *fakeRepo) Tokens() auth.Tokens           { return f.tokens }
func (f *fakeRepo) Validate() error               { return nil }
func (f *fakeRepo) MustValidate()                 {}

func (f *fakeRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fn(ctx, bun.Tx{})
	}
}

func newTestConfig() auth.SimpleConfig {
	return auth.SimpleConfig{
		SigningKey:            "test-signing-key",
		Issuer:                "club-auth-test",
		AccessTokenTTL:        3600,
		RefreshTokenTTL:       7 * 24 * 3600,
		EmailVerifyTokenTTL:   24 * 3600,
		PasswordResetTokenTTL: 3600,
		BaseURL:               "https://clubs.example.com",
		APIPrefix:             "api/v1",
		BcryptCost:            4,
	}
}
