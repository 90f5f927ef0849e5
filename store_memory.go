package auth

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// MemoryTokenStore is a mutex guarded TokenStore for tests and embedded use.
// Consume performs the lookup and delete under one lock, giving the same
// exactly-once guarantee as the SQL conditional delete.
type MemoryTokenStore struct {
	mu      sync.Mutex
	records map[string]*Token
}

var _ TokenStore = (*MemoryTokenStore)(nil)

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		records: make(map[string]*Token),
	}
}

func (s *MemoryTokenStore) Put(ctx context.Context, token *Token) (*Token, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := *token
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}

	s.records[record.TokenHash] = &record

	out := record
	return &out, nil
}

func (s *MemoryTokenStore) Consume(ctx context.Context, digest string, tokenType TokenType, now time.Time) (*Token, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[digest]
	if !ok || record.Type != tokenType || record.Expired(now) {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"type": tokenType})
	}

	delete(s.records, digest)

	out := *record
	return &out, nil
}

func (s *MemoryTokenStore) DeleteByUserAndType(ctx context.Context, userID uuid.UUID, tokenType TokenType) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for digest, record := range s.records {
		if record.UserID == userID && record.Type == tokenType {
			delete(s.records, digest)
		}
	}

	return nil
}

// Len reports the number of live records; used by tests.
func (s *MemoryTokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
