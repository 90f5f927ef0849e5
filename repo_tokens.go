package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConsumeTokenSQL removes a live token and returns the prior row in one
// statement. The conditional delete is what makes consumption atomic: two
// concurrent callers can never both get the row back.
var ConsumeTokenSQL = `DELETE FROM "tokens"
WHERE
	"token_hash" = ?
AND "type" = ?
AND "expires_at" > ?
RETURNING *;`

type Tokens interface {
	repository.Repository[*Token]
	TokenStore

	ConsumeTx(ctx context.Context, tx bun.IDB, digest string, tokenType TokenType, now time.Time) (*Token, error)
	DeleteByUserAndTypeTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, tokenType TokenType) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokens struct {
	repository.Repository[*Token]
	db *bun.DB
}

var (
	_ Tokens     = (*tokens)(nil)
	_ TokenStore = (*tokens)(nil)
)

func NewTokensRepository(db *bun.DB) Tokens {
	repo := repository.NewRepository[*Token](db, repository.ModelHandlers[*Token]{
		NewRecord: func() *Token { return &Token{} },
		GetID: func(t *Token) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Token, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token_hash"
		},
	})

	return &tokens{
		Repository: repo,
		db:         db,
	}
}

func (a *tokens) Put(ctx context.Context, record *Token) (*Token, error) {
	return a.Repository.CreateTx(ctx, a.db, record)
}

func (a *tokens) Consume(ctx context.Context, digest string, tokenType TokenType, now time.Time) (*Token, error) {
	return a.ConsumeTx(ctx, a.db, digest, tokenType, now)
}

func (a *tokens) ConsumeTx(ctx context.Context, tx bun.IDB, digest string, tokenType TokenType, now time.Time) (*Token, error) {
	res, err := a.Repository.RawTx(ctx, tx, ConsumeTokenSQL, digest, tokenType, now)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"type": tokenType})
	}

	return res[0], nil
}

func (a *tokens) DeleteByUserAndType(ctx context.Context, userID uuid.UUID, tokenType TokenType) error {
	return a.DeleteByUserAndTypeTx(ctx, a.db, userID, tokenType)
}

func (a *tokens) DeleteByUserAndTypeTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, tokenType TokenType) error {
	_, err := tx.NewDelete().
		Model((*Token)(nil)).
		Where("user_id = ?", userID).
		Where("type = ?", tokenType).
		Exec(ctx)

	return err
}

// DeleteExpired prunes tokens past their expiry. Consumption already treats
// expired rows as missing; this keeps the table from growing unbounded.
func (a *tokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := a.db.NewDelete().
		Model((*Token)(nil)).
		Where("expires_at <= ?", now).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}

	return n, nil
}
