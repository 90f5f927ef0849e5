package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Memberships interface {
	repository.Repository[*Membership]
	MembershipProvider

	ListForUser(ctx context.Context, userID uuid.UUID) ([]*Membership, error)
}

type memberships struct {
	repository.Repository[*Membership]
	db *bun.DB
}

var (
	_ Memberships        = (*memberships)(nil)
	_ MembershipProvider = (*memberships)(nil)
)

func NewMembershipsRepository(db *bun.DB) Memberships {
	repo := repository.NewRepository[*Membership](db, repository.ModelHandlers[*Membership]{
		NewRecord: func() *Membership { return &Membership{} },
		GetID: func(m *Membership) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Membership, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})

	return &memberships{
		Repository: repo,
		db:         db,
	}
}

// FirstForUser returns the user's earliest membership by join date, which is
// the snapshot embedded into access claims. Returns nil without error when
// the user has no memberships.
func (a *memberships) FirstForUser(ctx context.Context, userID uuid.UUID) (*Membership, error) {
	record := &Membership{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		OrderExpr("?TableAlias.joined_at ASC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return record, nil
}

func (a *memberships) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Membership, error) {
	var records []*Membership
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		OrderExpr("?TableAlias.joined_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}
