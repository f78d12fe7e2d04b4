package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the bun-backed user directory. It satisfies the UserStore
// contract the auth core consumes and exposes the transactional variants
// for callers that compose larger writes. The underlying generic
// repository is reachable through Repo for criteria-based queries.
type Users interface {
	UserStore

	Repo() repository.Repository[*User]
	FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	UpdateUserTx(ctx context.Context, tx bun.IDB, user *User) error
}

type users struct {
	repo repository.Repository[*User]
	db   *bun.DB
}

var (
	_ Users     = (*users)(nil)
	_ UserStore = (*users)(nil)
)

// NewUsersRepository creates the bun repository for users
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		repo: repo,
		db:   db,
	}
}

func (a *users) Repo() repository.Repository[*User] {
	return a.repo
}

func (a *users) FindByEmail(ctx context.Context, email string) (*User, error) {
	return a.FindByEmailTx(ctx, a.db, email)
}

func (a *users) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound.Clone().
				WithMetadata(map[string]any{"email": NormalizeEmail(email)})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.FindByIDTx(ctx, a.db, id)
}

func (a *users) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound.Clone().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	prepareUserDefaults(record)
	return a.repo.CreateTx(ctx, a.db, record)
}

func (a *users) Update(ctx context.Context, record *User) error {
	return a.UpdateUserTx(ctx, a.db, record)
}

func (a *users) UpdateUserTx(ctx context.Context, tx bun.IDB, record *User) error {
	_, err := a.repo.UpdateTx(ctx, tx, record, repository.UpdateByID(record.ID.String()))
	return err
}

// prepareUserDefaults normalizes the email and assigns a deterministic id
// derived from it, so repeated provisioning of the same address converges
// on the same row.
func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.NormalizeEmail()

	if record.Role == "" {
		record.Role = RoleCustomer
	}

	if record.ID == uuid.Nil {
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}
}
