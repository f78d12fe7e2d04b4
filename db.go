package auth

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenDB opens a sqlite-backed bun database. Production deployments hand
// the core their own *bun.DB; this is the batteries-included path for
// development and tests.
func OpenDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open database")
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// EnsureSchema creates the users table when it does not exist yet
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create users table")
	}

	return nil
}
