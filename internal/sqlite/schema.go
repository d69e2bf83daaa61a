package sqlite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/decors/pkg/types"
)

// Schema DDL for the decors table.
const (
	createDecors = `CREATE TABLE decors (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    material INTEGER NOT NULL,
    height INTEGER NOT NULL DEFAULT 0,
    price REAL NOT NULL DEFAULT 0,
    quantity INTEGER NOT NULL DEFAULT 0,
    supplier_name TEXT,
    supplier_email TEXT,
    image BLOB
);`

	dropDecors = `DROP TABLE IF EXISTS decors;`

	idxDecorsName = `CREATE INDEX idx_decors_name ON decors(name);`
)

// schemaDDL lists the statements that create the current schema.
var schemaDDL = []string{
	createDecors,
	idxDecorsName,
}

// migrate brings the database to version. A fresh database is created; an
// older one is dropped and recreated with its data discarded; a newer one is
// refused with types.ErrSchemaDowngrade.
func migrate(ctx context.Context, db *sqlx.DB, version int, logger *slog.Logger) error {
	var current int
	if err := db.GetContext(ctx, &current, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	switch {
	case current == version:
		logger.Debug("schema up to date", "version", version)
		return nil
	case current > version:
		return fmt.Errorf("%w: stored %d, expected %d", types.ErrSchemaDowngrade, current, version)
	}

	return withTx(ctx, db, func(tx *sqlx.Tx) error {
		if current > 0 {
			logger.Warn("schema upgrade drops all decors",
				"from", current, "to", version)
		} else {
			logger.Info("creating schema", "version", version)
		}
		// An unversioned file may still carry a stray table.
		if _, err := tx.ExecContext(ctx, dropDecors); err != nil {
			return fmt.Errorf("dropping decors: %w", err)
		}
		for _, stmt := range schemaDDL {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("creating schema: %w", err)
			}
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
			return fmt.Errorf("writing schema version: %w", err)
		}
		return nil
	})
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
