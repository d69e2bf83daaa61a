package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/decors/pkg/types"
)

// ImportResult counts what Import did with each record.
type ImportResult struct {
	Imported int
	// Invalid records failed insert validation.
	Invalid int
	// Duplicates carried an id that is already taken.
	Duplicates int
}

// Import loads an Export file into the table. Records keep their ids.
// Loading is transactional: either every valid record is stored or none is.
// Invalid records and records whose id already exists are skipped and
// counted.
func (b *Backend) Import(ctx context.Context, path string) (ImportResult, error) {
	decors, err := ReadExport(path)
	if err != nil {
		return ImportResult{}, err
	}

	t, err := b.acquireWrite()
	if err != nil {
		return ImportResult{}, err
	}
	defer b.releaseWrite()

	var res ImportResult
	err = withTx(ctx, t.db, func(tx *sqlx.Tx) error {
		res = ImportResult{}
		for _, d := range decors {
			values := d.Values()
			if err := values.ValidateInsert(); err != nil {
				b.logger.Warn("skipping invalid decor", "id", d.ID, "error", err)
				res.Invalid++
				continue
			}
			inserted, err := insertWithID(ctx, tx, d.ID, values)
			if err != nil {
				return &types.StorageError{Op: "import", Err: err}
			}
			if !inserted {
				res.Duplicates++
				continue
			}
			res.Imported++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	b.logger.Info("decors imported", "path", path,
		"imported", res.Imported, "invalid", res.Invalid, "duplicates", res.Duplicates)
	return res, nil
}

// insertWithID inserts values under id, or under a fresh id when id is not
// positive. It reports false when id is already taken.
func insertWithID(ctx context.Context, tx *sqlx.Tx, id int64, values types.DecorValues) (bool, error) {
	columns, args := assignments(values)
	if id > 0 {
		columns = append([]string{types.ColumnID}, columns...)
		args = append([]any{id}, args...)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	q := fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		types.DecorsTable, strings.Join(columns, ", "), placeholders)

	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
