package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/decors/pkg/types"
)

// decorsTable runs SQL against the decors table. Locking and validation are
// the Backend's job.
type decorsTable struct {
	db *sqlx.DB
}

func newDecorsTable(db *sqlx.DB) *decorsTable {
	return &decorsTable{db: db}
}

// decorRow is the scan target for a decors row. Every field is nullable so
// that a projection leaves the columns it omits at their zero values.
type decorRow struct {
	ID            sql.NullInt64       `db:"id"`
	Name          sql.NullString      `db:"name"`
	Description   sql.NullString      `db:"description"`
	Material      sql.NullInt64       `db:"material"`
	Height        sql.NullInt64       `db:"height"`
	Price         decimal.NullDecimal `db:"price"`
	Quantity      sql.NullInt64       `db:"quantity"`
	SupplierName  sql.NullString      `db:"supplier_name"`
	SupplierEmail sql.NullString      `db:"supplier_email"`
	Image         []byte              `db:"image"`
}

func (r *decorRow) decor() *types.Decor {
	d := &types.Decor{
		ID:            r.ID.Int64,
		Name:          r.Name.String,
		Description:   r.Description.String,
		Material:      types.Material(r.Material.Int64),
		Height:        int(r.Height.Int64),
		Quantity:      int(r.Quantity.Int64),
		SupplierName:  r.SupplierName.String,
		SupplierEmail: r.SupplierEmail.String,
		Image:         r.Image,
	}
	if r.Price.Valid {
		d.Price = r.Price.Decimal
	}
	return d
}

func (t *decorsTable) query(ctx context.Context, sel types.Selection, opts types.QueryOptions) (*Cursor, error) {
	q, columns, err := buildSelect(sel, opts)
	if err != nil {
		return nil, err
	}
	rows, err := t.db.QueryxContext(ctx, q, sel.Args...)
	if err != nil {
		return nil, &types.StorageError{Op: "query", Err: err}
	}
	return newCursor(rows, columns), nil
}

func (t *decorsTable) insert(ctx context.Context, values types.DecorValues) (int64, error) {
	columns, args := assignments(values)
	if values.Height == nil {
		columns = append(columns, types.ColumnHeight)
		args = append(args, 0)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		types.DecorsTable, strings.Join(columns, ", "), placeholders)

	res, err := t.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, &types.StorageError{Op: "insert", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &types.StorageError{Op: "insert", Err: err}
	}
	return id, nil
}

func (t *decorsTable) update(ctx context.Context, sel types.Selection, values types.DecorValues) (int64, error) {
	columns, args := assignments(values)
	set := make([]string, len(columns))
	for i, c := range columns {
		set[i] = c + " = ?"
	}
	q := fmt.Sprintf("UPDATE %s SET %s%s", types.DecorsTable, strings.Join(set, ", "), where(sel))
	args = append(args, sel.Args...)

	return t.exec(ctx, "update", q, args...)
}

func (t *decorsTable) delete(ctx context.Context, sel types.Selection) (int64, error) {
	q := "DELETE FROM " + types.DecorsTable + where(sel)
	return t.exec(ctx, "delete", q, sel.Args...)
}

// adjustQuantity checks and applies the delta in one transaction so that a
// failing check leaves every row untouched.
func (t *decorsTable) adjustQuantity(ctx context.Context, sel types.Selection, delta int) (int64, error) {
	var n int64
	err := withTx(ctx, t.db, func(tx *sqlx.Tx) error {
		var short int
		check := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", types.DecorsTable,
			whereAnd(sel, types.ColumnQuantity+" + ? < 0"))
		args := append(append([]any{}, sel.Args...), delta)
		if err := tx.GetContext(ctx, &short, check, args...); err != nil {
			return &types.StorageError{Op: "adjust quantity", Err: err}
		}
		if short > 0 {
			return &types.ValidationError{
				Field:  types.ColumnQuantity,
				Reason: "must not go below 0 (" + strconv.Itoa(short) + " decors short)",
			}
		}

		q := fmt.Sprintf("UPDATE %s SET %s = %s + ?%s", types.DecorsTable,
			types.ColumnQuantity, types.ColumnQuantity, where(sel))
		res, err := tx.ExecContext(ctx, q, append([]any{delta}, sel.Args...)...)
		if err != nil {
			return &types.StorageError{Op: "adjust quantity", Err: err}
		}
		n, err = res.RowsAffected()
		if err != nil {
			return &types.StorageError{Op: "adjust quantity", Err: err}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (t *decorsTable) exec(ctx context.Context, op, q string, args ...any) (int64, error) {
	res, err := t.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, &types.StorageError{Op: op, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &types.StorageError{Op: op, Err: err}
	}
	return n, nil
}

// assignments returns the present columns of values in table order and
// their bind arguments. Prices are bound as REAL.
func assignments(values types.DecorValues) ([]string, []any) {
	var columns []string
	var args []any
	add := func(c string, v any) {
		columns = append(columns, c)
		args = append(args, v)
	}
	if values.Name != nil {
		add(types.ColumnName, *values.Name)
	}
	if values.Description != nil {
		add(types.ColumnDescription, *values.Description)
	}
	if values.Material != nil {
		add(types.ColumnMaterial, int(*values.Material))
	}
	if values.Height != nil {
		add(types.ColumnHeight, *values.Height)
	}
	if values.Price != nil {
		add(types.ColumnPrice, values.Price.InexactFloat64())
	}
	if values.Quantity != nil {
		add(types.ColumnQuantity, *values.Quantity)
	}
	if values.SupplierName != nil {
		add(types.ColumnSupplierName, *values.SupplierName)
	}
	if values.SupplierEmail != nil {
		add(types.ColumnSupplierEmail, *values.SupplierEmail)
	}
	if values.Image != nil {
		add(types.ColumnImage, *values.Image)
	}
	return columns, args
}

// buildSelect renders a SELECT for sel and opts and returns it with the
// projected columns.
func buildSelect(sel types.Selection, opts types.QueryOptions) (string, []string, error) {
	columns := opts.Projection
	if len(columns) == 0 {
		columns = types.Columns
	}
	for _, c := range columns {
		if !types.IsColumn(c) {
			return "", nil, fmt.Errorf("%w: unknown column %q", types.ErrInvalidQuery, c)
		}
	}

	order, err := orderBy(opts.SortOrder)
	if err != nil {
		return "", nil, err
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return "", nil, fmt.Errorf("%w: limit and offset must not be negative", types.ErrInvalidQuery)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(columns, ", "), types.DecorsTable, where(sel), order)
	switch {
	case opts.Limit > 0:
		fmt.Fprintf(&b, " LIMIT %d", opts.Limit)
	case opts.Offset > 0:
		b.WriteString(" LIMIT -1")
	}
	if opts.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", opts.Offset)
	}
	return b.String(), append([]string(nil), columns...), nil
}

// orderBy validates a sort order such as "price DESC, name". Terms must
// be column names optionally followed by ASC or DESC. Empty means id order.
func orderBy(sortOrder string) (string, error) {
	if strings.TrimSpace(sortOrder) == "" {
		return types.ColumnID + " ASC", nil
	}
	terms := strings.Split(sortOrder, ",")
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		fields := strings.Fields(term)
		if len(fields) == 0 || len(fields) > 2 || !types.IsColumn(fields[0]) {
			return "", fmt.Errorf("%w: bad sort term %q", types.ErrInvalidQuery, strings.TrimSpace(term))
		}
		dir := "ASC"
		if len(fields) == 2 {
			dir = strings.ToUpper(fields[1])
			if dir != "ASC" && dir != "DESC" {
				return "", fmt.Errorf("%w: bad sort direction %q", types.ErrInvalidQuery, fields[1])
			}
		}
		out = append(out, fields[0]+" "+dir)
	}
	return strings.Join(out, ", "), nil
}

func where(sel types.Selection) string {
	if sel.IsEmpty() {
		return ""
	}
	return " WHERE (" + sel.Where + ")"
}

func whereAnd(sel types.Selection, cond string) string {
	if sel.IsEmpty() {
		return " WHERE " + cond
	}
	return " WHERE (" + sel.Where + ") AND " + cond
}
