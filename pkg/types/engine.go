package types

import (
	"context"
	"iter"
)

// Selection is a SQL filter over the decors table: a WHERE clause fragment
// with ? placeholders and its arguments. An empty Where selects every row.
type Selection struct {
	Where string
	Args  []any
}

// IsEmpty reports whether s selects every row.
func (s Selection) IsEmpty() bool {
	return s.Where == ""
}

// QueryOptions shapes the rows a query returns.
type QueryOptions struct {
	// Projection lists the columns to return. Empty means every column.
	Projection []string
	// SortOrder is an ORDER BY list such as "price DESC, name". Only
	// column names and ASC/DESC are accepted.
	SortOrder string
	// Limit caps the number of rows when positive. Offset skips rows.
	Limit  int
	Offset int
}

// Engine provides validated CRUD over the decors table. Selections passed
// to an Engine are already scoped by the router.
type Engine interface {
	// Query returns a lazy cursor over the rows matching sel. It never
	// fails because nothing matched; the cursor is simply empty.
	Query(ctx context.Context, sel Selection, opts QueryOptions) (Cursor, error)

	// Insert validates and persists a new decor and returns its id.
	Insert(ctx context.Context, values DecorValues) (int64, error)

	// Update writes the present fields of values to every row matching
	// sel and returns the number of rows affected. Empty values affect
	// nothing and do not touch storage.
	Update(ctx context.Context, sel Selection, values DecorValues) (int64, error)

	// Delete removes every row matching sel and returns the count.
	Delete(ctx context.Context, sel Selection) (int64, error)

	// AdjustQuantity adds delta to the quantity of every row matching
	// sel. It fails without writing if any row would go negative.
	AdjustQuantity(ctx context.Context, sel Selection, delta int) (int64, error)
}

// Cursor is a forward-only sequence of query results.
type Cursor interface {
	// Next advances to the next row. It returns false at the end or on
	// error; check Err afterwards.
	Next() bool

	// Decor decodes the current row. Columns outside the projection are
	// left at their zero values.
	Decor() (*Decor, error)

	// Scan copies the current row's raw column values into dest.
	Scan(dest ...any) error

	// Columns returns the projected column names.
	Columns() []string

	// All iterates the remaining rows as decoded records.
	All() iter.Seq2[*Decor, error]

	Err() error

	// Close releases the rows and cancels every Watch subscription.
	// Close is idempotent.
	Close() error

	// SetNotificationLocator records the locator this cursor was produced
	// for and where to subscribe for its changes.
	SetNotificationLocator(s Subscriber, locator string)

	// NotificationLocator returns the locator set by SetNotificationLocator.
	NotificationLocator() string

	// Watch registers o for changes to the cursor's locator until Close.
	Watch(o Observer) error
}

// Observer receives invalidation signals for a locator. Observers re-run
// their own query; no diff is delivered.
type Observer interface {
	OnChange(locator string)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(locator string)

// OnChange calls f(locator).
func (f ObserverFunc) OnChange(locator string) { f(locator) }

// Subscriber registers observers by locator.
type Subscriber interface {
	// Register adds o for locator and returns a function that removes it.
	Register(locator string, o Observer) (cancel func())
}
