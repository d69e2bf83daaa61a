package sqlite

import (
	"errors"
	"iter"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/decors/pkg/types"
)

var _ types.Cursor = (*Cursor)(nil)

// Cursor streams query results row by row. It is not safe for concurrent
// use, except that Close may be called from any goroutine.
type Cursor struct {
	rows    *sqlx.Rows
	columns []string

	mu         sync.Mutex
	closed     bool
	subscriber types.Subscriber
	locator    string
	cancels    []func()
}

func newCursor(rows *sqlx.Rows, columns []string) *Cursor {
	return &Cursor{rows: rows, columns: columns}
}

// Next advances to the next row.
func (c *Cursor) Next() bool {
	if c.isClosed() {
		return false
	}
	return c.rows.Next()
}

// Decor decodes the current row.
func (c *Cursor) Decor() (*types.Decor, error) {
	var r decorRow
	if err := c.rows.StructScan(&r); err != nil {
		return nil, &types.StorageError{Op: "scan", Err: err}
	}
	return r.decor(), nil
}

// Scan copies the current row's columns into dest, in projection order.
func (c *Cursor) Scan(dest ...any) error {
	if err := c.rows.Scan(dest...); err != nil {
		return &types.StorageError{Op: "scan", Err: err}
	}
	return nil
}

// Columns returns the projected column names.
func (c *Cursor) Columns() []string {
	return c.columns
}

// All iterates the remaining rows. Iteration stops at the first error, which
// is yielded with a nil record.
func (c *Cursor) All() iter.Seq2[*types.Decor, error] {
	return func(yield func(*types.Decor, error) bool) {
		for c.Next() {
			d, err := c.Decor()
			if !yield(d, err) || err != nil {
				return
			}
		}
		if err := c.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Err returns the error, if any, that ended iteration.
func (c *Cursor) Err() error {
	if err := c.rows.Err(); err != nil {
		return &types.StorageError{Op: "query", Err: err}
	}
	return nil
}

// Close releases the rows and cancels every Watch subscription.
func (c *Cursor) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cancels := c.cancels
	c.cancels = nil
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	if err := c.rows.Close(); err != nil {
		return &types.StorageError{Op: "close", Err: err}
	}
	return nil
}

// SetNotificationLocator records where changes to this cursor's data are
// announced.
func (c *Cursor) SetNotificationLocator(s types.Subscriber, locator string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriber = s
	c.locator = locator
}

// NotificationLocator returns the locator set by SetNotificationLocator.
func (c *Cursor) NotificationLocator() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locator
}

// Watch registers o for changes to the cursor's locator until Close.
func (c *Cursor) Watch(o types.Observer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return errors.New("watch: cursor is closed")
	case c.subscriber == nil:
		return errors.New("watch: no notification locator set")
	}
	c.cancels = append(c.cancels, c.subscriber.Register(c.locator, o))
	return nil
}

func (c *Cursor) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
