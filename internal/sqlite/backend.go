// Package sqlite implements the SQLite storage engine for the decors
// inventory. A Backend owns one database file, creates or upgrades its schema
// on Attach, and serves the types.Engine operations.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/decors/pkg/types"
)

// DatabaseFile is the name of the database file inside DataDir.
const DatabaseFile = "decors.db"

const busyTimeout = 5 * time.Second

var _ types.Engine = (*Backend)(nil)

// Backend implements types.Engine on a SQLite database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sqlx.DB
	table    *decorsTable
	logger   *slog.Logger

	// writeMu serialises mutations; reads only take mu.
	writeMu sync.Mutex
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{logger: slog.Default()}
}

// WithLogger sets the logger and returns b.
func (b *Backend) WithLogger(l *slog.Logger) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = l
	return b
}

// Attach opens the database in config.DataDir, creating the directory if it
// does not exist, and brings the schema to the configured version.
// Returns ErrAlreadyAttached if already attached and ErrSchemaDowngrade when
// the stored schema is newer than the configured one.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath, err := filepath.Abs(filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return fmt.Errorf("resolving database path: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		dbPath, busyTimeout.Milliseconds())

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening sqlite: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), busyTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("pinging sqlite: %w", err)
	}

	logger := b.logger.With("db", dbPath)
	if err := migrate(ctx, db, config.GetSchemaVersion(), logger); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.table = newDecorsTable(db)
	b.attached = true

	logger.Debug("backend attached", "schema_version", config.GetSchemaVersion())
	return nil
}

// Detach releases all resources held by the backend.
// Closes the SQLite connection. After Detach, all operations return ErrDetached.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.attached = false
	b.table = nil
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return fmt.Errorf("closing sqlite: %w", err)
		}
	}
	return nil
}

// Query returns a lazy cursor over the decors matching sel.
func (b *Backend) Query(ctx context.Context, sel types.Selection, opts types.QueryOptions) (types.Cursor, error) {
	t, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer b.mu.RUnlock()

	c, err := t.query(ctx, sel, opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Insert validates values and stores a new decor, returning its id.
func (b *Backend) Insert(ctx context.Context, values types.DecorValues) (int64, error) {
	if err := values.ValidateInsert(); err != nil {
		return 0, err
	}
	t, err := b.acquireWrite()
	if err != nil {
		return 0, err
	}
	defer b.releaseWrite()

	id, err := t.insert(ctx, values)
	if err != nil {
		return 0, err
	}
	b.logger.Debug("decor inserted", "id", id)
	return id, nil
}

// Update writes the present fields of values to every decor matching sel.
func (b *Backend) Update(ctx context.Context, sel types.Selection, values types.DecorValues) (int64, error) {
	if err := values.ValidateUpdate(); err != nil {
		return 0, err
	}
	if values.IsEmpty() {
		return 0, nil
	}
	t, err := b.acquireWrite()
	if err != nil {
		return 0, err
	}
	defer b.releaseWrite()

	n, err := t.update(ctx, sel, values)
	if err != nil {
		return 0, err
	}
	b.logger.Debug("decors updated", "rows", n)
	return n, nil
}

// Delete removes every decor matching sel.
func (b *Backend) Delete(ctx context.Context, sel types.Selection) (int64, error) {
	t, err := b.acquireWrite()
	if err != nil {
		return 0, err
	}
	defer b.releaseWrite()

	n, err := t.delete(ctx, sel)
	if err != nil {
		return 0, err
	}
	b.logger.Debug("decors deleted", "rows", n)
	return n, nil
}

// AdjustQuantity adds delta to the quantity of every decor matching sel. If
// any of them would drop below zero nothing is written and a
// *types.ValidationError for the quantity field is returned.
func (b *Backend) AdjustQuantity(ctx context.Context, sel types.Selection, delta int) (int64, error) {
	if delta == 0 {
		return 0, nil
	}
	t, err := b.acquireWrite()
	if err != nil {
		return 0, err
	}
	defer b.releaseWrite()

	n, err := t.adjustQuantity(ctx, sel, delta)
	if err != nil {
		return 0, err
	}
	b.logger.Debug("quantity adjusted", "delta", delta, "rows", n)
	return n, nil
}

// acquire takes the read lock and returns the table. On success the caller
// must release b.mu.RUnlock.
func (b *Backend) acquire() (*decorsTable, error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, types.ErrDetached
	}
	return b.table, nil
}

// acquireWrite takes the writer lock as well as the read lock. Release with
// releaseWrite.
func (b *Backend) acquireWrite() (*decorsTable, error) {
	b.writeMu.Lock()
	t, err := b.acquire()
	if err != nil {
		b.writeMu.Unlock()
		return nil, err
	}
	return t, nil
}

func (b *Backend) releaseWrite() {
	b.mu.RUnlock()
	b.writeMu.Unlock()
}
