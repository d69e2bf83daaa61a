// Package sqlite provides the public API for the SQLite decors store.
// It wires the storage engine, router and notification registry together
// while keeping their implementations internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/decors/internal/notify"
	"github.com/mesh-intelligence/decors/internal/provider"
	"github.com/mesh-intelligence/decors/internal/router"
	"github.com/mesh-intelligence/decors/internal/sqlite"
	"github.com/mesh-intelligence/decors/pkg/types"
)

// Store is an attached engine behind a locator-addressed resolver.
type Store struct {
	types.Resolver
	backend *sqlite.Backend
}

// Open attaches a SQLite engine with config and returns it as a Store.
//
// Example:
//
//	store, err := sqlite.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".decors-db",
//	}, nil)
//	defer store.Close()
func Open(config types.Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := sqlite.NewBackend().WithLogger(logger)
	if err := b.Attach(config); err != nil {
		return nil, err
	}
	observers := notify.NewRegistry().WithLogger(logger)
	p := provider.New(router.Default(), b, observers).WithLogger(logger)
	return &Store{Resolver: p, backend: b}, nil
}

// Close detaches the engine. It is safe to call more than once.
func (s *Store) Close() error {
	return s.backend.Detach()
}
