package types

import "context"

// Resolver is the locator-addressed interface consumed by front ends such as
// the CLI. Each method resolves the locator through the router before
// reaching the engine.
type Resolver interface {
	// List returns every decor addressed by locator: the whole collection
	// for a collection locator, at most one record for an item locator.
	List(ctx context.Context, locator string) ([]*Decor, error)

	// Get returns the single decor addressed by an item locator.
	// Returns ErrNotFound if no such decor exists.
	Get(ctx context.Context, locator string) (*Decor, error)

	// Create inserts a new decor into the collection and returns its id.
	Create(ctx context.Context, values DecorValues) (int64, error)

	// Modify applies the present fields of values to the addressed decors.
	Modify(ctx context.Context, locator string, values DecorValues) (int64, error)

	// Remove deletes the addressed decors.
	Remove(ctx context.Context, locator string) (int64, error)

	// Subscribe registers o for change notifications on locator.
	Subscribe(locator string, o Observer) (cancel func(), err error)
}
