// Package provider resolves locators to engine operations. It is the single
// entry point front ends use: every call is matched by the router, scoped,
// run on the engine, and on success announced to the notification registry.
package provider

import (
	"context"
	"log/slog"

	"github.com/mesh-intelligence/decors/internal/notify"
	"github.com/mesh-intelligence/decors/internal/router"
	"github.com/mesh-intelligence/decors/pkg/types"
)

var _ types.Resolver = (*Provider)(nil)

// Provider combines a routing table, an engine and a registry.
type Provider struct {
	routes    *router.Table
	engine    types.Engine
	observers *notify.Registry
	logger    *slog.Logger
}

// New returns a provider. A nil routes uses router.Default and a nil
// observers gets a fresh registry.
func New(routes *router.Table, engine types.Engine, observers *notify.Registry) *Provider {
	if routes == nil {
		routes = router.Default()
	}
	if observers == nil {
		observers = notify.NewRegistry()
	}
	return &Provider{
		routes:    routes,
		engine:    engine,
		observers: observers,
		logger:    slog.Default(),
	}
}

// WithLogger sets the logger and returns p.
func (p *Provider) WithLogger(l *slog.Logger) *Provider {
	p.logger = l
	return p
}

// Observers returns the registry notifications are sent to.
func (p *Provider) Observers() *notify.Registry {
	return p.observers
}

// Query returns a cursor over the decors addressed by locator. An item
// locator replaces sel with its own id. The cursor's notification locator is
// the canonical form of locator.
func (p *Provider) Query(ctx context.Context, locator string, sel types.Selection, opts types.QueryOptions) (types.Cursor, error) {
	m, err := p.match("query", locator)
	if err != nil {
		return nil, err
	}
	cur, err := p.engine.Query(ctx, m.Scope(sel), opts)
	if err != nil {
		return nil, err
	}
	cur.SetNotificationLocator(p.observers, m.Locator)
	return cur, nil
}

// Insert stores values in the collection addressed by locator and returns
// the new id. Item locators are rejected.
func (p *Provider) Insert(ctx context.Context, locator string, values types.DecorValues) (int64, error) {
	m, err := p.match("insert", locator)
	if err != nil {
		return 0, err
	}
	if m.Kind != router.Collection {
		return 0, &types.UnrecognizedResourceError{Op: "insert", Locator: locator}
	}
	id, err := p.engine.Insert(ctx, values)
	if err != nil {
		p.logger.Debug("insert failed", "locator", m.Locator, "error", err)
		return 0, err
	}
	p.observers.Notify(m.Locator)
	return id, nil
}

// Update writes the present fields of values to the decors addressed by
// locator and sel.
func (p *Provider) Update(ctx context.Context, locator string, sel types.Selection, values types.DecorValues) (int64, error) {
	m, err := p.match("update", locator)
	if err != nil {
		return 0, err
	}
	n, err := p.engine.Update(ctx, m.Scope(sel), values)
	return p.settle(m, "update", n, err)
}

// Delete removes the decors addressed by locator and sel.
func (p *Provider) Delete(ctx context.Context, locator string, sel types.Selection) (int64, error) {
	m, err := p.match("delete", locator)
	if err != nil {
		return 0, err
	}
	n, err := p.engine.Delete(ctx, m.Scope(sel))
	return p.settle(m, "delete", n, err)
}

// AdjustQuantity adds delta to the quantity of the decors addressed by
// locator and sel.
func (p *Provider) AdjustQuantity(ctx context.Context, locator string, sel types.Selection, delta int) (int64, error) {
	m, err := p.match("adjust quantity", locator)
	if err != nil {
		return 0, err
	}
	n, err := p.engine.AdjustQuantity(ctx, m.Scope(sel), delta)
	return p.settle(m, "adjust quantity", n, err)
}

// Type returns the collection or item type tag of locator.
func (p *Provider) Type(locator string) (string, error) {
	return p.routes.Type(locator)
}

// List implements types.Resolver.
func (p *Provider) List(ctx context.Context, locator string) ([]*types.Decor, error) {
	cur, err := p.Query(ctx, locator, types.Selection{}, types.QueryOptions{})
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	var out []*types.Decor
	for d, err := range cur.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Get implements types.Resolver. It accepts item locators only.
func (p *Provider) Get(ctx context.Context, locator string) (*types.Decor, error) {
	m, err := p.match("get", locator)
	if err != nil {
		return nil, err
	}
	if m.Kind != router.Item {
		return nil, &types.UnrecognizedResourceError{Op: "get", Locator: locator}
	}
	decors, err := p.List(ctx, m.Locator)
	if err != nil {
		return nil, err
	}
	if len(decors) == 0 {
		return nil, types.ErrNotFound
	}
	return decors[0], nil
}

// Create implements types.Resolver by inserting into the decors collection.
func (p *Provider) Create(ctx context.Context, values types.DecorValues) (int64, error) {
	return p.Insert(ctx, types.CollectionLocator, values)
}

// Modify implements types.Resolver.
func (p *Provider) Modify(ctx context.Context, locator string, values types.DecorValues) (int64, error) {
	return p.Update(ctx, locator, types.Selection{}, values)
}

// Remove implements types.Resolver.
func (p *Provider) Remove(ctx context.Context, locator string) (int64, error) {
	return p.Delete(ctx, locator, types.Selection{})
}

// Subscribe implements types.Resolver. The locator must be recognised.
func (p *Provider) Subscribe(locator string, o types.Observer) (func(), error) {
	m, err := p.match("subscribe", locator)
	if err != nil {
		return nil, err
	}
	return p.observers.Register(m.Locator, o), nil
}

func (p *Provider) match(op, locator string) (router.Match, error) {
	m, err := p.routes.Match(locator)
	if err != nil {
		p.logger.Debug("unrecognized locator", "op", op, "locator", locator)
		return router.Match{}, &types.UnrecognizedResourceError{Op: op, Locator: locator}
	}
	return m, nil
}

// settle notifies m's locator when a mutation touched at least one row.
func (p *Provider) settle(m router.Match, op string, n int64, err error) (int64, error) {
	if err != nil {
		p.logger.Debug(op+" failed", "locator", m.Locator, "error", err)
		return 0, err
	}
	if n > 0 {
		p.observers.Notify(m.Locator)
	}
	return n, nil
}
