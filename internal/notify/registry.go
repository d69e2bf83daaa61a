// Package notify implements the in-process change-notification registry.
// Observers register on a locator and are told when a mutation touched that
// locator, one of its descendants, or one of its ancestors. Delivery is
// synchronous and best-effort: nothing is queued or retried.
package notify

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/decors/pkg/types"
)

var _ types.Subscriber = (*Registry)(nil)

// Registry maps locators to observers. The zero value is not usable; call
// NewRegistry.
type Registry struct {
	mu        sync.RWMutex
	observers map[string]map[string]types.Observer // locator -> subscription id -> observer
	logger    *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		observers: make(map[string]map[string]types.Observer),
		logger:    slog.Default(),
	}
}

// WithLogger sets the logger used for subscription events and returns r.
func (r *Registry) WithLogger(l *slog.Logger) *Registry {
	r.mu.Lock()
	r.logger = l
	r.mu.Unlock()
	return r
}

// Register adds o for locator. The returned cancel function removes the
// subscription; calling it more than once is harmless.
func (r *Registry) Register(locator string, o types.Observer) func() {
	key := normalize(locator)
	id := newSubscriptionID()

	r.mu.Lock()
	set, ok := r.observers[key]
	if !ok {
		set = make(map[string]types.Observer)
		r.observers[key] = set
	}
	set[id] = o
	logger := r.logger
	r.mu.Unlock()

	logger.Debug("observer registered", "locator", key, "subscription", id)

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if set, ok := r.observers[key]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(r.observers, key)
				}
			}
			r.logger.Debug("observer cancelled", "locator", key, "subscription", id)
		})
	}
}

// Notify tells every observer related to locator that it changed. Each
// observer is called at most once, in the caller's goroutine, after the
// registry lock is released.
func (r *Registry) Notify(locator string) {
	key := normalize(locator)

	r.mu.RLock()
	var targets []types.Observer
	for registered, set := range r.observers {
		if !related(registered, key) {
			continue
		}
		for _, o := range set {
			targets = append(targets, o)
		}
	}
	logger := r.logger
	r.mu.RUnlock()

	logger.Debug("change notified", "locator", key, "observers", len(targets))
	for _, o := range targets {
		o.OnChange(key)
	}
}

// Len returns the number of live subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, set := range r.observers {
		n += len(set)
	}
	return n
}

// related reports whether a and b are the same locator or one lies beneath
// the other.
func related(a, b string) bool {
	if a == b {
		return true
	}
	return strings.HasPrefix(b, a+"/") || strings.HasPrefix(a, b+"/")
}

func normalize(locator string) string {
	return strings.TrimSuffix(strings.TrimSpace(locator), "/")
}

// newSubscriptionID generates a UUID v7 for a subscription.
func newSubscriptionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
