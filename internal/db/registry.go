package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

// Registry routes connection requests to the first registered provider
// whose CanHandle accepts them. Registration order is preserved, so later
// registrations act as fallbacks for earlier ones.
//
// Thread-Safety: safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers []pgiamauth.ConnectionProvider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a provider.
func (r *Registry) Register(provider pgiamauth.ConnectionProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, provider)
}

// Providers returns the registered providers in registration order.
func (r *Registry) Providers() []pgiamauth.ConnectionProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]pgiamauth.ConnectionProvider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Lookup returns the first provider that can handle the request.
func (r *Registry) Lookup(driver pgiamauth.Driver, options pgiamauth.ConnectionOptions) (pgiamauth.ConnectionProvider, bool) {
	for _, provider := range r.Providers() {
		if provider.CanHandle(driver, options) {
			return provider, true
		}
	}
	return nil, false
}

// GetConnection opens a connection through the first capable provider.
// The error for an unroutable request names the driver so callers can
// tell a routing gap from a provider failure.
func (r *Registry) GetConnection(ctx context.Context, driver pgiamauth.Driver, options pgiamauth.ConnectionOptions) (pgiamauth.Connection, error) {
	provider, ok := r.Lookup(driver, options)
	if !ok {
		return nil, fmt.Errorf("no registered connection provider can handle driver %q", driver)
	}
	return provider.GetConnection(ctx, driver, options)
}
