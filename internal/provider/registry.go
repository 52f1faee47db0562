package provider

import (
	"fmt"
	"strings"

	"contentsearch/internal/domain"
)

// Registry resolves providers by name, case-insensitively. It is built
// once at startup and immutable afterwards.
type Registry struct {
	providers map[string]Provider
	ordered   []Provider
}

func NewRegistry(providers ...Provider) *Registry {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[strings.ToLower(p.Name())] = p
	}
	return &Registry{providers: byName, ordered: providers}
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, name)
	}
	return p, nil
}

// All returns every registered provider in registration order.
func (r *Registry) All() []Provider {
	return r.ordered
}
