package services

import (
	"fmt"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
)

// ProviderRegistry maps a kind and provider name to its adapter. It is filled
// once during startup and only read afterwards.
type ProviderRegistry struct {
	providers map[domain.GenerationKind]map[string]outbound.ProviderPort
	defaults  *config.ProviderDefaults
}

func NewProviderRegistry(defaults *config.ProviderDefaults, providers ...outbound.ProviderPort) *ProviderRegistry {
	r := &ProviderRegistry{
		providers: make(map[domain.GenerationKind]map[string]outbound.ProviderPort),
		defaults:  defaults,
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

func (r *ProviderRegistry) Register(provider outbound.ProviderPort) {
	byName, ok := r.providers[provider.Kind()]
	if !ok {
		byName = make(map[string]outbound.ProviderPort)
		r.providers[provider.Kind()] = byName
	}
	byName[provider.Name()] = provider
}

// Resolve returns the requested provider, or the configured default for kind
// when name is empty or unknown.
func (r *ProviderRegistry) Resolve(kind domain.GenerationKind, name string) (outbound.ProviderPort, error) {
	byName := r.providers[kind]
	if p, ok := byName[name]; ok && name != "" {
		return p, nil
	}
	if p, ok := byName[r.defaults.Provider(kind)]; ok {
		return p, nil
	}
	return nil, domain.Internal(fmt.Sprintf("no %s provider is configured", kind), nil)
}

func (r *ProviderRegistry) Names(kind domain.GenerationKind) []string {
	names := make([]string, 0, len(r.providers[kind]))
	for name := range r.providers[kind] {
		names = append(names, name)
	}
	return names
}
