package llm

import (
	"context"
	"log"
	"sort"
	"sync"
)

// RegistryConfig carries the per-provider defaults and static fallback
// lists. These are injected at construction time so tests can supply
// deterministic alternatives.
type RegistryConfig struct {
	// DefaultModel is the configured default per provider. If the id is
	// present in the discovered list it is moved to the front; otherwise
	// the vendor's first-listed model becomes the default.
	DefaultModel map[ProviderID]string

	// StaticModels is the known-good fallback list per provider, used
	// in priority order when discovery fails or returns nothing usable.
	StaticModels map[ProviderID][]string
}

// Registry resolves the ordered candidate model list per provider.
// Discovery results are cached for the registry's lifetime; refreshes
// are serialized behind the mutex so concurrent requests never trigger
// duplicate discovery calls for the same provider.
type Registry struct {
	mu        sync.Mutex
	cfg       RegistryConfig
	providers map[ProviderID]Provider
	cache     map[ProviderID][]ModelDescriptor
}

// NewRegistry creates a registry over the given provider adapters.
func NewRegistry(cfg RegistryConfig, providers ...Provider) *Registry {
	m := make(map[ProviderID]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Registry{
		cfg:       cfg,
		providers: m,
		cache:     make(map[ProviderID][]ModelDescriptor),
	}
}

// Provider returns the adapter for a provider id.
func (r *Registry) Provider(id ProviderID) (Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

// Providers lists the configured provider ids in stable order.
func (r *Registry) Providers() []ProviderID {
	ids := make([]ProviderID, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Models returns the ordered candidate list for a provider: the default
// model first, then the remaining discovered models in vendor order,
// duplicates removed. When discovery fails or yields nothing the static
// fallback list is substituted. The result is cached until Invalidate.
func (r *Registry) Models(ctx context.Context, id ProviderID) []ModelDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[id]; ok {
		return cached
	}

	models := r.discover(ctx, id)
	r.cache[id] = models
	return models
}

// Default returns the provider's default model descriptor.
func (r *Registry) Default(ctx context.Context, id ProviderID) (ModelDescriptor, bool) {
	models := r.Models(ctx, id)
	if len(models) == 0 {
		return ModelDescriptor{}, false
	}
	return models[0], true
}

// Invalidate drops the cached ordering for a provider, forcing the next
// Models call to re-discover.
func (r *Registry) Invalidate(id ProviderID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, id)
}

// discover queries the provider and orders the result. Caller holds the lock.
func (r *Registry) discover(ctx context.Context, id ProviderID) []ModelDescriptor {
	p, ok := r.providers[id]
	if !ok {
		return nil
	}

	discovered, err := p.ListModels(ctx)
	if err != nil {
		log.Printf("[registry] discovery failed for %s: %v, using static list", id, err)
	}
	if len(discovered) == 0 {
		return r.staticModels(id)
	}

	ordered := orderModels(discovered, r.cfg.DefaultModel[id])
	log.Printf("[registry] discovered %d models for %s (default %s)", len(ordered), id, ordered[0].ID)
	return ordered
}

// staticModels builds descriptors from the configured known-good list.
func (r *Registry) staticModels(id ProviderID) []ModelDescriptor {
	ids := r.cfg.StaticModels[id]
	models := make([]ModelDescriptor, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for i, modelID := range ids {
		if modelID == "" || seen[modelID] {
			continue
		}
		seen[modelID] = true
		models = append(models, ModelDescriptor{
			ID:        modelID,
			Provider:  id,
			IsDefault: i == 0,
		})
	}
	return models
}

// orderModels puts the configured default first when present (else the
// vendor's first-listed model), keeps the rest in discovery order, and
// removes duplicates.
func orderModels(discovered []ModelDescriptor, configuredDefault string) []ModelDescriptor {
	defaultIdx := 0
	if configuredDefault != "" {
		for i, m := range discovered {
			if m.ID == configuredDefault {
				defaultIdx = i
				break
			}
		}
	}

	ordered := make([]ModelDescriptor, 0, len(discovered))
	seen := make(map[string]bool, len(discovered))

	head := discovered[defaultIdx]
	head.IsDefault = true
	ordered = append(ordered, head)
	seen[head.ID] = true

	for _, m := range discovered {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		ordered = append(ordered, m)
	}
	return ordered
}
