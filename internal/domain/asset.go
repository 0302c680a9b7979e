package domain

import (
	"sort"
	"sync"
)

// AssetRegistry tracks the whitelist of tradable assets in a
// thread-safe manner. Orders may only reference whitelisted assets.
type AssetRegistry struct {
	mu     sync.RWMutex
	assets map[string]bool
}

// NewAssetRegistry creates an empty AssetRegistry.
func NewAssetRegistry() *AssetRegistry {
	return &AssetRegistry{
		assets: make(map[string]bool),
	}
}

// Allow adds an asset to the whitelist. Returns false if the asset was
// already whitelisted. Safe for concurrent use.
func (r *AssetRegistry) Allow(asset string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.assets[asset] {
		return false
	}
	r.assets[asset] = true
	return true
}

// Remove deletes an asset from the whitelist. Returns false if the
// asset was not whitelisted. Existing orders referencing the asset are
// unaffected; only new order creation consults the whitelist.
func (r *AssetRegistry) Remove(asset string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.assets[asset] {
		return false
	}
	delete(r.assets, asset)
	return true
}

// Allowed returns true if the asset is whitelisted. Safe for concurrent use.
func (r *AssetRegistry) Allowed(asset string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.assets[asset]
}

// List returns all whitelisted assets in lexical order.
func (r *AssetRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.assets))
	for a := range r.assets {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
