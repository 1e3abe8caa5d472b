package audio

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// EvictFunc is called for every artifact pushed out of the registry by
// capacity or age. It is not called on Close.
type EvictFunc func(Artifact)

// Registry maps audio ids to artifacts. It is safe for concurrent use,
// bounded in size and evicts entries older than its TTL.
type Registry struct {
	cache   *expirable.LRU[string, Artifact]
	closing atomic.Bool
}

// NewRegistry creates a registry holding at most capacity artifacts for at
// most ttl each. A nil onEvict is allowed.
func NewRegistry(capacity int, ttl time.Duration, onEvict EvictFunc) *Registry {
	registry := &Registry{}

	var callback expirable.EvictCallback[string, Artifact]
	if onEvict != nil {
		callback = func(_ string, artifact Artifact) {
			if !registry.closing.Load() {
				onEvict(artifact)
			}
		}
	}

	registry.cache = expirable.NewLRU[string, Artifact](capacity, callback, ttl)

	return registry
}

// Add records an artifact under its id.
func (r *Registry) Add(artifact Artifact) {
	r.cache.Add(artifact.ID, artifact)
}

// Get returns the artifact registered under id.
func (r *Registry) Get(id string) (Artifact, bool) {
	return r.cache.Get(id)
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Close forgets every entry without calling the evict hook, so the
// artifacts themselves outlive the process.
func (r *Registry) Close() {
	r.closing.Store(true)
	r.cache.Purge()
}
