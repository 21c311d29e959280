package security

import (
	"sync"

	"tablekeep/internal/domain"
)

// PolicyCache holds the current policy matrix for the process. It is owned
// by whoever constructs it and passed to the PolicyStore explicitly.
//
// Every Invalidate bumps a generation counter. A loader records the
// generation before reading storage and stores its result only if the
// generation is unchanged, so a read that overlapped a save is dropped
// instead of pinning the old matrix.
type PolicyCache struct {
	mu      sync.RWMutex
	gen     uint64
	valid   bool
	matrix  domain.PolicyMatrix
	version int64
}

// NewPolicyCache returns an empty cache.
func NewPolicyCache() *PolicyCache {
	return &PolicyCache{}
}

// Get returns the cached matrix and its version. The matrix is shared and
// must not be mutated.
func (c *PolicyCache) Get() (domain.PolicyMatrix, int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matrix, c.version, c.valid
}

// Generation returns the current invalidation generation.
func (c *PolicyCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// SetIfGeneration stores m when gen is still current and reports whether it did.
func (c *PolicyCache) SetIfGeneration(gen uint64, m domain.PolicyMatrix, version int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.matrix = m
	c.version = version
	c.valid = true
	return true
}

// Invalidate drops the cached matrix.
func (c *PolicyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.valid = false
	c.matrix = nil
	c.version = 0
}
