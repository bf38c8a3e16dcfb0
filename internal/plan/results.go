package plan

import (
	"fmt"
	"sync"
)

// Results holds node outputs keyed by node ID. It is safe for concurrent use.
type Results struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewResults returns an empty result set.
func NewResults() *Results {
	return &Results{values: make(map[string]any)}
}

func (r *Results) set(id string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[id] = v
}

// Clone returns an independent copy of r.
func (r *Results) Clone() *Results {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := &Results{values: make(map[string]any, len(r.values))}
	for id, v := range r.values {
		c.values[id] = v
	}
	return c
}

// Lookup returns the result of a node.
func (r *Results) Lookup(id string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[id]
	return v, ok
}

// Len returns the number of stored results.
func (r *Results) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.values)
}

// Get returns the result of node id as a T.
func Get[T any](r *Results, id string) (T, error) {
	var zero T
	v, ok := r.Lookup(id)
	if !ok {
		return zero, fmt.Errorf("no result for node %s", id)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("result of node %s is %T, not %T", id, v, zero)
	}
	return typed, nil
}
