// Package registry tracks named engine instances for a host.
//
// A Registry is an explicit handle: hosts create one, pass it where needed and
// call Reset to return every tracked instance to its starting point (for
// example on logout).
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Resetter is implemented by instances that hold state Reset should discard.
type Resetter interface {
	Reset()
}

// Registry manages tracked instances.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]any
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		instances: make(map[string]any),
	}
}

// Track adds an instance under name.
// If an instance with the same name exists, it is overwritten.
func (r *Registry) Track(name string, instance any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[name] = instance
}

// Untrack removes name. Unknown names are ignored.
func (r *Registry) Untrack(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, name)
}

// Lookup returns the instance tracked under name.
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.instances[name]
	return v, ok
}

// Names returns tracked names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of tracked instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// Reset calls Reset on every tracked Resetter, then forgets all instances.
func (r *Registry) Reset() {
	r.mu.Lock()
	tracked := r.instances
	r.instances = make(map[string]any)
	r.mu.Unlock()

	// Outside the lock so a Resetter may use the registry.
	for _, v := range tracked {
		if rs, ok := v.(Resetter); ok {
			rs.Reset()
		}
	}
}

// Get returns the instance tracked under name as T.
// Returns an error if the name is unknown or holds another type.
func Get[T any](r *Registry, name string) (T, error) {
	var zero T
	v, ok := r.Lookup(name)
	if !ok {
		return zero, fmt.Errorf("instance not found: %s", name)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("instance %s is %T, not %T", name, v, zero)
	}
	return typed, nil
}
