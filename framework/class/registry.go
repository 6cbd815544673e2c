package class

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry maps class names and product types to classes. It stands in for a
// class loader: a name that is not registered does not exist.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Class
	byType map[reflect.Type]*Class
}

// NewRegistry creates an empty registry, optionally seeded with classes.
func NewRegistry(classes ...*Class) *Registry {
	r := &Registry{
		byName: make(map[string]*Class),
		byType: make(map[reflect.Type]*Class),
	}
	r.MustRegister(classes...)
	return r
}

// Register adds classes. Names are unique; the first class registered for a
// product type is the one ForType returns.
func (r *Registry) Register(classes ...*Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range classes {
		if c == nil {
			return fmt.Errorf("class: cannot register nil class")
		}
		if _, exists := r.byName[c.name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateClass, c.name)
		}
		r.byName[c.name] = c
		if _, taken := r.byType[c.out]; !taken {
			r.byType[c.out] = c
		}
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(classes ...*Class) {
	if err := r.Register(classes...); err != nil {
		panic(err)
	}
}

// Get returns the class registered under name.
func (r *Registry) Get(name string) (*Class, error) {
	if c, ok := r.Lookup(name); ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
}

// Lookup returns the class registered under name, if any.
func (r *Registry) Lookup(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// ForType returns the class whose constructor produces exactly t.
func (r *Registry) ForType(t reflect.Type) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byType[t]
	return c, ok
}

// Names returns all registered class names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
