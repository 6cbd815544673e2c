package binding

import (
	"errors"
	"fmt"
)

// ErrBindingNotFound is returned by Registry.Get when neither a class-specific
// nor a global binding exists. Callers check Has first.
var ErrBindingNotFound = errors.New("binding not found")

type key struct {
	class string
	param string
}

// Registry is the immutable set of bindings built at boot. A nil *Registry is
// valid and empty.
type Registry struct {
	bindings map[key]Binding
}

// Has reports whether param of className is bound, either for that class or
// globally. An empty className only consults global bindings.
func (r *Registry) Has(className, param string) bool {
	_, ok := r.lookup(className, param)
	return ok
}

// Get returns the most specific binding for (className, param): the class
// binding if there is one, else the global binding.
func (r *Registry) Get(className, param string) (Binding, error) {
	if b, ok := r.lookup(className, param); ok {
		return b, nil
	}
	if className == "" {
		return Binding{}, fmt.Errorf("%w: %s", ErrBindingNotFound, param)
	}
	return Binding{}, fmt.Errorf("%w: %s.%s", ErrBindingNotFound, className, param)
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.bindings)
}

func (r *Registry) lookup(className, param string) (Binding, bool) {
	if r == nil {
		return Binding{}, false
	}
	if className != "" {
		if b, ok := r.bindings[key{className, param}]; ok {
			return b, true
		}
	}
	b, ok := r.bindings[key{"", param}]
	return b, ok
}
