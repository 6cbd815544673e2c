package binding

import (
	"fmt"
	"maps"

	"github.com/km-arc/go-container/framework/class"
)

// Builder collects bindings before they are frozen into a Registry.
// Later calls for the same (class, param) replace earlier ones.
type Builder struct {
	bindings map[key]Binding
	err      error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{bindings: make(map[key]Binding)}
}

// Bind binds param of className. An empty className makes the binding global.
func (b *Builder) Bind(className, param string, binding Binding) *Builder {
	if b.err != nil {
		return b
	}
	if param == "" {
		b.err = fmt.Errorf("binding: empty parameter name for class %q", className)
		return b
	}
	if err := binding.validate(); err != nil {
		b.err = fmt.Errorf("%w (%s.%s)", err, className, param)
		return b
	}
	b.bindings[key{className, param}] = binding
	return b
}

// When starts a contextual binding chain for className.
//
//	b.When("Greeter").Needs("logger").GiveService("fileLogger")
func (b *Builder) When(className string) *ContextualBuilder {
	return &ContextualBuilder{builder: b, concrete: className}
}

// Global starts a binding chain that applies to every class.
//
//	b.Global().Needs("timezone").GiveValue("UTC")
func (b *Builder) Global() *ContextualBuilder {
	return &ContextualBuilder{builder: b}
}

// Err returns the first error recorded by Bind.
func (b *Builder) Err() error { return b.err }

// Build freezes the collected bindings.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Registry{bindings: maps.Clone(b.bindings)}, nil
}

// ── Contextual chain ──────────────────────────────────────────────────────────

// ContextualBuilder implements the fluent When/Needs/Give API.
type ContextualBuilder struct {
	builder  *Builder
	concrete string
	needs    string
}

// Needs names the parameter being bound. It returns a new chain so one When
// can be reused for several parameters.
func (c *ContextualBuilder) Needs(param string) *ContextualBuilder {
	next := *c
	next.needs = param
	return &next
}

// Give binds the parameter to binding.
func (c *ContextualBuilder) Give(binding Binding) *Builder {
	return c.builder.Bind(c.concrete, c.needs, binding)
}

// GiveService binds the parameter to a container service.
func (c *ContextualBuilder) GiveService(name string) *Builder { return c.Give(Service(name)) }

// GiveImplementation binds the parameter to a fresh instance of className.
func (c *ContextualBuilder) GiveImplementation(className string) *Builder {
	return c.Give(Implementation(className))
}

// GiveValue binds the parameter to a literal.
//
//	b.When("PhotoController").Needs("storagePath").GiveValue("/tmp/photos")
func (c *ContextualBuilder) GiveValue(v any) *Builder { return c.Give(Value(v)) }

// GiveCallback binds the parameter to the result of cb.
func (c *ContextualBuilder) GiveCallback(cb *class.Callable) *Builder { return c.Give(Callback(cb)) }
