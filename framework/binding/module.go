package binding

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Module contributes override rules to a Builder. Modules are applied in
// order, so a later module can replace what an earlier one bound.
type Module interface {
	Process(b *Builder) error
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(b *Builder) error

// Process implements Module.
func (f ModuleFunc) Process(b *Builder) error { return f(b) }

// Load applies modules in order and builds the registry.
func Load(modules ...Module) (*Registry, error) {
	b := NewBuilder()
	for i, m := range modules {
		if m == nil {
			continue
		}
		if err := m.Process(b); err != nil {
			return nil, fmt.Errorf("binding: module %d: %w", i, err)
		}
		if err := b.Err(); err != nil {
			return nil, fmt.Errorf("binding: module %d: %w", i, err)
		}
	}
	return b.Build()
}

// ── YAML rules ────────────────────────────────────────────────────────────────

// rule is one entry of a bindings document:
//
//	bindings:
//	  - class: Greeter          # omit for a global binding
//	    param: logger
//	    service: fileLogger     # or implementation: / value:
type rule struct {
	Class          string    `yaml:"class"`
	Param          string    `yaml:"param"`
	Service        string    `yaml:"service"`
	Implementation string    `yaml:"implementation"`
	Value          yaml.Node `yaml:"value"`
}

type document struct {
	Bindings []rule `yaml:"bindings"`
}

// YAMLModule returns a module that applies the rules in data. Callbacks
// cannot be expressed in YAML; register them from a ModuleFunc.
func YAMLModule(data []byte) Module {
	return ModuleFunc(func(b *Builder) error {
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse bindings: %w", err)
		}
		for i, r := range doc.Bindings {
			binding, err := r.binding()
			if err != nil {
				return fmt.Errorf("rule %d (%s.%s): %w", i, r.Class, r.Param, err)
			}
			b.Bind(r.Class, r.Param, binding)
		}
		return nil
	})
}

// FileModule reads a YAML bindings file from fsys when the module is
// processed. A missing file contributes nothing.
func FileModule(fsys fs.FS, path string) Module {
	return ModuleFunc(func(b *Builder) error {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		return YAMLModule(data).Process(b)
	})
}

func (r rule) binding() (Binding, error) {
	set := 0
	var out Binding
	if r.Service != "" {
		set++
		out = Service(r.Service)
	}
	if r.Implementation != "" {
		set++
		out = Implementation(r.Implementation)
	}
	if r.Value.Kind != 0 {
		set++
		var v any
		if err := r.Value.Decode(&v); err != nil {
			return Binding{}, fmt.Errorf("decode value: %w", err)
		}
		out = Value(v)
	}
	if set != 1 {
		return Binding{}, fmt.Errorf("exactly one of service, implementation or value is required")
	}
	return out, nil
}
