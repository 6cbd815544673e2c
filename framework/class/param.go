package class

import "reflect"

// ── Parameter specs ───────────────────────────────────────────────────────────

// ParamSpec names one constructor parameter and carries the metadata a Go
// function signature cannot express: the name, nullability, a default and an
// optional by-name type reference.
//
//	class.New("Greeter", NewGreeter,
//	    class.Arg("logger"),
//	    class.Arg("greeting", class.Default("Hello")),
//	)
type ParamSpec struct {
	name       string
	nullable   bool
	hasDefault bool
	def        any
	ref        string
}

// ArgOption customises a ParamSpec.
type ArgOption func(*ParamSpec)

// Arg declares a named parameter.
func Arg(name string, opts ...ArgOption) ParamSpec {
	spec := ParamSpec{name: name}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}

// Nullable marks the parameter as accepting nil when nothing else resolves it.
func Nullable() ArgOption {
	return func(s *ParamSpec) { s.nullable = true }
}

// Default declares the value used for an untyped or primitive parameter that
// nothing else resolves.
func Default(v any) ArgOption {
	return func(s *ParamSpec) {
		s.hasDefault = true
		s.def = v
	}
}

// Of narrows an `any` parameter to the product type of another registered
// class. The reference is checked at resolution time; an unknown class name
// is a hard error.
func Of(className string) ArgOption {
	return func(s *ParamSpec) { s.ref = className }
}

// ── Param ─────────────────────────────────────────────────────────────────────

// Param describes one parameter of a Callable.
type Param struct {
	Index      int
	Name       string
	Type       reflect.Type
	Nullable   bool
	HasDefault bool
	Default    any

	// ClassRef is the class named with Of, empty otherwise.
	ClassRef string
}

// Untyped reports whether the parameter is declared as the empty interface
// and is not narrowed by a class reference.
func (p Param) Untyped() bool {
	return p.ClassRef == "" && p.Type.Kind() == reflect.Interface && p.Type.NumMethod() == 0
}

// IsConcrete reports whether t can identify a dependency on its own:
// pointers to structs, structs and non-empty interfaces. Scalars, strings,
// slices, maps, funcs and the empty interface are primitive.
func IsConcrete(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Pointer:
		return t.Elem().Kind() == reflect.Struct
	case reflect.Struct:
		return true
	case reflect.Interface:
		return t.NumMethod() > 0
	}
	return false
}
