package class

import (
	"fmt"
	"reflect"
	"slices"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Callable is a function whose parameters carry names, so they can be
// resolved one by one the same way constructor parameters are.
//
// Supported signatures:
//   - func(A, B, ...) T
//   - func(A, B, ...) (T, error)
type Callable struct {
	fn           reflect.Value
	params       []Param
	out          reflect.Type
	returnsError bool
}

// Func builds a Callable from fn. One ParamSpec is required per parameter.
//
//	cb := class.MustFunc(func(cfg *config.Config) *Mailer {
//	    return NewMailer(cfg.Mail)
//	}, class.Arg("config"))
func Func(fn any, args ...ParamSpec) (*Callable, error) {
	if fn == nil {
		return nil, fmt.Errorf("class: callable cannot be nil")
	}

	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("class: callable must be a function, got %v", t.Kind())
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("class: variadic functions are not supported (%v)", t)
	}

	returnsError := false
	switch t.NumOut() {
	case 1:
	case 2:
		if !t.Out(1).Implements(errorType) {
			return nil, fmt.Errorf("class: second return value must be error, got %v", t.Out(1))
		}
		returnsError = true
	default:
		return nil, fmt.Errorf("class: function must return T or (T, error), got %d values", t.NumOut())
	}

	if t.NumIn() != len(args) {
		return nil, fmt.Errorf("class: %v takes %d parameters but %d were named", t, t.NumIn(), len(args))
	}

	params := make([]Param, len(args))
	seen := make(map[string]bool, len(args))
	for i, spec := range args {
		if spec.name == "" {
			return nil, fmt.Errorf("class: parameter %d of %v has no name", i, t)
		}
		if seen[spec.name] {
			return nil, fmt.Errorf("class: parameter name %q used twice in %v", spec.name, t)
		}
		seen[spec.name] = true

		p := Param{
			Index:      i,
			Name:       spec.name,
			Type:       t.In(i),
			Nullable:   spec.nullable,
			HasDefault: spec.hasDefault,
			Default:    spec.def,
			ClassRef:   spec.ref,
		}
		if p.HasDefault {
			if _, ok := coerce(p.Default, p.Type); !ok {
				return nil, fmt.Errorf("class: default %v (%T) does not fit parameter %q of type %v",
					p.Default, p.Default, p.Name, p.Type)
			}
		}
		if p.Nullable && !nillable(p.Type) {
			return nil, fmt.Errorf("class: parameter %q of type %v cannot be nil", p.Name, p.Type)
		}
		params[i] = p
	}

	return &Callable{
		fn:           v,
		params:       params,
		out:          t.Out(0),
		returnsError: returnsError,
	}, nil
}

// MustFunc is like Func but panics on an invalid signature. Meant for
// package-level registration.
func MustFunc(fn any, args ...ParamSpec) *Callable {
	c, err := Func(fn, args...)
	if err != nil {
		panic(err)
	}
	return c
}

// Params returns a copy of the parameter descriptors in declaration order.
func (c *Callable) Params() []Param { return slices.Clone(c.params) }

// Param returns the parameter with the given name.
func (c *Callable) Param(name string) (Param, bool) {
	for _, p := range c.params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Out returns the declared result type.
func (c *Callable) Out() reflect.Type { return c.out }

// Call invokes the function with one argument per parameter. Arguments must
// be assignable to the parameter type; numeric values are converted between
// numeric kinds when the value does not change, and nil becomes the zero
// value of nillable types.
func (c *Callable) Call(args []any) (any, error) {
	if len(args) != len(c.params) {
		return nil, fmt.Errorf("class: %v called with %d arguments, want %d", c.fn.Type(), len(args), len(c.params))
	}

	in := make([]reflect.Value, len(args))
	for i, p := range c.params {
		v, ok := coerce(args[i], p.Type)
		if !ok {
			return nil, &ArgumentError{Index: i, Name: p.Name, Want: p.Type, Got: reflect.TypeOf(args[i])}
		}
		in[i] = v
	}

	out := c.fn.Call(in)
	if c.returnsError && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func coerce(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		if nillable(t) {
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}
	if numeric(rv.Kind()) && numeric(t.Kind()) {
		return convertNumber(rv, t)
	}
	return reflect.Value{}, false
}

// convertNumber converts rv to the numeric type t when the value survives
// unchanged. Integer targets must round-trip, so overflow, sign changes and
// fractions are rejected. Float targets only reject overflow.
func convertNumber(rv reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if isFloat(t.Kind()) {
		var f float64
		switch {
		case isFloat(rv.Kind()):
			f = rv.Float()
		case rv.CanInt():
			f = float64(rv.Int())
		default:
			f = float64(rv.Uint())
		}
		if reflect.Zero(t).OverflowFloat(f) {
			return reflect.Value{}, false
		}
		return rv.Convert(t), true
	}

	out := rv.Convert(t)
	if negative(out) != negative(rv) || out.Convert(rv.Type()).Interface() != rv.Interface() {
		return reflect.Value{}, false
	}
	return out, true
}

func negative(v reflect.Value) bool {
	switch {
	case v.CanInt():
		return v.Int() < 0
	case isFloat(v.Kind()):
		return v.Float() < 0
	}
	return false
}

func isFloat(k reflect.Kind) bool { return k == reflect.Float32 || k == reflect.Float64 }

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
