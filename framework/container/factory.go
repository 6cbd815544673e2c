package container

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/binding"
	"github.com/km-arc/go-container/framework/class"
)

// InjectableFactory builds fresh objects of registered classes, resolving
// each constructor parameter in turn. Nothing it builds is cached; services
// it pulls from the container are.
//
// A parameter is satisfied by the first of:
//  1. an explicit override passed to CreateWith
//  2. (the declared type is checked; a class.Of reference to an unknown
//     class fails here)
//  3. a binding for (class, parameter), else a global binding for parameter
//  4. the declared default, when the type is not concrete
//  5. the container service named like the parameter, when its type fits
//  6. nil, when the parameter is nullable
//  7. a fresh instance of the declared type
//
// Otherwise it fails with a DependencyResolutionError.
type InjectableFactory struct {
	container *Container
	classes   *class.Registry
	bindings  *binding.Registry
	aware     []Capability
	awareSkip map[string]bool
	strict    bool
}

func newInjectableFactory(c *Container) *InjectableFactory {
	skip := make(map[string]bool, len(c.awareSkip))
	for _, name := range c.awareSkip {
		skip[name] = true
	}
	return &InjectableFactory{
		container: c,
		classes:   c.classes,
		bindings:  c.bindings,
		aware:     c.aware,
		awareSkip: skip,
		strict:    c.strict,
	}
}

// Create builds a new instance of className.
//
//	v, err := factory.Create("ImportRunner")
func (f *InjectableFactory) Create(className string) (any, error) {
	return f.top(className, func(r *resolution) (any, error) {
		return f.create(r, className, nil, nil)
	})
}

// CreateWith builds a new instance of className, taking the parameters named
// in with verbatim.
//
//	v, err := factory.CreateWith("Greeter", map[string]any{"greeting": "Hi"})
func (f *InjectableFactory) CreateWith(className string, with map[string]any) (any, error) {
	return f.top(className, func(r *resolution) (any, error) {
		return f.create(r, className, with, nil)
	})
}

// CreateWithBinding builds a new instance of className, consulting reg
// before the container-wide bindings for its own parameters.
func (f *InjectableFactory) CreateWithBinding(className string, reg *binding.Registry) (any, error) {
	return f.top(className, func(r *resolution) (any, error) {
		return f.create(r, className, nil, reg)
	})
}

// Invoke resolves the parameters of cb without a class context and calls it.
func (f *InjectableFactory) Invoke(cb *class.Callable) (any, error) {
	return f.top("callback", func(r *resolution) (any, error) {
		return f.invoke(r, cb)
	})
}

// Make builds a fresh className through the factory of c and asserts its
// type.
//
//	runner, err := container.Make[*ImportRunner](c, "ImportRunner")
func Make[T any](c *Container, className string) (T, error) {
	var zero T
	v, err := c.Factory().Create(className)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: class %s builds %T, not %v", className, v, reflect.TypeOf((*T)(nil)).Elem())
	}
	return typed, nil
}

func (f *InjectableFactory) top(what string, fn func(r *resolution) (any, error)) (any, error) {
	r, owned := f.container.begin()
	if !owned {
		return fn(r)
	}
	defer r.finish()

	v, err := fn(r)
	if err != nil {
		f.container.logger.Warn("object creation failed", zap.String("class", what), zap.Error(err))
		f.container.metrics.failed(err)
		return nil, err
	}
	return v, nil
}

// ── Construction ──────────────────────────────────────────────────────────────

func (f *InjectableFactory) create(r *resolution, className string, with map[string]any, extra *binding.Registry) (any, error) {
	cls, err := f.classes.Get(className)
	if err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}
	return f.build(r, cls, with, extra)
}

func (f *InjectableFactory) build(r *resolution, cls *class.Class, with map[string]any, extra *binding.Registry) (any, error) {
	if err := r.enter(classKey(cls.Name())); err != nil {
		return nil, err
	}
	defer r.leave()

	params := cls.Params()
	args := make([]any, len(params))
	for i, p := range params {
		v, err := f.resolveParam(r, cls.Name(), p, with, extra)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	inst, err := cls.Call(args)
	if err != nil {
		var argErr *class.ArgumentError
		if errors.As(err, &argErr) {
			return nil, &DependencyResolutionError{Class: cls.Name(), Param: argErr.Name, Type: argErr.Want, Cause: err}
		}
		return nil, fmt.Errorf("container: constructing %s: %w", cls.Name(), err)
	}

	if err := f.injectAware(r, cls.Name(), inst, params); err != nil {
		return nil, err
	}
	f.container.metrics.objectCreated(cls.Name())
	return inst, nil
}

func (f *InjectableFactory) invoke(r *resolution, cb *class.Callable) (any, error) {
	if cb == nil {
		return nil, fmt.Errorf("container: nil callback")
	}
	params := cb.Params()
	args := make([]any, len(params))
	for i, p := range params {
		v, err := f.resolveParam(r, "", p, nil, nil)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	v, err := cb.Call(args)
	if err != nil {
		var argErr *class.ArgumentError
		if errors.As(err, &argErr) {
			return nil, &DependencyResolutionError{Param: argErr.Name, Type: argErr.Want, Cause: err}
		}
		return nil, fmt.Errorf("container: callback: %w", err)
	}
	return v, nil
}

// ── Parameters ────────────────────────────────────────────────────────────────

// resolveParam satisfies one parameter of target. target is empty for
// callback parameters.
func (f *InjectableFactory) resolveParam(r *resolution, target string, p class.Param, with map[string]any, extra *binding.Registry) (any, error) {
	if v, ok := with[p.Name]; ok {
		return v, nil
	}

	var (
		typ       reflect.Type
		typeClass *class.Class
	)
	switch {
	case p.ClassRef != "":
		cls, ok := f.classes.Lookup(p.ClassRef)
		if !ok {
			return nil, f.unresolved(target, p, nil, fmt.Errorf("%w: %s", class.ErrClassNotFound, p.ClassRef))
		}
		typ, typeClass = cls.Type(), cls
	case class.IsConcrete(p.Type):
		typ = p.Type
	}

	if b, ok := f.binding(target, p.Name, extra); ok {
		v, err := f.resolveBinding(r, b)
		if err != nil {
			return nil, f.unresolved(target, p, typ, err)
		}
		return v, nil
	}

	if typ == nil {
		if p.HasDefault {
			return p.Default, nil
		}
		return nil, f.unresolved(target, p, nil, nil)
	}

	if !f.strict && f.container.Has(p.Name) {
		// a declared service that cannot say what it builds is misconfigured
		st, err := f.container.GetClass(p.Name)
		if err != nil {
			return nil, f.unresolved(target, p, typ, err)
		}
		if st.AssignableTo(typ) {
			v, err := f.container.get(r, p.Name)
			if err != nil {
				return nil, f.unresolved(target, p, typ, err)
			}
			return v, nil
		}
	}

	if p.Nullable {
		return nil, nil
	}

	v, err := f.fresh(r, typ, typeClass)
	if err != nil {
		return nil, f.unresolved(target, p, typ, err)
	}
	return v, nil
}

func (f *InjectableFactory) binding(target, param string, extra *binding.Registry) (binding.Binding, bool) {
	for _, reg := range []*binding.Registry{extra, f.bindings} {
		if reg.Has(target, param) {
			if b, err := reg.Get(target, param); err == nil {
				return b, true
			}
		}
	}
	return binding.Binding{}, false
}

func (f *InjectableFactory) resolveBinding(r *resolution, b binding.Binding) (any, error) {
	switch b.Kind() {
	case binding.KindService:
		return f.container.get(r, b.ServiceName())
	case binding.KindImplementation:
		return f.create(r, b.ClassName(), nil, nil)
	case binding.KindValue:
		return b.Value(), nil
	case binding.KindCallback:
		return f.invoke(r, b.Callable())
	}
	return nil, fmt.Errorf("container: unknown binding %v", b)
}

// fresh builds a transient instance of typ: from its class when one is
// registered, else as a zero struct.
func (f *InjectableFactory) fresh(r *resolution, typ reflect.Type, cls *class.Class) (any, error) {
	if cls == nil {
		cls, _ = f.classes.ForType(typ)
	}
	if cls != nil {
		return f.build(r, cls, nil, nil)
	}

	var inst any
	switch {
	case typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.Struct:
		inst = reflect.New(typ.Elem()).Interface()
	case typ.Kind() == reflect.Struct:
		return reflect.Zero(typ).Interface(), nil
	default:
		return nil, fmt.Errorf("no class registered for %v", typ)
	}
	if err := f.injectAware(r, typ.String(), inst, nil); err != nil {
		return nil, err
	}
	f.container.metrics.objectCreated(typ.String())
	return inst, nil
}

func (f *InjectableFactory) unresolved(target string, p class.Param, typ reflect.Type, cause error) error {
	if typ == nil && !p.Untyped() {
		typ = p.Type
	}
	return &DependencyResolutionError{Class: target, Param: p.Name, Type: typ, Cause: cause}
}
