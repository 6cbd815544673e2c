package class

import (
	"fmt"
	"reflect"
)

// Class is a named constructor. The container and the injectable factory
// refer to classes by name; Type is what the constructor produces.
type Class struct {
	*Callable
	name string
}

// New describes ctor as a class named name. It does not register it.
//
//	greeter := class.MustNew("Greeter", NewGreeter, class.Arg("logger"))
func New(name string, ctor any, args ...ParamSpec) (*Class, error) {
	if name == "" {
		return nil, fmt.Errorf("class: name cannot be empty")
	}
	c, err := Func(ctor, args...)
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", name, err)
	}
	return &Class{Callable: c, name: name}, nil
}

// MustNew is like New but panics on error.
func MustNew(name string, ctor any, args ...ParamSpec) *Class {
	c, err := New(name, ctor, args...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Type returns the product type of the constructor.
func (c *Class) Type() reflect.Type { return c.out }

func (c *Class) String() string { return c.name }

// ── Producers ─────────────────────────────────────────────────────────────────

// ProducerType returns the result type of the zero-argument method named
// method on t. The method must return T or (T, error).
func ProducerType(t reflect.Type, method string) (reflect.Type, error) {
	m, ok := t.MethodByName(method)
	if !ok {
		return nil, fmt.Errorf("class: %v has no method %s", t, method)
	}
	mt := m.Type
	in := mt.NumIn()
	if t.Kind() != reflect.Interface {
		in-- // receiver
	}
	if in != 0 {
		return nil, fmt.Errorf("class: %v.%s must take no arguments", t, method)
	}
	switch mt.NumOut() {
	case 1:
	case 2:
		if !mt.Out(1).Implements(errorType) {
			return nil, fmt.Errorf("class: %v.%s must return (T, error)", t, method)
		}
	default:
		return nil, fmt.Errorf("class: %v.%s must return T or (T, error)", t, method)
	}
	return mt.Out(0), nil
}

// CallProducer calls the zero-argument method named method on instance.
func CallProducer(instance any, method string) (any, error) {
	if instance == nil {
		return nil, fmt.Errorf("class: cannot call %s on nil", method)
	}
	if _, err := ProducerType(reflect.TypeOf(instance), method); err != nil {
		return nil, err
	}
	out := reflect.ValueOf(instance).MethodByName(method).Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}
