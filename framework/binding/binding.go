package binding

import (
	"fmt"

	"github.com/km-arc/go-container/framework/class"
)

// Kind tags what a Binding resolves to.
type Kind int

const (
	// KindService resolves to a named container service.
	KindService Kind = iota + 1
	// KindImplementation resolves to a fresh instance of a class.
	KindImplementation
	// KindValue resolves to a literal value.
	KindValue
	// KindCallback resolves to the result of a callable whose own parameters
	// are resolved by the injectable factory.
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindService:
		return "service"
	case KindImplementation:
		return "implementation"
	case KindValue:
		return "value"
	case KindCallback:
		return "callback"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Binding tells the injectable factory how to satisfy one parameter.
// The zero Binding is invalid.
type Binding struct {
	kind  Kind
	value any
}

// Service binds a parameter to the container service name.
func Service(name string) Binding { return Binding{kind: KindService, value: name} }

// Implementation binds a parameter to a fresh instance of className.
func Implementation(className string) Binding {
	return Binding{kind: KindImplementation, value: className}
}

// Value binds a parameter to v, passed through unchanged.
func Value(v any) Binding { return Binding{kind: KindValue, value: v} }

// Callback binds a parameter to the result of cb.
func Callback(cb *class.Callable) Binding { return Binding{kind: KindCallback, value: cb} }

// Kind returns the binding kind.
func (b Binding) Kind() Kind { return b.kind }

// IsZero reports whether b is the zero Binding.
func (b Binding) IsZero() bool { return b.kind == 0 }

// ServiceName returns the service name of a KindService binding.
func (b Binding) ServiceName() string {
	s, _ := b.value.(string)
	if b.kind != KindService {
		return ""
	}
	return s
}

// ClassName returns the class name of a KindImplementation binding.
func (b Binding) ClassName() string {
	s, _ := b.value.(string)
	if b.kind != KindImplementation {
		return ""
	}
	return s
}

// Value returns the literal of a KindValue binding.
func (b Binding) Value() any {
	if b.kind != KindValue {
		return nil
	}
	return b.value
}

// Callable returns the callable of a KindCallback binding.
func (b Binding) Callable() *class.Callable {
	cb, _ := b.value.(*class.Callable)
	if b.kind != KindCallback {
		return nil
	}
	return cb
}

func (b Binding) String() string {
	switch b.kind {
	case KindService, KindImplementation:
		return fmt.Sprintf("%s(%s)", b.kind, b.value)
	case KindValue:
		return fmt.Sprintf("value(%v)", b.value)
	case KindCallback:
		return "callback"
	}
	return "binding(none)"
}

func (b Binding) validate() error {
	switch b.kind {
	case KindService, KindImplementation:
		if s, _ := b.value.(string); s == "" {
			return fmt.Errorf("binding: %s binding needs a name", b.kind)
		}
	case KindValue:
	case KindCallback:
		if cb, _ := b.value.(*class.Callable); cb == nil {
			return fmt.Errorf("binding: callback binding needs a callable")
		}
	default:
		return fmt.Errorf("binding: empty binding")
	}
	return nil
}
