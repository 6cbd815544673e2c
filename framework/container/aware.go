package container

import (
	"fmt"
	"reflect"

	"github.com/km-arc/go-container/framework/class"
)

// Capability pairs a setter interface with the service it receives. After
// the factory builds an object that implements the interface, it fetches the
// service and calls the setter.
type Capability struct {
	service string
	iface   reflect.Type
	accepts func(target any) bool
	set     func(target, service any) error
}

// Aware declares a capability: objects implementing A receive the service
// named service through set.
//
//	type LoggerAware interface{ SetLogger(*zap.Logger) }
//
//	container.Aware("log", LoggerAware.SetLogger)
func Aware[A any, S any](service string, set func(target A, svc S)) Capability {
	return Capability{
		service: service,
		iface:   reflect.TypeOf((*A)(nil)).Elem(),
		accepts: func(target any) bool {
			_, ok := target.(A)
			return ok
		},
		set: func(target, svc any) error {
			s, ok := svc.(S)
			if !ok {
				return fmt.Errorf("service %q is %T, want %v", service, svc, reflect.TypeOf((*S)(nil)).Elem())
			}
			set(target.(A), s)
			return nil
		},
	}
}

// Service returns the name of the injected service.
func (c Capability) Service() string { return c.service }

// Interface returns the setter interface.
func (c Capability) Interface() reflect.Type { return c.iface }

// injectAware runs setter injection on inst. Skip-listed names and names the
// constructor already took are left alone.
func (f *InjectableFactory) injectAware(r *resolution, className string, inst any, params []class.Param) error {
	if inst == nil {
		return nil
	}
	for _, capability := range f.aware {
		if f.awareSkip[capability.service] || !capability.accepts(inst) || takes(params, capability.service) {
			continue
		}
		svc, err := f.container.get(r, capability.service)
		if err != nil {
			return &DependencyResolutionError{Class: className, Param: capability.service, Type: capability.iface, Cause: err}
		}
		if err := capability.set(inst, svc); err != nil {
			return &DependencyResolutionError{Class: className, Param: capability.service, Type: capability.iface, Cause: err}
		}
	}
	return nil
}

func takes(params []class.Param, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}
