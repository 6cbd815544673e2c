package container

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/binding"
)

// Option configures a Container at construction.
type Option func(c *Container) error

// WithConfiguration sets the service declarations (class names, dependency
// lists, loader classes, settable flags).
func WithConfiguration(cfg Configuration) Option {
	return func(c *Container) error {
		if cfg == nil {
			return fmt.Errorf("container: configuration cannot be nil")
		}
		c.config = cfg
		return nil
	}
}

// WithBindings hands the binding registry to the injectable factory.
func WithBindings(reg *binding.Registry) Option {
	return func(c *Container) error {
		c.bindings = reg
		return nil
	}
}

// WithLoader registers a loader override for name. It takes precedence over
// every other way of building the service.
func WithLoader(name string, l Loader) Option {
	return func(c *Container) error {
		if l.fn == nil {
			return fmt.Errorf("container: loader for %q is nil", name)
		}
		c.loaders[name] = l
		return nil
	}
}

// WithLoaderClass registers a loader class for name. The class is built by
// the injectable factory and its Load method produces the service.
func WithLoaderClass(name, className string) Option {
	return func(c *Container) error {
		c.loaderClasses[name] = className
		return nil
	}
}

// WithInstance seeds an already-built service.
func WithInstance(name string, instance any) Option {
	return func(c *Container) error {
		c.instances[name] = instance
		return nil
	}
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithAware registers capabilities injected through setters after
// construction.
func WithAware(caps ...Capability) Option {
	return func(c *Container) error {
		c.aware = append(c.aware, caps...)
		return nil
	}
}

// WithAwareSkip excludes service names from setter injection.
func WithAwareSkip(names ...string) Option {
	return func(c *Container) error {
		c.awareSkip = append(c.awareSkip, names...)
		return nil
	}
}

// WithStrictAutowire stops the factory from wiring a parameter to the
// service of the same name unless a binding says so.
func WithStrictAutowire() Option {
	return func(c *Container) error {
		c.strict = true
		return nil
	}
}

// WithMetrics registers resolution counters on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Container) error {
		m, err := newMetrics(reg)
		if err != nil {
			return err
		}
		c.metrics = m
		return nil
	}
}
