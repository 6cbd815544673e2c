package container

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/km-arc/go-container/framework/binding"
	"github.com/km-arc/go-container/framework/class"
)

// loadMethod is the production method of a loader class.
const loadMethod = "Load"

// ── Container ─────────────────────────────────────────────────────────────────

// Container is a registry of named, lazily built singletons.
//
// A name is resolved on first Get, in this order:
//  1. a loader override registered with WithLoader
//  2. a loader class (WithLoaderClass, then the configuration)
//  3. the class the configuration declares, built positionally from its
//     dependency list or, without one, by the injectable factory
//
// The result is cached under the name for the lifetime of the container.
//
// Constructors, loaders and setters that receive the container while a
// resolution is running get a view bound to that resolution, so a lookup
// through it that comes back to a service under construction fails with a
// CyclicDependencyError. Once the resolution returns, the view behaves like
// the container. A bound view must not be shared with other goroutines
// before then.
type Container struct {
	*core
	res *resolution
}

// core is the state shared by a container and its bound views.
type core struct {
	id      string
	classes *class.Registry
	config  Configuration
	factory *InjectableFactory
	logger  *zap.Logger
	metrics *metrics

	mu             sync.RWMutex
	instances      map[string]any
	classCache     map[string]reflect.Type
	definitions    map[string]definition
	loaders        map[string]Loader
	loaderClasses  map[string]string
	afterResolving []func(name string, instance any)

	// one construction per name under concurrent first access
	flight singleflight.Group

	// handed to the factory once options are applied
	bindings  *binding.Registry
	aware     []Capability
	awareSkip []string
	strict    bool
}

// New creates a container over classes. The container registers itself as
// "container" and its factory as "injectableFactory".
func New(classes *class.Registry, opts ...Option) (*Container, error) {
	if classes == nil {
		classes = class.NewRegistry()
	}
	c := &Container{core: &core{
		id:            uuid.NewString(),
		classes:       classes,
		config:        Definitions{},
		logger:        zap.NewNop(),
		instances:     make(map[string]any),
		classCache:    make(map[string]reflect.Type),
		definitions:   make(map[string]definition),
		loaders:       make(map[string]Loader),
		loaderClasses: make(map[string]string),
	}}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.logger = c.logger.With(zap.String("container", c.id))
	c.factory = newInjectableFactory(c)
	c.instances[selfService] = c
	c.instances[factoryService] = c.factory
	return c, nil
}

// Names the container registers itself and its factory under.
const (
	selfService    = "container"
	factoryService = "injectableFactory"
)

// bind returns a view of c that joins r.
func (c *Container) bind(r *resolution) *Container {
	return &Container{core: c.core, res: r}
}

// begin returns the resolution a call on c runs in: the one c is bound to
// while it is still running, else a new one the caller owns and must finish.
func (c *Container) begin() (r *resolution, owned bool) {
	if c.res.active() {
		return c.res, false
	}
	return newResolution(), true
}

// ID identifies the container in logs.
func (c *Container) ID() string { return c.id }

// Factory returns the injectable factory owned by the container. On a bound
// view the factory joins the view's resolution.
func (c *Container) Factory() *InjectableFactory {
	if c.res == nil {
		return c.factory
	}
	f := *c.factory
	f.container = c
	return &f
}

// Classes returns the class registry the container builds from.
func (c *Container) Classes() *class.Registry { return c.classes }

// ── Resolution ────────────────────────────────────────────────────────────────

// Get returns the service registered under name, building and caching it on
// first access.
//
//	mailer, err := c.Get("mailer")
func (c *Container) Get(name string) (any, error) {
	r, owned := c.begin()
	if owned {
		defer r.finish()
	}
	return c.get(r, name)
}

func (c *Container) get(r *resolution, name string) (any, error) {
	if r.depth() > 0 {
		switch name {
		case selfService:
			return c.bind(r), nil
		case factoryService:
			return c.bind(r).Factory(), nil
		}
	}
	if inst, ok := c.cached(name); ok {
		return inst, nil
	}
	if err := r.enter(serviceKey(name)); err != nil {
		return nil, err
	}
	top := r.depth() == 1
	defer r.leave()

	v, err, _ := c.flight.Do(name, func() (any, error) {
		if inst, ok := c.cached(name); ok {
			return inst, nil
		}
		start := time.Now()
		inst, def, err := c.load(r, name)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if set, ok := c.instances[name]; ok {
			c.mu.Unlock()
			return set, nil
		}
		c.instances[name] = inst
		c.mu.Unlock()

		c.logger.Debug("service resolved",
			zap.String("service", name),
			zap.Stringer("strategy", def.kind),
			zap.Duration("elapsed", time.Since(start)),
		)
		c.metrics.serviceResolved(name)
		c.fireAfterResolving(name, inst)
		return inst, nil
	})
	if err != nil {
		if top {
			c.logger.Warn("service resolution failed", zap.String("service", name), zap.Error(err))
			c.metrics.failed(err)
		}
		return nil, err
	}
	return v, nil
}

func (c *Container) cached(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inst, ok := c.instances[name]
	return inst, ok
}

// load builds name with its strategy. Nothing is cached here.
func (c *Container) load(r *resolution, name string) (any, definition, error) {
	def, err := c.definition(name)
	if err != nil {
		return nil, def, err
	}

	var inst any
	switch def.kind {
	case strategyLoader:
		inst, err = def.loader.fn(Resolver{c: c, r: r})
		if err != nil {
			err = fmt.Errorf("container: loading service %q: %w", name, err)
		}

	case strategyLoaderClass:
		var loader any
		if loader, err = c.factory.create(r, def.className, nil, nil); err != nil {
			break
		}
		inst, err = class.CallProducer(loader, loadMethod)
		if err != nil {
			err = fmt.Errorf("container: loading service %q with %s: %w", name, def.className, err)
		}

	case strategyPositional:
		inst, err = c.buildPositional(r, name, def)

	case strategyReflective:
		inst, err = c.factory.create(r, def.className, nil, nil)
	}
	return inst, def, err
}

// buildPositional calls the class constructor with the declared services in
// order. Constructor injection is bypassed; trailing parameters fall back to
// their defaults or nil.
func (c *Container) buildPositional(r *resolution, name string, def definition) (any, error) {
	cls, err := c.classes.Get(def.className)
	if err != nil {
		return nil, &ServiceNotFoundError{Name: name, Cause: err}
	}
	params := cls.Params()
	if len(def.deps) > len(params) {
		return nil, fmt.Errorf("container: service %q lists %d dependencies but %s takes %d",
			name, len(def.deps), cls.Name(), len(params))
	}

	args := make([]any, len(params))
	for i, p := range params {
		if i >= len(def.deps) {
			switch {
			case p.HasDefault:
				args[i] = p.Default
			case p.Nullable:
				args[i] = nil
			default:
				return nil, &DependencyResolutionError{Class: cls.Name(), Param: p.Name, Type: p.Type,
					Cause: fmt.Errorf("not in the dependency list of service %q", name)}
			}
			continue
		}
		dep, err := c.get(r, def.deps[i])
		if err != nil {
			return nil, &DependencyResolutionError{Class: cls.Name(), Param: p.Name, Type: p.Type, Cause: err}
		}
		args[i] = dep
	}

	inst, err := cls.Call(args)
	if err != nil {
		var argErr *class.ArgumentError
		if errors.As(err, &argErr) {
			return nil, &DependencyResolutionError{Class: cls.Name(), Param: argErr.Name, Type: argErr.Want, Cause: err}
		}
		return nil, fmt.Errorf("container: constructing service %q: %w", name, err)
	}
	return inst, nil
}

// definition returns the memoised strategy for name.
func (c *Container) definition(name string) (definition, error) {
	c.mu.RLock()
	def, ok := c.definitions[name]
	c.mu.RUnlock()
	if ok {
		return def, nil
	}

	def, err := c.define(name)
	if err != nil {
		return def, err
	}
	c.mu.Lock()
	c.definitions[name] = def
	c.mu.Unlock()
	return def, nil
}

func (c *Container) define(name string) (definition, error) {
	c.mu.RLock()
	loader, hasLoader := c.loaders[name]
	loaderClass, hasLoaderClass := c.loaderClasses[name]
	c.mu.RUnlock()

	switch {
	case hasLoader:
		return definition{kind: strategyLoader, loader: loader}, nil
	case hasLoaderClass:
		return definition{kind: strategyLoaderClass, className: loaderClass}, nil
	}
	if loaderClass, ok := c.config.LoaderClassName(name); ok {
		return definition{kind: strategyLoaderClass, className: loaderClass}, nil
	}

	className, ok := c.config.ClassName(name)
	if !ok {
		return definition{}, &ServiceNotFoundError{Name: name}
	}
	if !c.classes.Has(className) {
		return definition{}, &ServiceNotFoundError{Name: name,
			Cause: fmt.Errorf("%w: %s", class.ErrClassNotFound, className)}
	}
	if deps := c.config.Dependencies(name); len(deps) > 0 {
		return definition{kind: strategyPositional, className: className, deps: deps}, nil
	}
	return definition{kind: strategyReflective, className: className}, nil
}

// ── Introspection ─────────────────────────────────────────────────────────────

// Has reports whether name is cached or can be resolved. It never builds
// anything.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	_, cached := c.instances[name]
	_, hasLoader := c.loaders[name]
	_, hasLoaderClass := c.loaderClasses[name]
	c.mu.RUnlock()

	if cached || hasLoader || hasLoaderClass {
		return true
	}
	if _, ok := c.config.LoaderClassName(name); ok {
		return true
	}
	_, ok := c.config.ClassName(name)
	return ok
}

// Resolved reports whether name has a cached instance.
func (c *Container) Resolved(name string) bool {
	_, ok := c.cached(name)
	return ok
}

// Set stores instance under name. Only names the configuration flags as
// settable are accepted.
//
//	err := c.Set("user", currentUser)
func (c *Container) Set(name string, instance any) error {
	if !c.config.Settable(name) {
		return &NotSettableError{Name: name}
	}
	c.mu.Lock()
	c.instances[name] = instance
	delete(c.classCache, name)
	c.mu.Unlock()
	return nil
}

// GetClass returns the type resolving name produces, without building it.
func (c *Container) GetClass(name string) (reflect.Type, error) {
	c.mu.RLock()
	if t, ok := c.classCache[name]; ok {
		c.mu.RUnlock()
		return t, nil
	}
	inst, cached := c.instances[name]
	c.mu.RUnlock()

	var t reflect.Type
	if cached {
		t = reflect.TypeOf(inst)
		if t == nil {
			t = reflect.TypeOf((*any)(nil)).Elem()
		}
	} else {
		var err error
		if t, err = c.classOf(name); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	c.classCache[name] = t
	c.mu.Unlock()
	return t, nil
}

func (c *Container) classOf(name string) (reflect.Type, error) {
	def, err := c.definition(name)
	if err != nil {
		return nil, err
	}
	if def.kind == strategyLoader {
		return def.loader.typ, nil
	}

	cls, err := c.classes.Get(def.className)
	if err != nil {
		return nil, &ServiceNotFoundError{Name: name, Cause: err}
	}
	if def.kind == strategyLoaderClass {
		t, err := class.ProducerType(cls.Type(), loadMethod)
		if err != nil {
			return nil, &ServiceNotFoundError{Name: name, Cause: err}
		}
		return t, nil
	}
	return cls.Type(), nil
}

// Names returns the names that are cached or have a loader, sorted.
// Names only known to the configuration are not listed.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool, len(c.instances)+len(c.loaders)+len(c.loaderClasses))
	for k := range c.instances {
		seen[k] = true
	}
	for k := range c.loaders {
		seen[k] = true
	}
	for k := range c.loaderClasses {
		seen[k] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after a service is built and
// cached. It is not fired for seeded or Set instances.
func (c *Container) AfterResolving(cb func(name string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(name string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(name, instance)
	}
}

// ── Resolver ──────────────────────────────────────────────────────────────────

// Resolver is the view of the container handed to loaders. Lookups through
// it join the resolution already in progress, so a loader that asks for a
// service being built above it gets a CyclicDependencyError.
type Resolver struct {
	c *Container
	r *resolution
}

// Get resolves a service within the current resolution.
func (r Resolver) Get(name string) (any, error) { return r.c.get(r.r, name) }

// Has reports whether the container can resolve name.
func (r Resolver) Has(name string) bool { return r.c.Has(name) }

// Create builds a fresh instance of className within the current resolution.
func (r Resolver) Create(className string) (any, error) {
	return r.c.factory.create(r.r, className, nil, nil)
}

// Container returns the container bound to the current resolution.
func (r Resolver) Container() *Container { return r.c.bind(r.r) }

// ── Generics helpers ──────────────────────────────────────────────────────────

// Getter is anything that resolves services by name: *Container or Resolver.
type Getter interface {
	Get(name string) (any, error)
}

// Resolve fetches a service and asserts its type.
//
//	// Instead of: v, err := c.Get("log"); logger := v.(*zap.Logger)
//	logger, err := container.Resolve[*zap.Logger](c, "log")
func Resolve[T any](g Getter, name string) (T, error) {
	var zero T
	v, err := g.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: service %q is %T, not %v", name, v, reflect.TypeOf((*T)(nil)).Elem())
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error. Meant for boot code.
func MustResolve[T any](g Getter, name string) T {
	v, err := Resolve[T](g, name)
	if err != nil {
		panic(err)
	}
	return v
}
