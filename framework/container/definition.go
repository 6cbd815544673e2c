package container

import (
	"fmt"
	"reflect"
)

// Configuration is the boot-time description of services the container
// consults when a name has no cached instance and no loader override.
type Configuration interface {
	// ClassName returns the class that implements the service.
	ClassName(service string) (string, bool)
	// LoaderClassName returns the loader class declared for the service.
	LoaderClassName(service string) (string, bool)
	// Dependencies returns the ordered service names passed positionally to
	// the class constructor, or nil for constructor injection.
	Dependencies(service string) []string
	// Settable reports whether Set may store an instance under the name.
	Settable(service string) bool
}

// Definition declares one service.
type Definition struct {
	ClassName       string
	LoaderClassName string
	Dependencies    []string
	Settable        bool
}

// Definitions is an in-memory Configuration keyed by service name.
//
//	defs := container.Definitions{
//	    "mailer": {ClassName: "SmtpMailer", Dependencies: []string{"config", "log"}},
//	    "user":   {Settable: true},
//	}
type Definitions map[string]Definition

func (d Definitions) ClassName(service string) (string, bool) {
	def, ok := d[service]
	return def.ClassName, ok && def.ClassName != ""
}

func (d Definitions) LoaderClassName(service string) (string, bool) {
	def, ok := d[service]
	return def.LoaderClassName, ok && def.LoaderClassName != ""
}

func (d Definitions) Dependencies(service string) []string { return d[service].Dependencies }

func (d Definitions) Settable(service string) bool { return d[service].Settable }

// ── Loaders ───────────────────────────────────────────────────────────────────

// Loader builds one service. It replaces constructor injection for that name.
type Loader struct {
	fn  func(r Resolver) (any, error)
	typ reflect.Type
}

// LoaderFunc wraps a typed loader function. T is reported by GetClass
// without calling fn. Dependencies are fetched through r so cycles are
// caught.
//
//	container.WithLoader("router", container.LoaderFunc(func(r container.Resolver) (*routing.Router, error) {
//	    logger, err := container.Resolve[*zap.Logger](r, "log")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return routing.New(logger), nil
//	}))
func LoaderFunc[T any](fn func(r Resolver) (T, error)) Loader {
	return Loader{
		fn:  func(r Resolver) (any, error) { return fn(r) },
		typ: reflect.TypeOf((*T)(nil)).Elem(),
	}
}

// Type returns the type the loader produces.
func (l Loader) Type() reflect.Type { return l.typ }

// ── Strategies ────────────────────────────────────────────────────────────────

// strategy is how a service name is built, fixed the first time the name is
// looked up.
type strategy int

const (
	strategyLoader strategy = iota + 1
	strategyLoaderClass
	strategyPositional
	strategyReflective
)

func (s strategy) String() string {
	switch s {
	case strategyLoader:
		return "loader"
	case strategyLoaderClass:
		return "loader_class"
	case strategyPositional:
		return "positional"
	case strategyReflective:
		return "reflective"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

type definition struct {
	kind      strategy
	loader    Loader
	className string
	deps      []string
}
