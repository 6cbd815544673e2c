package container

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinels for errors.Is. The typed errors below match them.
var (
	ErrServiceNotFound      = errors.New("service not found")
	ErrNotSettable          = errors.New("service is not settable")
	ErrDependencyResolution = errors.New("dependency resolution failed")
	ErrCyclicDependency     = errors.New("cyclic dependency")
)

// ServiceNotFoundError is returned by Get and GetClass for a name with no
// resolution strategy.
type ServiceNotFoundError struct {
	Name  string
	Cause error
}

func (e *ServiceNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("container: service %q not found: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("container: service %q not found", e.Name)
}

func (e *ServiceNotFoundError) Is(target error) bool { return target == ErrServiceNotFound }
func (e *ServiceNotFoundError) Unwrap() error        { return e.Cause }

// NotSettableError is returned by Set for a name not flagged settable.
type NotSettableError struct {
	Name string
}

func (e *NotSettableError) Error() string {
	return fmt.Sprintf("container: service %q is not settable", e.Name)
}

func (e *NotSettableError) Is(target error) bool { return target == ErrNotSettable }

// DependencyResolutionError reports a parameter no resolution tier could
// satisfy, or a declared dependency type that does not exist.
type DependencyResolutionError struct {
	// Class is the requesting class; empty for a callback.
	Class string
	Param string
	// Type is the declared parameter type, nil when untyped.
	Type  reflect.Type
	Cause error
}

func (e *DependencyResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("container: could not resolve parameter ")
	fmt.Fprintf(&b, "%q", e.Param)
	if e.Type != nil {
		fmt.Fprintf(&b, " (%v)", e.Type)
	}
	if e.Class != "" {
		fmt.Fprintf(&b, " of class %s", e.Class)
	} else {
		b.WriteString(" of callback")
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *DependencyResolutionError) Is(target error) bool { return target == ErrDependencyResolution }
func (e *DependencyResolutionError) Unwrap() error        { return e.Cause }

// CyclicDependencyError is returned when a service or class is requested
// while it is already being resolved further up the same call.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("container: cyclic dependency: %s", strings.Join(e.Path, " -> "))
}

func (e *CyclicDependencyError) Is(target error) bool { return target == ErrCyclicDependency }

// errorKind labels an error for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrCyclicDependency):
		return "cyclic_dependency"
	case errors.Is(err, ErrDependencyResolution):
		return "dependency_resolution"
	case errors.Is(err, ErrServiceNotFound):
		return "service_not_found"
	case errors.Is(err, ErrNotSettable):
		return "not_settable"
	}
	return "construction"
}
