package class

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrClassNotFound is returned when a class name is not registered.
	ErrClassNotFound = errors.New("class not found")

	// ErrDuplicateClass is returned when a class name is registered twice.
	ErrDuplicateClass = errors.New("class already registered")
)

// ArgumentError is returned by Callable.Call when an argument does not fit
// its parameter.
type ArgumentError struct {
	Index int
	Name  string
	Want  reflect.Type
	Got   reflect.Type
}

func (e *ArgumentError) Error() string {
	got := "nil"
	if e.Got != nil {
		got = e.Got.String()
	}
	return fmt.Sprintf("argument %d (%s): %s is not assignable to %v", e.Index, e.Name, got, e.Want)
}
