// Package validation checks request payloads with struct tags and reports
// failures as a field → messages bag.
//
//	type payload struct {
//	    Name string `json:"name" validate:"required,min=2,max=100"`
//	}
//
//	if errs := validation.Struct(&p); errs.Has() {
//	    // JSON: {"errors": {"name": ["The name field is required."]}}
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ── Types ────────────────────────────────────────────────────────────────────

// Errors holds validation errors.
// JSON output: {"errors": {"field": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// ── Validation ───────────────────────────────────────────────────────────────

var validate = newValidator()

// newValidator names fields by their json tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates v. The result is never nil; check Has.
func Struct(v any) *Errors {
	out := &Errors{}
	err := validate.Struct(v)
	if err == nil {
		return out
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out.add("_", err.Error())
		return out
	}
	for _, fe := range fieldErrs {
		out.add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}
