package metadata

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError holds every problem found in a services document, keyed
// by field path (for example "services[mailer].className").
type ValidationError struct {
	Bag map[string][]string `json:"errors"`
}

func (e *ValidationError) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// First returns the first message for a field.
func (e *ValidationError) First(field string) string {
	if msgs := e.Bag[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Bag))
	for f := range e.Bag {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, strings.Join(e.Bag[f], "; "))
	}
	return "metadata: " + strings.Join(parts, "; ")
}

func newValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("metadata: %w", err)
	}
	out := &ValidationError{}
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "Metadata.")
		out.add(field, formatFieldError(field, fe))
	}
	return out
}

func formatFieldError(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required_without_all":
		return fmt.Sprintf("%s is required unless loaderClassName or settable is set", field)
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with loaderClassName", field)
	case "required":
		return fmt.Sprintf("%s cannot be empty", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
