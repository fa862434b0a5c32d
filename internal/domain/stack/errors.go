// Where: curstack/internal/domain/stack/errors.go
// What: Typed evaluation errors.
// Why: Callers need the offending field or node name, not just a message.
package stack

import "fmt"

// ValidationError reports a configuration field outside its closed set or a
// missing required field. Raised before any node is evaluated.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid configuration: %s=%q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// DependencyError reports a node whose presence predicate holds while a value
// it structurally depends on is absent.
type DependencyError struct {
	Subject string
	Missing string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("unsatisfied dependency for %s: %s is required", e.Subject, e.Missing)
}
