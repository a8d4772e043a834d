package container

import (
	"fmt"
	"strings"
)

// UnknownComponentError reports a name that is not in the catalog.
type UnknownComponentError struct {
	Name string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("container: no component registered for [%s]", e.Name)
}

// CircularDependencyError reports a dependency cycle that was requested
// without the immediate modifier.
type CircularDependencyError struct {
	// Chain lists the cache keys of the cycle, starting and ending with the
	// same key.
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("container: circular dependency %s, request one side with a trailing ! to receive a pending reference",
		strings.Join(e.Chain, " -> "))
}

// FactoryError wraps an error returned (or a panic raised) while building
// a component.
type FactoryError struct {
	Key string
	Err error
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("container: building [%s]: %v", e.Key, e.Err)
}

func (e *FactoryError) Unwrap() error { return e.Err }
