package catalog

import "fmt"

// InvalidConfigurationError reports a malformed catalog or component entry.
type InvalidConfigurationError struct {
	// Component is the offending entry's name, if known.
	Component string
	Err       error
}

func (e *InvalidConfigurationError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("catalog: invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("catalog: invalid configuration for %q: %v", e.Component, e.Err)
}

func (e *InvalidConfigurationError) Unwrap() error { return e.Err }

// DuplicateRegistrationError reports a name or alias registered twice.
type DuplicateRegistrationError struct {
	Name string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("catalog: component %q is already registered", e.Name)
}
