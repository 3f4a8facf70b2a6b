package level

import (
	"errors"
	"fmt"
)

// ErrUnknownSpawnAnchor is returned when a spawn rule names an After category
// that no rule in the request places.
var ErrUnknownSpawnAnchor = errors.New("spawn rule references an unknown category")

// ConfigurationError rejects a request before any generation work starts.
type ConfigurationError struct {
	Field  string
	Reason error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %v", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Reason
}

func configError(field string, reason error) error {
	return &ConfigurationError{Field: field, Reason: reason}
}
