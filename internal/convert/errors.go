package convert

import (
	"errors"
	"fmt"
)

// ErrNoSelection is returned by Export when the host has no text strips
// selected.
var ErrNoSelection = errors.New("no text strips selected")

// ConfigError rejects options before any file is touched.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}
