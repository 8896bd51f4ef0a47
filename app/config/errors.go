package config

import (
	"errors"
	"fmt"
)

// ConfigError marks a fatal configuration problem. The process must exit
// before any cycle runs when one is returned at startup.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func NewConfigError(format string, args ...any) error {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
