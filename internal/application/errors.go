package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound           = errors.New("not found")
	ErrIO                 = errors.New("i/o error")
	ErrConfig             = errors.New("configuration error")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrAborted            = errors.New("aborted by user")
	ErrInvalidOperation   = errors.New("invalid operation")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrConfig
}

// NotFoundError reports a path that does not exist
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IOError wraps a read, write or permission failure
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// ConfigError represents a malformed or missing configuration value
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Message)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NoDriveError is returned when no mounted volume carries the requested serial
type NoDriveError struct {
	Serial string
}

func (e *NoDriveError) Error() string {
	return fmt.Sprintf("no drive with serial number %s", e.Serial)
}

func (e *NoDriveError) Is(target error) bool {
	return target == ErrPreconditionFailed
}
