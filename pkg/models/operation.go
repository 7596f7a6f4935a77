package models

import (
	"fmt"
)

// ComparisonMethod defines how file contents are compared
type ComparisonMethod string

const (
	// CompareMD5 compares MD5 digests
	CompareMD5 ComparisonMethod = "md5"
	// CompareSHA256 compares SHA-256 digests (slower, larger digest)
	CompareSHA256 ComparisonMethod = "sha256"
)

// ConfigError is a fatal configuration problem, such as a missing source directory
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Path)
}

// ComparisonError indicates that two files could not be read for comparison
type ComparisonError struct {
	PathA string
	PathB string
	Err   error
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("cannot compare '%s' and '%s': %v", e.PathA, e.PathB, e.Err)
}

func (e *ComparisonError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
