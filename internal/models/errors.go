package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the store and its callers.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundf wraps ErrNotFound with entity context so callers can still
// match it with errors.Is.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Invalidf wraps ErrInvalidInput with detail.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}
