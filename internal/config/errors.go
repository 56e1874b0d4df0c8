package config

import (
	"errors"
	"fmt"
)

// Sentinel kinds for configuration errors.
var (
	ErrLoad    = errors.New("config load failed")
	ErrInvalid = errors.New("invalid configuration")
)

// NewKind tags a sentinel with the failing operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags a sentinel and preserves the underlying cause.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
