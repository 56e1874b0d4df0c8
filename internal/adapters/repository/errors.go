package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for store errors.
var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidDocument = errors.New("invalid document")
)

// NewKind tags a sentinel with the failing operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}
