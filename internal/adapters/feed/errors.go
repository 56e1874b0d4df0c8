package feed

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a feed transport error. Views derived from the
// affected collection must stop presenting stale data as current.
var ErrUnavailable = errors.New("feed unavailable")

// WrapUnavailable tags a transport error with the affected collection.
func WrapUnavailable(collection string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", collection, ErrUnavailable)
	}
	return fmt.Errorf("%s: %w: %w", collection, ErrUnavailable, err)
}
