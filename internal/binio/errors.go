// Package binio provides forward-only, endian-aware binary I/O primitives
// shared by the cursor codecs (xcursor, wincur, mousecape).
package binio

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEnd is returned when fewer bytes are available than requested.
var ErrUnexpectedEnd = errors.New("binio: unexpected end of data")

// DataError reports a structural fault at a specific location in a stream.
type DataError struct {
	Where string
	Why   string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("binio: invalid data at %s: %s", e.Where, e.Why)
}

// InvalidData constructs a DataError.
func InvalidData(where, why string) error {
	return &DataError{Where: where, Why: why}
}
