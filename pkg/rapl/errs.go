package rapl

import "errors"

var (
	// ErrUnavailable indicates that a counter register could not be read,
	// either because the hardware does not expose it or because the
	// caller lacks the privilege to read it. It is distinct from a zero
	// reading, which is a valid counter value.
	ErrUnavailable = errors.New("rapl: counter unavailable")
)
