package annotation

import "errors"

var (
	// ErrUnknownFormat reports a format selector with no registered reader.
	ErrUnknownFormat = errors.New("unknown annotation format")

	// ErrNotImplemented reports a format that is registered but has no
	// generic decoding, such as the PHY container.
	ErrNotImplemented = errors.New("annotation format not implemented")
)
