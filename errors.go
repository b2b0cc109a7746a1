package symbolgo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a barcode is not found in the image.
	ErrNotFound = errors.New("barcode not found")

	// ErrWriter is returned when a barcode cannot be encoded.
	ErrWriter = errors.New("writer error")

	// ErrDataTooBig is returned when the encoded data exceeds the capacity
	// of the largest version at the requested error correction level.
	ErrDataTooBig = fmt.Errorf("%w: data too big", ErrWriter)

	// ErrUnencodable is returned when no supported character set can
	// encode a character of the input.
	ErrUnencodable = fmt.Errorf("%w: unencodable character", ErrWriter)
)
