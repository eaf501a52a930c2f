package imageproc

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when an extension or a decoded header does not map to GIF, JPEG or PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Which tells the two inputs of a composite apart.
type Which string

const (
	WhichBase    Which = "base"
	WhichOverlay Which = "overlay"
)

// DecodeError reports a source that is missing, corrupt or not of its assumed format.
type DecodeError struct {
	Which Which
	Path  string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s image %q: %v", e.Which, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WriteError reports a destination that could not be created or fully written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write image %q: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsOverlayDecode reports whether err is a DecodeError about the watermark image.
func IsOverlayDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Which == WhichOverlay
}
