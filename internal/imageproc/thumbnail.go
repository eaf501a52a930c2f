package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// Thumbnailer renders the watermark preview: the image from r is decoded with the decoder for format,
// the same extension rule LoadOverlay applies, then cropped and scaled to exactly x*y and encoded back in format.
func Thumbnailer(r io.Reader, x, y int, format imaging.Format) (io.Reader, int64, error) {
	if r == nil {
		return nil, 0, errors.New("no watermark data for preview")
	}

	src, err := decodeAs(r, format)
	if err != nil {
		return nil, 0, &DecodeError{Which: WhichOverlay, Err: err}
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, imaging.Thumbnail(src, x, y, imaging.Lanczos), format); err != nil {
		return nil, 0, fmt.Errorf("encode %s preview: %w", format, err)
	}
	return &out, int64(out.Len()), nil
}
