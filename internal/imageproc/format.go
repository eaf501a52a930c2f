package imageproc

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var extFormats = map[string]imaging.Format{
	"jpg": imaging.JPEG,
	"png": imaging.PNG,
	"gif": imaging.GIF,
}

var formatExts = map[imaging.Format]string{
	imaging.JPEG: "jpg",
	imaging.PNG:  "png",
	imaging.GIF:  "gif",
}

// ProbeOrder is the order in which watermark files are looked up on disk.
var ProbeOrder = []imaging.Format{imaging.PNG, imaging.JPEG, imaging.GIF}

// NormalizeExtension lowercases ext, strips the leading dot and folds "jpeg" into "jpg".
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

// ParseFormat maps an extension (or a decoder name such as "jpeg") to a format.
func ParseFormat(ext string) (imaging.Format, error) {
	f, ok := extFormats[NormalizeExtension(ext)]
	if !ok {
		return -1, ErrUnsupportedFormat
	}
	return f, nil
}

// FormatFromExtension is ParseFormat with GIF as the fallback for anything unknown.
// The fallback only picks a decoder; it says nothing about the file content.
func FormatFromExtension(ext string) imaging.Format {
	f, err := ParseFormat(ext)
	if err != nil {
		return imaging.GIF
	}
	return f
}

// FormatFromPath applies FormatFromExtension to the extension of path.
func FormatFromPath(path string) imaging.Format {
	return FormatFromExtension(filepath.Ext(path))
}

// Extension returns the canonical extension for f without the dot.
func Extension(f imaging.Format) string {
	return formatExts[f]
}

// SniffFormat reads the image header from data.
func SniffFormat(data []byte) (imaging.Format, error) {
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return -1, err
	}
	return ParseFormat(name)
}

// decodeAs decodes r with the decoder for f only, without looking at the content.
func decodeAs(r io.Reader, f imaging.Format) (image.Image, error) {
	switch f {
	case imaging.PNG:
		return png.Decode(r)
	case imaging.JPEG:
		return jpeg.Decode(r)
	case imaging.GIF:
		return gif.Decode(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}
