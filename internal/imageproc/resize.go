package imageproc

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/disintegration/imaging"
)

var background = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// ResizeFile fits the image at src into a w x h box keeping its ratio and centres it on a white canvas
// of exactly w x h. The output format follows the extension of dst.
func (c *Compositor) ResizeFile(src, dst string, w, h int) error {
	format, err := ParseFormat(filepath.Ext(dst))
	if err != nil {
		return &WriteError{Path: dst, Err: err}
	}
	if w <= 0 || h <= 0 {
		return &WriteError{Path: dst, Err: fmt.Errorf("invalid target size %dx%d", w, h)}
	}

	img, err := LoadBase(src)
	if err != nil {
		return err
	}

	fitted := imaging.Fit(img.Img, w, h, imaging.Lanczos)
	canvas := imaging.PasteCenter(imaging.New(w, h, background), fitted)

	out := &Raster{Img: canvas, Format: format}
	return out.Save(dst, c.JPEGQuality)
}

// ResizeFile uses the package compositor settings.
func ResizeFile(src, dst string, w, h int) error {
	return defaultCompositor.ResizeFile(src, dst, w, h)
}
