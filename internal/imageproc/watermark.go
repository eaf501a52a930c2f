// Package imageproc provides operations for product images: watermark compositing, resizing and thumbnail generation.
package imageproc

import (
	"github.com/UnendingLoop/ProductWatermark/internal/model"
)

const DefaultJPEGQuality = 90

// Compositor lays a watermark over product photos. It holds no per-call state.
type Compositor struct {
	JPEGQuality int
}

func NewCompositor(jpegQuality int) *Compositor {
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &Compositor{JPEGQuality: jpegQuality}
}

var defaultCompositor = NewCompositor(DefaultJPEGQuality)

// Composite draws the watermark at overlayPath over the image at basePath and writes
// the result to outputPath in the base image's format.
// Opacity is expected to be validated by the caller.
func Composite(basePath, overlayPath, outputPath string, spec model.AlignmentSpec) error {
	return defaultCompositor.Composite(basePath, overlayPath, outputPath, spec)
}

func (c *Compositor) Composite(basePath, overlayPath, outputPath string, spec model.AlignmentSpec) error {
	base, err := LoadBase(basePath)
	if err != nil {
		return err
	}

	overlay, ovFormat, err := LoadOverlay(overlayPath)
	if err != nil {
		return err
	}

	ob := overlay.Bounds()
	pos := ComputePosition(base.Width(), base.Height(), ob.Dx(), ob.Dy(), spec)

	BlendFor(ovFormat).Apply(base.Img, overlay, pos, spec.Opacity)

	// холст пишется как есть, вместе с прозрачностью основы
	base.SaveAlpha = true

	return base.Save(outputPath, c.JPEGQuality)
}
