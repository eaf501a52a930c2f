package imageproc

import (
	"image"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
)

// ComputePosition returns the top-left corner of the overlay on the canvas.
// Halves are taken with integer division separately, so an odd size rounds each term toward zero.
// An alignment value outside the enumeration leaves its coordinate at 0.
func ComputePosition(canvasW, canvasH, overlayW, overlayH int, spec model.AlignmentSpec) image.Point {
	var pos image.Point

	switch spec.XAlign {
	case model.XLeft:
		pos.X = spec.XOffset
	case model.XMiddle:
		pos.X = canvasW/2 - overlayW/2 + spec.XOffset
	case model.XRight:
		pos.X = canvasW - overlayW - spec.XOffset
	}

	switch spec.YAlign {
	case model.YTop:
		pos.Y = spec.YOffset
	case model.YMiddle:
		pos.Y = canvasH/2 - overlayH/2 + spec.YOffset
	case model.YBottom:
		pos.Y = canvasH - overlayH - spec.YOffset
	}

	return pos
}
