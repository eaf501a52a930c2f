package imageproc

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// BlendMode selects how the overlay is laid over the canvas. It is picked once per composite.
type BlendMode int

const (
	// BlendOpaque merges overlay pixels straight onto the canvas, skipping only fully transparent ones.
	BlendOpaque BlendMode = iota
	// BlendAlphaAware first alpha-composites the overlay over a copy of the covered canvas region
	// and then merges that copy back, so per-pixel alpha survives the percentage merge.
	BlendAlphaAware
)

// BlendFor returns the blend mode for an overlay of the given format.
func BlendFor(f imaging.Format) BlendMode {
	if f == imaging.PNG {
		return BlendAlphaAware
	}
	return BlendOpaque
}

func (m BlendMode) String() string {
	if m == BlendAlphaAware {
		return "alpha-aware"
	}
	return "opaque"
}

// Apply lays overlay onto canvas with its top-left corner at pos, with pct percent strength.
func (m BlendMode) Apply(canvas *image.NRGBA, overlay image.Image, pos image.Point, pct int) {
	switch m {
	case BlendAlphaAware:
		ob := overlay.Bounds()
		cut := image.NewNRGBA(image.Rect(0, 0, ob.Dx(), ob.Dy()))
		xdraw.Copy(cut, image.Point{}, canvas, image.Rectangle{Min: pos, Max: pos.Add(ob.Size())}, xdraw.Src, nil)
		xdraw.Copy(cut, image.Point{}, overlay, ob, xdraw.Over, nil)
		merge(canvas, cut, pos, pct)
	default:
		merge(canvas, overlay, pos, pct)
	}
}

// merge - аналог imagecopymerge: dst = (src*pct + dst*(100-pct)) / 100 по каждому RGB-каналу,
// альфа холста не трогается. Область обрезается по границам холста.
func merge(dst *image.NRGBA, src image.Image, pos image.Point, pct int) {
	pct = max(0, min(100, pct))

	sb := src.Bounds()
	r := image.Rectangle{Min: pos, Max: pos.Add(sb.Size())}.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s := color.NRGBAModel.Convert(src.At(sb.Min.X+x-pos.X, sb.Min.Y+y-pos.Y)).(color.NRGBA)
			if s.A == 0 {
				continue // прозрачный индекс палитры
			}
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = mix(s.R, dst.Pix[i+0], pct)
			dst.Pix[i+1] = mix(s.G, dst.Pix[i+1], pct)
			dst.Pix[i+2] = mix(s.B, dst.Pix[i+2], pct)
		}
	}
}

func mix(s, d uint8, pct int) uint8 {
	return uint8((int(s)*pct + int(d)*(100-pct)) / 100)
}
