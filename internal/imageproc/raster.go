package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// Raster - декодированная картинка, с которой работает композитор
type Raster struct {
	Img    *image.NRGBA
	Format imaging.Format // формат, в котором картинка была прочитана и будет записана

	// false - при записи альфа-канал заливается до непрозрачного
	SaveAlpha bool
}

// LoadBase reads the whole file once, detects its format from the header and decodes it into a truecolor canvas.
func LoadBase(path string) (*Raster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Which: WhichBase, Path: path, Err: err}
	}

	format, err := SniffFormat(data)
	if err != nil {
		return nil, &DecodeError{Which: WhichBase, Path: path, Err: err}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Which: WhichBase, Path: path, Err: err}
	}

	return &Raster{
		Img:    imaging.Clone(img),
		Format: format,
	}, nil
}

// LoadOverlay decodes the watermark with the decoder picked by its extension.
func LoadOverlay(path string) (image.Image, imaging.Format, error) {
	format := FormatFromPath(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, format, &DecodeError{Which: WhichOverlay, Path: path, Err: err}
	}
	defer f.Close()

	img, err := decodeAs(f, format)
	if err != nil {
		return nil, format, &DecodeError{Which: WhichOverlay, Path: path, Err: err}
	}
	return img, format, nil
}

func (r *Raster) Width() int  { return r.Img.Bounds().Dx() }
func (r *Raster) Height() int { return r.Img.Bounds().Dy() }

// Save encodes the canvas in its own format. A partially written file is left in place on failure.
func (r *Raster) Save(path string, jpegQuality int) error {
	var img image.Image = r.Img
	if !r.SaveAlpha {
		img = flatten(r.Img)
	}

	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if err := imaging.Encode(f, img, r.Format, imaging.JPEGQuality(jpegQuality)); err != nil {
		f.Close()
		return &WriteError{Path: path, Err: fmt.Errorf("encode %s: %w", r.Format, err)}
	}

	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// flatten drops the alpha channel keeping colour values as they are.
func flatten(src *image.NRGBA) *image.NRGBA {
	dst := imaging.Clone(src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
