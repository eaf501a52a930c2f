// Package productimg runs the watermark pipeline for one product photo:
// composite the watermark, then render every enabled size from both the watermarked and the original file.
package productimg

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
)

// Imager - то, что умеет накладывать ватермарк и ресайзить файлы
type Imager interface {
	Composite(basePath, overlayPath, outputPath string, spec model.AlignmentSpec) error
	ResizeFile(src, dst string, w, h int) error
}

// SplitPath turns an image id into its storage folder plus base name: 123 -> "1/2/3/123".
func SplitPath(imageID int) string {
	id := strconv.Itoa(imageID)
	parts := strings.Split(id, "")
	return strings.Join(append(parts, id), "/")
}

// StorageKey places a file of the image next to its original: (123, "123-small.jpg") -> "1/2/3/123-small.jpg".
func StorageKey(imageID int, name string) string {
	return path.Join(path.Dir(SplitPath(imageID)), name)
}

func OriginalName(imageID int) string    { return fmt.Sprintf("%d.jpg", imageID) }
func WatermarkedName(imageID int) string { return fmt.Sprintf("%d-watermark.jpg", imageID) }

func SizedName(imageID int, typeName string) string {
	return fmt.Sprintf("%d-%s.jpg", imageID, typeName)
}

func HashedName(imageID int, typeName, hash string) string {
	return fmt.Sprintf("%d-%s-%s.jpg", imageID, typeName, hash)
}

type Request struct {
	ImageID  int
	Dir      string // папка, где лежит <id>.jpg; туда же пишутся результаты
	Overlay  string
	Settings model.Settings
	Types    []model.ImageType // все товарные размеры магазина
	Filter   []int             // пустой фильтр - все включенные размеры
}

// Result lists produced file names relative to Request.Dir. Err joins every step failure.
type Result struct {
	Files []string
	Err   error
}

func (r Result) Failed() bool { return r.Err != nil }

// EnabledTypes returns the sizes turned on in settings, narrowed by filter when it is not empty.
func EnabledTypes(all []model.ImageType, enabled, filter []int) []model.ImageType {
	var res []model.ImageType
	for _, t := range all {
		if !slices.Contains(enabled, t.ID) {
			continue
		}
		if len(filter) > 0 && !slices.Contains(filter, t.ID) {
			continue
		}
		res = append(res, t)
	}
	return res
}

// Process never stops at the first failure: each size is attempted and its error recorded.
func Process(im Imager, req Request) Result {
	var (
		res  Result
		errs []error
	)

	orig := filepath.Join(req.Dir, OriginalName(req.ImageID))
	wmName := WatermarkedName(req.ImageID)
	wmPath := filepath.Join(req.Dir, wmName)

	wmOK := true
	if err := im.Composite(orig, req.Overlay, wmPath, req.Settings.Alignment()); err != nil {
		wmOK = false
		errs = append(errs, fmt.Errorf("composite image %d: %w", req.ImageID, err))
	} else {
		res.Files = append(res.Files, wmName)
	}

	for _, t := range EnabledTypes(req.Types, req.Settings.ImageTypes, req.Filter) {
		if wmOK {
			name := SizedName(req.ImageID, t.Name)
			if err := im.ResizeFile(wmPath, filepath.Join(req.Dir, name), t.Width, t.Height); err != nil {
				errs = append(errs, fmt.Errorf("resize %q: %w", name, err))
			} else {
				res.Files = append(res.Files, name)
			}
		}

		if req.Settings.Hash == "" {
			continue
		}
		name := HashedName(req.ImageID, t.Name, req.Settings.Hash)
		if err := im.ResizeFile(orig, filepath.Join(req.Dir, name), t.Width, t.Height); err != nil {
			errs = append(errs, fmt.Errorf("resize %q: %w", name, err))
		} else {
			res.Files = append(res.Files, name)
		}
	}

	res.Err = errors.Join(errs...)
	return res
}
