package productimg

import "github.com/UnendingLoop/ProductWatermark/internal/model"

type ImagerMock struct {
	CompositeFn  func(basePath, overlayPath, outputPath string, spec model.AlignmentSpec) error
	ResizeFileFn func(src, dst string, w, h int) error
}

func (m *ImagerMock) Composite(basePath, overlayPath, outputPath string, spec model.AlignmentSpec) error {
	return m.CompositeFn(basePath, overlayPath, outputPath, spec)
}

func (m *ImagerMock) ResizeFile(src, dst string, w, h int) error {
	return m.ResizeFileFn(src, dst, w, h)
}
