// Package overlay finds the watermark file to use for a shop.
package overlay

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/UnendingLoop/ProductWatermark/internal/imageproc"
	"github.com/disintegration/imaging"
)

// Overlay - найденный файл ватермарка
type Overlay struct {
	Path   string
	Format imaging.Format
}

type key struct {
	dir  string
	shop int
}

type entry struct {
	ov    Overlay
	found bool
}

// Locator memoises lookups for the lifetime of one batch run. Safe for concurrent use.
type Locator struct {
	mu    sync.Mutex
	cache map[key]entry
	stat  func(string) (os.FileInfo, error)
}

func NewLocator() *Locator {
	return &Locator{cache: make(map[key]entry), stat: os.Stat}
}

// FileName returns the watermark file name for a shop; shopID <= 0 means the shared one.
func FileName(shopID int, f imaging.Format) string {
	if shopID > 0 {
		return fmt.Sprintf("watermark-%d.%s", shopID, imageproc.Extension(f))
	}
	return "watermark." + imageproc.Extension(f)
}

// Candidates lists the paths probed for a shop in preference order.
func Candidates(dir string, shopID int) []Overlay {
	var res []Overlay
	ids := []int{0}
	if shopID > 0 {
		ids = []int{shopID, 0}
	}
	for _, id := range ids {
		for _, f := range imageproc.ProbeOrder {
			res = append(res, Overlay{Path: filepath.Join(dir, FileName(id, f)), Format: f})
		}
	}
	return res
}

// Find returns the first existing watermark for the shop, falling back to the shared file.
func (l *Locator) Find(dir string, shopID int) (Overlay, bool) {
	k := key{dir: dir, shop: shopID}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.cache[k]; ok {
		return e.ov, e.found
	}

	var e entry
	for _, c := range Candidates(dir, shopID) {
		if fi, err := l.stat(c.Path); err == nil && !fi.IsDir() {
			e = entry{ov: c, found: true}
			break
		}
	}
	l.cache[k] = e

	return e.ov, e.found
}
