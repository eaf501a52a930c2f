// Package localstorage keeps product photos on the local filesystem, laid out like the shop's img/p folder.
package localstorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
)

type LocalStorage struct {
	root string
}

func New(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("empty storage key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Put writes through a temp file so a reader never sees a half-written photo.
func (s *LocalStorage) Put(_ context.Context, key string, _ int64, _ string, r io.Reader) error {
	if r == nil {
		return errors.New("nil reader passed to storage.Put")
	}

	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), dst)
}

func (s *LocalStorage) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, "", err
	}

	return f, contentType(p), nil
}

// Delete of a missing key is not an error, same as for the bucket.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func contentType(p string) string {
	ext := strings.ToLower(filepath.Ext(p))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	for ct, e := range model.GetImageFileExt {
		if e == ext {
			return ct
		}
	}
	return "application/octet-stream"
}
