// Package storage connects the product photo storage selected by STORAGE_DRIVER.
package storage

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/UnendingLoop/ProductWatermark/internal/storage/localstorage"
	"github.com/UnendingLoop/ProductWatermark/internal/storage/miniostorage"
	"github.com/wb-go/wbf/config"
)

const (
	DriverMinio = "minio"
	DriverLocal = "local"
)

// ImageStorage - контракт для работы с хранилищем картинок
type ImageStorage interface {
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

func NewImgStorage(cfg *config.Config, delay time.Duration) ImageStorage {
	driver := cfg.GetString("STORAGE_DRIVER")
	if driver == DriverLocal {
		dir := cfg.GetString("STORAGE_DIR")
		log.Printf("Using local IMG-storage in %q", dir)
		return localstorage.New(dir)
	}

	opts := miniostorage.Options{
		Endpoint: cfg.GetString("MINIO_CONTAINER_NAME") + ":" + cfg.GetString("MINIO_PORT"),
		User:     cfg.GetString("MINIO_USER"),
		Pass:     cfg.GetString("MINIO_PASS"),
		Bucket:   cfg.GetString("BUCKET_NAME"),
	}

	for {
		log.Println("Connecting to IMG-storage...")
		client, err := miniostorage.NewMinioClient(opts)
		if err != nil {
			log.Printf("Failed to init connection to IMG-storage: %v\nNext retry in %v...", err, delay)
			time.Sleep(delay)
			continue
		}
		log.Println("Successfully connected IMG-storage!")
		return client
	}
}
