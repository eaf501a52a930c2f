package main

import (
	"os"

	"github.com/UnendingLoop/ProductWatermark/internal/imageproc"
	"github.com/UnendingLoop/ProductWatermark/internal/storage"
	"github.com/wb-go/wbf/config"
)

func setDefaults(cfg *config.Config) {
	cfg.SetDefault("LOG_LEVEL", "info")
	cfg.SetDefault("POSTGRES_MAX_CONNS", 5)
	cfg.SetDefault("WATERMARK_DIR", "./modules/watermark")
	cfg.SetDefault("WORK_DIR", os.TempDir())
	cfg.SetDefault("JPEG_QUALITY", imageproc.DefaultJPEGQuality)

	cfg.SetDefault("STORAGE_DRIVER", storage.DriverMinio)
	cfg.SetDefault("STORAGE_DIR", "./img/p")
	cfg.SetDefault("MINIO_CONTAINER_NAME", "localhost")
	cfg.SetDefault("MINIO_PORT", "9000")
}
