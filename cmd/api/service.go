package main

import (
	"context"

	"github.com/UnendingLoop/ProductWatermark/internal/transport"
)

// WatermarkAPIService - всё, что нужно API: ручки плюс старт и фоновое восстановление заданий
type WatermarkAPIService interface {
	transport.WatermarkService

	EnsureDefaults(ctx context.Context) error
	ReviveOrphans(ctx context.Context, limit int)
}
