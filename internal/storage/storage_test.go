package storage

import (
	"testing"
	"time"

	"github.com/UnendingLoop/ProductWatermark/internal/storage/localstorage"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/config"
)

func TestNewImgStorage_LocalDriver(t *testing.T) {
	cfg := config.New()
	cfg.SetDefault("STORAGE_DRIVER", DriverLocal)
	cfg.SetDefault("STORAGE_DIR", t.TempDir())

	strg := NewImgStorage(cfg, time.Millisecond)
	require.IsType(t, &localstorage.LocalStorage{}, strg)
}
