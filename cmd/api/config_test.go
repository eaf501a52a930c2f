package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/config"
)

func TestSetDefaults(t *testing.T) {
	t.Setenv("REGENERATE_RPS", "12.5")

	cfg := config.New()
	cfg.EnableEnv("")
	setDefaults(cfg)

	require.Equal(t, 12.5, cfg.GetFloat64("REGENERATE_RPS"))
	require.Equal(t, 5, cfg.GetInt("POSTGRES_MAX_CONNS"))
	require.Equal(t, 1, cfg.GetInt("KAFKA_PARTITIONS"))
	require.Equal(t, "./modules/watermark", cfg.GetString("WATERMARK_DIR"))
	require.Equal(t, "info", cfg.GetString("LOG_LEVEL"))
}
