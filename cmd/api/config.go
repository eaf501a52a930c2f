package main

import "github.com/wb-go/wbf/config"

// setDefaults - значения, которые можно не задавать в .env
func setDefaults(cfg *config.Config) {
	cfg.SetDefault("LOG_LEVEL", "info")
	cfg.SetDefault("GIN_MODE", "release")
	cfg.SetDefault("APP_PORT", "8080")
	cfg.SetDefault("POSTGRES_MAX_CONNS", 5)
	cfg.SetDefault("KAFKA_PARTITIONS", 1)
	cfg.SetDefault("WATERMARK_DIR", "./modules/watermark")
	cfg.SetDefault("REGENERATE_RPS", 50.0)
}
