package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob, parsed from the environment.
type Config struct {
	Port            string   `env:"PORT" envDefault:"5300"`
	DatabaseURL     string   `env:"DATABASE_URL,required"`
	AllowedOrigins  []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	BotServiceToken string   `env:"BOT_SERVICE_TOKEN,required"`

	LedgerAuditInterval time.Duration `env:"LEDGER_AUDIT_INTERVAL" envDefault:"10m"`

	// R2 object storage for task icons. Optional: when disabled, icons
	// are stored on local disk under ./uploads.
	R2Enabled         bool   `env:"R2_ENABLED" envDefault:"false"`
	CloudflareAccount string `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	R2Bucket          string `env:"R2_BUCKET_NAME"`
	CDNBaseURL        string `env:"CDN_BASE_URL"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.R2Enabled && (cfg.CloudflareAccount == "" || cfg.R2AccessKeyID == "" || cfg.R2AccessKeySecret == "" || cfg.R2Bucket == "") {
		return nil, fmt.Errorf("R2_ENABLED=true requires CLOUDFLARE_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_ACCESS_KEY_SECRET and R2_BUCKET_NAME")
	}
	return cfg, nil
}
