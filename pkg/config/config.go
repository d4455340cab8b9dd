package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration loaded from the environment.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"host=localhost user=mailroom password=mailroom dbname=mailroom port=5432 sslmode=disable"`

	// Security
	EncryptionKey string `env:"ENCRYPTION_KEY,required"`

	// Sync behaviour
	SchedulerInterval  time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"5m"`
	SyncJobConcurrency int           `env:"SYNC_JOB_CONCURRENCY" envDefault:"3"`

	// IMAP timeouts
	IMAPDialTimeout   time.Duration `env:"IMAP_DIAL_TIMEOUT" envDefault:"30s"`
	IMAPFetchTimeout  time.Duration `env:"IMAP_FETCH_TIMEOUT" envDefault:"2m"`
	IMAPLogoutTimeout time.Duration `env:"IMAP_LOGOUT_TIMEOUT" envDefault:"5s"`

	// Attachment storage
	StoragePath    string `env:"STORAGE_PATH" envDefault:"./data/attachments"`
	StorageBaseURL string `env:"STORAGE_BASE_URL" envDefault:"http://localhost:8080/files"`
}

// Load reads configuration from the environment, loading .env first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// AES-256 requires a 32-byte key
	if len(cfg.EncryptionKey) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes, got %d", len(cfg.EncryptionKey))
	}

	if cfg.SyncJobConcurrency < 1 {
		cfg.SyncJobConcurrency = 1
	}

	return cfg, nil
}
