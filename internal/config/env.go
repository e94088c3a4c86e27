package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// applyEnvOverrides reads CUPDRAW_* variables, after loading a .env file if
// one is present, and overwrites the matching fields when set.
func applyEnvOverrides(cfg *Config) error {
	_ = godotenv.Load()

	setStr(&cfg.Database, "CUPDRAW_DATABASE")
	setStr(&cfg.Seeding, "CUPDRAW_SEEDING")
	if err := setInt64(&cfg.Seed, "CUPDRAW_SEED"); err != nil {
		return err
	}
	return nil
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt64(dst *int64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
