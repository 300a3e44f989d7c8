package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// config holds the server settings, read from the environment.
type config struct {
	Addr            string        // GEOLOOKUP_ADDR
	DataDir         string        // GEOLOOKUP_DATA_DIR
	Download        bool          // GEOLOOKUP_DOWNLOAD
	CacheTTL        time.Duration // GEOLOOKUP_CACHE_TTL; <= 0 disables the response cache
	ShutdownTimeout time.Duration // GEOLOOKUP_SHUTDOWN_TIMEOUT
}

func defaultServerConfig() config {
	return config{
		Addr:            ":8080",
		DataDir:         "./geolookup-data",
		Download:        true,
		CacheTTL:        5 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// configFromEnv overlays environment variables on the defaults.
func configFromEnv() (config, error) {
	cfg := defaultServerConfig()
	if v := os.Getenv("GEOLOOKUP_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("GEOLOOKUP_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("GEOLOOKUP_DOWNLOAD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("parsing GEOLOOKUP_DOWNLOAD: %w", err)
		}
		cfg.Download = b
	}
	if v := os.Getenv("GEOLOOKUP_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("parsing GEOLOOKUP_CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = d
	}
	if v := os.Getenv("GEOLOOKUP_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("parsing GEOLOOKUP_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	return cfg, nil
}
