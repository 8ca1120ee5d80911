// Package config loads auctiond configuration from an optional YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all auctiond settings.
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	Sync struct {
		// NATSURL enables the cross-process sync bus. Empty keeps the
		// bus in-process only.
		NATSURL string `yaml:"nats_url"`
		Subject string `yaml:"subject"`
	} `yaml:"sync"`
	Seed struct {
		Teams   string `yaml:"teams"`
		Players string `yaml:"players"`
	} `yaml:"seed"`
	Archive struct {
		// DSN enables Postgres archival of completed sessions. Empty
		// disables it.
		DSN string `yaml:"dsn"`
	} `yaml:"archive"`
	Auction struct {
		BidIncrementLakh int64 `yaml:"bid_increment_lakh"`
	} `yaml:"auction"`
}

// Load reads the YAML file at path (skipped when path is empty or
// missing), then applies environment overrides on top of defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.HTTP.Addr = getEnv("AUCTION_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.Store.Path = getEnv("AUCTION_STORE_PATH", cfg.Store.Path)
	cfg.Sync.NATSURL = getEnv("AUCTION_NATS_URL", cfg.Sync.NATSURL)
	cfg.Sync.Subject = getEnv("AUCTION_SYNC_SUBJECT", cfg.Sync.Subject)
	cfg.Seed.Teams = getEnv("AUCTION_SEED_TEAMS", cfg.Seed.Teams)
	cfg.Seed.Players = getEnv("AUCTION_SEED_PLAYERS", cfg.Seed.Players)
	cfg.Archive.DSN = getEnv("AUCTION_ARCHIVE_DSN", cfg.Archive.DSN)
	cfg.Auction.BidIncrementLakh = getEnvAsInt64("AUCTION_BID_INCREMENT_LAKH", cfg.Auction.BidIncrementLakh)

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = ":8080"
	cfg.Store.Path = "auction.db"
	cfg.Seed.Teams = "assets/teams.json"
	cfg.Seed.Players = "assets/players.json"
	cfg.Auction.BidIncrementLakh = 25
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
