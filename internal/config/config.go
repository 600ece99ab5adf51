// Package config loads runtime configuration for the registry sync tool.
// The GitHub access token always comes from the environment; everything
// else has defaults that an optional TOML file can override.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// TokenEnvVar is the environment variable holding the GitHub access token.
const TokenEnvVar = "GITHUB_TOKEN"

// ErrMissingToken indicates the required access token is not set.
// This is fatal: no work can start without credentials.
var ErrMissingToken = errors.New("config: " + TokenEnvVar + " is not set")

// Defaults for everything the TOML file may override.
const (
	DefaultCatalogRoot = "catalog"
	DefaultLedgerPath  = "ledger.json"
	DefaultBatchSize   = 20
	DefaultPageSize    = 100
	DefaultPagePause   = time.Second
	DefaultBatchPause  = 2 * time.Second
)

// Config holds the effective runtime configuration.
type Config struct {
	// Token is the GitHub access token. Never read from the config file.
	Token string `toml:"-"`

	// CatalogRoot is the directory catalog entries are written under.
	CatalogRoot string `toml:"catalog_root"`

	// LedgerPath is the path of the sync ledger file.
	LedgerPath string `toml:"ledger_path"`

	// BatchSize is the number of repositories fetched per detail request.
	BatchSize int `toml:"batch_size"`

	// PageSize is the number of search results requested per page.
	PageSize int `toml:"page_size"`

	// PagePauseSeconds is the pause between successful search pages.
	PagePauseSeconds int `toml:"page_pause_seconds"`

	// BatchPauseSeconds is the pause between successfully processed batches.
	BatchPauseSeconds int `toml:"batch_pause_seconds"`

	// ExtraQueries are additional search queries run alongside the
	// built-in package and application topic queries.
	ExtraQueries []string `toml:"extra_queries"`
}

// Load builds the configuration from the environment and, when path is
// non-empty and the file exists, a TOML overrides file. A missing token is
// an error; a missing config file at the default path is not.
func Load(path string) (*Config, error) {
	cfg := &Config{
		CatalogRoot: DefaultCatalogRoot,
		LedgerPath:  DefaultLedgerPath,
		BatchSize:   DefaultBatchSize,
		PageSize:    DefaultPageSize,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Optional file; defaults apply.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.Token = os.Getenv(TokenEnvVar)
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.PageSize <= 0 || cfg.PageSize > 100 {
		cfg.PageSize = DefaultPageSize
	}
	return cfg, nil
}

// PagePause returns the pause between search pages.
func (c *Config) PagePause() time.Duration {
	if c.PagePauseSeconds <= 0 {
		return DefaultPagePause
	}
	return time.Duration(c.PagePauseSeconds) * time.Second
}

// BatchPause returns the pause between batches.
func (c *Config) BatchPause() time.Duration {
	if c.BatchPauseSeconds <= 0 {
		return DefaultBatchPause
	}
	return time.Duration(c.BatchPauseSeconds) * time.Second
}
