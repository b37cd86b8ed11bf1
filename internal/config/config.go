package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Catalog      CatalogConfig      `yaml:"catalog"`
	State        StateConfig        `yaml:"state"`
	Auth         AuthConfig         `yaml:"auth"`
	Entitlements EntitlementsConfig `yaml:"entitlements"`
	Tailscale    TailscaleConfig    `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CatalogConfig selects where the exercise catalog is synced from:
// the postgres backend, or a local YAML file in dev setups.
type CatalogConfig struct {
	Database DatabaseConfig `yaml:"database"`
	File     string         `yaml:"file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// StateConfig locates the device-local SQLite state store.
type StateConfig struct {
	Dir string `yaml:"dir"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// EntitlementsConfig is the static stand-in for the billing SDK's
// entitlement read: whether this install has unlimited swaps.
type EntitlementsConfig struct {
	UnlimitedSwaps bool `yaml:"unlimited_swaps"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// UseDatabase reports whether the catalog is backed by postgres rather
// than a local file.
func (c CatalogConfig) UseDatabase() bool {
	return c.File == ""
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix PIVOTFIT_ and underscore-separated
// paths:
//
//	PIVOTFIT_SERVER_HOST, PIVOTFIT_SERVER_PORT,
//	PIVOTFIT_DB_HOST, PIVOTFIT_DB_PORT, PIVOTFIT_DB_NAME,
//	PIVOTFIT_DB_USER, PIVOTFIT_DB_PASSWORD, PIVOTFIT_DB_SSLMODE,
//	PIVOTFIT_CATALOG_FILE, PIVOTFIT_STATE_DIR, PIVOTFIT_AUTH_API_KEY,
//	PIVOTFIT_UNLIMITED_SWAPS
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PIVOTFIT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PIVOTFIT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PIVOTFIT_DB_HOST"); v != "" {
		cfg.Catalog.Database.Host = v
	}
	if v := os.Getenv("PIVOTFIT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.Database.Port = port
		}
	}
	if v := os.Getenv("PIVOTFIT_DB_NAME"); v != "" {
		cfg.Catalog.Database.Name = v
	}
	if v := os.Getenv("PIVOTFIT_DB_USER"); v != "" {
		cfg.Catalog.Database.User = v
	}
	if v := os.Getenv("PIVOTFIT_DB_PASSWORD"); v != "" {
		cfg.Catalog.Database.Password = v
	}
	if v := os.Getenv("PIVOTFIT_DB_SSLMODE"); v != "" {
		cfg.Catalog.Database.SSLMode = v
	}
	if v := os.Getenv("PIVOTFIT_CATALOG_FILE"); v != "" {
		cfg.Catalog.File = v
	}
	if v := os.Getenv("PIVOTFIT_STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}
	if v := os.Getenv("PIVOTFIT_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("PIVOTFIT_UNLIMITED_SWAPS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Entitlements.UnlimitedSwaps = b
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.State.Dir == "" {
		return fmt.Errorf("state.dir is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Catalog.UseDatabase() {
		db := c.Catalog.Database
		if db.Host == "" {
			return fmt.Errorf("catalog.database.host is required")
		}
		if db.Port == 0 {
			return fmt.Errorf("catalog.database.port is required")
		}
		if db.Name == "" {
			return fmt.Errorf("catalog.database.name is required")
		}
		if db.User == "" {
			return fmt.Errorf("catalog.database.user is required")
		}
	}
	return nil
}
