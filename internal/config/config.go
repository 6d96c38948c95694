// Package config loads and saves the service's database connection and
// logging settings: defaults, then a JSON file, then WI_* environment
// variables, in increasing precedence.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

const configFile = ".workitem/config.json"

// Config holds the database connection and logging settings named in the
// external interface's Configuration section.
type Config struct {
	Driver   string `json:"driver"` // "mysql" or "sqlite"
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	LogLevel string `json:"log_level"`
}

// Default returns the out-of-the-box configuration: an embedded sqlite
// database file under baseDir, info-level logging.
func Default(baseDir string) Config {
	return Config{
		Driver:   "sqlite",
		Database: filepath.Join(baseDir, ".workitem", "workitem.db"),
		LogLevel: "info",
	}
}

// Load reads baseDir's config file, if present, and overlays WI_* env vars.
// A missing file is not an error; Load falls back to Default.
func Load(baseDir string) (Config, error) {
	cfg := Default(baseDir)

	path := filepath.Join(baseDir, configFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, err
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("WI_DRIVER"); v != "" {
		c.Driver = v
	}
	if v := os.Getenv("WI_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("WI_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("WI_USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("WI_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("WI_DATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("WI_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Save writes cfg to baseDir's config file using an atomic temp-file-then-
// rename, so a crash mid-write never leaves a truncated config on disk.
func Save(baseDir string, cfg Config) error {
	path := filepath.Join(baseDir, configFile)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}
