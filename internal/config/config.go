package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const SourceFileExt = ".rho"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".rho", ".rhoscope"}

// LanguageID is the LSP language identifier this server responds to.
const LanguageID = "rho"

// ConfigFileName is the optional per-workspace configuration file.
const ConfigFileName = ".rhoscope.yaml"

// ServerConfig holds per-workspace server settings.
type ServerConfig struct {
	// LogLevel is "debug", "info" or "error".
	LogLevel string `yaml:"logLevel"`
	Cache    struct {
		// Enabled turns on the on-disk declaration cache.
		Enabled bool `yaml:"enabled"`
		// Path overrides the cache location; defaults to
		// <root>/.rhoscope/index.db when empty.
		Path string `yaml:"path"`
	} `yaml:"cache"`
}

func Default() ServerConfig {
	cfg := ServerConfig{LogLevel: "info"}
	cfg.Cache.Enabled = true
	return cfg
}

// Load reads the workspace configuration from rootPath. A missing file is
// not an error: defaults apply.
func Load(rootPath string) (ServerConfig, error) {
	cfg := Default()
	if rootPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filepath.Join(rootPath, ConfigFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// CachePath resolves the effective cache location for a workspace root.
func (c ServerConfig) CachePath(rootPath string) string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(rootPath, ".rhoscope", "index.db")
}
