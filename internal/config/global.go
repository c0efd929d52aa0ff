package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/doppel/config.yml.
// The json tags serve `doppel config --global` output.
type GlobalConfig struct {
	Editor      string `yaml:"editor,omitempty" json:"editor,omitempty"`
	PDFReader   string `yaml:"pdf_reader,omitempty" json:"pdf_reader,omitempty"`
	DefaultMode string `yaml:"default_mode,omitempty" json:"default_mode,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "doppel"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// ValidReaders lists the PDF reader values understood by `doppel pdf --open`.
var ValidReaders = []string{"system", "skim", "preview", "zathura", "evince", "okular"}

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/doppel/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// SaveGlobalConfig writes the global configuration file, creating its
// directory if needed, and refreshes the cache.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine global config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}
	globalConfigCache = cfg
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetDefaultMode returns the default comparison mode from global config.
func GetDefaultMode() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.DefaultMode
}

// GetPDFReader returns the preferred PDF reader from global config.
func GetPDFReader() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.PDFReader
}

// ValidatePDFReader checks that the reader value is valid.
func ValidatePDFReader(reader string) error {
	if reader == "" {
		return nil // Empty defaults to "system"
	}

	for _, valid := range ValidReaders {
		if reader == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid pdf_reader: %s (valid: %v)", reader, ValidReaders)
}

// GlobalKeys lists the global configuration keys addressable by
// `config get --global` and `config set --global`.
func GlobalKeys() []string {
	return []string{"editor", "pdf_reader", "default_mode"}
}

// Get returns the value of a global configuration key as a string.
func (g *GlobalConfig) Get(key string) (string, error) {
	switch key {
	case "editor":
		return g.Editor, nil
	case "pdf_reader":
		return g.PDFReader, nil
	case "default_mode":
		return g.DefaultMode, nil
	}
	return "", fmt.Errorf("unknown global config key %q", key)
}

// Set assigns a global configuration key after validation. An empty
// value clears the setting.
func (g *GlobalConfig) Set(key, value string) error {
	switch key {
	case "editor":
		g.Editor = value
	case "pdf_reader":
		if err := ValidatePDFReader(value); err != nil {
			return err
		}
		g.PDFReader = value
	case "default_mode":
		if err := ValidateMode(value); err != nil {
			return err
		}
		g.DefaultMode = strings.ToLower(strings.TrimSpace(value))
	default:
		return fmt.Errorf("unknown global config key %q (valid: %s)", key, strings.Join(GlobalKeys(), ", "))
	}
	return nil
}
