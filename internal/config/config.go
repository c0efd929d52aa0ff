// Package config handles repository and global configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matsen/doppel/internal/bib"
)

// Config is the repository configuration stored in .doppel/config.json.
// Every field is an override; zero values mean the engine and store
// defaults.
type Config struct {
	Mode             string  `json:"mode,omitempty"`              // bibtex or biblatex
	Threshold        float64 `json:"threshold,omitempty"`         // duplicate threshold
	DoubtMargin      float64 `json:"doubt_margin,omitempty"`      // half-width of the doubt band
	SimilarityFloor  float64 `json:"similarity_floor,omitempty"`  // word-overlap floor for fuzzy fields
	KeywordDelimiter string  `json:"keyword_delimiter,omitempty"` // separator of the keywords field
	StoreDir         string  `json:"store_dir,omitempty"`         // store location, relative to the root
}

const (
	DoppelDir  = ".doppel"
	ConfigFile = "config.json"
	// RootEnv, when set, overrides repository discovery.
	RootEnv = "DOPPEL_ROOT"
)

// ErrNotRepository reports that no .doppel directory was found.
var ErrNotRepository = errors.New("not in a doppel repository")

// DoppelPath returns the .doppel directory of a repository root.
func DoppelPath(root string) string {
	return filepath.Join(root, DoppelDir)
}

// ConfigPath returns the config.json path of a repository root.
func ConfigPath(root string) string {
	return filepath.Join(root, DoppelDir, ConfigFile)
}

// StorePath returns the directory holding the library files, honoring
// the store_dir override.
func StorePath(root string, cfg *Config) string {
	if cfg != nil && cfg.StoreDir != "" {
		if filepath.IsAbs(cfg.StoreDir) {
			return cfg.StoreDir
		}
		return filepath.Join(root, cfg.StoreDir)
	}
	return DoppelPath(root)
}

// IsRepository checks whether root carries a .doppel directory.
func IsRepository(root string) bool {
	info, err := os.Stat(DoppelPath(root))
	return err == nil && info.IsDir()
}

// FindRepository returns the repository root: DOPPEL_ROOT when set,
// otherwise the nearest ancestor of start carrying a .doppel directory.
func FindRepository(start string) (string, error) {
	if root := os.Getenv(RootEnv); root != "" {
		root = ExpandPath(root)
		if !IsRepository(root) {
			return "", fmt.Errorf("%w: %s=%s has no %s directory", ErrNotRepository, RootEnv, root, DoppelDir)
		}
		return root, nil
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	for {
		if IsRepository(abs) {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("%w (no %s directory found)", ErrNotRepository, DoppelDir)
		}
		abs = parent
	}
}

// Load reads the repository configuration. A missing file is not an
// error: the config holds overrides, and a bare repository runs on
// defaults.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes the repository configuration.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(root), data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// EngineMode resolves the comparison mode: the repository setting wins,
// then the global default, then BibTeX.
func (c *Config) EngineMode() bib.Mode {
	if c != nil && c.Mode != "" {
		return bib.ParseMode(c.Mode)
	}
	return bib.ParseMode(GetDefaultMode())
}

// Keys lists the repository configuration keys addressable by
// `config get` and `config set`.
func Keys() []string {
	return []string{
		"mode", "threshold", "doubt_margin", "similarity_floor",
		"keyword_delimiter", "store_dir",
	}
}

// Get returns the value of a configuration key as a string. Unset keys
// report an empty string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "mode":
		return c.Mode, nil
	case "threshold":
		return formatRatio(c.Threshold), nil
	case "doubt_margin":
		return formatRatio(c.DoubtMargin), nil
	case "similarity_floor":
		return formatRatio(c.SimilarityFloor), nil
	case "keyword_delimiter":
		return c.KeywordDelimiter, nil
	case "store_dir":
		return c.StoreDir, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set assigns a configuration key from its string form after
// validation. An empty value clears the override.
func (c *Config) Set(key, value string) error {
	switch key {
	case "mode":
		if err := ValidateMode(value); err != nil {
			return err
		}
		c.Mode = strings.ToLower(strings.TrimSpace(value))
	case "threshold":
		v, err := parseRatio(key, value)
		if err != nil {
			return err
		}
		c.Threshold = v
	case "doubt_margin":
		v, err := parseRatio(key, value)
		if err != nil {
			return err
		}
		c.DoubtMargin = v
	case "similarity_floor":
		v, err := parseRatio(key, value)
		if err != nil {
			return err
		}
		c.SimilarityFloor = v
	case "keyword_delimiter":
		c.KeywordDelimiter = value
	case "store_dir":
		c.StoreDir = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}

// ValidateMode checks a mode value. Empty means the default.
func ValidateMode(mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "bibtex", "biblatex":
		return nil
	}
	return fmt.Errorf("invalid mode %q (valid: bibtex, biblatex)", mode)
}

func parseRatio(key, value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not a number", key, value)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("invalid %s: %v is outside [0, 1]", key, v)
	}
	return v, nil
}

func formatRatio(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ExpandPath expands a leading ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
