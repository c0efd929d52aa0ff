package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/matsen/doppel/internal/bib"
)

// writeGlobalConfig writes cfg as YAML under dir/doppel/config.yml.
func writeGlobalConfig(t *testing.T, dir string, cfg GlobalConfig) {
	t.Helper()
	configDir := filepath.Join(dir, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, GlobalConfigFile), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Test with custom XDG_CONFIG_HOME
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/doppel/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	// Test with empty XDG_CONFIG_HOME (should use ~/.config)
	os.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "doppel", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Point to a non-existent directory
	tmpDir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}

	// Should return empty config
	if cfg.DefaultMode != "" {
		t.Errorf("DefaultMode = %q, want empty", cfg.DefaultMode)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	writeGlobalConfig(t, tmpDir, GlobalConfig{
		Editor:      "vim",
		PDFReader:   "zathura",
		DefaultMode: "biblatex",
	})
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	if cfg.Editor != "vim" {
		t.Errorf("Editor = %q, want vim", cfg.Editor)
	}
	if cfg.PDFReader != "zathura" {
		t.Errorf("PDFReader = %q, want zathura", cfg.PDFReader)
	}
	if cfg.DefaultMode != "biblatex" {
		t.Errorf("DefaultMode = %q, want biblatex", cfg.DefaultMode)
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Create invalid config file
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	configFile := filepath.Join(configDir, GlobalConfigFile)
	if err := os.WriteFile(configFile, []byte("editor: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	_, err := LoadGlobalConfig()
	if err == nil {
		t.Error("LoadGlobalConfig() should return error for invalid YAML")
	}
}

func TestSaveGlobalConfig(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Point at a directory with no config yet
	tmpDir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	if err := SaveGlobalConfig(&GlobalConfig{PDFReader: "evince"}); err != nil {
		t.Fatalf("SaveGlobalConfig() error = %v", err)
	}

	// Reads back from disk after a cache reset
	ResetGlobalConfigCache()
	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.PDFReader != "evince" {
		t.Errorf("PDFReader = %q, want evince", cfg.PDFReader)
	}
}

func TestGetDefaultMode(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	// Empty without a config file
	if got := GetDefaultMode(); got != "" {
		t.Errorf("GetDefaultMode() = %q, want empty", got)
	}

	writeGlobalConfig(t, tmpDir, GlobalConfig{DefaultMode: "biblatex"})
	ResetGlobalConfigCache()

	if got := GetDefaultMode(); got != "biblatex" {
		t.Errorf("GetDefaultMode() = %q, want biblatex", got)
	}
}

func TestGlobalConfig_GetSet(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  string
	}{
		{"editor", "emacs", "emacs"},
		{"pdf_reader", "okular", "okular"},
		{"default_mode", "BibLaTeX", "biblatex"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			var cfg GlobalConfig
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%q, %q) error = %v", tt.key, tt.value, err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestGlobalConfig_SetRejectsInvalid(t *testing.T) {
	var cfg GlobalConfig

	if err := cfg.Set("default_mode", "ris"); err == nil {
		t.Error("Set(default_mode, ris) should return error")
	}
	if err := cfg.Set("pdf_reader", "adobe"); err == nil {
		t.Error("Set(pdf_reader, adobe) should return error")
	}
	if err := cfg.Set("library_path", "/somewhere"); err == nil {
		t.Error("Set(library_path) should return error for unknown key")
	}
	if _, err := cfg.Get("library_path"); err == nil {
		t.Error("Get(library_path) should return error for unknown key")
	}
}

func TestValidatePDFReader(t *testing.T) {
	tests := []struct {
		reader  string
		wantErr bool
	}{
		{"", false}, // Empty defaults to system
		{"system", false},
		{"skim", false},
		{"preview", false},
		{"zathura", false},
		{"evince", false},
		{"okular", false},
		{"invalid", true},
		{"adobe", true},
	}

	for _, tt := range tests {
		t.Run(tt.reader, func(t *testing.T) {
			err := ValidatePDFReader(tt.reader)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePDFReader(%q) error = %v, wantErr = %v", tt.reader, err, tt.wantErr)
			}
		})
	}
}

func TestGlobalKeys(t *testing.T) {
	var cfg GlobalConfig
	for _, key := range GlobalKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v for listed key", key, err)
		}
	}
}

func TestEngineMode(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	// No repo mode, no global default: BibTeX
	cfg := &Config{}
	if got := cfg.EngineMode(); got != bib.ModeBibTeX {
		t.Errorf("EngineMode() = %v, want bibtex", got)
	}

	// Global default applies when the repo doesn't set a mode
	writeGlobalConfig(t, tmpDir, GlobalConfig{DefaultMode: "biblatex"})
	ResetGlobalConfigCache()
	if got := cfg.EngineMode(); got != bib.ModeBibLaTeX {
		t.Errorf("EngineMode() = %v, want biblatex from global default", got)
	}

	// Repo mode wins over the global default
	cfg.Mode = "bibtex"
	if got := cfg.EngineMode(); got != bib.ModeBibTeX {
		t.Errorf("EngineMode() = %v, want bibtex from repo config", got)
	}
}

func TestGlobalConfigCache(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	writeGlobalConfig(t, tmpDir, GlobalConfig{Editor: "vim"})
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	// First load
	cfg1, _ := LoadGlobalConfig()
	if cfg1.Editor != "vim" {
		t.Errorf("First load: Editor = %q, want vim", cfg1.Editor)
	}

	// Modify file
	writeGlobalConfig(t, tmpDir, GlobalConfig{Editor: "emacs"})

	// Second load should return cached value
	cfg2, _ := LoadGlobalConfig()
	if cfg2.Editor != "vim" {
		t.Errorf("Second load: Editor = %q, want vim (cached)", cfg2.Editor)
	}

	// Reset cache
	ResetGlobalConfigCache()

	// Third load should read modified file
	cfg3, _ := LoadGlobalConfig()
	if cfg3.Editor != "emacs" {
		t.Errorf("Third load: Editor = %q, want emacs", cfg3.Editor)
	}
}
