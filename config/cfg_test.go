package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}

	if cfg.Preview.DebounceMS != 600 {
		t.Errorf("Default debounce = %d, want 600", cfg.Preview.DebounceMS)
	}

	if cfg.Site.DefaultLanguage != "en" {
		t.Errorf("Default language = %q, want en", cfg.Site.DefaultLanguage)
	}

	if cfg.Editor.SummaryMaxRunes != 220 {
		t.Errorf("Default summary limit = %d, want 220", cfg.Editor.SummaryMaxRunes)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
site:
  name: Testsite
  default_language: de
  languages: ["de", "en"]
  contact:
    email: mail@example.org
preview:
  endpoint: http://localhost:9000/preview/
  timeout_seconds: 5
  debounce_milliseconds: 250
assets:
  endpoint: http://localhost:9000/assets/
  token: very-secret
  cache_size: 32
export:
  fix_zip: true
snapshot:
  path: ` + filepath.ToSlash(filepath.Join(tmpDir, "snapshots.db")) + `
  keep: 5
logging:
  console:
    level: normal
  file:
    level: debug
    destination: ` + filepath.ToSlash(filepath.Join(tmpDir, "test.log")) + `
    mode: append
reporting:
  destination: ` + filepath.ToSlash(filepath.Join(tmpDir, "report.zip")) + `
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Site.Name != "Testsite" {
		t.Errorf("Site name = %q, want Testsite", cfg.Site.Name)
	}

	if cfg.Preview.DebounceMS != 250 {
		t.Errorf("Debounce = %d, want 250", cfg.Preview.DebounceMS)
	}

	if cfg.Preview.TimeoutSec != 5 {
		t.Errorf("Preview timeout = %d, want 5", cfg.Preview.TimeoutSec)
	}

	if !cfg.Export.FixZip {
		t.Error("Expected FixZip to be true")
	}

	if cfg.Snapshot.Keep != 5 {
		t.Errorf("Snapshot keep = %d, want 5", cfg.Snapshot.Keep)
	}

	if string(cfg.Assets.Token) != "very-secret" {
		t.Error("Asset token not loaded from file")
	}
}

func TestLoadConfiguration_UnknownField(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
nonsense: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Fatal("LoadConfiguration() expected error for unknown field, got nil")
	}
}

func TestLoadConfiguration_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad version", "version: 2\n"},
		{"bad debounce", "version: 1\npreview:\n  debounce_milliseconds: 100000\n"},
		{"bad language", "version: 1\nsite:\n  default_language: not a tag\n"},
		{"bad social key", "version: 1\nsite:\n  social:\n    myspace: http://example.org\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			if _, err := LoadConfiguration(configPath); err == nil {
				t.Errorf("LoadConfiguration() expected validation error, got nil")
			}
		})
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Assets.Token = "super-secret"

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	out := string(data)
	if strings.Contains(out, "super-secret") {
		t.Error("Dump() leaked secret token value")
	}
	if !strings.Contains(out, SecretStringValue) {
		t.Error("Dump() should mask secret token value")
	}
	if !strings.Contains(out, "debounce_milliseconds") {
		t.Error("Dump() missing expected fields")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(data), "version: 1") {
		t.Error("Prepare() output missing version")
	}
}
