package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/heartmarshall/myenglish-dictdb/internal/domain"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func validConfig() Config {
	return Config{
		Build: BuildConfig{
			OutputPath:  "assets/databases/base.sqlite",
			BatchSize:   500,
			MaxExamples: 12,
			JournalMode: "WAL",
		},
		Corpus: CorpusConfig{
			Dir:              "data/wordnet",
			ReleaseAPI:       "https://api.github.com/repos/globalwordnet/english-wordnet/releases/latest",
			UserAgent:        "myenglish-dictdb",
			DownloadTimeout:  10 * time.Minute,
			MaxDownloadBytes: 1 << 20,
		},
		Extras: ExtrasConfig{Path: "extras/examples_en.jsonl"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

const validYAML = `
build:
  output_path: "out/dict.sqlite"
  batch_size: 100
  max_examples: 8
  journal_mode: "delete"
  if_missing: true

corpus:
  dir: "/tmp/oewn"
  url: "https://example.com/english-wordnet-2025-json.zip"
  download_timeout: "90s"

extras:
  path: "extras/more.jsonl"
  disabled: true

log:
  level: "debug"
  format: "json"
`

func TestLoad_ValidYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Build
	if cfg.Build.OutputPath != "out/dict.sqlite" {
		t.Errorf("build.output_path = %q", cfg.Build.OutputPath)
	}
	if cfg.Build.BatchSize != 100 {
		t.Errorf("build.batch_size = %d, want 100", cfg.Build.BatchSize)
	}
	if cfg.Build.MaxExamples != 8 {
		t.Errorf("build.max_examples = %d, want 8", cfg.Build.MaxExamples)
	}
	if cfg.Build.JournalMode != "delete" {
		t.Errorf("build.journal_mode = %q, want %q", cfg.Build.JournalMode, "delete")
	}
	if !cfg.Build.IfMissing {
		t.Error("build.if_missing should be true")
	}

	// Corpus
	if cfg.Corpus.Dir != "/tmp/oewn" {
		t.Errorf("corpus.dir = %q", cfg.Corpus.Dir)
	}
	if cfg.Corpus.DownloadTimeout != 90*time.Second {
		t.Errorf("corpus.download_timeout = %v, want 90s", cfg.Corpus.DownloadTimeout)
	}
	if cfg.Corpus.UserAgent != "myenglish-dictdb" {
		t.Errorf("corpus.user_agent = %q, want default", cfg.Corpus.UserAgent)
	}

	// Extras
	if cfg.Extras.Path != "extras/more.jsonl" {
		t.Errorf("extras.path = %q", cfg.Extras.Path)
	}
	if !cfg.Extras.Disabled {
		t.Error("extras.disabled should be true")
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log.format = %q, want %q", cfg.Log.Format, "json")
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("BUILD_BATCH_SIZE", "42")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Build.BatchSize != 42 {
		t.Errorf("build.batch_size = %d, want 42 (ENV override)", cfg.Build.BatchSize)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q (ENV override)", cfg.Log.Level, "warn")
	}
}

func TestLoad_CONFIG_PATHFallback(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Build.OutputPath != "out/dict.sqlite" {
		t.Errorf("build.output_path = %q, want value from CONFIG_PATH file", cfg.Build.OutputPath)
	}
}

func TestLoad_NoFile_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Build.OutputPath != "assets/databases/base.sqlite" {
		t.Errorf("build.output_path = %q, want default", cfg.Build.OutputPath)
	}
	if cfg.Build.MaxExamples != 12 {
		t.Errorf("build.max_examples = %d, want 12", cfg.Build.MaxExamples)
	}
	if cfg.Build.JournalMode != "WAL" {
		t.Errorf("build.journal_mode = %q, want WAL", cfg.Build.JournalMode)
	}
	if cfg.Extras.Path != "extras/examples_en.jsonl" {
		t.Errorf("extras.path = %q, want default", cfg.Extras.Path)
	}
	if cfg.Extras.Disabled {
		t.Error("extras should be enabled by default")
	}
	if cfg.Corpus.ReleaseAPI == "" {
		t.Error("corpus.release_api should have a default")
	}
}

func TestLoad_SkipDictionaryBuildEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SKIP_DICTIONARY_BUILD", "1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Build.Skip {
		t.Error("SKIP_DICTIONARY_BUILD=1 should set build.skip")
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), `{{{invalid yaml`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeYAML(t, t.TempDir(), "build:\n  journal_mode: \"sideways\"\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"empty output path", func(c *Config) { c.Build.OutputPath = " " }, "build.output_path"},
		{"question mark in output path", func(c *Config) { c.Build.OutputPath = "out/base.sqlite?mode=ro" }, "build.output_path"},
		{"zero batch size", func(c *Config) { c.Build.BatchSize = 0 }, "build.batch_size"},
		{"batch size above limit", func(c *Config) { c.Build.BatchSize = 6000 }, "build.batch_size"},
		{"negative max examples", func(c *Config) { c.Build.MaxExamples = -1 }, "build.max_examples"},
		{"unknown journal mode", func(c *Config) { c.Build.JournalMode = "fast" }, "build.journal_mode"},
		{"empty corpus dir", func(c *Config) { c.Corpus.Dir = "" }, "corpus.dir"},
		{"no corpus source", func(c *Config) { c.Corpus.URL = ""; c.Corpus.ReleaseAPI = "" }, "corpus.url"},
		{"zero timeout", func(c *Config) { c.Corpus.DownloadTimeout = 0 }, "corpus.download_timeout"},
		{"zero download limit", func(c *Config) { c.Corpus.MaxDownloadBytes = 0 }, "corpus.max_download_bytes"},
		{"extras without path", func(c *Config) { c.Extras.Path = "" }, "extras.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *domain.ValidationError, got %T", err)
			}
			if len(verr.Errors) != 1 || verr.Errors[0].Field != tt.field {
				t.Fatalf("expected single error on %s, got %+v", tt.field, verr.Errors)
			}
		})
	}
}

func TestValidate_ExtrasDisabledWithoutPath(t *testing.T) {
	cfg := validConfig()
	cfg.Extras.Disabled = true
	cfg.Extras.Path = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled extras need no path: %v", err)
	}
}

func TestValidate_JournalModeCaseInsensitive(t *testing.T) {
	cfg := validConfig()
	cfg.Build.JournalMode = "truncate"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
