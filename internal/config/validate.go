package config

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/myenglish-dictdb/internal/domain"
)

// maxBatchSize keeps a multi-row INSERT of five columns under SQLite's
// bound-parameter limit.
const maxBatchSize = 5000

var journalModes = map[string]bool{
	"DELETE": true, "TRUNCATE": true, "PERSIST": true,
	"MEMORY": true, "WAL": true, "OFF": true,
}

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
// Flag overrides applied after Load should be followed by another Validate.
func (c *Config) Validate() error {
	var errs []domain.FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, domain.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.Build.OutputPath) == "" {
		add("build.output_path", "required")
	} else if strings.ContainsRune(c.Build.OutputPath, '?') {
		add("build.output_path", "must not contain '?'")
	}
	if c.Build.BatchSize <= 0 || c.Build.BatchSize > maxBatchSize {
		add("build.batch_size", "must be in 1..%d (got %d)", maxBatchSize, c.Build.BatchSize)
	}
	if c.Build.MaxExamples <= 0 {
		add("build.max_examples", "must be > 0 (got %d)", c.Build.MaxExamples)
	}
	if !journalModes[strings.ToUpper(c.Build.JournalMode)] {
		add("build.journal_mode", "unsupported mode %q", c.Build.JournalMode)
	}

	if strings.TrimSpace(c.Corpus.Dir) == "" {
		add("corpus.dir", "required")
	}
	if c.Corpus.URL == "" && c.Corpus.ReleaseAPI == "" {
		add("corpus.url", "either url or release_api must be set")
	}
	if c.Corpus.DownloadTimeout <= 0 {
		add("corpus.download_timeout", "must be > 0 (got %s)", c.Corpus.DownloadTimeout)
	}
	if c.Corpus.MaxDownloadBytes <= 0 {
		add("corpus.max_download_bytes", "must be > 0 (got %d)", c.Corpus.MaxDownloadBytes)
	}

	if !c.Extras.Disabled && strings.TrimSpace(c.Extras.Path) == "" {
		add("extras.path", "required when extras are enabled")
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
