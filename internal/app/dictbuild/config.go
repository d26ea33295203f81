package dictbuild

import (
	"github.com/heartmarshall/myenglish-dictdb/internal/config"
)

// Config holds pipeline settings.
type Config struct {
	Corpus         config.CorpusConfig
	ExtrasPath     string
	ExtrasDisabled bool
	BatchSize      int
	MaxExamples    int
	DryRun         bool
}

// NewConfig derives pipeline settings from the application configuration.
func NewConfig(cfg *config.Config) Config {
	return Config{
		Corpus:         cfg.Corpus,
		ExtrasPath:     cfg.Extras.Path,
		ExtrasDisabled: cfg.Extras.Disabled,
		BatchSize:      cfg.Build.BatchSize,
		MaxExamples:    cfg.Build.MaxExamples,
		DryRun:         cfg.Build.DryRun,
	}
}
