package config

import (
	"time"
)

// Config is the root configuration of the database builder.
type Config struct {
	Build  BuildConfig  `yaml:"build"`
	Corpus CorpusConfig `yaml:"corpus"`
	Extras ExtrasConfig `yaml:"extras"`
	Log    LogConfig    `yaml:"log"`
}

// BuildConfig holds output database settings.
type BuildConfig struct {
	OutputPath  string `yaml:"output_path"  env:"BUILD_OUTPUT_PATH"  env-default:"assets/databases/base.sqlite"`
	BatchSize   int    `yaml:"batch_size"   env:"BUILD_BATCH_SIZE"   env-default:"500"`
	MaxExamples int    `yaml:"max_examples" env:"BUILD_MAX_EXAMPLES" env-default:"12"`
	JournalMode string `yaml:"journal_mode" env:"BUILD_JOURNAL_MODE" env-default:"WAL"`
	// IfMissing keeps an existing output file instead of rebuilding it.
	IfMissing bool `yaml:"if_missing" env:"BUILD_IF_MISSING"`
	// Skip disables the build entirely (SKIP_DICTIONARY_BUILD=1).
	Skip   bool `yaml:"skip"    env:"SKIP_DICTIONARY_BUILD"`
	DryRun bool `yaml:"dry_run" env:"BUILD_DRY_RUN"`
}

// CorpusConfig holds the location of the WordNet corpus and how to fetch it.
type CorpusConfig struct {
	Dir string `yaml:"dir" env:"WORDNET_DIR" env-default:"data/wordnet"`
	// URL points at a JSON-edition archive. When empty the latest release
	// is discovered through ReleaseAPI.
	URL              string        `yaml:"url"                env:"WORDNET_URL"`
	ReleaseAPI       string        `yaml:"release_api"        env:"WORDNET_RELEASE_API"        env-default:"https://api.github.com/repos/globalwordnet/english-wordnet/releases/latest"`
	UserAgent        string        `yaml:"user_agent"         env:"WORDNET_USER_AGENT"         env-default:"myenglish-dictdb"`
	DownloadTimeout  time.Duration `yaml:"download_timeout"   env:"WORDNET_DOWNLOAD_TIMEOUT"   env-default:"10m"`
	MaxDownloadBytes int64         `yaml:"max_download_bytes" env:"WORDNET_MAX_DOWNLOAD_BYTES" env-default:"536870912"`
}

// ExtrasConfig holds the supplementary example sentences source.
type ExtrasConfig struct {
	Path string `yaml:"path" env:"EXTRAS_PATH" env-default:"extras/examples_en.jsonl"`
	// Disabled turns off supplementary example merging.
	Disabled bool `yaml:"disabled" env:"EXTRAS_DISABLED"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
