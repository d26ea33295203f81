package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/heartmarshall/myenglish-dictdb/internal/adapter/sqlite"
	"github.com/heartmarshall/myenglish-dictdb/internal/adapter/sqlite/entry"
	"github.com/heartmarshall/myenglish-dictdb/internal/app/dictbuild"
	"github.com/heartmarshall/myenglish-dictdb/internal/config"
	"github.com/heartmarshall/myenglish-dictdb/pkg/ctxutil"
)

// Compile-time interface assertions.
var (
	_ dictbuild.EntryStore = (*entry.Repo)(nil)
	_ dictbuild.TxRunner   = (*sqlite.TxManager)(nil)
)

// Outcome describes what Run did with the output file.
type Outcome int

const (
	OutcomeBuilt Outcome = iota
	OutcomeSkipped
	OutcomeKeptExisting
	OutcomeDryRun
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBuilt:
		return "built"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeKeptExisting:
		return "kept_existing"
	case OutcomeDryRun:
		return "dry_run"
	}
	return "unknown"
}

// Options carries run-time hooks that do not belong in configuration.
type Options struct {
	Progress dictbuild.ProgressFunc
}

// Report is the result of a Run.
type Report struct {
	Outcome Outcome
	Output  string
	Build   dictbuild.Result
}

// Run builds the dictionary database described by cfg.
//
// build.skip short-circuits the run. With build.if_missing an existing
// output file is kept. Otherwise the output directory is created and the
// pipeline builds a new SQLite file that replaces the output on success.
// On failure the previous output, if any, is left untouched.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger, opts Options) (Report, error) {
	ctx, _ = ctxutil.NewRunID(ctx)
	report := Report{Output: cfg.Build.OutputPath}

	log.InfoContext(ctx, "starting dictionary build",
		slog.String("version", BuildVersion()),
		slog.String("output", cfg.Build.OutputPath),
	)

	if cfg.Build.Skip {
		log.InfoContext(ctx, "dictionary build skipped by configuration")
		report.Outcome = OutcomeSkipped
		return report, nil
	}

	if cfg.Build.IfMissing {
		_, err := os.Stat(cfg.Build.OutputPath)
		switch {
		case err == nil:
			log.InfoContext(ctx, "output already exists, keeping it", slog.String("output", cfg.Build.OutputPath))
			report.Outcome = OutcomeKeptExisting
			return report, nil
		case !errors.Is(err, fs.ErrNotExist):
			return report, fmt.Errorf("stat output: %w", err)
		}
	}

	pcfg := dictbuild.NewConfig(cfg)

	if cfg.Build.DryRun {
		p := dictbuild.NewPipeline(log, nil, nil, nil, pcfg)
		result, err := p.Run(ctx)
		report.Build = result
		report.Outcome = OutcomeDryRun
		return report, err
	}

	// Built next to the output; moved into place only after every phase succeeded.
	partial := cfg.Build.OutputPath + partialSuffix
	if err := removeDatabase(partial); err != nil {
		return report, fmt.Errorf("remove stale partial build: %w", err)
	}

	result, err := build(ctx, log, partial, cfg.Build.JournalMode, pcfg, opts)
	report.Build = result
	if err != nil {
		if rmErr := removeDatabase(partial); rmErr != nil {
			log.WarnContext(ctx, "failed to remove partial build",
				slog.String("path", partial),
				slog.String("error", rmErr.Error()),
			)
		}
		return report, err
	}

	if err := replaceDatabase(partial, cfg.Build.OutputPath); err != nil {
		_ = removeDatabase(partial)
		return report, fmt.Errorf("move database into place: %w", err)
	}

	report.Outcome = OutcomeBuilt
	return report, nil
}

// partialSuffix marks a database that is still being built.
const partialSuffix = ".partial"

// sidecarSuffixes are the files SQLite keeps next to a database.
var sidecarSuffixes = []string{"-wal", "-shm", "-journal"}

// build runs the pipeline against a fresh SQLite file at path and closes it.
func build(ctx context.Context, log *slog.Logger, path, journalMode string, pcfg dictbuild.Config, opts Options) (dictbuild.Result, error) {
	db, err := sqlite.Open(ctx, path, journalMode)
	if err != nil {
		return dictbuild.Result{}, err
	}

	txm := sqlite.NewTxManager(db)
	repo := entry.New(db)
	schema := func(ctx context.Context) (int, error) {
		return sqlite.ApplySchema(ctx, db)
	}

	p := dictbuild.NewPipeline(log, repo, txm, schema, pcfg).OnProgress(opts.Progress)
	result, err := p.Run(ctx)
	closeErr := db.Close()
	if err != nil {
		return result, fmt.Errorf("build dictionary: %w", err)
	}
	if closeErr != nil {
		return result, fmt.Errorf("close database: %w", closeErr)
	}
	return result, nil
}

// removeDatabase deletes a database file and its sidecars. Missing files are ignored.
func removeDatabase(path string) error {
	for _, p := range append([]string{path}, sidecarPaths(path)...) {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// replaceDatabase renames src over dst. Stale sidecars of dst are removed
// first so SQLite does not replay them onto the new file.
func replaceDatabase(src, dst string) error {
	for _, p := range sidecarPaths(dst) {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return os.Rename(src, dst)
}

func sidecarPaths(path string) []string {
	paths := make([]string, 0, len(sidecarSuffixes))
	for _, s := range sidecarSuffixes {
		paths = append(paths, path+s)
	}
	return paths
}
