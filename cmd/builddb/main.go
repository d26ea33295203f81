// Command builddb converts the Open English WordNet corpus into the SQLite
// dictionary database shipped with the app. The corpus is downloaded on
// first use. Supplementary example sentences are merged from a JSONL file
// when it exists.
//
// Usage:
//
//	builddb [flags] [output]
//
// Flags:
//
//	--output      destination database file (default: assets/databases/base.sqlite)
//	--config      path to YAML config file
//	--extras      supplementary examples JSONL file
//	--no-extras   do not merge supplementary examples
//	--corpus-dir  directory holding the WordNet JSON files
//	--if-missing  keep an existing output file
//	--dry-run     parse and extract without writing the database
//	--progress    render a progress bar while writing
//	--version     print the version and exit
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gosuri/uiprogress"

	"github.com/heartmarshall/myenglish-dictdb/internal/app"
	"github.com/heartmarshall/myenglish-dictdb/internal/config"
)

func main() {
	outputFlag := flag.String("output", "", "destination database file")
	configFlag := flag.String("config", "", "path to YAML config file")
	extrasFlag := flag.String("extras", "", "supplementary examples JSONL file")
	noExtrasFlag := flag.Bool("no-extras", false, "do not merge supplementary examples")
	corpusDirFlag := flag.String("corpus-dir", "", "directory holding the WordNet JSON files")
	ifMissingFlag := flag.Bool("if-missing", false, "keep an existing output file")
	dryRunFlag := flag.Bool("dry-run", false, "parse and extract without writing the database")
	progressFlag := flag.Bool("progress", false, "render a progress bar while writing")
	versionFlag := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(app.BuildVersion())
		return
	}

	if flag.NArg() > 1 {
		log.Fatalf("expected at most one output path, got %d arguments", flag.NArg())
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// CLI flags override config.
	if flag.NArg() == 1 {
		cfg.Build.OutputPath = flag.Arg(0)
	}
	if *outputFlag != "" {
		cfg.Build.OutputPath = *outputFlag
	}
	if *extrasFlag != "" {
		cfg.Extras.Path = *extrasFlag
	}
	if *noExtrasFlag {
		cfg.Extras.Disabled = true
	}
	if *corpusDirFlag != "" {
		cfg.Corpus.Dir = *corpusDirFlag
	}
	if *ifMissingFlag {
		cfg.Build.IfMissing = true
	}
	if *dryRunFlag {
		cfg.Build.DryRun = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts app.Options
	var bar *progressBar
	if *progressFlag {
		bar = &progressBar{}
		opts.Progress = bar.update
	}

	report, err := app.Run(ctx, cfg, logger, opts)
	bar.stop()
	if err != nil {
		logger.Error("build failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if report.Outcome != app.OutcomeBuilt {
		logger.Info("nothing written", slog.String("outcome", report.Outcome.String()))
		return
	}

	abs, err := filepath.Abs(report.Output)
	if err != nil {
		abs = report.Output
	}
	fmt.Printf("Database written to %s\n", abs)
}

// progressBar renders write progress. The bar is created on the first
// update because the total is only known once the corpus is loaded.
type progressBar struct {
	bar *uiprogress.Bar
}

func (p *progressBar) update(done, total int) {
	if p.bar == nil {
		uiprogress.Start()
		p.bar = uiprogress.AddBar(total)
		p.bar.AppendCompleted()
		p.bar.PrependElapsed()
	}
	p.bar.Set(done)
}

func (p *progressBar) stop() {
	if p == nil || p.bar == nil {
		return
	}
	uiprogress.Stop()
}
