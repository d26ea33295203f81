package dictbuild

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/heartmarshall/myenglish-dictdb/internal/app/dictbuild/extras"
	"github.com/heartmarshall/myenglish-dictdb/internal/app/dictbuild/wordnet"
	"github.com/heartmarshall/myenglish-dictdb/internal/domain"
	"github.com/heartmarshall/myenglish-dictdb/pkg/ctxutil"
)

// Phase names in execution order.
const (
	PhaseCorpus = "corpus"
	PhaseExtras = "extras"
	PhaseSchema = "schema"
	PhaseWrite  = "write"
	PhaseVerify = "verify"
)

// allPhases defines the canonical execution order.
var allPhases = []string{PhaseCorpus, PhaseExtras, PhaseSchema, PhaseWrite, PhaseVerify}

const defaultBatchSize = 500

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Processed int
	Skipped   bool
	Duration  time.Duration
	Err       error
}

// Result summarizes a pipeline run.
type Result struct {
	Synsets       int
	Entries       int
	FTSRows       int
	ExtrasLoaded  int
	ExtrasMerged  int
	CappedEntries int
	DryRun        bool
	Phases        map[string]PhaseResult
}

// ProgressFunc is called after every inserted batch with the number of rows
// written so far and the expected total.
type ProgressFunc func(done, total int)

// Pipeline orchestrates the build phases. Any phase error aborts the run.
type Pipeline struct {
	log      *slog.Logger
	store    EntryStore
	tx       TxRunner
	schema   SchemaFunc
	cfg      Config
	progress ProgressFunc

	corpus wordnet.Corpus
	extras extras.Index
	result Result
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, store EntryStore, tx TxRunner, schema SchemaFunc, cfg Config) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Pipeline{
		log:    log,
		store:  store,
		tx:     tx,
		schema: schema,
		cfg:    cfg,
	}
}

// OnProgress registers a progress callback for the write phase.
func (p *Pipeline) OnProgress(fn ProgressFunc) *Pipeline {
	p.progress = fn
	return p
}

// Run executes all phases in order and returns the run summary.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.result = Result{DryRun: p.cfg.DryRun, Phases: make(map[string]PhaseResult, len(allPhases))}
	p.log.InfoContext(ctx, "pipeline started", slog.Bool("dry_run", p.cfg.DryRun))

	for _, phase := range allPhases {
		phaseCtx := ctxutil.WithPhase(ctx, phase)
		start := time.Now()
		p.log.InfoContext(phaseCtx, "starting phase")

		var result PhaseResult
		switch phase {
		case PhaseCorpus:
			result = p.runCorpus(phaseCtx)
		case PhaseExtras:
			result = p.runExtras(phaseCtx)
		case PhaseSchema:
			result = p.runSchema(phaseCtx)
		case PhaseWrite:
			result = p.runWrite(phaseCtx)
		case PhaseVerify:
			result = p.runVerify(phaseCtx)
		}
		result.Duration = time.Since(start)
		p.result.Phases[phase] = result

		if result.Err != nil {
			p.log.ErrorContext(phaseCtx, "phase failed",
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
			return p.result, fmt.Errorf("%s: %w", phase, result.Err)
		}

		p.log.InfoContext(phaseCtx, "phase completed",
			slog.Int("processed", result.Processed),
			slog.Bool("skipped", result.Skipped),
			slog.Duration("duration", result.Duration),
		)
	}

	p.log.InfoContext(ctx, "pipeline completed",
		slog.Int("synsets", p.result.Synsets),
		slog.Int("entries", p.result.Entries),
		slog.Int("fts_rows", p.result.FTSRows),
		slog.Int("extras_merged", p.result.ExtrasMerged),
	)
	return p.result, nil
}

// runCorpus fetches the corpus if needed and loads every synset.
func (p *Pipeline) runCorpus(ctx context.Context) PhaseResult {
	if err := wordnet.EnsureCorpus(ctx, p.cfg.Corpus, p.log); err != nil {
		return PhaseResult{Err: err}
	}

	corpus, err := wordnet.Load(p.cfg.Corpus.Dir)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("load corpus: %w", err)}
	}
	p.log.InfoContext(ctx, "corpus parsed",
		slog.Int("files", corpus.Stats.Files),
		slog.Int("synsets", corpus.Stats.Synsets),
		slog.Int("senses", corpus.Stats.Senses),
		slog.Int("unknown_pos", corpus.Stats.UnknownPOS),
	)

	p.corpus = corpus
	p.result.Synsets = corpus.Stats.Synsets
	return PhaseResult{Processed: corpus.Stats.Synsets}
}

// runExtras loads supplementary examples unless disabled.
func (p *Pipeline) runExtras(ctx context.Context) PhaseResult {
	if p.cfg.ExtrasDisabled {
		return PhaseResult{Skipped: true}
	}

	idx, stats, err := extras.Load(p.cfg.ExtrasPath)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("load extras: %w", err)}
	}
	if stats.Missing {
		p.log.InfoContext(ctx, "extras file not found, continuing without it", slog.String("path", p.cfg.ExtrasPath))
		return PhaseResult{Skipped: true}
	}
	p.log.InfoContext(ctx, "extras parsed",
		slog.Int("sentences", stats.Sentences),
		slog.Int("keys", stats.Keys),
		slog.Int("skipped", stats.Skipped),
	)

	p.extras = idx
	p.result.ExtrasLoaded = stats.Sentences
	return PhaseResult{Processed: stats.Sentences}
}

// runSchema recreates the output tables.
func (p *Pipeline) runSchema(ctx context.Context) PhaseResult {
	if p.cfg.DryRun {
		return PhaseResult{Skipped: true}
	}

	applied, err := p.schema(ctx)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("apply schema: %w", err)}
	}
	return PhaseResult{Processed: applied}
}

// runWrite streams entries into the store and then builds the full-text
// index, all inside one transaction. In dry-run mode entries are only counted.
func (p *Pipeline) runWrite(ctx context.Context) PhaseResult {
	var stats ExtractStats
	entries := NewExtractor(p.extras, p.cfg.MaxExamples).Entries(p.corpus.Synsets, &stats)
	total := p.corpus.SenseCount()

	defer func() {
		p.result.Entries = stats.Entries
		p.result.ExtrasMerged = stats.ExtrasMerged
		p.result.CappedEntries = stats.CappedEntries
	}()

	if p.cfg.DryRun {
		for range entries {
		}
		return PhaseResult{Processed: stats.Entries}
	}

	var inserted int
	err := p.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		inserted, err = batchProcess(entries, p.cfg.BatchSize, func(batch []domain.Entry) (int, error) {
			n, err := p.store.BulkInsertEntries(ctx, batch)
			if err != nil {
				return n, err
			}
			if p.progress != nil {
				p.progress(stats.Entries, total)
			}
			return n, nil
		})
		if err != nil {
			return fmt.Errorf("insert entries: %w", err)
		}

		indexed, err := p.store.PopulateFTS(ctx)
		if err != nil {
			return fmt.Errorf("populate fts: %w", err)
		}
		p.result.FTSRows = indexed
		return nil
	})
	if err != nil {
		return PhaseResult{Err: err}
	}

	return PhaseResult{Processed: inserted}
}

// runVerify checks that both tables exist and the index covers every row.
func (p *Pipeline) runVerify(ctx context.Context) PhaseResult {
	if p.cfg.DryRun {
		return PhaseResult{Skipped: true}
	}

	missing, err := p.store.MissingTables(ctx)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("list tables: %w", err)}
	}
	if len(missing) > 0 {
		return PhaseResult{Err: fmt.Errorf("%w: missing tables %v", domain.ErrVerification, missing)}
	}

	rows, err := p.store.CountEntries(ctx)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("count entries: %w", err)}
	}
	indexed, err := p.store.CountFTS(ctx)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("count fts: %w", err)}
	}

	if rows != p.result.Entries {
		return PhaseResult{Err: fmt.Errorf("%w: %d rows stored, %d entries extracted", domain.ErrVerification, rows, p.result.Entries)}
	}
	if indexed != rows {
		return PhaseResult{Err: fmt.Errorf("%w: %d rows indexed, %d rows stored", domain.ErrVerification, indexed, rows)}
	}

	p.result.FTSRows = indexed
	return PhaseResult{Processed: rows}
}

// batchProcess splits a sequence into batches and processes each via fn.
// The batch slice is reused between calls; fn must not retain it.
func batchProcess[T any](items iter.Seq[T], batchSize int, fn func([]T) (int, error)) (int, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	total := 0
	batch := make([]T, 0, batchSize)
	for item := range items {
		batch = append(batch, item)
		if len(batch) < batchSize {
			continue
		}
		n, err := fn(batch)
		if err != nil {
			return total, err
		}
		total += n
		batch = batch[:0]
	}

	if len(batch) > 0 {
		n, err := fn(batch)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
