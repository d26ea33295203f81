// Package extras loads supplementary example sentences from a JSON Lines file.
// Pure function: file path in, index keyed by (lemma, pos) out. No database dependencies.
//
// Each non-blank line is one object:
//
//	{"lemma": "run", "pos": "v", "sentence": "She runs every morning."}
package extras

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/heartmarshall/myenglish-dictdb/internal/domain"
)

// Index maps a sense key to its sentences in file order.
type Index map[domain.SenseKey][]string

// Sentences returns the sentences recorded for key.
func (idx Index) Sentences(key domain.SenseKey) []string {
	return idx[key]
}

// Stats holds loader statistics for logging.
type Stats struct {
	TotalLines int
	BlankLines int
	Skipped    int
	Sentences  int
	Keys       int
	Missing    bool
}

// Load reads the JSONL file at path. A missing file yields an empty index
// and no error. Blank lines are skipped; records without a lemma or a
// sentence are skipped and counted. A line that is not valid JSON fails the
// whole load with a *domain.LineError naming the line.
func Load(path string) (Index, Stats, error) {
	var stats Stats
	idx := make(Index)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		stats.Missing = true
		return idx, stats, nil
	}
	if err != nil {
		return nil, stats, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	// Lines are read whole, without a length limit.
	reader := bufio.NewReader(f)
	for eof := false; !eof; {
		raw, err := reader.ReadBytes('\n')
		switch {
		case errors.Is(err, io.EOF):
			eof = true
			if len(raw) == 0 {
				continue
			}
		case err != nil:
			return nil, stats, fmt.Errorf("read line %d: %w", stats.TotalLines+1, err)
		}

		stats.TotalLines++
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			stats.BlankLines++
			continue
		}

		var rec domain.ExtraExample
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, stats, &domain.LineError{Path: path, Line: stats.TotalLines, Err: err}
		}

		lemma := strings.TrimSpace(rec.Lemma)
		sentence := strings.TrimSpace(rec.Sentence)
		if lemma == "" || sentence == "" {
			stats.Skipped++
			continue
		}

		key := domain.NewSenseKey(lemma, rec.POS)
		idx[key] = append(idx[key], sentence)
		stats.Sentences++
	}

	stats.Keys = len(idx)
	return idx, stats, nil
}
