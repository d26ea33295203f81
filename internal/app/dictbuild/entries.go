package dictbuild

import (
	"iter"
	"slices"

	"github.com/heartmarshall/myenglish-dictdb/internal/app/dictbuild/extras"
	"github.com/heartmarshall/myenglish-dictdb/internal/domain"
)

// DefaultMaxExamples caps the example list of a (word, pos) key.
const DefaultMaxExamples = 12

// Extractor turns corpus synsets into numbered dictionary entries.
//
// Sense numbers and example lists are scoped to the (lowercased word, pos)
// key: every lemma of every synset bumps its key's counter, and the key's
// example list accumulates across its senses, deduplicated and capped.
// Supplementary sentences are merged once, at the first sense of a key,
// after that sense's corpus examples.
type Extractor struct {
	extras      extras.Index
	maxExamples int
}

// ExtractStats is filled while an Entries sequence is consumed.
type ExtractStats struct {
	Entries       int
	Keys          int
	ExtrasMerged  int
	CappedEntries int
}

// NewExtractor creates an Extractor. A nil index disables supplementary
// examples; maxExamples <= 0 falls back to DefaultMaxExamples.
func NewExtractor(idx extras.Index, maxExamples int) *Extractor {
	if maxExamples <= 0 {
		maxExamples = DefaultMaxExamples
	}
	return &Extractor{extras: idx, maxExamples: maxExamples}
}

// keyState is the per-key accumulator of one iteration.
type keyState struct {
	senses   int
	examples []string
	seen     map[string]struct{}
}

// Entries returns a single-pass sequence of entries in corpus order.
// All counters live inside the sequence, so each range over it starts
// from scratch. stats may be nil.
func (x *Extractor) Entries(synsets []domain.Synset, stats *ExtractStats) iter.Seq[domain.Entry] {
	return func(yield func(domain.Entry) bool) {
		if stats != nil {
			*stats = ExtractStats{}
		}
		state := make(map[domain.SenseKey]*keyState)

		for _, s := range synsets {
			for _, word := range s.Lemmas {
				key := domain.NewSenseKey(word, string(s.POS))

				ks, ok := state[key]
				if !ok {
					ks = &keyState{seen: make(map[string]struct{})}
					state[key] = ks
				}
				ks.senses++

				for _, ex := range s.Examples {
					ks.add(domain.CleanExample(ex), x.maxExamples)
				}

				// First sense of the key takes the supplementary sentences.
				if !ok {
					for _, sentence := range x.extras.Sentences(key) {
						if len(ks.examples) >= x.maxExamples {
							break
						}
						if ks.add(domain.CleanExample(sentence), x.maxExamples) && stats != nil {
							stats.ExtrasMerged++
						}
					}
				}

				if stats != nil {
					stats.Entries++
					stats.Keys = len(state)
					if len(ks.examples) >= x.maxExamples {
						stats.CappedEntries++
					}
				}

				e := domain.Entry{
					Word:       word,
					POS:        s.POS,
					Sense:      ks.senses,
					Definition: s.Definition,
					Examples:   slices.Clone(ks.examples),
				}
				if !yield(e) {
					return
				}
			}
		}
	}
}

// add appends an example unless it is empty, already present, or the list is full.
func (ks *keyState) add(example string, limit int) bool {
	if example == "" || len(ks.examples) >= limit {
		return false
	}
	if _, dup := ks.seen[example]; dup {
		return false
	}
	ks.examples = append(ks.examples, example)
	ks.seen[example] = struct{}{}
	return true
}
