// Package wordnet reads the Open English WordNet (OEWN) JSON edition into
// domain synsets, fetching the release archive first when it is missing.
// Load is a pure function: directory path in, domain structs out.
//
// Expected directory structure (as distributed by https://github.com/globalwordnet/english-wordnet):
//
//	noun.*.json, verb.*.json, adj.*.json, adv.*.json   synsets keyed by synset ID
//
// Other files (entries-*.json, frames.json) are ignored.
package wordnet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/heartmarshall/myenglish-dictdb/internal/domain"
)

// definitionSeparator joins multi-part OEWN definitions into one gloss.
const definitionSeparator = "; "

// synsetPrefixes lists synset file prefixes in corpus iteration order.
var synsetPrefixes = []string{"adj.", "adv.", "noun.", "verb."}

// Corpus holds every synset of the corpus in iteration order.
type Corpus struct {
	Synsets []domain.Synset
	Stats   Stats
}

// SenseCount is the number of (lemma, synset) pairs, which is exactly the
// number of rows the entry extractor yields.
func (c Corpus) SenseCount() int {
	return c.Stats.Senses
}

// Stats holds loader statistics for logging.
type Stats struct {
	Files          int
	Synsets        int
	Senses         int
	UnknownPOS     int
	EmptySynsets   int
	ObjectExamples int
}

// OEWN JSON deserialization types.

// oewnSynset holds a single synset from a {pos}.{category}.json file.
type oewnSynset struct {
	Definition   []string          `json:"definition"`
	Example      []json.RawMessage `json:"example"`
	Members      []string          `json:"members"`
	PartOfSpeech string            `json:"partOfSpeech"`
}

// oewnExample is the object form of an example: {"text": "...", "source": "..."}.
type oewnExample struct {
	Text string `json:"text"`
}

// Load reads all synset files under dirPath and returns them ordered by
// part-of-speech group (a+s, r, n, v) and then by synset ID, the order in
// which the classic WordNet reader walks its data files.
func Load(dirPath string) (Corpus, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return Corpus{}, fmt.Errorf("open directory: %w", err)
	}
	if !info.IsDir() {
		return Corpus{}, fmt.Errorf("%s is not a directory", dirPath)
	}

	files, err := globSynsetFiles(dirPath)
	if err != nil {
		return Corpus{}, fmt.Errorf("glob synset files: %w", err)
	}
	if len(files) == 0 {
		return Corpus{}, fmt.Errorf("no synset files in %s: %w", dirPath, domain.ErrCorpusUnavailable)
	}

	var corpus Corpus
	corpus.Stats.Files = len(files)

	for _, path := range files {
		synsets, err := readSynsetFile(path)
		if err != nil {
			return Corpus{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}

		for id, raw := range synsets {
			pos, ok := domain.ParsePartOfSpeech(raw.PartOfSpeech)
			if !ok {
				pos, ok = posFromID(id)
			}
			if !ok {
				corpus.Stats.UnknownPOS++
				continue
			}
			if len(raw.Members) == 0 {
				corpus.Stats.EmptySynsets++
				continue
			}

			s := domain.Synset{
				ID:         id,
				POS:        pos,
				Definition: strings.Join(raw.Definition, definitionSeparator),
				Lemmas:     make([]string, 0, len(raw.Members)),
			}
			for _, m := range raw.Members {
				s.Lemmas = append(s.Lemmas, domain.LemmaFromCorpus(m))
			}
			for _, ex := range raw.Example {
				text, isObject, err := decodeExample(ex)
				if err != nil {
					return Corpus{}, fmt.Errorf("synset %s: %w", id, err)
				}
				if isObject {
					corpus.Stats.ObjectExamples++
				}
				s.Examples = append(s.Examples, text)
			}

			corpus.Synsets = append(corpus.Synsets, s)
			corpus.Stats.Senses += len(s.Lemmas)
		}
	}

	sort.Slice(corpus.Synsets, func(i, j int) bool {
		a, b := corpus.Synsets[i], corpus.Synsets[j]
		if ra, rb := a.POS.Rank(), b.POS.Rank(); ra != rb {
			return ra < rb
		}
		return a.ID < b.ID
	})
	corpus.Stats.Synsets = len(corpus.Synsets)

	return corpus, nil
}

// HasCorpus reports whether dirPath already contains synset files.
func HasCorpus(dirPath string) (bool, error) {
	files, err := globSynsetFiles(dirPath)
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}

// decodeExample accepts both the plain-string and the object form.
func decodeExample(raw json.RawMessage) (text string, isObject bool, err error) {
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, false, nil
	}
	var obj oewnExample
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false, fmt.Errorf("decode example: %w", err)
	}
	return obj.Text, true, nil
}

// posFromID falls back to the tag suffix of IDs like "oewn-01926311-v".
func posFromID(id string) (domain.PartOfSpeech, bool) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		return "", false
	}
	return domain.ParsePartOfSpeech(id[i+1:])
}

// readSynsetFile reads a single synset file ({pos}.{category}.json).
func readSynsetFile(path string) (map[string]oewnSynset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var synsets map[string]oewnSynset
	if err := json.NewDecoder(f).Decode(&synsets); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return synsets, nil
}

// globSynsetFiles finds all synset files in the directory.
// Synset files follow the pattern: {pos}.{category}.json where pos is noun/verb/adj/adv.
func globSynsetFiles(dirPath string) ([]string, error) {
	var result []string
	for _, prefix := range synsetPrefixes {
		matches, err := filepath.Glob(filepath.Join(dirPath, prefix+"*.json"))
		if err != nil {
			return nil, err
		}
		result = append(result, matches...)
	}
	return result, nil
}
