package domain

import (
	"strings"
)

// LemmaFromCorpus turns a corpus lemma name into a display word:
// WordNet joins multi-word lemmas with underscores.
func LemmaFromCorpus(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// CleanExample trims an example sentence. An empty result means the
// example must be dropped.
func CleanExample(s string) string {
	return strings.TrimSpace(s)
}
