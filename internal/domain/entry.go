package domain

import "strings"

// Entry is one output row: a single sense of a word for one part of speech.
type Entry struct {
	Word       string
	POS        PartOfSpeech
	Sense      int
	Definition string
	Examples   []string
}

// Key returns the sense-numbering key of the entry.
func (e Entry) Key() SenseKey {
	return NewSenseKey(e.Word, string(e.POS))
}

// SenseKey groups entries that share a sense counter and an example list.
// Lemma is lowercased; POS is kept verbatim.
type SenseKey struct {
	Lemma string
	POS   string
}

// NewSenseKey builds a key from a raw lemma and part-of-speech tag.
func NewSenseKey(lemma, pos string) SenseKey {
	return SenseKey{
		Lemma: strings.ToLower(strings.TrimSpace(lemma)),
		POS:   strings.TrimSpace(pos),
	}
}

func (k SenseKey) String() string {
	return k.Lemma + "/" + k.POS
}

// Synset is a set of lemmas sharing one sense, as read from the corpus.
type Synset struct {
	ID         string
	POS        PartOfSpeech
	Definition string
	Examples   []string
	Lemmas     []string
}

// ExtraExample is one supplementary example sentence from the JSONL file.
type ExtraExample struct {
	Lemma    string `json:"lemma"`
	POS      string `json:"pos"`
	Sentence string `json:"sentence"`
}
