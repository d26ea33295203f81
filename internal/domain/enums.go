package domain

// PartOfSpeech is a WordNet synset category tag.
type PartOfSpeech string

const (
	PartOfSpeechNoun      PartOfSpeech = "n"
	PartOfSpeechVerb      PartOfSpeech = "v"
	PartOfSpeechAdjective PartOfSpeech = "a"
	PartOfSpeechSatellite PartOfSpeech = "s"
	PartOfSpeechAdverb    PartOfSpeech = "r"
)

func (p PartOfSpeech) String() string { return string(p) }

// Rank returns the position of the category in corpus iteration order:
// adjectives, adverbs, nouns, verbs. Adjective satellites live in the
// adjective data file and share its rank. Unknown tags sort last.
func (p PartOfSpeech) Rank() int {
	switch p {
	case PartOfSpeechAdjective, PartOfSpeechSatellite:
		return 0
	case PartOfSpeechAdverb:
		return 1
	case PartOfSpeechNoun:
		return 2
	case PartOfSpeechVerb:
		return 3
	}
	return 4
}

// ParsePartOfSpeech maps OEWN tags and long names onto the short WordNet tag.
// Returns false for anything it does not recognise.
func ParsePartOfSpeech(s string) (PartOfSpeech, bool) {
	switch s {
	case "n", "noun":
		return PartOfSpeechNoun, true
	case "v", "verb":
		return PartOfSpeechVerb, true
	case "a", "adj", "adjective":
		return PartOfSpeechAdjective, true
	case "s", "adjective_satellite":
		return PartOfSpeechSatellite, true
	case "r", "adv", "adverb":
		return PartOfSpeechAdverb, true
	}
	return "", false
}
