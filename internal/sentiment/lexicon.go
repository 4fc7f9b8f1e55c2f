package sentiment

import "strings"

// Lexicon is a pair of disjoint, case-insensitive polarity word sets. It is
// immutable after construction and safe for concurrent reads.
type Lexicon struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewLexicon builds a lexicon from explicit term lists. Terms are stored
// lower-cased; duplicates collapse silently.
func NewLexicon(positive, negative []string) Lexicon {
	return Lexicon{
		positive: toSet(positive),
		negative: toSet(negative),
	}
}

// DefaultLexicon returns the built-in case-note lexicon used by the demo
// analysis feature.
func DefaultLexicon() Lexicon {
	return NewLexicon(defaultPositiveTerms, defaultNegativeTerms)
}

func toSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

var defaultPositiveTerms = []string{
	"good", "great", "excellent", "amazing", "wonderful",
	"happy", "hopeful", "confident", "motivated", "calm",
	"stable", "safe", "secure", "grateful", "encouraged",
	"progress", "improvement", "improved", "better", "success",
	"successful", "helpful", "supportive", "supported", "positive",
	"thriving", "engaged", "employed", "housed",
}

var defaultNegativeTerms = []string{
	"bad", "poor", "terrible", "awful", "sad",
	"angry", "frustrated", "hopeless", "anxious", "worried",
	"stressed", "overwhelmed", "afraid", "scared", "unsafe",
	"unstable", "crisis", "problem", "problems", "issue",
	"issues", "difficult", "struggling", "struggle", "worse",
	"negative", "depressed", "lonely", "homeless", "evicted",
}
