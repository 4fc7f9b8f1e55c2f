package domain

// Sentiment is the classification produced by the lexicon analyzer.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// AnalysisResult is the full output of a single sentiment analysis run.
// PositiveMatches and NegativeMatches hold distinct matched terms in order of
// first appearance in the input. KeyPhrases is positive matches followed by
// negative matches, capped at five entries.
type AnalysisResult struct {
	Sentiment       Sentiment `json:"sentiment"`
	Score           float64   `json:"score"`
	PositiveMatches []string  `json:"positive_matches"`
	NegativeMatches []string  `json:"negative_matches"`
	KeyPhrases      []string  `json:"key_phrases"`
	Insights        []string  `json:"insights"`
}
