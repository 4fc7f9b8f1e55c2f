package sentiment

import (
	"strings"

	"github.com/ogmaths/clientpulse/internal/domain"
	"github.com/ogmaths/clientpulse/internal/metrics"
)

const (
	// positiveThreshold / negativeThreshold classify the normalized polarity
	// score. Both comparisons are strict: a score of exactly 0.25 is neutral.
	positiveThreshold = 0.25
	negativeThreshold = -0.25

	maxKeyPhrases   = 5
	limitedTokenMin = 10
)

const (
	insightPositiveBase = "The conversation carries a generally positive tone."
	insightProgress     = "Mentions of progress or improvement suggest the current plan is working."
	insightSupported    = "The client appears to feel supported by the services received."
	insightNegativeBase = "The conversation carries a generally negative tone and may need follow-up."
	insightProblems     = "Specific problems were mentioned; consider creating follow-up tasks."
	insightDistress     = "Signs of emotional distress detected; consider a wellbeing check-in."
	insightNeutralBase  = "No strong sentiment detected; the conversation reads as neutral or mixed."
	insightLimited      = "Limited text available; analysis confidence is low."
)

// Trigger words for conditional insights. Matching is against the distinct
// matched-term lists, so a trigger only fires if the word is also in the
// corresponding lexicon.
var (
	progressTriggers  = []string{"progress", "improvement", "better"}
	supportedTriggers = []string{"helpful", "supportive"}
	problemTriggers   = []string{"problem", "issue", "difficult"}
	distressTriggers  = []string{"anxious", "worried", "stressed"}
)

// Analyzer scores free text against a fixed polarity lexicon. It is a pure
// function over its lexicon and input: no I/O, no errors, identical input
// yields identical output. Safe for concurrent use.
type Analyzer struct {
	lexicon Lexicon
}

// NewAnalyzer creates an analyzer over the given lexicon.
func NewAnalyzer(lexicon Lexicon) *Analyzer {
	return &Analyzer{lexicon: lexicon}
}

// Analyze tokenizes the input on whitespace, tallies lexicon matches and
// derives a classification with human-readable insights.
//
// Tokens are matched by exact string equality after lower-casing. Punctuation
// is not stripped, so "good." never matches "good".
//
// The only side effect is a metrics counter increment; the result itself is a
// pure function of the lexicon and input.
func (a *Analyzer) Analyze(text string) domain.AnalysisResult {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		metrics.AnalysesTotal.WithLabelValues(string(domain.SentimentNeutral)).Inc()
		return domain.AnalysisResult{
			Sentiment: domain.SentimentNeutral,
			Score:     0,
			Insights:  []string{insightLimited},
		}
	}

	var (
		positiveCount, negativeCount int
		positiveMatches              []string
		negativeMatches              []string
		seenPositive                 = map[string]struct{}{}
		seenNegative                 = map[string]struct{}{}
	)

	// A token appearing in both sets counts toward both tallies.
	for _, token := range tokens {
		if _, ok := a.lexicon.positive[token]; ok {
			positiveCount++
			if _, dup := seenPositive[token]; !dup {
				seenPositive[token] = struct{}{}
				positiveMatches = append(positiveMatches, token)
			}
		}
		if _, ok := a.lexicon.negative[token]; ok {
			negativeCount++
			if _, dup := seenNegative[token]; !dup {
				seenNegative[token] = struct{}{}
				negativeMatches = append(negativeMatches, token)
			}
		}
	}

	score := float64(positiveCount-negativeCount) / float64(max(1, positiveCount+negativeCount))

	sentiment := domain.SentimentNeutral
	switch {
	case score > positiveThreshold:
		sentiment = domain.SentimentPositive
	case score < negativeThreshold:
		sentiment = domain.SentimentNegative
	}

	keyPhrases := make([]string, 0, maxKeyPhrases)
	for _, term := range positiveMatches {
		if len(keyPhrases) == maxKeyPhrases {
			break
		}
		keyPhrases = append(keyPhrases, term)
	}
	for _, term := range negativeMatches {
		if len(keyPhrases) == maxKeyPhrases {
			break
		}
		keyPhrases = append(keyPhrases, term)
	}

	insights := buildInsights(sentiment, seenPositive, seenNegative, len(tokens))

	metrics.AnalysesTotal.WithLabelValues(string(sentiment)).Inc()

	return domain.AnalysisResult{
		Sentiment:       sentiment,
		Score:           score,
		PositiveMatches: positiveMatches,
		NegativeMatches: negativeMatches,
		KeyPhrases:      keyPhrases,
		Insights:        insights,
	}
}

func buildInsights(sentiment domain.Sentiment, matchedPositive, matchedNegative map[string]struct{}, tokenCount int) []string {
	var insights []string

	switch sentiment {
	case domain.SentimentPositive:
		insights = append(insights, insightPositiveBase)
		if anyMatched(matchedPositive, progressTriggers) {
			insights = append(insights, insightProgress)
		}
		if anyMatched(matchedPositive, supportedTriggers) {
			insights = append(insights, insightSupported)
		}
	case domain.SentimentNegative:
		insights = append(insights, insightNegativeBase)
		if anyMatched(matchedNegative, problemTriggers) {
			insights = append(insights, insightProblems)
		}
		if anyMatched(matchedNegative, distressTriggers) {
			insights = append(insights, insightDistress)
		}
	default:
		insights = append(insights, insightNeutralBase)
	}

	if tokenCount < limitedTokenMin {
		insights = append(insights, insightLimited)
	}

	return insights
}

func anyMatched(matched map[string]struct{}, triggers []string) bool {
	for _, t := range triggers {
		if _, ok := matched[t]; ok {
			return true
		}
	}
	return false
}
