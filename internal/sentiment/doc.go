// Package sentiment implements the deterministic lexicon-based sentiment
// scorer used by the interaction analysis feature. It is an explainable
// keyword-counting heuristic, not a trained classifier.
package sentiment
