// Package analysis computes statistical fingerprints of text and uses them to
// guess which encoding or cipher family produced it.
//
// Every function is a pure, one-shot computation over its argument: nothing is
// cached or shared between calls, so all of them are safe for concurrent use.
package analysis

// Alphabet lists the letter buckets used by the frequency analyzer.
const Alphabet = "abcdefghijklmnopqrstuvwxyz"

// FrequencyReport is the letter distribution of a text.
type FrequencyReport struct {
	// Counts holds only the letters that occur in the text.
	Counts map[string]int `json:"counts"`
	// Percentages covers all 26 letters when Total > 0 and is empty otherwise.
	Percentages map[string]float64 `json:"percentages"`
	Total       int                `json:"total"`
}

// PatternEntry is a substring that occurs more than once in the letter-only
// form of a text.
type PatternEntry struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
	// Positions are start offsets into the filtered text, increasing.
	Positions []int `json:"positions"`
}

// PatternReport lists repeated patterns by count, most frequent first.
type PatternReport []PatternEntry

// Label is the closed set of classifier outcomes.
type Label string

const (
	LabelRandom    Label = "Random Text or One-Time Pad"
	LabelClassical Label = "Classical Cipher (Caesar, Substitution, or Vigenère)"
	LabelEncoded   Label = "Base64 or Modern Encryption"
	LabelUnknown   Label = "Unknown/Plain Text"
)

// ClassificationResult is the classifier's best guess for a text.
type ClassificationResult struct {
	Classification Label   `json:"classification"`
	Confidence     int     `json:"confidence"` // percent
	Details        string  `json:"details"`
	Entropy        float64 `json:"entropy"`
}
