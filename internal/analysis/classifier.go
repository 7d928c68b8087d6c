package analysis

import "unicode"

// HighEntropyThreshold is the entropy above which text is treated as random.
const HighEntropyThreshold = 4.5

// Signals are the structural observations the classifier decides on.
type Signals struct {
	Entropy float64
	// HasSpecial is set when text contains a rune that is neither an ASCII
	// letter nor whitespace.
	HasSpecial bool
	// UniformCase is set when text has no lower-case letter or no upper-case
	// letter. Text without cased letters is uniform.
	UniformCase bool
}

// Observe extracts classifier signals from text.
func Observe(text string) Signals {
	s := Signals{Entropy: Entropy(text)}
	hasUpper, hasLower := false, false
	for _, r := range text {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
		if !isASCIILetter(r) && !unicode.IsSpace(r) {
			s.HasSpecial = true
		}
	}
	s.UniformCase = !hasUpper || !hasLower
	return s
}

// Classify labels the likely cipher family of text. Rules are checked in a
// fixed order and the first match wins:
//
//  1. entropy above HighEntropyThreshold: random text or one-time pad
//  2. letters and whitespace only, uniform casing: classical cipher
//  3. any other rune present: Base64 or modern encryption
//  4. otherwise: unknown or plain text
func Classify(text string) ClassificationResult {
	return Decide(Observe(text))
}

// Decide applies the classification rules to precomputed signals.
func Decide(s Signals) ClassificationResult {
	result := ClassificationResult{Entropy: s.Entropy}
	switch {
	case s.Entropy > HighEntropyThreshold:
		result.Classification = LabelRandom
		result.Confidence = 75
		result.Details = "High entropy suggests random distribution of characters."
	case !s.HasSpecial && s.UniformCase:
		result.Classification = LabelClassical
		result.Confidence = 70
		result.Details = "Text contains only letters with consistent casing, typical of classical ciphers."
	case s.HasSpecial:
		result.Classification = LabelEncoded
		result.Confidence = 65
		result.Details = "Presence of non-alphabetic characters suggests encoding like Base64 or modern encryption."
	default:
		result.Classification = LabelUnknown
		result.Confidence = 50
		result.Details = "Unable to determine cipher type with high confidence."
	}
	return result
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
