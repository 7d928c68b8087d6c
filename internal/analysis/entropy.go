package analysis

import "math"

// MaxEntropy is the upper bound of Entropy: log2 of the 26-letter alphabet.
var MaxEntropy = math.Log2(26)

// Entropy returns the Shannon entropy, in bits per symbol, of the ASCII
// letters in text compared case-insensitively. It is 0 when text has none.
func Entropy(text string) float64 {
	var counts [26]int
	total := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z':
			counts[c-'a']++
		case c >= 'A' && c <= 'Z':
			counts[c-'A']++
		default:
			continue
		}
		total++
	}
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, count := range counts {
		if count == 0 {
			continue
		}
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}
