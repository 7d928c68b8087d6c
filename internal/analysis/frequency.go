package analysis

import "unicode"

// AnalyzeFrequency counts the letters a–z in text after lower-casing it.
// Runes that do not fold to an ASCII letter are ignored. Text without any
// such letter yields an empty report with Total == 0.
func AnalyzeFrequency(text string) FrequencyReport {
	var buckets [26]int
	total := 0
	for _, r := range text {
		r = unicode.ToLower(r)
		if r < 'a' || r > 'z' {
			continue
		}
		buckets[r-'a']++
		total++
	}

	report := FrequencyReport{
		Counts:      make(map[string]int),
		Percentages: make(map[string]float64),
	}
	if total == 0 {
		return report
	}

	report.Total = total
	for i, count := range buckets {
		letter := string(Alphabet[i])
		if count > 0 {
			report.Counts[letter] = count
		}
		report.Percentages[letter] = float64(count) / float64(total) * 100
	}
	return report
}
