package ewg

import (
	"regexp"
	"strings"
)

// QueryCleaner strips packaging noise from a product query before it is sent to search
type QueryCleaner struct {
	maxLen int
}

var (
	// Matches sizes like "16 fl oz", "50ml", "1.7 oz", "200 g"
	sizePattern = regexp.MustCompile(`(?i)\b\d+(\.\d+)?\s*(fl\.?\s*oz|oz|ounces?|ml|l|liters?|g|grams?|kg|lbs?)\b`)

	// Matches pack counts like "2 pack", "pack of 3", "2-pk", "60 count"
	packPattern = regexp.MustCompile(`(?i)\b\d+[-\s]*(pack|pk|count|ct)\b|\bpack\s+of\s+\d+\b`)

	orphanPunctuation = regexp.MustCompile(`\s+[,\-;:|]+(\s+|$)|^[,\-;:|\s]+|[,\-;:|\s]+$`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Retail terms that never appear in a product's database name
var queryNoiseWords = map[string]bool{
	"new":      true,
	"improved": true,
	"value":    true,
	"bonus":    true,
	"travel":   true,
	"size":     true,
	"jumbo":    true,
	"mini":     true,
	"refill":   true,
	"bottle":   true,
	"tube":     true,
	"jar":      true,
	"pump":     true,
	"set":      true,
	"kit":      true,
}

// NewQueryCleaner creates a cleaner that truncates queries to maxLen bytes at a word boundary
func NewQueryCleaner(maxLen int) *QueryCleaner {
	if maxLen <= 0 {
		maxLen = 100
	}
	return &QueryCleaner{maxLen: maxLen}
}

// Clean removes sizes, pack counts and retail noise words and normalizes whitespace.
// It returns the trimmed input unchanged if cleaning would leave nothing.
func (c *QueryCleaner) Clean(query string) string {
	original := strings.TrimSpace(whitespacePattern.ReplaceAllString(query, " "))
	if original == "" {
		return ""
	}

	cleaned := sizePattern.ReplaceAllString(original, " ")
	cleaned = packPattern.ReplaceAllString(cleaned, " ")
	cleaned = removeNoiseWords(cleaned)
	cleaned = orphanPunctuation.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))

	if cleaned == "" {
		return original
	}

	if len(cleaned) > c.maxLen {
		cleaned = cleaned[:c.maxLen]
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > c.maxLen/2 {
			cleaned = cleaned[:lastSpace]
		}
	}

	return cleaned
}

func removeNoiseWords(s string) string {
	words := strings.Fields(s)
	kept := make([]string, 0, len(words))

	for _, word := range words {
		check := strings.ToLower(strings.Trim(word, ",.!?;:-'\"()"))
		if !queryNoiseWords[check] {
			kept = append(kept, word)
		}
	}

	return strings.Join(kept, " ")
}
