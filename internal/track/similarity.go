package track

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Similarity returns a bounded [0,1] similarity between two strings:
// normalized Levenshtein, 1 - distance/max(len(a), len(b)). Symmetric and
// reflexive; returns 0 when either string has fewer than 2 characters.
func Similarity(a, b string) float64 {
	if len([]rune(a)) < 2 || len([]rune(b)) < 2 {
		return 0
	}
	if a == b {
		return 1
	}
	return strutil.Similarity(a, b, metrics.NewLevenshtein())
}
