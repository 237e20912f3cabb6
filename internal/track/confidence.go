package track

// Confidence policy. Every auto-apply vs ask-a-human branch keys off these
// constants so the boundary stays in one auditable place.
const (
	// Fixed ceilings per match strategy
	ConfidenceExact   = 1.0 // identical verified name (and catalog/library when given)
	ConfidenceCatalog = 0.9 // shared catalog code with a verified composer
	ConfidenceFuzzy   = 0.7 // normalized-name containment

	// Pattern confidence: min(PatternCeiling, PatternBase + n*PatternStep)
	PatternBase    = 0.5
	PatternStep    = 0.1
	PatternCeiling = 0.95 // a pattern is always a prediction, never certainty

	// AutoApplyThreshold is the minimum prediction confidence for silent
	// field fill; anything below must be surfaced for human approval
	AutoApplyThreshold = 0.7

	// LibraryFallbackDiscount scales library-based publisher predictions,
	// which rest on weaker evidence than catalog-based ones
	LibraryFallbackDiscount = 0.8

	// RankAcceptThreshold is the minimum weighted score for accepting the
	// best candidate out of an external search result set
	RankAcceptThreshold = 0.7
)

// PatternConfidence derives pattern confidence from an observation count.
// Non-decreasing in occurrences, capped at PatternCeiling.
func PatternConfidence(occurrences int) float64 {
	c := PatternBase + float64(occurrences)*PatternStep
	if c > PatternCeiling {
		return PatternCeiling
	}
	return c
}
