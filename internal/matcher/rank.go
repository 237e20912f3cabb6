package matcher

import (
	"strings"

	"github.com/franz/trackdb/internal/track"
)

// Weighted scoring for reducing a set of competing external search results
// to one best guess. Unlike Resolve, this blends evidence: the weights sum
// to 100 and the total is normalized back to [0,1].
const (
	weightCatalog  = 40.0
	weightName     = 30.0
	weightDuration = 20.0
	weightSource   = 10.0

	// Duration gets full credit within the tolerance window, then decays
	// linearly to zero over a minute
	durationToleranceSec = 5
	durationDecaySec     = 60
)

// ScoredCandidate pairs a candidate with its weighted score
type ScoredCandidate struct {
	Record *track.Record
	Score  float64
}

// ScoreCandidate computes the weighted similarity of a candidate against the
// wanted descriptor, in [0,1]
func ScoreCandidate(want, candidate *track.Record) float64 {
	score := track.Similarity(
		track.NormalizeCatalog(want.CatalogCode),
		track.NormalizeCatalog(candidate.CatalogCode),
	) * weightCatalog

	score += track.Similarity(
		track.NormalizeKey(want.TrackName),
		track.NormalizeKey(candidate.TrackName),
	) * weightName

	score += durationCloseness(want.Duration, candidate.Duration) * weightDuration

	score += track.Similarity(
		strings.ToLower(strings.TrimSpace(want.Source)),
		strings.ToLower(strings.TrimSpace(candidate.Source)),
	) * weightSource

	return score / 100.0
}

// RankCandidates scores every candidate and returns the best one, accepted
// only when it clears the ranking threshold. Ties keep the earliest
// candidate, which makes the reduction deterministic.
func RankCandidates(want *track.Record, candidates []*track.Record) (*ScoredCandidate, bool) {
	var best *ScoredCandidate

	for _, c := range candidates {
		s := ScoreCandidate(want, c)
		if best == nil || s > best.Score {
			best = &ScoredCandidate{Record: c, Score: s}
		}
	}

	if best == nil || best.Score < track.RankAcceptThreshold {
		return best, false
	}
	return best, true
}

func durationCloseness(a, b int) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}

	delta := a - b
	if delta < 0 {
		delta = -delta
	}
	if delta <= durationToleranceSec {
		return 1
	}

	over := float64(delta - durationToleranceSec)
	if over >= durationDecaySec {
		return 0
	}
	return 1 - over/durationDecaySec
}
