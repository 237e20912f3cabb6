package matcher

import (
	"context"
	"fmt"

	"github.com/franz/trackdb/internal/store"
	"github.com/franz/trackdb/internal/track"
	"github.com/franz/trackdb/internal/util"
)

// MatchType labels which strategy produced a match
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchCatalog MatchType = "catalog"
	MatchFuzzy   MatchType = "fuzzy"
)

// Match is a successful resolution with a calibrated confidence
type Match struct {
	Record     *track.Record
	MatchType  MatchType
	Confidence float64
	MatchedBy  string
}

// Matcher resolves partial track descriptors against a TrackStore
type Matcher struct {
	store          store.TrackStore
	fuzzyScanLimit int
}

// Config holds matcher configuration
type Config struct {
	Store          store.TrackStore
	FuzzyScanLimit int // bound for the verified-record scan, 0 = backend default
}

// New creates a new Matcher
func New(cfg *Config) *Matcher {
	return &Matcher{
		store:          cfg.Store,
		fuzzyScanLimit: cfg.FuzzyScanLimit,
	}
}

// Resolve runs the ranked strategies in fixed priority order — exact, then
// catalog, then fuzzy — and short-circuits on the first success. The order
// is a correctness requirement: it preserves the per-strategy confidence
// ceilings exactly, so the strategies must never be blended or re-scored.
//
// A (nil, nil) return means no match, a normal and frequent outcome. An
// error means the store could not be consulted; callers must not treat it
// as "no data".
func (m *Matcher) Resolve(ctx context.Context, name, catalog, library string) (*Match, error) {
	if !track.IsPresent(name) {
		return nil, fmt.Errorf("%w: trackName is required", util.ErrMalformedInput)
	}

	// Strategy 1: identical name (and catalog/library when given) on a
	// verified record
	rec, err := m.store.FindExact(ctx, name, catalog, library)
	if err != nil {
		return nil, err
	}
	if rec != nil && rec.Verified {
		return &Match{
			Record:     rec,
			MatchType:  MatchExact,
			Confidence: track.ConfidenceExact,
			MatchedBy:  fmt.Sprintf("exact name match on verified track #%d", rec.ID),
		}, nil
	}

	// Strategy 2: tracks released under the same catalog code are very
	// likely from the same writers
	if track.IsPresent(catalog) {
		candidates, err := m.store.FindByCatalog(ctx, catalog)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			if c.Verified && track.IsPresent(c.Composer) {
				return &Match{
					Record:     c,
					MatchType:  MatchCatalog,
					Confidence: track.ConfidenceCatalog,
					MatchedBy:  fmt.Sprintf("catalog code %s shared with verified track #%d", c.CatalogCode, c.ID),
				}, nil
			}
		}
	}

	// Strategy 3: normalized-name containment against verified records
	// with a composer
	candidates, err := m.store.FindVerifiedWithComposer(ctx, m.fuzzyScanLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if track.SameTrack(name, c.TrackName) {
			return &Match{
				Record:     c,
				MatchType:  MatchFuzzy,
				Confidence: track.ConfidenceFuzzy,
				MatchedBy:  fmt.Sprintf("normalized name %q contains or is contained by verified track #%d", track.LooseKey(name), c.ID),
			}, nil
		}
	}

	// No match: a valid terminal outcome, never an error
	return nil, nil
}
