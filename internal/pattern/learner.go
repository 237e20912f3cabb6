package pattern

import (
	"context"
	"fmt"

	"github.com/franz/trackdb/internal/store"
	"github.com/franz/trackdb/internal/track"
	"github.com/franz/trackdb/internal/util"
)

// Prediction holds rights predictions for a catalog code / library pair.
// Zero-confidence fields mean no prediction was available.
type Prediction struct {
	Composer            string
	Publisher           string
	ComposerConfidence  float64
	PublisherConfidence float64
}

// AutoApplicable reports whether a prediction confidence clears the silent
// field-fill threshold; anything below must be surfaced to a human
func AutoApplicable(confidence float64) bool {
	return confidence >= track.AutoApplyThreshold
}

// Learner accumulates reusable key -> value patterns from confirmed tracks
// and predicts rights fields from them
type Learner struct {
	store store.TrackStore
}

// Config holds learner configuration
type Config struct {
	Store store.TrackStore
}

// New creates a new Learner
func New(cfg *Config) *Learner {
	return &Learner{store: cfg.Store}
}

// LearnFrom records patterns from a confirmed track. Only verified records
// feed the pattern store; everything else is silently skipped, since
// patterns learned from guesses would launder guesses into predictions.
// Values are canonicalized through the alias table first so spelling
// variants strengthen one pattern instead of splitting it.
func (l *Learner) LearnFrom(ctx context.Context, rec *track.Record) error {
	if rec == nil || !rec.Verified {
		return nil
	}

	catalog := track.NormalizeCatalog(rec.CatalogCode)
	library := track.NormalizeLibrary(rec.Library)

	if catalog != "" && track.IsPresent(rec.Composer) {
		composer, err := l.store.CanonicalName(ctx, rec.Composer, track.EntityComposer)
		if err != nil {
			return fmt.Errorf("failed to canonicalize composer: %w", err)
		}
		if _, err := l.store.ObservePattern(ctx, track.PatternCatalogComposer, catalog, composer); err != nil {
			return err
		}
	}

	if track.IsPresent(rec.Publisher) {
		publisher, err := l.store.CanonicalName(ctx, rec.Publisher, track.EntityPublisher)
		if err != nil {
			return fmt.Errorf("failed to canonicalize publisher: %w", err)
		}
		if catalog != "" {
			if _, err := l.store.ObservePattern(ctx, track.PatternCatalogPublisher, catalog, publisher); err != nil {
				return err
			}
		}
		if library != "" {
			if _, err := l.store.ObservePattern(ctx, track.PatternLibraryPublisher, library, publisher); err != nil {
				return err
			}
		}
	}

	return nil
}

// Predict returns rights predictions for a catalog code and library.
// Catalog-based patterns are consulted first; a library-based publisher is
// used only as a fallback and its confidence discounted for its weaker
// evidentiary basis.
func (l *Learner) Predict(ctx context.Context, catalogCode, library string) (*Prediction, error) {
	pred := &Prediction{}

	catalog := track.NormalizeCatalog(catalogCode)
	if catalog != "" {
		composers, err := l.store.PatternsFor(ctx, track.PatternCatalogComposer, catalog)
		if err != nil {
			return nil, err
		}
		if len(composers) > 0 {
			pred.Composer = composers[0].Value
			pred.ComposerConfidence = composers[0].Confidence
		}

		publishers, err := l.store.PatternsFor(ctx, track.PatternCatalogPublisher, catalog)
		if err != nil {
			return nil, err
		}
		if len(publishers) > 0 {
			pred.Publisher = publishers[0].Value
			pred.PublisherConfidence = publishers[0].Confidence
		}
	}

	if pred.Publisher == "" {
		lib := track.NormalizeLibrary(library)
		if lib != "" {
			publishers, err := l.store.PatternsFor(ctx, track.PatternLibraryPublisher, lib)
			if err != nil {
				return nil, err
			}
			if len(publishers) > 0 {
				pred.Publisher = publishers[0].Value
				pred.PublisherConfidence = publishers[0].Confidence * track.LibraryFallbackDiscount
			}
		}
	}

	return pred, nil
}

// AutoFill applies predictions to a record's absent rights fields when they
// clear the auto-apply threshold. Returns the names of the fields filled.
// Filled fields are predictions, never verification: the record's verified
// flag is untouched.
func (l *Learner) AutoFill(ctx context.Context, rec *track.Record) ([]string, error) {
	pred, err := l.Predict(ctx, rec.CatalogCode, rec.Library)
	if err != nil {
		return nil, err
	}

	var filled []string

	if !track.IsPresent(rec.Composer) && pred.Composer != "" && AutoApplicable(pred.ComposerConfidence) {
		rec.Composer = pred.Composer
		filled = append(filled, "composer")
	}
	if !track.IsPresent(rec.Publisher) && pred.Publisher != "" && AutoApplicable(pred.PublisherConfidence) {
		rec.Publisher = pred.Publisher
		filled = append(filled, "publisher")
	}

	if len(filled) > 0 {
		util.DebugLog("Pattern fill for %q: %v", rec.TrackName, filled)
		if rec.DataSource == "" {
			rec.DataSource = track.SourcePattern
		}
	}

	return filled, nil
}
