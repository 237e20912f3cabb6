package matcher

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/franz/trackdb/internal/store"
	"github.com/franz/trackdb/internal/track"
)

func newTestMatcher(t *testing.T) (*Matcher, *store.Store) {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "matcher-test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return New(&Config{Store: s}), s
}

func seed(t *testing.T, s *store.Store, records ...*track.Record) {
	t.Helper()
	for _, r := range records {
		if _, err := s.Upsert(context.Background(), r); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}
}

func TestResolveExactMatch(t *testing.T) {
	m, s := newTestMatcher(t)
	seed(t, s, &track.Record{
		TrackName:   "Punch Drunk",
		CatalogCode: "IATS021",
		Composer:    "W. Werzowa (ASCAP)(100%)",
		Verified:    true,
	})

	match, err := m.Resolve(context.Background(), "punch drunk", "IATS021", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.MatchType != MatchExact {
		t.Errorf("expected exact match, got %s", match.MatchType)
	}
	if match.Confidence != track.ConfidenceExact {
		t.Errorf("expected confidence 1.0, got %f", match.Confidence)
	}
}

func TestResolveExactRequiresVerified(t *testing.T) {
	m, s := newTestMatcher(t)
	seed(t, s, &track.Record{
		TrackName: "Punch Drunk",
		Composer:  "Somebody",
		// not verified
	})

	match, err := m.Resolve(context.Background(), "Punch Drunk", "", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match != nil {
		t.Errorf("unverified record must not exact-match, got %s", match.MatchType)
	}
}

// Scenario: a verified record shares the catalog code of the query; the
// catalog strategy must return its composer at confidence 0.9.
func TestResolveCatalogMatch(t *testing.T) {
	m, s := newTestMatcher(t)
	seed(t, s,
		&track.Record{
			TrackName:   "Punch Drunk",
			CatalogCode: "IATS021",
			Composer:    "W. Werzowa (ASCAP)(100%)",
			Verified:    true,
		},
		&track.Record{
			TrackName:   "Sucker Punch",
			CatalogCode: "IATS021",
			// unverified, no composer: never a catalog source
		},
	)

	match, err := m.Resolve(context.Background(), "Completely Different Name", "IATS021", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match == nil {
		t.Fatal("expected a catalog match")
	}
	if match.MatchType != MatchCatalog {
		t.Errorf("expected catalog match, got %s", match.MatchType)
	}
	if match.Confidence != track.ConfidenceCatalog {
		t.Errorf("expected confidence 0.9, got %f", match.Confidence)
	}
	if match.Record.Composer != "W. Werzowa (ASCAP)(100%)" {
		t.Errorf("expected verified composer, got %q", match.Record.Composer)
	}
}

func TestResolveFuzzyMatch(t *testing.T) {
	m, s := newTestMatcher(t)
	seed(t, s, &track.Record{
		TrackName: "Fire Thunder Hit",
		Composer:  "A. Composer",
		Verified:  true,
	})

	match, err := m.Resolve(context.Background(), "Fire Thunder Hit (Full Mix) 30s", "", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match == nil {
		t.Fatal("expected a fuzzy match")
	}
	if match.MatchType != MatchFuzzy {
		t.Errorf("expected fuzzy match, got %s", match.MatchType)
	}
	if match.Confidence != track.ConfidenceFuzzy {
		t.Errorf("expected confidence 0.7, got %f", match.Confidence)
	}
}

// Priority: when both the catalog and fuzzy strategies would succeed, the
// catalog strategy must win. This is a fixed order, not a score comparison.
func TestResolveStrategyPriority(t *testing.T) {
	m, s := newTestMatcher(t)
	seed(t, s,
		&track.Record{
			TrackName:   "Totally Unrelated",
			CatalogCode: "IATS021",
			Composer:    "Catalog Composer",
			Verified:    true,
		},
		&track.Record{
			TrackName: "Fire Thunder Hit",
			Composer:  "Fuzzy Composer",
			Verified:  true,
		},
	)

	match, err := m.Resolve(context.Background(), "Fire Thunder Hit (Stem)", "IATS021", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.MatchType != MatchCatalog {
		t.Errorf("expected catalog priority over fuzzy, got %s", match.MatchType)
	}
	if match.Confidence != track.ConfidenceCatalog {
		t.Errorf("expected confidence 0.9, got %f", match.Confidence)
	}
}

func TestResolveNoMatchIsNotAnError(t *testing.T) {
	m, _ := newTestMatcher(t)

	match, err := m.Resolve(context.Background(), "Never Seen Before", "", "")
	if err != nil {
		t.Fatalf("no match must not be an error: %v", err)
	}
	if match != nil {
		t.Errorf("expected nil match, got %+v", match)
	}
}

func TestResolveRejectsMissingName(t *testing.T) {
	m, _ := newTestMatcher(t)

	if _, err := m.Resolve(context.Background(), "", "IATS021", ""); err == nil {
		t.Fatal("expected error for missing track name")
	}
	if _, err := m.Resolve(context.Background(), "  ", "", ""); err == nil {
		t.Fatal("expected error for blank track name")
	}
}
