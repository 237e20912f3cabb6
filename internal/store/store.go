package store

import (
	"context"

	"github.com/franz/trackdb/internal/track"
)

// Stats is a read-only aggregate over a backend, reflecting the store at
// call time
type Stats struct {
	Tracks   int
	Verified int
	Patterns int
	Aliases  int
}

// TrackStore is the persistence contract the engine depends on. The local
// embedded backend (this package) and the remote synced backend
// (remotestore) are behaviorally interchangeable against it.
//
// Misses are (nil, nil), never an error: a miss means "safe to fall back to
// other lookups", while an error means the store could not be consulted and
// its absence of data must not be trusted.
type TrackStore interface {
	// FindExact returns the record whose name (and catalog/library, when
	// given) matches case-insensitively, preferring verified records
	FindExact(ctx context.Context, name, catalog, library string) (*track.Record, error)

	// FindByCatalog returns all records sharing a catalog code, verified
	// and most recently updated first
	FindByCatalog(ctx context.Context, catalog string) ([]*track.Record, error)

	// FindVerifiedWithComposer returns a bounded slice of verified records
	// carrying a composer, for the fuzzy scan. limit <= 0 applies the
	// backend default.
	FindVerifiedWithComposer(ctx context.Context, limit int) ([]*track.Record, error)

	// Upsert inserts a new record or merges the observation into the
	// existing one sharing its identity. Returns the stored state.
	Upsert(ctx context.Context, rec *track.Record) (*track.Record, error)

	// Delete removes a record by id
	Delete(ctx context.Context, id int64) error

	// ListAll returns records, optionally filtered by a search substring
	// over name/catalog/composer. limit <= 0 means no limit.
	ListAll(ctx context.Context, search string, limit, offset int) ([]*track.Record, error)

	// ObservePattern records one observation of (type, key) -> value and
	// returns the updated pattern
	ObservePattern(ctx context.Context, patternType, key, value string) (*track.Pattern, error)

	// PatternsFor returns all observed values for a key, ordered by
	// confidence then occurrences, descending
	PatternsFor(ctx context.Context, patternType, key string) ([]*track.Pattern, error)

	// AddAlias maps a variant spelling to a canonical entity name
	AddAlias(ctx context.Context, alias, entityType, canonical string) error

	// CanonicalName resolves a name through the alias table; unknown names
	// resolve to themselves
	CanonicalName(ctx context.Context, name, entityType string) (string, error)

	// Stats returns aggregate counts
	Stats(ctx context.Context) (*Stats, error)

	Close() error
}
