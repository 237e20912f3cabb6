package dedup

import (
	"context"
	"fmt"
	"sort"

	"github.com/franz/trackdb/internal/store"
	"github.com/franz/trackdb/internal/track"
	"github.com/franz/trackdb/internal/util"
)

// Consolidator folds records sharing a normalized track key into one
type Consolidator struct {
	store store.TrackStore
}

// Config holds consolidator configuration
type Config struct {
	Store store.TrackStore
}

// New creates a new Consolidator
func New(cfg *Config) *Consolidator {
	return &Consolidator{store: cfg.Store}
}

// Result represents consolidation results
type Result struct {
	Groups       int // groups with more than one member
	Removed      int // records deleted after folding
	FieldsFilled int // fields copied into survivors
	Errors       []error
}

// Consolidate scans the whole store, groups records by exact normalized key
// equality, folds each group into its most recently updated member, and
// deletes the rest. Containment is deliberately not used here: it is fine
// for suggesting a match but too aggressive for destructive folding.
//
// Running it twice in a row is a no-op.
func (c *Consolidator) Consolidate(ctx context.Context) (*Result, error) {
	records, err := c.store.ListAll(ctx, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	groups := make(map[string][]*track.Record)
	for _, rec := range records {
		key := track.NormalizeKey(rec.TrackName)
		if key == "" {
			// Nothing to group on; leave the record alone
			continue
		}
		groups[key] = append(groups[key], rec)
	}

	result := &Result{Errors: make([]error, 0)}

	// Deterministic group order for reproducible logs
	keys := make([]string, 0, len(groups))
	for key, members := range groups {
		if len(members) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := c.foldGroup(ctx, key, groups[key], result); err != nil {
			util.WarnLog("Skipping group %q: %v", key, err)
			result.Errors = append(result.Errors, fmt.Errorf("group %q: %w", key, err))
		}
	}

	util.InfoLog("Consolidated %d duplicate groups, removed %d records", result.Groups, result.Removed)
	return result, nil
}

// foldGroup merges every member into the survivor and deletes the folded
// members. The survivor is the most recently updated record, on the theory
// that it reflects the latest human attention; ties break toward the higher
// id so re-runs pick the same survivor.
func (c *Consolidator) foldGroup(ctx context.Context, key string, members []*track.Record, result *Result) error {
	sort.Slice(members, func(i, j int) bool {
		if !members[i].UpdatedAt.Equal(members[j].UpdatedAt) {
			return members[i].UpdatedAt.After(members[j].UpdatedAt)
		}
		return members[i].ID > members[j].ID
	})

	survivor := members[0]
	changed := false

	for _, member := range members[1:] {
		merged := track.MergeDefault(survivor, member)
		if merged.Changed {
			changed = true
			result.FieldsFilled += len(merged.FieldsChanged)
			util.DebugLog("Folding track #%d into #%d (%s): %v",
				member.ID, survivor.ID, key, merged.FieldsChanged)
		}
		survivor = merged.Record
	}

	if changed {
		if _, err := c.store.Upsert(ctx, survivor); err != nil {
			return fmt.Errorf("failed to update survivor #%d: %w", survivor.ID, err)
		}
	}

	for _, member := range members[1:] {
		if err := c.store.Delete(ctx, member.ID); err != nil {
			return fmt.Errorf("failed to delete folded record #%d: %w", member.ID, err)
		}
		result.Removed++
	}

	result.Groups++
	return nil
}
