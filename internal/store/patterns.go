package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/franz/trackdb/internal/track"
	"github.com/franz/trackdb/internal/util"
)

const patternColumns = `id, pattern_type, key, value, occurrences, confidence,
	created_at, updated_at`

func scanPattern(row interface{ Scan(...any) error }) (*track.Pattern, error) {
	p := &track.Pattern{}
	err := row.Scan(
		&p.ID, &p.PatternType, &p.Key, &p.Value, &p.Occurrences, &p.Confidence,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ObservePattern records one observation of (type, key) -> value. The first
// observation creates the pattern; repeats bump the occurrence count and
// recompute confidence, capped so a pattern never counts as certain.
func (s *Store) ObservePattern(ctx context.Context, patternType, key, value string) (*track.Pattern, error) {
	if patternType == "" || key == "" || !track.IsPresent(value) {
		return nil, fmt.Errorf("%w: pattern type, key and value are required", util.ErrMalformedInput)
	}

	// min() keeps the ceiling enforcement atomic with the increment
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patterns (pattern_type, key, value, occurrences, confidence)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(pattern_type, key, value) DO UPDATE SET
			occurrences = occurrences + 1,
			confidence = min(?, ? + (occurrences + 1) * ?),
			updated_at = CURRENT_TIMESTAMP
	`, patternType, key, value, track.PatternConfidence(1),
		track.PatternCeiling, track.PatternBase, track.PatternStep)
	if err != nil {
		return nil, fmt.Errorf("failed to observe pattern: %w", err)
	}

	p, err := scanPattern(s.db.QueryRowContext(ctx, `
		SELECT `+patternColumns+` FROM patterns
		WHERE pattern_type = ? AND key = ? AND value = ?
	`, patternType, key, value))
	if err != nil {
		return nil, fmt.Errorf("failed to read back pattern: %w", err)
	}
	return p, nil
}

// PatternsFor returns all observed values for a key, strongest first
func (s *Store) PatternsFor(ctx context.Context, patternType, key string) ([]*track.Pattern, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+patternColumns+` FROM patterns
		WHERE pattern_type = ? AND key = ?
		ORDER BY confidence DESC, occurrences DESC, id
	`, patternType, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*track.Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

// AddAlias maps a variant spelling to a canonical entity name. Re-adding an
// alias updates its canonical target.
func (s *Store) AddAlias(ctx context.Context, alias, entityType, canonical string) error {
	if !track.IsPresent(alias) || entityType == "" || !track.IsPresent(canonical) {
		return fmt.Errorf("%w: alias, entity type and canonical name are required", util.ErrMalformedInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO aliases (alias, entity_type, canonical)
		VALUES (?, ?, ?)
		ON CONFLICT(alias, entity_type) DO UPDATE SET canonical = excluded.canonical
	`, alias, entityType, canonical)
	if err != nil {
		return fmt.Errorf("failed to add alias: %w", err)
	}
	return nil
}

// CanonicalName resolves a name through the alias table before the caller
// treats two strings as distinct entities. Unknown names resolve to
// themselves.
func (s *Store) CanonicalName(ctx context.Context, name, entityType string) (string, error) {
	var canonical string
	err := s.db.QueryRowContext(ctx, `
		SELECT canonical FROM aliases
		WHERE alias = ? COLLATE NOCASE AND entity_type = ?
	`, name, entityType).Scan(&canonical)

	if err == sql.ErrNoRows {
		return name, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve alias: %w", err)
	}
	return canonical, nil
}
