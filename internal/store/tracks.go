package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/franz/trackdb/internal/track"
	"github.com/franz/trackdb/internal/util"
)

const trackColumns = `id, track_name, catalog_code, library, artist, source,
	track_number, duration_sec, composer, publisher, master_contact, use_type,
	confidence, data_source, verified, created_at, updated_at`

func scanTrack(row interface{ Scan(...any) error }) (*track.Record, error) {
	r := &track.Record{}
	err := row.Scan(
		&r.ID, &r.TrackName, &r.CatalogCode, &r.Library, &r.Artist, &r.Source,
		&r.TrackNumber, &r.Duration, &r.Composer, &r.Publisher, &r.MasterContact,
		&r.UseType, &r.Confidence, &r.DataSource, &r.Verified,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func collectTracks(rows *sql.Rows) ([]*track.Record, error) {
	defer rows.Close()

	var records []*track.Record
	for rows.Next() {
		r, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// FindExact returns the record with an identical name and, when given,
// identical catalog code and library (all case-insensitive). Verified
// records win over unverified ones sharing the name.
func (s *Store) FindExact(ctx context.Context, name, catalog, library string) (*track.Record, error) {
	query := "SELECT " + trackColumns + " FROM tracks WHERE track_name = ? COLLATE NOCASE"
	args := []any{name}

	if catalog != "" {
		query += " AND catalog_code = ? COLLATE NOCASE"
		args = append(args, catalog)
	}
	if library != "" {
		query += " AND library = ? COLLATE NOCASE"
		args = append(args, library)
	}
	query += " ORDER BY verified DESC, updated_at DESC LIMIT 1"

	rec, err := scanTrack(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find track: %w", err)
	}
	return rec, nil
}

// FindByCatalog returns all records sharing a catalog code, verified and
// most recently updated first
func (s *Store) FindByCatalog(ctx context.Context, catalog string) ([]*track.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+trackColumns+` FROM tracks
		WHERE catalog_code = ? COLLATE NOCASE
		ORDER BY verified DESC, updated_at DESC
	`, catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to query by catalog: %w", err)
	}
	return collectTracks(rows)
}

// FindVerifiedWithComposer returns a bounded slice of verified records
// carrying a composer, for the fuzzy scan
func (s *Store) FindVerifiedWithComposer(ctx context.Context, limit int) ([]*track.Record, error) {
	if limit <= 0 {
		limit = defaultVerifiedScanLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+trackColumns+` FROM tracks
		WHERE verified = 1 AND composer != ''
		ORDER BY updated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query verified tracks: %w", err)
	}
	return collectTracks(rows)
}

// GetByID retrieves a record by id
func (s *Store) GetByID(ctx context.Context, id int64) (*track.Record, error) {
	rec, err := scanTrack(s.db.QueryRowContext(ctx,
		"SELECT "+trackColumns+" FROM tracks WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	return rec, nil
}

// Upsert inserts a new record or merges the observation into the existing
// one sharing its identity (normalized name + catalog + library, or the
// explicit id when set). All mutation goes through here so the merge
// invariants always hold.
func (s *Store) Upsert(ctx context.Context, rec *track.Record) (*track.Record, error) {
	if rec == nil || !track.IsPresent(rec.TrackName) {
		return nil, fmt.Errorf("%w: trackName is required", util.ErrMalformedInput)
	}

	s.upsertMu.Lock()
	defer s.upsertMu.Unlock()

	existing, err := s.findForUpsert(ctx, rec)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		stored, err := s.insert(ctx, rec)
		if err == nil {
			return stored, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}

		// Another writer inserted the same identity between our read and
		// write; retry as a merge
		util.DebugLog("Upsert conflict on %q, retrying as merge", rec.TrackName)
		existing, err = s.findForUpsert(ctx, rec)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("%w: track %q", util.ErrConflictingWrite, rec.TrackName)
		}
	}

	merged := track.Merge(existing, rec)
	if !merged.Changed {
		return existing, nil
	}
	if err := s.update(ctx, merged.Record); err != nil {
		return nil, err
	}
	return merged.Record, nil
}

func (s *Store) findForUpsert(ctx context.Context, rec *track.Record) (*track.Record, error) {
	if rec.ID != 0 {
		return s.GetByID(ctx, rec.ID)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+trackColumns+` FROM tracks
		WHERE track_key = ? AND catalog_code = ? COLLATE NOCASE AND library = ? COLLATE NOCASE
		LIMIT 1
	`, track.NormalizeKey(rec.TrackName), rec.CatalogCode, rec.Library)

	existing, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find existing track: %w", err)
	}
	return existing, nil
}

func (s *Store) insert(ctx context.Context, rec *track.Record) (*track.Record, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tracks (
			track_name, track_key, catalog_code, library, artist, source,
			track_number, duration_sec, composer, publisher, master_contact,
			use_type, confidence, data_source, verified, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.TrackName, track.NormalizeKey(rec.TrackName), rec.CatalogCode,
		rec.Library, rec.Artist, rec.Source, rec.TrackNumber, rec.Duration,
		rec.Composer, rec.Publisher, rec.MasterContact, rec.UseType,
		rec.Confidence, rec.DataSource, rec.Verified, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert track: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get track id: %w", err)
	}

	stored := *rec
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now
	return &stored, nil
}

func (s *Store) update(ctx context.Context, rec *track.Record) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE tracks SET
			track_name = ?, track_key = ?, catalog_code = ?, library = ?,
			artist = ?, source = ?, track_number = ?, duration_sec = ?,
			composer = ?, publisher = ?, master_contact = ?, use_type = ?,
			confidence = ?, data_source = ?, verified = ?, updated_at = ?
		WHERE id = ?
	`,
		rec.TrackName, track.NormalizeKey(rec.TrackName), rec.CatalogCode,
		rec.Library, rec.Artist, rec.Source, rec.TrackNumber, rec.Duration,
		rec.Composer, rec.Publisher, rec.MasterContact, rec.UseType,
		rec.Confidence, rec.DataSource, rec.Verified, now, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}
	rec.UpdatedAt = now
	return nil
}

// Delete removes a record by id
func (s *Store) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM tracks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	return nil
}

// ListAll returns records, optionally filtered by a search substring over
// name, catalog code and composer
func (s *Store) ListAll(ctx context.Context, search string, limit, offset int) ([]*track.Record, error) {
	query := "SELECT " + trackColumns + " FROM tracks"
	var args []any

	if search != "" {
		query += ` WHERE track_name LIKE ? COLLATE NOCASE
			OR catalog_code LIKE ? COLLATE NOCASE
			OR composer LIKE ? COLLATE NOCASE`
		like := "%" + search + "%"
		args = append(args, like, like, like)
	}

	query += " ORDER BY id"
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	return collectTracks(rows)
}

// Stats returns aggregate counts over all three tables
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM tracks),
			(SELECT COUNT(*) FROM tracks WHERE verified = 1),
			(SELECT COUNT(*) FROM patterns),
			(SELECT COUNT(*) FROM aliases)
	`).Scan(&st.Tracks, &st.Verified, &st.Patterns, &st.Aliases)
	if err != nil {
		return nil, fmt.Errorf("failed to gather stats: %w", err)
	}
	return st, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
