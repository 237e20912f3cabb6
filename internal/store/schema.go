package store

// Schema v1 - initial database schema
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Learned track records
CREATE TABLE IF NOT EXISTS tracks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  track_name TEXT NOT NULL,
  track_key TEXT NOT NULL,
  catalog_code TEXT NOT NULL DEFAULT '',
  library TEXT NOT NULL DEFAULT '',
  artist TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  track_number INTEGER NOT NULL DEFAULT 0,
  duration_sec INTEGER NOT NULL DEFAULT 0,
  composer TEXT NOT NULL DEFAULT '',
  publisher TEXT NOT NULL DEFAULT '',
  master_contact TEXT NOT NULL DEFAULT '',
  use_type TEXT NOT NULL DEFAULT '',
  confidence REAL NOT NULL DEFAULT 0,
  data_source TEXT NOT NULL DEFAULT '',
  verified INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One canonical record per normalized identity. The engine serializes its
-- own writes; this guard catches a second writer outside the process.
CREATE UNIQUE INDEX IF NOT EXISTS idx_tracks_identity
  ON tracks(track_key, catalog_code, library);

CREATE INDEX IF NOT EXISTS idx_tracks_catalog ON tracks(catalog_code);
CREATE INDEX IF NOT EXISTS idx_tracks_verified ON tracks(verified, composer);

-- Learned (type, key) -> value associations
CREATE TABLE IF NOT EXISTS patterns (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  pattern_type TEXT NOT NULL,
  key TEXT NOT NULL,
  value TEXT NOT NULL,
  occurrences INTEGER NOT NULL DEFAULT 1,
  confidence REAL NOT NULL DEFAULT 0,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(pattern_type, key, value)
);

CREATE INDEX IF NOT EXISTS idx_patterns_lookup ON patterns(pattern_type, key);

-- Variant spelling -> canonical entity name
CREATE TABLE IF NOT EXISTS aliases (
  alias TEXT NOT NULL,
  entity_type TEXT NOT NULL,
  canonical TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (alias, entity_type)
);
`
