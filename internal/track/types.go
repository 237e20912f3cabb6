package track

import (
	"strings"
	"time"
)

// Data source tags describing how a record's values were obtained
const (
	SourceManual       = "manual"
	SourceFileMetadata = "file_metadata"
	SourcePattern      = "pattern_prediction"
	SourceLearnedDB    = "learned_db"
	SourceScrape       = "web_scrape"
	SourceAIExtract    = "ai_extraction"

	// Direct human approval tags. These trigger the full-overwrite merge rule.
	SourceUserApproved = "user_approved"
	SourceUserEdit     = "user_edit"
	SourceUserComplete = "user_complete"
)

// Pattern types
const (
	PatternCatalogComposer  = "catalog_composer"
	PatternCatalogPublisher = "catalog_publisher"
	PatternLibraryPublisher = "library_publisher"
)

// Alias entity types
const (
	EntityComposer  = "composer"
	EntityPublisher = "publisher"
)

// Record is the canonical unit of learned track knowledge.
// At most one record should exist per distinct real-world track; near
// duplicates are a transient state repaired by the deduplicator.
type Record struct {
	ID          int64
	TrackName   string
	CatalogCode string
	Library     string

	Artist      string
	Source      string // album or collection the track came from
	TrackNumber int
	Duration    int // seconds

	Composer      string
	Publisher     string
	MasterContact string
	UseType       string

	Confidence float64
	DataSource string
	Verified   bool // true only for human-confirmed records

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Pattern is a learned (type, key) -> value association independent of any
// single track. Confidence grows with occurrences but is always a prediction,
// never a substitute for a verified record.
type Pattern struct {
	ID          int64
	PatternType string
	Key         string
	Value       string
	Occurrences int
	Confidence  float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Alias maps a variant spelling to a canonical entity name
type Alias struct {
	Alias      string
	EntityType string
	Canonical  string
	CreatedAt  time.Time
}

// Placeholder strings that count as absent content
var absentSentinels = map[string]bool{
	"":          true,
	"-":         true,
	"n/a":       true,
	"null":      true,
	"undefined": true,
}

// IsPresent reports whether a field value carries real content.
// Trimmed-empty strings and placeholder sentinels do not.
func IsPresent(v string) bool {
	return !absentSentinels[strings.ToLower(strings.TrimSpace(v))]
}

// IsUserApproved reports whether a data source tag represents direct human
// approval of the full record
func IsUserApproved(dataSource string) bool {
	switch dataSource {
	case SourceUserApproved, SourceUserEdit, SourceUserComplete:
		return true
	}
	return false
}
