package meta

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dhowden/tag"

	"github.com/franz/trackdb/internal/track"
	"github.com/franz/trackdb/internal/util"
)

// Confidence assigned to records built purely from embedded file tags.
// Tags are frequently wrong or missing in production music deliveries, so
// this starts well below the resolution strategies.
const tagConfidence = 0.5

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".mp4":  true,
	".ogg":  true,
	".wav":  true,
	".aif":  true,
	".aiff": true,
}

// Library catalog codes embedded in filenames, e.g. "IATS021_Punch_Drunk.wav"
var catalogCodeRe = regexp.MustCompile(`^([A-Z]{2,6}\d{2,5})[\s_-]+(.+)$`)

// IsAudioFile reports whether a path looks like an audio file by extension
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// FromFile builds an unverified track record from a file's embedded tags,
// falling back to the filename when the tags are absent or unreadable.
// The returned record is an observation to feed through resolution, never
// trusted data.
func FromFile(path string) (*track.Record, error) {
	rec := &track.Record{
		DataSource: track.SourceFileMetadata,
		Confidence: tagConfidence,
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// Untagged files are common; the filename is still usable
		util.DebugLog("No readable tags in %s: %v", path, err)
	} else {
		rec.TrackName = strings.TrimSpace(m.Title())
		rec.Artist = strings.TrimSpace(m.Artist())
		rec.Source = strings.TrimSpace(m.Album())
		rec.Composer = strings.TrimSpace(m.Composer())
		rec.TrackNumber, _ = m.Track()
	}

	if !track.IsPresent(rec.TrackName) {
		name, catalog := parseFilename(path)
		rec.TrackName = name
		if rec.CatalogCode == "" {
			rec.CatalogCode = catalog
		}
	}

	if !track.IsPresent(rec.TrackName) {
		return nil, fmt.Errorf("%w: no usable track name in %s", util.ErrMalformedInput, path)
	}

	return rec, nil
}

// parseFilename derives a track name, and a catalog code when one prefixes
// the name, from the file's base name
func parseFilename(path string) (name, catalog string) {
	base := filepath.Base(path)
	name = strings.TrimSuffix(base, filepath.Ext(base))

	if m := catalogCodeRe.FindStringSubmatch(name); m != nil {
		catalog = m[1]
		name = m[2]
	}

	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	return name, catalog
}
