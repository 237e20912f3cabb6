package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/franz/trackdb/internal/track"
)

func TestIsAudioFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"track.mp3", true},
		{"track.FLAC", true},
		{"session.wav", true},
		{"notes.txt", false},
		{"cover.jpg", false},
		{"noext", false},
	}

	for _, tc := range cases {
		if got := IsAudioFile(tc.path); got != tc.want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestParseFilename(t *testing.T) {
	cases := []struct {
		path        string
		wantName    string
		wantCatalog string
	}{
		{"/music/IATS021_Punch_Drunk.wav", "Punch Drunk", "IATS021"},
		{"/music/FTH001 - Fire Thunder Hit.mp3", "Fire Thunder Hit", "FTH001"},
		{"/music/Punch Drunk.mp3", "Punch Drunk", ""},
		{"/music/fire_thunder_hit.flac", "fire thunder hit", ""},
	}

	for _, tc := range cases {
		name, catalog := parseFilename(tc.path)
		if name != tc.wantName || catalog != tc.wantCatalog {
			t.Errorf("parseFilename(%q) = (%q, %q), want (%q, %q)",
				tc.path, name, catalog, tc.wantName, tc.wantCatalog)
		}
	}
}

// An untagged file still yields a record named after the file
func TestFromFileFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IATS021_Punch_Drunk.wav")
	if err := os.WriteFile(path, []byte("not real audio"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	rec, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if rec.TrackName != "Punch Drunk" {
		t.Errorf("wrong track name: %q", rec.TrackName)
	}
	if rec.CatalogCode != "IATS021" {
		t.Errorf("wrong catalog code: %q", rec.CatalogCode)
	}
	if rec.DataSource != track.SourceFileMetadata {
		t.Errorf("wrong data source: %q", rec.DataSource)
	}
	if rec.Verified {
		t.Error("file-derived records must never be verified")
	}
}

func TestFromFileMissingFile(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
