package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/franz/trackdb/internal/matcher"
	"github.com/franz/trackdb/internal/meta"
	"github.com/franz/trackdb/internal/pattern"
	"github.com/franz/trackdb/internal/store"
	"github.com/franz/trackdb/internal/track"
	"github.com/franz/trackdb/internal/util"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <directory>",
	Short: "Ingest audio files into the track database",
	Long: `Walk a directory of audio files, read their embedded tags (falling back
to filenames), resolve each against learned knowledge, fill rights fields
from high-confidence patterns, and store the results.

Ingested records are observations, never verified; resolution can raise
their confidence but only a human can verify them.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringP("library", "l", "", "library to attribute the files to")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dir := args[0]
	library, _ := cmd.Flags().GetString("library")

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", dir)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && meta.IsAudioFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	if len(paths) == 0 {
		util.InfoLog("No audio files found in %s", dir)
		return nil
	}
	util.InfoLog("Found %d audio files", len(paths))

	m := matcher.New(&matcher.Config{Store: s})
	learner := pattern.New(&pattern.Config{Store: s})

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Ingesting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var stored, resolved, filled, failed int

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		bar.Add(1)

		if err := ingestOne(ctx, m, learner, s, path, library, &resolved, &filled); err != nil {
			util.WarnLog("Skipping %s: %v", path, err)
			failed++
			continue
		}
		stored++
	}
	bar.Finish()

	util.SuccessLog("Ingest complete: %d stored, %d resolved against known tracks, %d pattern-filled, %d failed",
		stored, resolved, filled, failed)
	return nil
}

func ingestOne(ctx context.Context, m *matcher.Matcher, learner *pattern.Learner,
	s store.TrackStore, path, library string, resolved, filled *int) error {

	rec, err := meta.FromFile(path)
	if err != nil {
		return err
	}
	if rec.Library == "" {
		rec.Library = library
	}

	// Resolution can supply the rights fields the file never carries
	match, err := m.Resolve(ctx, rec.TrackName, rec.CatalogCode, rec.Library)
	if err != nil {
		return err
	}
	if match != nil {
		merged := track.MergeDefault(rec, match.Record)
		rec = merged.Record
		if rec.Confidence < match.Confidence {
			rec.Confidence = match.Confidence
		}
		*resolved++
	}

	// High-confidence patterns fill what resolution could not
	fields, err := learner.AutoFill(ctx, rec)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		*filled++
	}

	// A file observation can never verify a record
	rec.Verified = false

	_, err = s.Upsert(ctx, rec)
	return err
}
