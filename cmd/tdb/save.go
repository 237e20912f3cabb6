package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franz/trackdb/internal/pattern"
	"github.com/franz/trackdb/internal/track"
	"github.com/franz/trackdb/internal/util"
)

var saveCmd = &cobra.Command{
	Use:   "save <track name>",
	Short: "Save or update a track record",
	Long: `Save a track observation into the database.

By default values fill gaps only: fields already present on the stored
record are never overwritten. Pass --approved to mark the submission as
directly human-approved, which replaces the stored record outright,
including clearing fields submitted empty.

Verified saves also feed the pattern learner, strengthening future
catalog and library predictions.`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)

	saveCmd.Flags().StringP("catalog", "c", "", "catalog code")
	saveCmd.Flags().StringP("library", "l", "", "production library name")
	saveCmd.Flags().String("artist", "", "performing artist")
	saveCmd.Flags().String("album", "", "album or collection")
	saveCmd.Flags().String("composer", "", "composer credit, e.g. \"W. Werzowa (ASCAP)(100%)\"")
	saveCmd.Flags().String("publisher", "", "publisher credit")
	saveCmd.Flags().String("master-contact", "", "master rights contact")
	saveCmd.Flags().String("use-type", "", "use type, e.g. background or feature")
	saveCmd.Flags().Int("track-number", 0, "track number on the release")
	saveCmd.Flags().Int("duration", 0, "duration in seconds")
	saveCmd.Flags().Bool("verified", false, "mark the record as human-verified")
	saveCmd.Flags().Bool("approved", false, "full human approval: replace the stored record outright")
}

func runSave(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rec := &track.Record{TrackName: args[0], DataSource: track.SourceManual}
	rec.CatalogCode, _ = cmd.Flags().GetString("catalog")
	rec.Library, _ = cmd.Flags().GetString("library")
	rec.Artist, _ = cmd.Flags().GetString("artist")
	rec.Source, _ = cmd.Flags().GetString("album")
	rec.Composer, _ = cmd.Flags().GetString("composer")
	rec.Publisher, _ = cmd.Flags().GetString("publisher")
	rec.MasterContact, _ = cmd.Flags().GetString("master-contact")
	rec.UseType, _ = cmd.Flags().GetString("use-type")
	rec.TrackNumber, _ = cmd.Flags().GetInt("track-number")
	rec.Duration, _ = cmd.Flags().GetInt("duration")
	rec.Verified, _ = cmd.Flags().GetBool("verified")

	if approved, _ := cmd.Flags().GetBool("approved"); approved {
		rec.DataSource = track.SourceUserApproved
		rec.Verified = true
	}
	if rec.Verified {
		rec.Confidence = track.ConfidenceExact
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	stored, err := s.Upsert(ctx, rec)
	if err != nil {
		return fmt.Errorf("save failed: %w", err)
	}

	util.SuccessLog("Saved track #%d", stored.ID)
	printRecord(stored)

	// Verified knowledge feeds the pattern learner
	if stored.Verified {
		learner := pattern.New(&pattern.Config{Store: s})
		if err := learner.LearnFrom(ctx, stored); err != nil {
			util.WarnLog("Saved, but pattern learning failed: %v", err)
		}
	}

	return nil
}
