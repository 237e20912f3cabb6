package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franz/trackdb/internal/matcher"
	"github.com/franz/trackdb/internal/pattern"
	"github.com/franz/trackdb/internal/util"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <track name>",
	Short: "Resolve a track descriptor against learned knowledge",
	Long: `Resolve a partial track descriptor (name, plus optional catalog code and
library) against everything the database has learned.

Strategies run in fixed priority order:
1. Exact name match on a verified record (confidence 1.0)
2. Shared catalog code with a verified record (confidence 0.9)
3. Normalized name containment against verified records (confidence 0.7)

When no record matches, learned catalog/library patterns are consulted for
a rights prediction instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringP("catalog", "c", "", "catalog code, e.g. IATS021")
	resolveCmd.Flags().StringP("library", "l", "", "production library name")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	name := args[0]
	catalog, _ := cmd.Flags().GetString("catalog")
	library, _ := cmd.Flags().GetString("library")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	m := matcher.New(&matcher.Config{Store: s})

	match, err := m.Resolve(ctx, name, catalog, library)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	if match != nil {
		util.SuccessLog("Match: %s (confidence %.2f)", match.MatchType, match.Confidence)
		util.InfoLog("  Matched by: %s", match.MatchedBy)
		printRecord(match.Record)
		return nil
	}

	util.InfoLog("No stored record matches %q", name)

	// Fall back to pattern prediction
	learner := pattern.New(&pattern.Config{Store: s})
	pred, err := learner.Predict(ctx, catalog, library)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	if pred.Composer == "" && pred.Publisher == "" {
		util.InfoLog("No patterns learned for this catalog/library yet")
		return nil
	}

	util.InfoLog("Learned pattern prediction:")
	if pred.Composer != "" {
		util.InfoLog("  Composer:  %s (confidence %.2f)", pred.Composer, pred.ComposerConfidence)
	}
	if pred.Publisher != "" {
		util.InfoLog("  Publisher: %s (confidence %.2f)", pred.Publisher, pred.PublisherConfidence)
	}
	return nil
}
