package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franz/trackdb/internal/pattern"
	"github.com/franz/trackdb/internal/util"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict rights fields from learned patterns",
	Long: `Predict composer and publisher for a catalog code or library, based
purely on patterns learned from verified records.

Catalog patterns take precedence; a library-wide publisher pattern is
used only when the catalog has none, at a discounted confidence.
Predictions at or above the auto-apply threshold are filled silently
during ingest; anything below is surfaced for human review only.`,
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringP("catalog", "c", "", "catalog code")
	predictCmd.Flags().StringP("library", "l", "", "production library name")
}

func runPredict(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	catalog, _ := cmd.Flags().GetString("catalog")
	library, _ := cmd.Flags().GetString("library")
	if catalog == "" && library == "" {
		return fmt.Errorf("a catalog code or a library is required")
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	learner := pattern.New(&pattern.Config{Store: s})
	pred, err := learner.Predict(ctx, catalog, library)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	if pred.Composer == "" && pred.Publisher == "" {
		util.InfoLog("No patterns learned yet")
		return nil
	}

	if pred.Composer != "" {
		util.InfoLog("Composer:  %s (confidence %.2f%s)",
			pred.Composer, pred.ComposerConfidence, autoApplyNote(pred.ComposerConfidence))
	}
	if pred.Publisher != "" {
		util.InfoLog("Publisher: %s (confidence %.2f%s)",
			pred.Publisher, pred.PublisherConfidence, autoApplyNote(pred.PublisherConfidence))
	}
	return nil
}

func autoApplyNote(confidence float64) string {
	if pattern.AutoApplicable(confidence) {
		return ", auto-applies"
	}
	return ", review required"
}
