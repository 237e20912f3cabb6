package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franz/trackdb/internal/dedup"
	"github.com/franz/trackdb/internal/util"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Fold duplicate track records into one canonical entry",
	Long: `Group records whose names normalize to the same key and fold each group
into its most recently updated member, copying any metadata only the
folded records carried.

Grouping requires exact normalized-key equality; running dedupe twice in
a row is a no-op.`,
	RunE: runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)
}

func runDedupe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	c := dedup.New(&dedup.Config{Store: s})

	result, err := c.Consolidate(ctx)
	if err != nil {
		return fmt.Errorf("dedupe failed: %w", err)
	}

	util.SuccessLog("Dedupe complete")
	util.InfoLog("  Duplicate groups: %d", result.Groups)
	util.InfoLog("  Records removed:  %d", result.Removed)
	util.InfoLog("  Fields filled:    %d", result.FieldsFilled)
	if len(result.Errors) > 0 {
		util.WarnLog("  Groups skipped:   %d", len(result.Errors))
	}
	return nil
}
