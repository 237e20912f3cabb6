package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/franz/trackdb/internal/util"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	util.InfoLog("=== Track Database ===")
	util.InfoLog("  Tracks:   %s", humanize.Comma(int64(stats.Tracks)))
	util.InfoLog("  Verified: %s", humanize.Comma(int64(stats.Verified)))
	util.InfoLog("  Patterns: %s", humanize.Comma(int64(stats.Patterns)))
	util.InfoLog("  Aliases:  %s", humanize.Comma(int64(stats.Aliases)))

	if stats.Tracks > 0 {
		pct := float64(stats.Verified) / float64(stats.Tracks) * 100
		util.InfoLog("  Verified: %.1f%%", pct)
	}
	return nil
}
