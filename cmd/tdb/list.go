package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franz/trackdb/internal/track"
	"github.com/franz/trackdb/internal/util"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored track records",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("search", "s", "", "filter by name, catalog code or composer substring")
	listCmd.Flags().Int("limit", 50, "maximum records to show (0 = all)")
	listCmd.Flags().Int("offset", 0, "records to skip")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	search, _ := cmd.Flags().GetString("search")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.ListAll(ctx, search, limit, offset)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if len(records) == 0 {
		util.InfoLog("No records found")
		return nil
	}

	for _, rec := range records {
		verified := " "
		if rec.Verified {
			verified = "*"
		}
		fmt.Printf("%s #%-5d %-40s %-10s %s\n",
			verified, rec.ID, truncate(rec.TrackName, 40), rec.CatalogCode, rec.Composer)
	}
	util.InfoLog("%d records (* = verified)", len(records))
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func printRecord(rec *track.Record) {
	util.InfoLog("  Name:      %s", rec.TrackName)
	if rec.CatalogCode != "" {
		util.InfoLog("  Catalog:   %s", rec.CatalogCode)
	}
	if rec.Library != "" {
		util.InfoLog("  Library:   %s", rec.Library)
	}
	if rec.Artist != "" {
		util.InfoLog("  Artist:    %s", rec.Artist)
	}
	if rec.Source != "" {
		util.InfoLog("  Album:     %s", rec.Source)
	}
	if rec.Composer != "" {
		util.InfoLog("  Composer:  %s", rec.Composer)
	}
	if rec.Publisher != "" {
		util.InfoLog("  Publisher: %s", rec.Publisher)
	}
	if rec.MasterContact != "" {
		util.InfoLog("  Master:    %s", rec.MasterContact)
	}
	if rec.Duration > 0 {
		util.InfoLog("  Duration:  %ds", rec.Duration)
	}
	util.InfoLog("  Source:    %s, confidence %.2f, verified: %v",
		rec.DataSource, rec.Confidence, rec.Verified)
}
