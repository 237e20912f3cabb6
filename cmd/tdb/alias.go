package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franz/trackdb/internal/track"
	"github.com/franz/trackdb/internal/util"
)

var aliasCmd = &cobra.Command{
	Use:   "alias <variant> <canonical>",
	Short: "Map a variant composer or publisher spelling to its canonical name",
	Long: `Register an alias so spelling variants strengthen one learned pattern
instead of splitting it. Applies to values observed after the alias is
added; re-save affected tracks to retrain existing patterns.`,
	Args: cobra.ExactArgs(2),
	RunE: runAlias,
}

func init() {
	rootCmd.AddCommand(aliasCmd)

	aliasCmd.Flags().String("entity", track.EntityComposer, "entity type: composer or publisher")
}

func runAlias(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	entity, _ := cmd.Flags().GetString("entity")
	if entity != track.EntityComposer && entity != track.EntityPublisher {
		return fmt.Errorf("unknown entity type %q", entity)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.AddAlias(ctx, args[0], entity, args[1]); err != nil {
		return fmt.Errorf("failed to add alias: %w", err)
	}

	util.SuccessLog("Alias added: %q -> %q (%s)", args[0], args[1], entity)
	return nil
}
