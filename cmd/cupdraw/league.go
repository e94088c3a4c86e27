package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/derekprior/cupdraw/internal/config"
	"github.com/derekprior/cupdraw/internal/excel"
	"github.com/derekprior/cupdraw/internal/store"
)

func (c *cli) newLeagueCmd() *cobra.Command {
	leagueCmd := &cobra.Command{
		Use:   "league",
		Short: "Manage league results used for seeding",
	}

	importCmd := &cobra.Command{
		Use:   "import <results.xlsx>",
		Short: "Import head-to-head league results from a workbook",
		Long: `Import head-to-head league results into the database.

The workbook's Results sheet (or its first sheet) needs the columns
Gameweek, Entry 1, Entry 1 Points, Entry 2 and Entry 2 Points. Optional
Entry 1 Name and Entry 2 Name columns record manager names. Importing a
match again replaces its points.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(c.configFile)
			if err != nil {
				return err
			}
			return c.runImport(cmd.Context(), configPath, args[0])
		},
	}

	leagueCmd.AddCommand(importCmd)
	return leagueCmd
}

func (c *cli) runImport(ctx context.Context, configPath, resultsPath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	results, err := excel.ReadResults(resultsPath)
	if err != nil {
		return fmt.Errorf("reading results: %w", err)
	}

	st, err := c.openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var managers []store.Manager
	named := make(map[string]bool)
	addManager := func(id, name string) {
		if name == "" || named[id] {
			return
		}
		named[id] = true
		managers = append(managers, store.Manager{ID: id, Name: name})
	}
	for _, r := range results {
		addManager(r.Entry1, r.Entry1Name)
		addManager(r.Entry2, r.Entry2Name)
	}
	if len(managers) > 0 {
		if err := st.UpsertManagers(ctx, managers); err != nil {
			return fmt.Errorf("saving managers: %w", err)
		}
	}

	for _, r := range results {
		err := st.RecordH2H(ctx, store.H2HMatch{
			Gameweek:     r.Gameweek,
			Entry1:       r.Entry1,
			Entry1Points: r.Entry1Points,
			Entry2:       r.Entry2,
			Entry2Points: r.Entry2Points,
		})
		if err != nil {
			return fmt.Errorf("recording gameweek %d %s v %s: %w", r.Gameweek, r.Entry1, r.Entry2, err)
		}
	}
	c.logger.Info("league results imported", "results", len(results), "managers", len(managers))

	fmt.Printf("✓ Imported %d results (%d named managers) into %s\n", len(results), len(managers), cfg.Database)
	return nil
}
