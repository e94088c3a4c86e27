package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/derekprior/cupdraw/internal/logging"
)

const defaultConfigFile = "cupdraw.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

// cli holds state shared by every command.
type cli struct {
	logger     *slog.Logger
	logLevel   string
	logFormat  string
	configFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: logging.Discard()}

	rootCmd := &cobra.Command{
		Use:   "cupdraw",
		Short: "Swiss-style cup draw generator for head-to-head fantasy leagues",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.logger = logging.New(logging.ParseLevel(c.logLevel), c.logFormat)
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&c.logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&c.configFile, "config", "", "Path to config file (default: cupdraw.yaml in current directory)")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter cupdraw.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	standingsCmd := &cobra.Command{
		Use:          "standings",
		Short:        "Print the seeding order from league standings in the database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(c.configFile)
			if err != nil {
				return err
			}
			return c.runStandings(cmd.Context(), configPath)
		},
	}

	rootCmd.AddCommand(initCmd, c.newDrawCmd(), c.newLeagueCmd(), standingsCmd)
	return rootCmd
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# Cup Draw Configuration
# ======================
# This file defines one stage of a cup draw: who takes part, how many rounds
# to draw and how the participants are seeded.

# Name of the competition, shown in printed output.
cup: Rundisliga Cup 25/26

# The stage to draw. Every participant plays once per round and never meets
# the same opponent twice, so rounds can be at most (participants - 1).
stage:
  name: group
  rounds: 5

  # Optional labels, one per round, e.g. the gameweek each round is played in.
  # Leave empty to number rounds only.
  round_labels: [GW21, GW22, GW23, GW24, GW25]

  # Earlier stages saved with --save whose fixtures count as already played.
  # Opponents from those stages won't be drawn again.
  carry_over: []

# Random seed. The same seed, participants and standings always give the same
# draw. 0 picks a seed at run time and prints it so the draw can be reproduced.
seed: 0

# Seeding decides the order participants enter the draw.
# "standings" uses the standings below, or league results in the database when
# none are listed, and falls back to random when neither has any points.
# "random" ignores standings.
seeding: standings

# Participants. Ids must be unique; the count must be even.
# name is used in printed output and the workbook; it defaults to the id.
participants:
  - id: "101"
    name: Alice
    team: Alice's XI
  - id: "102"
    name: Bob
  - id: "103"
    name: Carol
  - id: "104"
    name: Dan
  - id: "105"
    name: Erin
  - id: "106"
    name: Frank

# Optional inline standings for seeding. Points are totalled per id.
standings:
  - id: "101"
    points: 1210
  - id: "103"
    points: 1302

# SQLite database for league results and saved draws.
# Can be overridden with CUPDRAW_DATABASE.
database: db/fantasy_cup.db

# Rules checked by "cupdraw draw validate". Violations are warnings.
rules:
  max_home_away_imbalance: 2   # Largest allowed difference between home and away games
`
