package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/derekprior/cupdraw/internal/config"
	"github.com/derekprior/cupdraw/internal/excel"
	"github.com/derekprior/cupdraw/internal/schedule"
	"github.com/derekprior/cupdraw/internal/store"
	"github.com/derekprior/cupdraw/internal/validator"
)

func (c *cli) newDrawCmd() *cobra.Command {
	drawCmd := &cobra.Command{
		Use:   "draw",
		Short: "Generate, validate and show cup draws",
	}

	var (
		outputFile string
		seedFlag   int64
		save       bool
	)
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate a draw from a config file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(c.configFile)
			if err != nil {
				return err
			}
			opts := generateOptions{outputPath: outputFile, save: save}
			if cmd.Flags().Changed("seed") {
				opts.seed = &seedFlag
			}
			return c.runGenerate(cmd.Context(), configPath, opts)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "draw.xlsx", "Output Excel file path")
	generateCmd.Flags().Int64Var(&seedFlag, "seed", 0, "Random seed (overrides the config; 0 picks one)")
	generateCmd.Flags().BoolVar(&save, "save", false, "Replace the stage's draw in the database")

	validateCmd := &cobra.Command{
		Use:          "validate <draw.xlsx>",
		Short:        "Validate a draw workbook against the config",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(c.configFile)
			if err != nil {
				return err
			}
			return c.runValidate(configPath, args[0])
		},
	}

	var stage string
	showCmd := &cobra.Command{
		Use:          "show",
		Short:        "Print a saved draw from the database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(c.configFile)
			if err != nil {
				return err
			}
			return c.runShow(cmd.Context(), configPath, stage)
		},
	}
	showCmd.Flags().StringVar(&stage, "stage", "", "Stage to show (default: the config's stage)")

	drawCmd.AddCommand(generateCmd, validateCmd, showCmd)
	return drawCmd
}

type generateOptions struct {
	outputPath string
	seed       *int64
	save       bool
}

func (c *cli) runGenerate(ctx context.Context, configPath string, opts generateOptions) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	seed := cfg.Seed
	if opts.seed != nil {
		seed = *opts.seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	c.logger.Info("drawing", "cup", cfg.Cup, "stage", cfg.Stage.Name, "seed", seed)

	// The database is only opened when something needs it.
	var st *store.SQLiteStore
	openStore := func() (*store.SQLiteStore, error) {
		if st != nil {
			return st, nil
		}
		opened, err := c.openStore(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		st = opened
		return st, nil
	}
	defer func() {
		if st != nil {
			st.Close()
		}
	}()

	history := schedule.NewState()
	if len(cfg.Stage.CarryOver) > 0 {
		db, err := openStore()
		if err != nil {
			return err
		}
		if history, err = db.LoadHistory(ctx, cfg.Stage.CarryOver); err != nil {
			if errors.Is(err, store.ErrStageNotFound) {
				return fmt.Errorf("carry_over: %w; check the stage name or draw it with 'cupdraw draw generate --save'", err)
			}
			return fmt.Errorf("loading earlier stages: %w", err)
		}
		c.logger.Info("carried over fixtures", "stages", cfg.Stage.CarryOver, "pairs", history.PairCount())
	}

	standings, err := c.seedingStandings(ctx, cfg, openStore)
	if err != nil {
		return err
	}
	seeding, err := schedule.Seed(cfg.Roster(), standings, rng)
	if err != nil {
		return err
	}
	c.logger.Info("seeded", "method", seeding.Method)

	fmt.Printf("Drawing %d rounds for %d managers (seed %d, %s seeding)...\n",
		cfg.Stage.Rounds, len(cfg.Participants), seed, seeding.Method)

	result, err := schedule.Generate(schedule.Request{
		Roster:  seeding.Order,
		Rounds:  cfg.Stage.Rounds,
		Labels:  cfg.Stage.RoundLabels,
		History: history,
	}, rng)
	var schedErr *schedule.SchedulingError
	if errors.As(err, &schedErr) {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", schedErr)
		return fmt.Errorf("draw failed; re-run with a different --seed")
	}
	if err != nil {
		return err
	}
	fmt.Printf("✓ All %d rounds drawn\n", cfg.Stage.Rounds)

	printDraw(result.Fixtures, cfg.DisplayName)

	fmt.Println("\nHome/Away Balance:")
	fmt.Printf("  %-20s %4s %4s\n", "Manager", "Home", "Away")
	for _, id := range cfg.Roster() {
		m := result.Metrics[id]
		fmt.Printf("  %-20s %4d %4d\n", cfg.DisplayName(id), m.Home, m.Away)
	}

	return c.publishDraw(ctx, cfg, result, store.DrawRecord{
		Stage:   cfg.Stage.Name,
		Seed:    seed,
		Seeding: string(seeding.Method),
	}, opts, openStore)
}

// publishDraw checks a drawn stage and, only when it has no errors, writes
// the workbook and, with --save, stores the roster and the draw. Balance
// warnings don't block it.
func (c *cli) publishDraw(ctx context.Context, cfg *config.Config, result *schedule.Result, rec store.DrawRecord,
	opts generateOptions, openStore func() (*store.SQLiteStore, error)) error {
	report := validator.Check(result.Fixtures, cfg.Roster(), cfg.Stage.Rounds)
	report.Violations = append(report.Violations,
		validator.CheckBalance(result.Fixtures, cfg.Roster(), cfg.Rules.MaxHomeAwayImbalance)...)
	if len(report.Violations) > 0 {
		fmt.Printf("\nDraw check (%d):\n", len(report.Violations))
		printViolations(report)
	} else {
		fmt.Println("\n✓ Draw check passed")
	}
	if !report.Passed() {
		return fmt.Errorf("%d draw errors found; nothing written", len(report.Errors()))
	}

	f, err := excel.Generate(cfg, result)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(opts.outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	fmt.Printf("\n✓ Draw saved to %s\n", opts.outputPath)

	if !opts.save {
		return nil
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	managers := make([]store.Manager, len(cfg.Participants))
	for i, p := range cfg.Participants {
		managers[i] = store.Manager{ID: p.ID, Name: p.DisplayName(), TeamName: p.Team}
	}
	if err := db.UpsertManagers(ctx, managers); err != nil {
		return fmt.Errorf("saving managers: %w", err)
	}
	id, err := db.ReplaceDraw(ctx, rec, result.Fixtures)
	if err != nil {
		return fmt.Errorf("saving draw: %w", err)
	}
	c.logger.Info("draw saved", "id", id, "stage", rec.Stage)
	fmt.Printf("✓ Stage %q saved to %s\n", rec.Stage, cfg.Database)
	return nil
}

// seedingStandings picks the standings used for seeding: inline standings
// first, then league results from the database. Random seeding uses none.
func (c *cli) seedingStandings(ctx context.Context, cfg *config.Config, openStore func() (*store.SQLiteStore, error)) ([]schedule.Standing, error) {
	method, err := schedule.ParseSeedMethod(cfg.Seeding)
	if err != nil {
		return nil, err
	}
	if method == schedule.SeedRandom {
		return nil, nil
	}
	if standings := cfg.InlineStandings(); len(standings) > 0 {
		return standings, nil
	}

	db, err := openStore()
	if err != nil {
		return nil, err
	}
	standings, err := db.Standings(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading standings: %w", err)
	}
	c.logger.Debug("standings from database", "entries", len(standings))
	return standings, nil
}

func (c *cli) runValidate(configPath, drawPath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	report, err := validator.Validate(cfg, drawPath)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	printViolations(report)
	errs, warnings := len(report.Errors()), len(report.Warnings())
	fmt.Printf("\nValidation complete: %d errors, %d warnings\n", errs, warnings)

	// Regenerate manager sheets from the Draw sheet
	if err := excel.UpdateManagerSheets(drawPath, cfg); err != nil {
		return fmt.Errorf("updating manager sheets: %w", err)
	}
	fmt.Printf("✓ Manager sheets updated in %s\n", drawPath)

	if errs > 0 {
		return fmt.Errorf("%d draw errors found", errs)
	}
	return nil
}

func (c *cli) runShow(ctx context.Context, configPath, stage string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if stage == "" {
		stage = cfg.Stage.Name
	}

	st, err := c.openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, fixtures, err := st.LoadDraw(ctx, stage)
	if err != nil {
		return fmt.Errorf("loading draw: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("no saved draw for stage %q; run 'cupdraw draw generate --save' first", stage)
	}

	managers, err := st.Managers(ctx)
	if err != nil {
		return fmt.Errorf("loading managers: %w", err)
	}

	fmt.Printf("Stage %q drawn %s (seed %d, %s seeding)\n",
		rec.Stage, rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Seed, rec.Seeding)
	printDraw(fixtures, displayNames(cfg, managers))
	return nil
}

// displayNames names participants from the config, falling back to stored
// managers for ids the config no longer lists.
func displayNames(cfg *config.Config, managers []store.Manager) func(schedule.Participant) string {
	names := make(map[schedule.Participant]string, len(managers)+len(cfg.Participants))
	for _, m := range managers {
		names[schedule.Participant(m.ID)] = m.Name
	}
	for _, p := range cfg.Participants {
		names[schedule.Participant(p.ID)] = p.DisplayName()
	}
	return func(id schedule.Participant) string {
		if name := names[id]; name != "" {
			return name
		}
		return string(id)
	}
}

func (c *cli) runStandings(ctx context.Context, configPath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	st, err := c.openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	standings, err := st.Standings(ctx)
	if err != nil {
		return fmt.Errorf("reading standings: %w", err)
	}
	points := make(map[schedule.Participant]int)
	for _, s := range standings {
		points[s.Participant] += s.Points
	}

	seeding, err := schedule.Seed(cfg.Roster(), standings, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return err
	}
	if len(standings) == 0 {
		fmt.Println("⚠ No league results in the database; a draw would use random seeding")
		return nil
	}
	if seeding.Method == schedule.SeedRandom {
		fmt.Println("⚠ No league results match the configured participants; a draw would use random seeding")
		return nil
	}

	fmt.Printf("  %4s  %-20s %6s\n", "Seed", "Manager", "Points")
	for i, id := range seeding.Order {
		fmt.Printf("  %4d  %-20s %6d\n", i+1, cfg.DisplayName(id), points[id])
	}
	return nil
}

func (c *cli) openStore(ctx context.Context, path string) (*store.SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	st, err := store.NewSQLiteStore(path, c.logger)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return st, nil
}

func printDraw(fixtures []schedule.Fixture, name func(schedule.Participant) string) {
	round := 0
	for _, fx := range fixtures {
		if fx.Round != round {
			round = fx.Round
			if fx.Label != "" {
				fmt.Printf("\nRound %d (%s):\n", round, fx.Label)
			} else {
				fmt.Printf("\nRound %d:\n", round)
			}
		}
		fmt.Printf("  %-20s vs  %s\n", name(fx.Home), name(fx.Away))
	}
}

func printViolations(report validator.Report) {
	for _, v := range report.Violations {
		switch v.Type {
		case "error":
			fmt.Printf("✗ %s\n", v.Message)
		case "warning":
			fmt.Printf("⚠ %s\n", v.Message)
		}
	}
}
