package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lgbarn/pgn-scan/internal/config"
	"github.com/lgbarn/pgn-scan/internal/search"
)

// playersOptions holds command-line options for the players command.
type playersOptions struct {
	k         int
	minGames  int
	out       string
	criterion string
	workers   int
}

func newPlayersCommand(a *app) *cobra.Command {
	opts := &playersOptions{}

	cmd := &cobra.Command{
		Use:   "players [file]",
		Short: "Find players with enough games matching the criterion",
		Long: `Read games until --k players each have --min-games games accepted by
the criterion, then write the sorted names of every player that reached
--min-games, one per line.

The input defaults to paths.data_raw from the configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlayers(cmd, args, a, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.k, "k", "k", 0, "Number of players to find (default target_size)")
	cmd.Flags().IntVar(&opts.minGames, "min-games", 0, "Matching games required per player (default target_gpp)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Player list file (default paths.data_players)")
	cmd.Flags().StringVar(&opts.criterion, "criterion", "", "Game criterion (default search.criterion)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Workers evaluating the criterion (default search.workers)")

	return cmd
}

func runPlayers(cmd *cobra.Command, args []string, a *app, opts *playersOptions) error {
	cfg := a.cfg
	flags := cmd.Flags()
	if flags.Changed("k") {
		cfg.TargetSize = opts.k
	}
	if flags.Changed("min-games") {
		cfg.TargetGPP = opts.minGames
	}
	if flags.Changed("out") {
		cfg.Paths.DataPlayers = opts.out
	}
	if flags.Changed("criterion") {
		cfg.Search.Criterion = opts.criterion
	}
	if flags.Changed("workers") {
		cfg.Search.Workers = opts.workers
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	crit, err := search.CriterionByName(cfg.Search.Criterion)
	if err != nil {
		return err
	}

	input := cfg.Paths.DataRaw
	if len(args) == 1 {
		input = args[0]
	}
	r, err := a.open(input)
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck

	res, err := search.FindPlayers(cmd.Context(), r, search.PlayerSearch{
		Criterion:        crit,
		TargetPlayers:    cfg.TargetSize,
		MinGames:         cfg.TargetGPP,
		LoggingFrequency: cfg.Search.LoggingFrequency,
		Workers:          cfg.Search.Workers,
		Logger:           a.logger,
	})
	if err != nil {
		return err
	}

	f, err := createOutput(cfg.Paths.DataPlayers)
	if err != nil {
		return err
	}
	if err := search.WritePlayers(f, res.Players); err != nil {
		f.Close() //nolint:errcheck,gosec // G104: already failing
		return fmt.Errorf("writing players: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing players: %w", err)
	}

	fmt.Fprintf(a.stdout, "Found %d players in %d games, written to %s\n",
		len(res.Players), res.Processed, cfg.Paths.DataPlayers)
	return nil
}
