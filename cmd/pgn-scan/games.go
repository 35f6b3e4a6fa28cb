package main

import (
	"fmt"
	"os"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/lgbarn/pgn-scan/internal/config"
	"github.com/lgbarn/pgn-scan/internal/hashing"
	"github.com/lgbarn/pgn-scan/internal/output"
	"github.com/lgbarn/pgn-scan/internal/search"
)

// gamesOptions holds command-line options for the games command.
type gamesOptions struct {
	players   string
	gpp       int
	out       string
	criterion string
	workers   int
	dedupe    bool
	dedupeBy  string
}

func newGamesCommand(a *app) *cobra.Command {
	opts := &gamesOptions{}

	cmd := &cobra.Command{
		Use:   "games [file]",
		Short: "Save matching games for a list of players",
		Long: `Read the player list and save games accepted by the criterion until
every listed player has --gpp of them. A game is saved once, while either of
its listed players is still under quota, and counts for both.

The input defaults to paths.data_raw from the configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGames(cmd, args, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.players, "players", "p", "", "Player list file (default paths.data_players)")
	cmd.Flags().IntVar(&opts.gpp, "gpp", 0, "Games to save per player (default target_gpp)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output PGN file (default paths.data_games)")
	cmd.Flags().StringVar(&opts.criterion, "criterion", "", "Game criterion (default search.criterion)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Workers evaluating the criterion (default search.workers)")
	cmd.Flags().BoolVarP(&opts.dedupe, "dedupe", "D", false, "Skip games already saved (default duplicate.suppress)")
	cmd.Flags().StringVar(&opts.dedupeBy, "dedupe-by", hashing.HashGameID.String(), "Duplicate identity (id|record|moves)")

	return cmd
}

func runGames(cmd *cobra.Command, args []string, a *app, opts *gamesOptions) error {
	cfg := a.cfg
	flags := cmd.Flags()
	if flags.Changed("players") {
		cfg.Paths.DataPlayers = opts.players
	}
	if flags.Changed("gpp") {
		cfg.TargetGPP = opts.gpp
	}
	if flags.Changed("out") {
		cfg.Paths.DataGames = opts.out
	}
	if flags.Changed("criterion") {
		cfg.Search.Criterion = opts.criterion
	}
	if flags.Changed("workers") {
		cfg.Search.Workers = opts.workers
	}
	if flags.Changed("dedupe") {
		cfg.Duplicate.Suppress = opts.dedupe
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	crit, err := search.CriterionByName(cfg.Search.Criterion)
	if err != nil {
		return err
	}

	players, err := loadPlayers(a, cfg.Paths.DataPlayers)
	if err != nil {
		return err
	}

	selection := search.GameSelection{
		Criterion:      crit,
		Players:        players,
		GamesPerPlayer: cfg.TargetGPP,
		Workers:        cfg.Search.Workers,
		Logger:         a.logger,
	}
	var dups *hashing.DuplicateDetector
	if cfg.Duplicate.Suppress {
		ht, ok := hashing.ParseHashType(opts.dedupeBy)
		if !ok {
			return fmt.Errorf("invalid --dedupe-by %q (want id, record or moves)", opts.dedupeBy)
		}
		dups = hashing.NewDuplicateDetector(ht, cfg.Duplicate.MaxCapacity)
		selection.Duplicates = dups
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

	f, err := createOutput(cfg.Paths.DataGames)
	if err != nil {
		return err
	}
	w := output.NewPGNWriter(f)

	res, err := search.SelectGames(cmd.Context(), r, w, selection)
	if err != nil {
		w.Close() //nolint:errcheck,gosec // G104: already failing
		f.Close() //nolint:errcheck,gosec // G104: already failing
		return err
	}
	if err := w.Close(); err != nil {
		f.Close() //nolint:errcheck,gosec // G104: already failing
		return fmt.Errorf("writing games: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing games: %w", err)
	}

	if dups != nil {
		level.Info(a.logger).Log("msg", "duplicates skipped", "count", dups.DuplicateCount(),
			"remembered", dups.UniqueCount(), "full", dups.IsFull())
	}
	fmt.Fprintf(a.stdout, "Saved %d games to %s (%d of %d players complete)\n",
		res.Saved, cfg.Paths.DataGames, res.Complete, len(res.Counts))
	return nil
}

// loadPlayers reads the player list file.
func loadPlayers(a *app, path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: CLI tool opens user-specified files
	if err != nil {
		return nil, fmt.Errorf("opening player list: %w", err)
	}
	defer f.Close() //nolint:errcheck

	level.Info(a.logger).Log("msg", "reading player list started", "path", path)
	players, err := search.ReadPlayers(f)
	if err != nil {
		return nil, err
	}
	level.Info(a.logger).Log("msg", "reading player list finished", "path", path, "players", len(players))
	return players, nil
}
