package search

import (
	"context"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/lgbarn/pgn-scan/internal/chess"
	"github.com/lgbarn/pgn-scan/internal/output"
)

// DuplicateChecker reports whether a game was seen before and remembers it.
// *hashing.DuplicateDetector implements it.
type DuplicateChecker interface {
	CheckAndAdd(game *chess.Game) bool
}

// GameSelection configures SelectGames.
type GameSelection struct {
	Criterion Criterion

	// Players whose games are wanted.
	Players []string

	// GamesPerPlayer is the quota of saved games per player.
	GamesPerPlayer int

	// Duplicates, if set, drops games it has seen before.
	Duplicates DuplicateChecker

	// Workers evaluating the criterion (1 = sequential).
	Workers int

	Logger log.Logger
}

// GameSelectionResult is the outcome of SelectGames.
type GameSelectionResult struct {
	// Saved is the number of games written.
	Saved int

	// Processed is the number of games read.
	Processed int

	// Complete is the number of players whose quota was filled.
	Complete int

	// Counts holds the matching games seen per listed player.
	Counts map[string]int
}

// SelectGames writes games accepted by the criterion that involve a listed
// player, until every listed player has GamesPerPlayer games or src is
// exhausted. A game is written once while either of its listed players is
// still within quota, and it counts toward both players.
func SelectGames(ctx context.Context, src GameSource, w output.GameWriter, opts GameSelection) (*GameSelectionResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	crit := opts.Criterion
	if crit == nil {
		crit = Any
	}

	result := &GameSelectionResult{Counts: make(map[string]int, len(opts.Players))}
	for _, name := range opts.Players {
		result.Counts[name] = 0
	}
	if len(result.Counts) == 0 {
		return result, nil
	}

	level.Info(logger).Log("msg", "searching for games started", "players", len(result.Counts), "gpp", opts.GamesPerPlayer)

	_, err := evaluate(ctx, src, crit, opts.Workers, func(g *chess.Game, matched bool) (bool, error) {
		result.Processed++
		if !matched || !involvesAny(g, result.Counts) {
			return false, nil
		}
		if opts.Duplicates != nil && opts.Duplicates.CheckAndAdd(g) {
			return false, nil
		}

		saved := false
		for _, p := range g.Players() {
			n, listed := result.Counts[p.Name]
			if !listed {
				continue
			}
			n++
			result.Counts[p.Name] = n
			if n == opts.GamesPerPlayer {
				result.Complete++
			}
			if !saved && n <= opts.GamesPerPlayer {
				if err := w.WriteGame(g); err != nil {
					return true, fmt.Errorf("writing game %d: %w", g.Number, err)
				}
				saved = true
				result.Saved++
			}
		}

		return result.Complete == len(result.Counts), nil
	})

	level.Info(logger).Log("msg", "searching for games finished", "processed", result.Processed, "saved", result.Saved, "complete", result.Complete)

	if err != nil {
		return result, fmt.Errorf("selecting games: %w", err)
	}
	return result, nil
}

func involvesAny(g *chess.Game, players map[string]int) bool {
	for _, p := range g.Players() {
		if _, ok := players[p.Name]; ok {
			return true
		}
	}
	return false
}
