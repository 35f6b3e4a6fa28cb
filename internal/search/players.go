package search

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/lgbarn/pgn-scan/internal/chess"
)

// PlayerSearch configures FindPlayers.
type PlayerSearch struct {
	Criterion Criterion

	// TargetPlayers ends the search once this many players reached MinGames.
	TargetPlayers int

	// MinGames is the number of matching games a player needs.
	MinGames int

	// LoggingFrequency logs progress every N games (0 = never).
	LoggingFrequency int

	// Workers evaluating the criterion (1 = sequential).
	Workers int

	Logger log.Logger
}

// PlayerSearchResult is the outcome of FindPlayers.
type PlayerSearchResult struct {
	// Players holds the names with at least MinGames matching games, sorted.
	Players []string

	// Processed is the number of games read.
	Processed int

	// Matched is the number of games accepted by the criterion.
	Matched int
}

// FindPlayers reads games until TargetPlayers players have MinGames games
// accepted by the criterion, or until src is exhausted. Every player of a
// matching game is credited with it.
func FindPlayers(ctx context.Context, src GameSource, opts PlayerSearch) (*PlayerSearchResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	crit := opts.Criterion
	if crit == nil {
		crit = Any
	}

	counts := make(map[string]int)
	found := 0
	result := &PlayerSearchResult{}

	level.Info(logger).Log("msg", "search for players started", "target", opts.TargetPlayers, "min_games", opts.MinGames)

	_, err := evaluate(ctx, src, crit, opts.Workers, func(g *chess.Game, matched bool) (bool, error) {
		if matched {
			result.Matched++
			for _, p := range g.Players() {
				counts[p.Name]++
				if counts[p.Name] == opts.MinGames {
					found++
				}
			}
		}

		result.Processed++
		if opts.LoggingFrequency > 0 && result.Processed%opts.LoggingFrequency == 0 {
			level.Info(logger).Log("msg", "search progress", "processed", result.Processed, "players", found)
		}

		return found >= opts.TargetPlayers, nil
	})

	for name, n := range counts {
		if n >= opts.MinGames {
			result.Players = append(result.Players, name)
		}
	}
	sort.Strings(result.Players)

	level.Info(logger).Log("msg", "search for players ended", "processed", result.Processed, "players", len(result.Players))

	if err != nil {
		return result, fmt.Errorf("searching for players: %w", err)
	}
	return result, nil
}

// ReadPlayers reads one player name per line. Surrounding whitespace is
// dropped and blank lines are skipped.
func ReadPlayers(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading player list: %w", err)
	}
	return names, nil
}

// WritePlayers writes one player name per line.
func WritePlayers(w io.Writer, names []string) error {
	bw := bufio.NewWriter(w)
	for _, name := range names {
		if _, err := bw.WriteString(name + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
