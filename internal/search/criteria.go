// Package search finds players and games in a stream of game snapshots.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lgbarn/pgn-scan/internal/chess"
)

// Criterion decides whether a game is wanted.
type Criterion func(*chess.Game) bool

// Any accepts every game.
func Any(*chess.Game) bool { return true }

// HasEvals accepts games whose comments were flagged as holding evaluations.
func HasEvals(g *chess.Game) bool { return g.HasEvals }

// HasClocks accepts games whose comments were flagged as holding clock times.
func HasClocks(g *chess.Game) bool { return g.HasClocks }

// TempoTimeControl accepts standard games of the given tempo and time
// control.
func TempoTimeControl(tempo string, tc chess.TimeControl) Criterion {
	return func(g *chess.Game) bool {
		if !g.IsStandard() || g.Tempo() != tempo {
			return false
		}
		got, err := g.TimeControl()
		return err == nil && got == tc
	}
}

// All accepts games accepted by every criterion.
func All(criteria ...Criterion) Criterion {
	return func(g *chess.Game) bool {
		for _, c := range criteria {
			if !c(g) {
				return false
			}
		}
		return true
	}
}

// RapidTenMinutesWithEval accepts standard rapid 10+0 games with
// evaluation comments.
var RapidTenMinutesWithEval = All(
	TempoTimeControl("rapid", chess.TimeControl{BaseMinutes: 10}),
	HasEvals,
)

var criteria = map[string]Criterion{
	"any":        Any,
	"evals":      HasEvals,
	"clocks":     HasClocks,
	"rapid-eval": RapidTenMinutesWithEval,
}

// CriterionByName returns a named criterion. Besides the fixed names,
// "<tempo>:<base>+<increment>" selects TempoTimeControl, e.g. "blitz:3+2".
func CriterionByName(name string) (Criterion, error) {
	if c, ok := criteria[name]; ok {
		return c, nil
	}

	tempo, value, found := strings.Cut(name, ":")
	if found {
		var tc chess.TimeControl
		if _, err := fmt.Sscanf(value, "%d+%d", &tc.BaseMinutes, &tc.IncrementSeconds); err == nil {
			return TempoTimeControl(tempo, tc), nil
		}
	}

	return nil, fmt.Errorf("unknown criterion %q (want one of %s, or tempo:base+inc)",
		name, strings.Join(CriterionNames(), ", "))
}

// CriterionNames lists the fixed criterion names.
func CriterionNames() []string {
	names := make([]string, 0, len(criteria))
	for name := range criteria {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
