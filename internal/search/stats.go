package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/lgbarn/pgn-scan/internal/chess"
)

// TrackedTimeControl is a (tempo, time control) pair counted by Summary.
type TrackedTimeControl struct {
	Tempo       string
	TimeControl chess.TimeControl
}

// Label formats the pair as "tempo base+increment".
func (t TrackedTimeControl) Label() string {
	return t.Tempo + " " + t.TimeControl.String()
}

// TrackedTimeControls are the common lichess blitz and rapid pools.
var TrackedTimeControls = []TrackedTimeControl{
	{"blitz", chess.TimeControl{BaseMinutes: 3, IncrementSeconds: 0}},
	{"blitz", chess.TimeControl{BaseMinutes: 3, IncrementSeconds: 2}},
	{"blitz", chess.TimeControl{BaseMinutes: 5, IncrementSeconds: 3}},
	{"rapid", chess.TimeControl{BaseMinutes: 10, IncrementSeconds: 0}},
	{"rapid", chess.TimeControl{BaseMinutes: 10, IncrementSeconds: 5}},
	{"rapid", chess.TimeControl{BaseMinutes: 15, IncrementSeconds: 10}},
}

// Bucket is one bar of a histogram.
type Bucket struct {
	Label string
	Count int
}

// Summary accumulates counts over a stream of games.
type Summary struct {
	Games      int
	WithClocks int
	WithEvals  int
	Bytes      int64

	tempos       map[string]int
	timeControls map[string]int
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{
		tempos:       make(map[string]int),
		timeControls: make(map[string]int),
	}
}

// Add counts one game.
func (s *Summary) Add(g *chess.Game) {
	s.Games++
	s.Bytes += int64(len(g.Raw))
	if g.HasClocks {
		s.WithClocks++
	}
	if g.HasEvals {
		s.WithEvals++
	}

	tempo := g.Tempo()
	if tempo == "" {
		tempo = "unknown"
	}
	s.tempos[tempo]++

	tc, err := g.TimeControl()
	if err != nil {
		return
	}
	for _, tracked := range TrackedTimeControls {
		if g.Tempo() == tracked.Tempo && tc == tracked.TimeControl {
			s.timeControls[tracked.Label()]++
		}
	}
}

// TimeControlDistribution returns the tracked time controls that occurred,
// sorted by label.
func (s *Summary) TimeControlDistribution() []Bucket {
	return buckets(s.timeControls)
}

// Tempos returns the number of games per tempo, sorted by tempo.
func (s *Summary) Tempos() []Bucket {
	return buckets(s.tempos)
}

func buckets(counts map[string]int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for label, n := range counts {
		out = append(out, Bucket{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Summarize adds every game of src to s.
func Summarize(ctx context.Context, src GameSource, s *Summary) error {
	_, err := evaluate(ctx, src, Any, 1, func(g *chess.Game, _ bool) (bool, error) {
		s.Add(g)
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("summarizing games: %w", err)
	}
	return nil
}
