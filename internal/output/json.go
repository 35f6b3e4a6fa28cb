package output

import (
	"github.com/lgbarn/pgn-scan/internal/chess"
)

// JSONGame represents a game in JSON format.
type JSONGame struct {
	ID          string            `json:"id,omitempty"`
	Number      int               `json:"number"`
	Source      string            `json:"source,omitempty"`
	Offset      int64             `json:"offset"`
	Tags        map[string]string `json:"tags"`
	Result      string            `json:"result,omitempty"`
	Score       int               `json:"score"`
	WhiteElo    int               `json:"whiteElo,omitempty"`
	BlackElo    int               `json:"blackElo,omitempty"`
	Opening     string            `json:"opening,omitempty"`
	ECO         string            `json:"eco,omitempty"`
	Tempo       string            `json:"tempo,omitempty"`
	TimeControl string            `json:"timeControl,omitempty"`
	HasClocks   bool              `json:"hasClocks"`
	HasEvals    bool              `json:"hasEvals"`
	PGN         string            `json:"pgn"`
}

// JSONOutput holds multiple games for array output.
type JSONOutput struct {
	Games []*JSONGame `json:"games"`
}

// GameToJSON converts a game snapshot to JSON format. Derived fields that
// cannot be computed from the tags are left empty.
func GameToJSON(game *chess.Game) *JSONGame {
	jg := &JSONGame{
		Number:    game.Number,
		Source:    game.Source,
		Offset:    game.Offset,
		Tags:      copyTags(game.Tags),
		Result:    game.Result(),
		Score:     game.Score(),
		WhiteElo:  game.Rating(chess.White),
		BlackElo:  game.Rating(chess.Black),
		Tempo:     game.Tempo(),
		HasClocks: game.HasClocks,
		HasEvals:  game.HasEvals,
		PGN:       game.PGN(),
	}
	if id, err := game.ID(); err == nil {
		jg.ID = id
	}
	if o := game.Opening(); o != (chess.Opening{}) {
		jg.Opening = o.Name
		jg.ECO = o.ECO
	}
	if tc, err := game.TimeControl(); err == nil {
		jg.TimeControl = tc.String()
	}
	return jg
}

// copyTags creates a copy of the tags map.
func copyTags(tags map[string]string) map[string]string {
	result := make(map[string]string, len(tags))
	for k, v := range tags {
		result[k] = v
	}
	return result
}
