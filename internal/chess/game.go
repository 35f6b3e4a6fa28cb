package chess

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lgbarn/pgn-scan/internal/errors"
)

// Game is an owned copy of one scanned PGN record. Unlike the scanner's
// buffers it stays valid after the next record is scanned, so it can be
// handed to workers or kept in a selection.
type Game struct {
	// Tags for this game (e.g., Event, Site, Date, White, Black, Result).
	Tags map[string]string

	// Raw holds the verbatim record bytes, result token included.
	Raw []byte

	// Comment flags as reported by the scanner.
	HasClocks bool
	HasEvals  bool

	// Number is the 1-based position of the record in its input.
	Number int

	// Source names the input the record came from.
	Source string

	// Offset is the byte offset of the record within its input.
	Offset int64
}

// NewGame creates a new empty game.
func NewGame() *Game {
	return &Game{
		Tags: make(map[string]string),
	}
}

// GetTag returns a tag value, or empty string if not present.
func (g *Game) GetTag(name string) string {
	return g.Tags[name]
}

// SetTag sets a tag value.
func (g *Game) SetTag(name, value string) {
	if g.Tags == nil {
		g.Tags = make(map[string]string)
	}
	g.Tags[name] = value
}

// HasTag returns true if the tag is present.
func (g *Game) HasTag(name string) bool {
	_, ok := g.Tags[name]
	return ok
}

// PGN returns the record text without surrounding whitespace.
func (g *Game) PGN() string {
	return strings.TrimSpace(string(g.Raw))
}

var lichessIDPattern = regexp.MustCompile(`https://lichess\.org/([a-zA-Z0-9]+)`)

// ID returns the lichess game id, from the GameId tag or else from the
// game URL in the Site tag.
func (g *Game) ID() (string, error) {
	if id, ok := g.Tags[GameIDTag]; ok {
		return id, nil
	}
	site, ok := g.Tags[SiteTag]
	if !ok {
		return "", &errors.TagError{Err: errors.ErrMissingTag, Tag: SiteTag}
	}
	m := lichessIDPattern.FindStringSubmatch(site)
	if m == nil {
		return "", &errors.TagError{Err: errors.ErrMissingTag, Tag: GameIDTag, Value: site}
	}
	return m[1], nil
}

// Tempo returns the speed category named in the Event tag, lower-cased.
// lichess events read "Rated Blitz game", "Casual Rapid game" and so on;
// the words between the first and the last one form the tempo.
func (g *Game) Tempo() string {
	parts := strings.Fields(g.Tags[EventTag])
	if len(parts) < 3 {
		return ""
	}
	return strings.ToLower(strings.Join(parts[1:len(parts)-1], " "))
}

// TimeControl parses the TimeControl tag, "seconds+increment", into whole
// minutes and increment seconds.
func (g *Game) TimeControl() (TimeControl, error) {
	value, ok := g.Tags[TimeControlTag]
	if !ok {
		return TimeControl{}, &errors.TagError{Err: errors.ErrMissingTag, Tag: TimeControlTag}
	}

	base, inc, found := strings.Cut(value, "+")
	if !found {
		return TimeControl{}, &errors.TagError{Err: errors.ErrInvalidTimeControl, Tag: TimeControlTag, Value: value}
	}
	baseSeconds, err := strconv.Atoi(base)
	if err != nil || baseSeconds < 0 {
		return TimeControl{}, &errors.TagError{Err: errors.ErrInvalidTimeControl, Tag: TimeControlTag, Value: value}
	}
	increment, err := strconv.Atoi(inc)
	if err != nil || increment < 0 {
		return TimeControl{}, &errors.TagError{Err: errors.ErrInvalidTimeControl, Tag: TimeControlTag, Value: value}
	}

	return TimeControl{BaseMinutes: baseSeconds / 60, IncrementSeconds: increment}, nil
}

// Opening returns the opening name and ECO code.
func (g *Game) Opening() Opening {
	return Opening{Name: g.Tags[OpeningTag], ECO: g.Tags[ECOTag]}
}

// Score returns 1 for a white win, -1 for a black win and 0 otherwise.
func (g *Game) Score() int {
	switch g.Tags[ResultTag] {
	case "1-0":
		return 1
	case "0-1":
		return -1
	default:
		return 0
	}
}

// Result returns the game result tag.
func (g *Game) Result() string {
	return g.GetTag(ResultTag)
}

// Player returns the name and rating of the player with colour c.
func (g *Game) Player(c Colour) Player {
	tags := playerTags[c]
	return Player{Name: g.Tags[tags[0]], Rating: g.Tags[tags[1]]}
}

// Players returns the white and then the black player.
func (g *Game) Players() []Player {
	return []Player{g.Player(White), g.Player(Black)}
}

// Rating returns the numeric rating of the player with colour c, or 0
// when it is missing or not a number (lichess writes "?" for unrated).
func (g *Game) Rating(c Colour) int {
	r, err := strconv.Atoi(g.Player(c).Rating)
	if err != nil {
		return 0
	}
	return r
}

// IsStandard reports whether the game uses standard chess rules.
func (g *Game) IsStandard() bool {
	v, ok := g.Tags[VariantTag]
	return !ok || v == "Standard"
}
