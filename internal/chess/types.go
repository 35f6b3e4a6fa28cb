// Package chess provides the game record type shared by pgn-scan's
// packages and the values derived from its header tags.
package chess

import "fmt"

// Colour represents the colour of a player.
type Colour int

const (
	Black Colour = iota
	White
)

// String returns the string representation of a colour.
func (c Colour) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

// Player is one side of a game as recorded in its tags.
type Player struct {
	Name   string
	Rating string
}

// TimeControl is a base time in whole minutes plus a per-move increment.
type TimeControl struct {
	BaseMinutes      int
	IncrementSeconds int
}

// String formats the time control as "base+increment".
func (tc TimeControl) String() string {
	return fmt.Sprintf("%d+%d", tc.BaseMinutes, tc.IncrementSeconds)
}

// Opening is the named opening and its ECO code.
type Opening struct {
	Name string
	ECO  string
}
