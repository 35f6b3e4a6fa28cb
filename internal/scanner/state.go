package scanner

// ParseState is the position of the scanner within a PGN record.
type ParseState int

const (
	// ExpectingAnything is the initial state and the only one from which a
	// record can end. Tags, comments and result tokens start here.
	ExpectingAnything ParseState = iota
	// InsideTagName collects the tag name up to the first space.
	InsideTagName
	// InsideTagValue collects the tag value, dropping quotes, up to ']'.
	InsideTagValue
	// InsideComment skips a {...} comment, flagging bare 'e' and 'c' bytes.
	InsideComment
	// ExpectingEndScoreDraw waits for the final '2' of "1/2-1/2".
	ExpectingEndScoreDraw
	// ExpectingEndScoreWin ends the record on the byte after the dash.
	ExpectingEndScoreWin
)

var stateNames = [...]string{
	ExpectingAnything:     "EXPECTING_ANYTHING",
	InsideTagName:         "INSIDE_TAG_NAME",
	InsideTagValue:        "INSIDE_TAG_VALUE",
	InsideComment:         "INSIDE_COMMENT",
	ExpectingEndScoreDraw: "EXPECTING_END_SCORE_DRAW",
	ExpectingEndScoreWin:  "EXPECTING_END_SCORE_WIN",
}

// String returns the name of the state.
func (s ParseState) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}
