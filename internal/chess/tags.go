package chess

// Tag names read by pgn-scan.
const (
	EventTag       = "Event"
	SiteTag        = "Site"
	DateTag        = "Date"
	RoundTag       = "Round"
	WhiteTag       = "White"
	BlackTag       = "Black"
	ResultTag      = "Result"
	WhiteEloTag    = "WhiteElo"
	BlackEloTag    = "BlackElo"
	TimeControlTag = "TimeControl"
	ECOTag         = "ECO"
	OpeningTag     = "Opening"
	GameIDTag      = "GameId"
	VariantTag     = "Variant"
)

// SevenTagRoster contains the seven required PGN tags in order.
var SevenTagRoster = []string{
	EventTag,
	SiteTag,
	DateTag,
	RoundTag,
	WhiteTag,
	BlackTag,
	ResultTag,
}

// IsSevenTagRosterTag returns true if the tag is one of the seven required tags.
func IsSevenTagRosterTag(tag string) bool {
	for _, t := range SevenTagRoster {
		if t == tag {
			return true
		}
	}
	return false
}

// playerTags maps a colour to its name and rating tags.
var playerTags = map[Colour][2]string{
	White: {WhiteTag, WhiteEloTag},
	Black: {BlackTag, BlackEloTag},
}
