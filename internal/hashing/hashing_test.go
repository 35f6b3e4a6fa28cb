package hashing

import (
	"strings"
	"testing"

	"github.com/lgbarn/pgn-scan/internal/chess"
	"github.com/lgbarn/pgn-scan/internal/testutil"
)

// recordGame builds a game snapshot from raw record text and its tags.
func recordGame(raw string, kv ...string) *chess.Game {
	g := chess.NewGame()
	g.Raw = []byte(raw)
	for i := 0; i+1 < len(kv); i += 2 {
		g.SetTag(kv[i], kv[i+1])
	}
	return g
}

func TestSign_GameID(t *testing.T) {
	a := recordGame("[Event \"a\"]\n\n1. e4 1-0", chess.SiteTag, "https://lichess.org/AbCd1234")
	b := recordGame("[Event \"b\"]\n\n1. d4 0-1", chess.SiteTag, "https://lichess.org/AbCd1234/black")
	c := recordGame("[Event \"a\"]\n\n1. e4 1-0", chess.SiteTag, "https://lichess.org/Other999")

	testutil.AssertEqual(t, Sign(a, HashGameID), Sign(b, HashGameID), "same id")
	testutil.AssertTrue(t, Sign(a, HashGameID) != Sign(c, HashGameID), "different ids")
}

func TestSign_GameIDFallsBackToRecord(t *testing.T) {
	g := recordGame("[Event \"x\"]\n\n1. e4 *")
	testutil.AssertEqual(t, Sign(g, HashGameID), Sign(g, HashRecord))
}

func TestSign_RecordIgnoresSurroundingWhitespace(t *testing.T) {
	a := recordGame("\n\n[Event \"x\"]\n\n1. e4 *")
	b := recordGame("[Event \"x\"]\n\n1. e4 *")
	testutil.AssertEqual(t, Sign(a, HashRecord), Sign(b, HashRecord))
}

func TestSign_MoveText(t *testing.T) {
	a := recordGame("[Event \"Rated Rapid game\"]\n[White \"alice\"]\n\n1. e4 { [%clk 0:10:00] } e5 1-0")
	b := recordGame("\n[Event \"Casual\"]\n[White \"bob\"]\n\n1. e4 { [%clk 0:10:00] } e5 1-0")
	c := recordGame("[Event \"Rated Rapid game\"]\n[White \"alice\"]\n\n1. d4 1-0")

	testutil.AssertEqual(t, Sign(a, HashMoveText), Sign(b, HashMoveText), "same moves, different tags")
	testutil.AssertTrue(t, Sign(a, HashRecord) != Sign(b, HashRecord))
	testutil.AssertTrue(t, Sign(a, HashMoveText) != Sign(c, HashMoveText))
}

func TestMoveText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"tags then moves", "[A \"1\"]\n[B \"2\"]\n\n1. e4 *", "1. e4 *"},
		{"no tags", "1. e4 *", "1. e4 *"},
		{"tags only", "[A \"1\"]", ""},
		{"crlf", "[A \"1\"]\r\n\r\n1. e4 *", "1. e4 *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, string(moveText([]byte(tt.raw))), tt.want)
		})
	}
}

func TestDuplicateDetector(t *testing.T) {
	d := NewDuplicateDetector(HashRecord, 0)

	testutil.AssertFalse(t, d.CheckAndAdd(recordGame(testutil.RapidGame)), "first sighting")
	testutil.AssertTrue(t, d.CheckAndAdd(recordGame(testutil.RapidGame)), "second sighting")
	testutil.AssertFalse(t, d.CheckAndAdd(recordGame(testutil.BlitzDraw)))

	testutil.AssertEqual(t, d.DuplicateCount(), 1)
	testutil.AssertEqual(t, d.UniqueCount(), 2)
}

func TestDuplicateDetector_Capacity(t *testing.T) {
	d := NewDuplicateDetector(HashRecord, 2)

	d.CheckAndAdd(recordGame("1. e4 *"))
	d.CheckAndAdd(recordGame("1. d4 *"))
	testutil.AssertTrue(t, d.IsFull())

	testutil.AssertFalse(t, d.CheckAndAdd(recordGame("1. c4 *")), "not remembered when full")
	testutil.AssertFalse(t, d.CheckAndAdd(recordGame("1. c4 *")), "still not remembered")
	testutil.AssertTrue(t, d.CheckAndAdd(recordGame("1. e4 *")), "earlier games still detected")
	testutil.AssertEqual(t, d.UniqueCount(), 2)
}

func TestParseHashType(t *testing.T) {
	for _, ht := range []HashType{HashGameID, HashRecord, HashMoveText} {
		got, ok := ParseHashType(ht.String())
		testutil.AssertTrue(t, ok, ht.String())
		testutil.AssertEqual(t, got, ht)
	}
	_, ok := ParseHashType("zobrist")
	testutil.AssertFalse(t, ok)
	testutil.AssertEqual(t, HashType(42).String(), "unknown")
}

func BenchmarkSign(b *testing.B) {
	g := recordGame(strings.Repeat(testutil.RapidGame, 4))
	for _, ht := range []HashType{HashGameID, HashRecord, HashMoveText} {
		b.Run(ht.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Sign(g, ht)
			}
		})
	}
}
