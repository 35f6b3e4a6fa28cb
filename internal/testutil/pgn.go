package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

// RapidGame is a lichess-style rated rapid game with clock and eval comments.
const RapidGame = `[Event "Rated Rapid game"]
[Site "https://lichess.org/AbCd1234"]
[White "alice"]
[Black "bob"]
[Result "1-0"]
[WhiteElo "1850"]
[BlackElo "1790"]
[TimeControl "600+0"]
[ECO "C50"]
[Opening "Italian Game"]

1. e4 { [%eval 0.2] [%clk 0:10:00] } 1... e5 { [%eval 0.3] [%clk 0:10:00] } 2. Nf3 Nc6 3. Bc4 Bc5 4. O-O Nf6 1-0
`

// BlitzDraw is a blitz game ending in a draw, without comments.
const BlitzDraw = `[Event "Rated Blitz game"]
[Site "https://lichess.org/XyZ98765"]
[White "carol"]
[Black "alice"]
[Result "1/2-1/2"]
[WhiteElo "2010"]
[BlackElo "1855"]
[TimeControl "180+2"]
[ECO "B12"]
[Opening "Caro-Kann Defense"]

1. e4 c6 2. d4 d5 3. e5 Bf5 1/2-1/2
`

// UnfinishedGame ends with the "*" result token.
const UnfinishedGame = `[Event "Casual Correspondence game"]
[Site "https://lichess.org/Qq11Ww22"]
[White "bob"]
[Black "carol"]
[Result "*"]
[TimeControl "-"]

1. d4 d5 2. c4 *
`

// RapidGameFor returns RapidGame with its players and game id replaced.
func RapidGameFor(id, white, black string) string {
	r := strings.NewReplacer(
		"AbCd1234", id,
		`[White "alice"]`, `[White "`+white+`"]`,
		`[Black "bob"]`, `[Black "`+black+`"]`,
	)
	return r.Replace(RapidGame)
}

// WriteTempFile writes data to name inside a test temp dir and returns its path.
func WriteTempFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// ZstdCompress returns data compressed as a single zstd frame.
func ZstdCompress(t testing.TB, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("creating zstd encoder: %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}
