package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lgbarn/pgn-scan/internal/output"
	"github.com/lgbarn/pgn-scan/internal/testutil"
)

const threeGames = testutil.RapidGame + "\n" + testutil.BlitzDraw + "\n" + testutil.UnfinishedGame

// run executes the command line with stdin and returns the exit code and
// both output streams.
func run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	testutil.AssertNoError(t, err)
	return string(data)
}

func records(texts ...string) string {
	var b strings.Builder
	for _, text := range texts {
		b.WriteString(strings.TrimSpace(text))
		b.WriteString("\n\n")
	}
	return b.String()
}

func TestVersion(t *testing.T) {
	code, stdout, _ := run(t, "", "version")
	testutil.AssertEqual(t, code, 0)
	testutil.AssertEqual(t, stdout, "pgn-scan version dev\n")
}

func TestData_File(t *testing.T) {
	path := testutil.WriteTempFile(t, "games.pgn", []byte(threeGames))

	code, stdout, stderr := run(t, "", "data", path)
	testutil.AssertEqual(t, code, 0, stderr)
	testutil.AssertEqual(t, stdout, records(testutil.RapidGame, testutil.BlitzDraw, testutil.UnfinishedGame))
}

func TestData_StdinJSON(t *testing.T) {
	code, stdout, stderr := run(t, threeGames, "data", "--json")
	testutil.AssertEqual(t, code, 0, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	testutil.AssertEqual(t, len(lines), 3)

	var g output.JSONGame
	testutil.AssertNoError(t, json.Unmarshal([]byte(lines[0]), &g))
	testutil.AssertEqual(t, g.ID, "AbCd1234")
	testutil.AssertEqual(t, g.Source, "stdin")
	testutil.AssertTrue(t, g.HasEvals)
	testutil.AssertTrue(t, g.HasClocks)
}

func TestData_ZstdWithMaxGames(t *testing.T) {
	path := testutil.WriteTempFile(t, "games.pgn.zst", testutil.ZstdCompress(t, []byte(threeGames)))

	code, stdout, stderr := run(t, "", "--max-games", "1", "data", path)
	testutil.AssertEqual(t, code, 0, stderr)
	testutil.AssertEqual(t, stdout, records(testutil.RapidGame))
}

func TestData_Tags(t *testing.T) {
	code, stdout, stderr := run(t, testutil.UnfinishedGame, "data", "--format", "tags")
	testutil.AssertEqual(t, code, 0, stderr)
	testutil.AssertContains(t, stdout, "[Date \"?\"]\n")
	testutil.AssertContains(t, stdout, "[TimeControl \"-\"]\n")
	testutil.AssertFalse(t, strings.Contains(stdout, "1. d4"), "tags only")
}

func TestData_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"data", "/nonexistent/games.pgn"}, "opening input"},
		{"bad format", []string{"data", "--format", "epd"}, "unknown output format"},
		{"bad log level", []string{"--log-level", "loud", "data"}, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, "", tt.args...)
			testutil.AssertEqual(t, code, 1)
			testutil.AssertContains(t, stderr, tt.want)
		})
	}
}

func TestData_RecordTooLarge(t *testing.T) {
	cfgPath := testutil.WriteTempFile(t, "config.yaml", []byte("scanner:\n  record_capacity: 100\n"))

	code, _, stderr := run(t, threeGames, "--config", cfgPath, "data")
	testutil.AssertEqual(t, code, 1)
	testutil.AssertContains(t, stderr, "stdin, record 1, offset ")
	testutil.AssertContains(t, stderr, "record too large")
}

func TestPlayers(t *testing.T) {
	input := testutil.WriteTempFile(t, "games.pgn", []byte(threeGames))
	out := filepath.Join(t.TempDir(), "players.txt")

	code, stdout, stderr := run(t, "", "players", input,
		"--k", "2", "--min-games", "1", "--criterion", "rapid-eval", "--out", out)
	testutil.AssertEqual(t, code, 0, stderr)
	testutil.AssertEqual(t, readFile(t, out), "alice\nbob\n")
	testutil.AssertContains(t, stdout, "Found 2 players in 1 games")
	testutil.AssertContains(t, stderr, `msg="search for players started"`)
}

func TestPlayers_InvalidOverride(t *testing.T) {
	input := testutil.WriteTempFile(t, "games.pgn", []byte(threeGames))

	code, _, stderr := run(t, "", "players", input, "--k", "0")
	testutil.AssertEqual(t, code, 1)
	testutil.AssertContains(t, stderr, "target_size")
}

func TestGames(t *testing.T) {
	input := testutil.WriteTempFile(t, "games.pgn", []byte(threeGames))
	players := testutil.WriteTempFile(t, "players.txt", []byte("alice\n"))
	out := filepath.Join(t.TempDir(), "games.pgn")

	for _, workers := range []string{"1", "3"} {
		code, stdout, stderr := run(t, "", "games", input,
			"--players", players, "--gpp", "2", "--criterion", "any", "--workers", workers, "--out", out)
		testutil.AssertEqual(t, code, 0, stderr)
		testutil.AssertEqual(t, readFile(t, out), records(testutil.RapidGame, testutil.BlitzDraw), "workers=%s", workers)
		testutil.AssertContains(t, stdout, "Saved 2 games")
		testutil.AssertContains(t, stdout, "(1 of 1 players complete)")
	}
}

func TestGames_Dedupe(t *testing.T) {
	input := testutil.WriteTempFile(t, "games.pgn", []byte(testutil.RapidGame+testutil.RapidGame+testutil.BlitzDraw))
	players := testutil.WriteTempFile(t, "players.txt", []byte("alice\n"))
	out := filepath.Join(t.TempDir(), "games.pgn")

	code, _, stderr := run(t, "", "games", input,
		"--players", players, "--gpp", "5", "--criterion", "any", "--dedupe", "--out", out)
	testutil.AssertEqual(t, code, 0, stderr)
	testutil.AssertEqual(t, readFile(t, out), records(testutil.RapidGame, testutil.BlitzDraw))
	testutil.AssertContains(t, stderr, `msg="duplicates skipped" count=1`)
}

func TestGames_MissingPlayerList(t *testing.T) {
	input := testutil.WriteTempFile(t, "games.pgn", []byte(threeGames))

	code, _, stderr := run(t, "", "games", input, "--players", "/nonexistent/players.txt")
	testutil.AssertEqual(t, code, 1)
	testutil.AssertContains(t, stderr, "opening player list")
}

func TestStats(t *testing.T) {
	code, stdout, stderr := run(t, threeGames, "stats")
	testutil.AssertEqual(t, code, 0, stderr)

	testutil.AssertContains(t, stdout, "games")
	testutil.AssertContains(t, stdout, "rapid 10+0")
	testutil.AssertContains(t, stdout, "blitz 3+2")
	testutil.AssertContains(t, stdout, "correspondence")
	testutil.AssertContains(t, stdout, "33.3%")
}

func TestMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgnscan.prom")

	code, _, stderr := run(t, threeGames, "--metrics-file", path, "data")
	testutil.AssertEqual(t, code, 0, stderr)

	text := readFile(t, path)
	testutil.AssertContains(t, text, "pgnscan_records_total 3")
	testutil.AssertContains(t, text, "pgnscan_records_with_clocks_total 1")
}

func TestMetricsFile_OnScanFailure(t *testing.T) {
	cfgPath := testutil.WriteTempFile(t, "config.yaml", []byte("scanner:\n  record_capacity: 8\n"))
	path := filepath.Join(t.TempDir(), "pgnscan.prom")

	code, _, stderr := run(t, `[Event "long event name"] 1-0`, "--config", cfgPath, "--metrics-file", path, "data")
	testutil.AssertEqual(t, code, 1)
	testutil.AssertContains(t, stderr, "record too large")

	text := readFile(t, path)
	testutil.AssertContains(t, text, `pgnscan_scan_failures_total{reason="record_too_large"} 1`)
}

func TestData_JSONArray(t *testing.T) {
	code, stdout, stderr := run(t, threeGames, "data", "--json", "--json-array")
	testutil.AssertEqual(t, code, 0, stderr)

	var out output.JSONOutput
	testutil.AssertNoError(t, json.Unmarshal([]byte(stdout), &out))
	testutil.AssertEqual(t, len(out.Games), 3)
	testutil.AssertEqual(t, out.Games[1].ID, "XyZ98765")
	testutil.AssertEqual(t, out.Games[2].Result, "*")
}
