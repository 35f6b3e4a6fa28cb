package scanner

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lgbarn/pgn-scan/internal/errors"
	"github.com/lgbarn/pgn-scan/internal/metrics"
	"github.com/lgbarn/pgn-scan/internal/source"
	"github.com/lgbarn/pgn-scan/internal/testutil"
)

// scanString creates a scanner over pgn.
func scanString(pgn string, opts ...Option) *Scanner {
	return FromReader(strings.NewReader(pgn), opts...)
}

// mustNext calls Next and fails the test on error.
func mustNext(t *testing.T, s *Scanner) bool {
	t.Helper()
	ok, err := s.Next()
	testutil.AssertNoError(t, err, "Next")
	return ok
}

// rawRecords scans every record of pgn and returns their raw bytes.
func rawRecords(t *testing.T, pgn string, opts ...Option) []string {
	t.Helper()
	s := scanString(pgn, opts...)
	var out []string
	for mustNext(t, s) {
		out = append(out, string(s.Raw()))
	}
	return out
}

func TestScanConcatenatedRecords(t *testing.T) {
	pgn := testutil.RapidGame + "\n" + testutil.BlitzDraw + "\n" + testutil.UnfinishedGame
	s := scanString(pgn)

	type want struct {
		white, result string
		clocks, evals bool
		suffix        string
	}
	wants := []want{
		{"alice", "1-0", true, true, "4. O-O Nf6 1-0"},
		{"carol", "1/2-1/2", false, false, "Bf5 1/2-1/2"},
		{"bob", "*", false, false, "2. c4 *"},
	}

	for i, w := range wants {
		if !mustNext(t, s) {
			t.Fatalf("record %d: Next = false, want true", i+1)
		}
		testutil.AssertEqual(t, s.Header("White"), w.white, "record %d White", i+1)
		testutil.AssertEqual(t, s.Header("Result"), w.result, "record %d Result", i+1)
		testutil.AssertEqual(t, s.HasClocks(), w.clocks, "record %d HasClocks", i+1)
		testutil.AssertEqual(t, s.HasEvals(), w.evals, "record %d HasEvals", i+1)
		testutil.AssertTrue(t, strings.HasSuffix(string(s.Raw()), w.suffix),
			"record %d raw %q should end with %q", i+1, s.Raw(), w.suffix)
	}

	if mustNext(t, s) {
		t.Fatal("Next after last record = true, want false")
	}
	testutil.AssertEqual(t, s.Header("White"), "", "headers reset after end of stream")
	testutil.AssertEqual(t, len(s.Raw()), 0, "raw reset after end of stream")
	testutil.AssertFalse(t, s.HasClocks() || s.HasEvals(), "flags reset after end of stream")
}

func TestScanRawIsVerbatimTranscript(t *testing.T) {
	first := "[Event \"A\"]\n\n1. e4 {c} e5 0-1"
	second := "\n\n[Event \"B\"]\n\n1. d4 *"
	got := rawRecords(t, first+second+"\n")

	testutil.AssertEqual(t, got, []string{first, second})
	testutil.AssertEqual(t, strings.Join(got, "")+"\n", first+second+"\n")
}

func TestHeaderRoundTrip(t *testing.T) {
	s := scanString("[Event \"Test Game\"]\n[Site \"https://lichess.org/abc\"]\n\n1. e4 *")
	testutil.AssertTrue(t, mustNext(t, s))

	testutil.AssertEqual(t, s.Header("Event"), "Test Game")
	testutil.AssertEqual(t, s.Header("Site"), "https://lichess.org/abc")
	testutil.AssertEqual(t, s.Headers(), map[string]string{
		"Event": "Test Game",
		"Site":  "https://lichess.org/abc",
	})
}

func TestHeaderAbsentKey(t *testing.T) {
	s := scanString("[Event \"x\"] *")

	// Before any record, and for any name, lookups never fail.
	testutil.AssertEqual(t, s.Header("Event"), "")
	testutil.AssertTrue(t, mustNext(t, s))
	for i := 0; i < 3; i++ {
		testutil.AssertEqual(t, s.Header("WhiteElo"), "")
	}
	testutil.AssertEqual(t, s.Header(""), "")
}

func TestHeaderLastWriteWins(t *testing.T) {
	s := scanString(`[Event "first"][Event "second"] *`)
	testutil.AssertTrue(t, mustNext(t, s))
	testutil.AssertEqual(t, s.Header("Event"), "second")
}

func TestHeadersReturnsCopy(t *testing.T) {
	s := scanString(`[Event "x"] *`)
	testutil.AssertTrue(t, mustNext(t, s))

	h := s.Headers()
	h["Event"] = "changed"
	testutil.AssertEqual(t, s.Header("Event"), "x")
}

func TestResultTokenTermination(t *testing.T) {
	tests := []struct {
		name      string
		pgn       string
		want      string
		wantState ParseState
	}{
		{"white wins", "1. e4 e5 1-0\n", "1. e4 e5 1-0", ExpectingEndScoreWin},
		{"black wins", "1. f3 e5 2. g4 Qh4# 0-1\n", "1. f3 e5 2. g4 Qh4# 0-1", ExpectingEndScoreWin},
		{"draw ends at second two", "1. e4 1/2-1/2\n", "1. e4 1/2-1/2", ExpectingEndScoreDraw},
		{"star", "1. e4 *\n", "1. e4 *", ExpectingAnything},
		{"win ends on any byte after dash", "1. e4 1-x and more", "1. e4 1-x", ExpectingEndScoreWin},
		{"castling then win", "1. e4 e5 2. O-O O-O-O 1-0", "1. e4 e5 2. O-O O-O-O 1-0", ExpectingEndScoreWin},
		{"dash inside tag value ignored", "[Result \"1-0\"] 1-0", "[Result \"1-0\"] 1-0", ExpectingEndScoreWin},
		{"dash inside comment ignored", "{0-1 was possible} 1/2-1/2", "{0-1 was possible} 1/2-1/2", ExpectingEndScoreDraw},
		{"dash as first byte", "-0 rest", "-0", ExpectingEndScoreWin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scanString(tt.pgn)
			testutil.AssertTrue(t, mustNext(t, s), "Next")
			testutil.AssertEqual(t, string(s.Raw()), tt.want)
			testutil.AssertEqual(t, s.State(), tt.wantState)
		})
	}
}

func TestDrawWaitsPastOtherBytes(t *testing.T) {
	// Once in draw-wait, everything up to the next '2' belongs to the record.
	s := scanString("1. e4 2-0 [x] {y} 1-0 *2 trailing")
	testutil.AssertTrue(t, mustNext(t, s))
	testutil.AssertEqual(t, string(s.Raw()), "1. e4 2-0 [x] {y} 1-0 *2")
}

func TestCastlingDoesNotTerminate(t *testing.T) {
	tests := []string{"O-O", "O-O-O"}

	for _, move := range tests {
		t.Run(move, func(t *testing.T) {
			record := "1. e4 e5 2. " + move + " *"
			s := scanString(record)

			testutil.AssertTrue(t, mustNext(t, s), "record ends at *")
			testutil.AssertEqual(t, string(s.Raw()), record)
			testutil.AssertEqual(t, s.State(), ExpectingAnything)
			testutil.AssertFalse(t, mustNext(t, s), "single record")
		})
	}
}

func TestCommentFlags(t *testing.T) {
	tests := []struct {
		name       string
		comment    string
		wantClocks bool
		wantEvals  bool
	}{
		// No bare 'e' or 'c' byte anywhere in the comment.
		{"eval number without letters", "{+0.3/12 15s}", false, false},
		{"eval annotation", "{ [%eval 0.17] }", false, true},
		{"clock annotation", "{ [%clk 0:09:58] }", true, false},
		{"both annotations", "{ [%eval 0.17] [%clk 0:09:58] }", true, true},
		// Coarse detection: any prose with 'c' and 'e' sets both flags.
		{"prose", "{ Nice tactic }", true, true},
		{"prose without e or c", "{ ok }", false, false},
		{"letters outside comments", "e4 c5 ", false, false},
		{"upper case ignored", "{ EVAL CLK }", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scanString("1. " + tt.comment + " 1-0")
			testutil.AssertTrue(t, mustNext(t, s))
			testutil.AssertEqual(t, s.HasClocks(), tt.wantClocks, "HasClocks")
			testutil.AssertEqual(t, s.HasEvals(), tt.wantEvals, "HasEvals")
		})
	}
}

func TestFlagsResetPerRecord(t *testing.T) {
	s := scanString("1. e4 {ce} 1-0\n1. d4 d5 0-1")

	testutil.AssertTrue(t, mustNext(t, s))
	testutil.AssertTrue(t, s.HasClocks() && s.HasEvals())
	testutil.AssertTrue(t, mustNext(t, s))
	testutil.AssertFalse(t, s.HasClocks() || s.HasEvals())
}

func TestRecordTooLarge(t *testing.T) {
	s := scanString("[Event \"a very long event name\"] 1-0", WithCapacity(16))

	ok, err := s.Next()
	testutil.AssertFalse(t, ok)
	testutil.AssertErrorIs(t, err, errors.ErrRecordTooLarge)
	testutil.AssertContains(t, err.Error(), "16 bytes")
	testutil.AssertEqual(t, len(s.Raw()), 0, "no partial record")
	testutil.AssertEqual(t, s.Header("Event"), "", "no partial headers")
}

func TestRecordExactlyAtCapacity(t *testing.T) {
	record := "1. e4 e5 1-0"
	s := scanString(record, WithCapacity(len(record)))

	testutil.AssertTrue(t, mustNext(t, s))
	testutil.AssertEqual(t, string(s.Raw()), record)
	testutil.AssertEqual(t, s.Capacity(), len(record))
}

func TestTruncatedRecordDiscarded(t *testing.T) {
	s := scanString("1. e4 e5 1-0\n[Event \"cut\"]\n\n1. d4 d5 {c")

	testutil.AssertTrue(t, mustNext(t, s))
	testutil.AssertFalse(t, mustNext(t, s))
	testutil.AssertEqual(t, s.Header("Event"), "")
	testutil.AssertFalse(t, s.HasClocks())
	testutil.AssertEqual(t, len(s.Raw()), 0)
}

func TestTruncatedRecordReported(t *testing.T) {
	s := scanString("1. e4 e5 1-0\n1. d4", WithIncompleteRecordError())

	testutil.AssertTrue(t, mustNext(t, s))
	ok, err := s.Next()
	testutil.AssertFalse(t, ok)
	testutil.AssertErrorIs(t, err, errors.ErrIncompleteRecord)
}

func TestTrailingWhitespaceIsNotIncomplete(t *testing.T) {
	s := scanString("1. e4 e5 1-0\n\n \t\r\n", WithIncompleteRecordError())

	testutil.AssertTrue(t, mustNext(t, s))
	testutil.AssertFalse(t, mustNext(t, s))
}

func TestEmptyStream(t *testing.T) {
	s := scanString("")
	testutil.AssertFalse(t, mustNext(t, s))
	testutil.AssertFalse(t, mustNext(t, s))
}

func TestSmallWindowAcrossChunks(t *testing.T) {
	pgn := testutil.RapidGame + testutil.BlitzDraw + testutil.UnfinishedGame
	want := rawRecords(t, pgn)

	for _, window := range []int{1, 2, 7, 64} {
		src := source.New(source.NewReaderProvider(strings.NewReader(pgn)), source.WithWindowSize(window))
		s := New(src)
		var got []string
		for mustNext(t, s) {
			got = append(got, string(s.Raw()))
		}
		testutil.AssertEqual(t, got, want, "window %d", window)
	}
}

func TestProtocolViolationPropagates(t *testing.T) {
	calls := 0
	p := source.NewValueProvider(func(int) (interface{}, error) {
		calls++
		if calls == 1 {
			return "[Event \"x\"] 1. e4", nil
		}
		return 3.14, nil
	})
	s := New(source.New(p))

	ok, err := s.Next()
	testutil.AssertFalse(t, ok)
	testutil.AssertErrorIs(t, err, errors.ErrProtocolViolation)
	testutil.AssertEqual(t, s.Header("Event"), "", "no partial headers")
}

func TestOffset(t *testing.T) {
	s := scanString("1. e4 1-0\n1. d4 0-1")

	testutil.AssertTrue(t, mustNext(t, s))
	testutil.AssertEqual(t, s.Offset(), int64(0))
	testutil.AssertTrue(t, mustNext(t, s))
	testutil.AssertEqual(t, s.Offset(), int64(len("1. e4 1-0")))
}

func TestScannerMetrics(t *testing.T) {
	m := metrics.NewScan(prometheus.NewRegistry())
	s := scanString("1. e4 {%clk} 1-0\n1. d4 *\n[Event \"too long for the buffer\"] 1-0", WithCapacity(24), WithMetrics(m))

	testutil.AssertTrue(t, mustNext(t, s))
	testutil.AssertTrue(t, mustNext(t, s))
	_, err := s.Next()
	testutil.AssertErrorIs(t, err, errors.ErrRecordTooLarge)

	testutil.AssertEqual(t, promtest.ToFloat64(m.Records), 2.0)
	testutil.AssertEqual(t, promtest.ToFloat64(m.ClockRecords), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(m.RecordBytes), float64(len("1. e4 {%clk} 1-0")+len("\n1. d4 *")))
	testutil.AssertEqual(t, promtest.ToFloat64(m.Failures.WithLabelValues(metrics.ReasonRecordTooLarge)), 1.0)
}

func TestParseStateString(t *testing.T) {
	testutil.AssertEqual(t, ExpectingAnything.String(), "EXPECTING_ANYTHING")
	testutil.AssertEqual(t, ExpectingEndScoreDraw.String(), "EXPECTING_END_SCORE_DRAW")
	testutil.AssertEqual(t, ParseState(99).String(), "UNKNOWN")
}
