// Package output writes scanned games as raw PGN, tag blocks or JSON.
package output

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/lgbarn/pgn-scan/internal/chess"
)

// Format names an output format.
type Format string

// Supported output formats.
const (
	FormatPGN  Format = "pgn"
	FormatTags Format = "tags"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPGN, FormatTags, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want pgn, tags or json)", s)
	}
}

// clockAnnotationRegex matches clock annotations like [%clk H:MM:SS] or [%clk H:MM:SS.d]
var clockAnnotationRegex = regexp.MustCompile(`\s*\[%clk\s+\d+:\d{2}:\d{2}(?:\.\d+)?\]`)

// emptyCommentRegex matches comments left empty once annotations are gone.
var emptyCommentRegex = regexp.MustCompile(`\s*\{\s*\}`)

// stripClockAnnotations removes clock annotations from record text, and
// the comments that held nothing else.
func stripClockAnnotations(text string) string {
	text = clockAnnotationRegex.ReplaceAllString(text, "")
	return emptyCommentRegex.ReplaceAllString(text, "")
}

// writeTags writes tag pairs, the seven tag roster first (with "?" for
// missing values) and then the remaining tags in name order.
func writeTags(w io.Writer, tags map[string]string) error {
	for _, tag := range chess.SevenTagRoster {
		value := tags[tag]
		if value == "" {
			value = "?"
		}
		if _, err := fmt.Fprintf(w, "[%s \"%s\"]\n", tag, escapeTagValue(value)); err != nil {
			return err
		}
	}

	extra := make([]string, 0, len(tags))
	for tag := range tags {
		if !chess.IsSevenTagRosterTag(tag) {
			extra = append(extra, tag)
		}
	}
	sort.Strings(extra)

	for _, tag := range extra {
		if _, err := fmt.Fprintf(w, "[%s \"%s\"]\n", tag, escapeTagValue(tags[tag])); err != nil {
			return err
		}
	}
	return nil
}

// escapeTagValue escapes special characters in tag values.
func escapeTagValue(s string) string {
	// Fast path: if no escaping needed, return it unchanged
	if !strings.ContainsAny(s, "\\\"") {
		return s
	}
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
