// Package l20nfile reads Fluent/L20n localization sources (.ftl, .l20n).
//
// Format: one entry per "id = value" line, optionally preceded by "#"
// comment lines. A header line ending in "=" opens a multi-line value
// whose lines follow as "| text" continuations. Plural selectors such as
//
//	new-notifications = { PLURAL($num) ->
//	  [one] One new notification.
//	 *[other] { $num } new notifications.
//	}
//
// are kept as opaque text: the variant lines and the closing brace are
// appended to the value verbatim and never evaluated.
package l20nfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ---------------------------------------------------------------------------
// Line classification
// ---------------------------------------------------------------------------

// LineKind classifies a physical source line.
type LineKind int

const (
	LineBlank        LineKind = iota // whitespace-only line
	LineComment                      // "# text"
	LineEntryHeader                  // "id = value" or "id ="
	LineContinuation                 // "| text"
	LineOther                        // anything else, kept verbatim
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineComment:
		return "comment"
	case LineEntryHeader:
		return "entry"
	case LineContinuation:
		return "continuation"
	case LineOther:
		return "other"
	}
	return fmt.Sprintf("LineKind(%d)", int(k))
}

// SourceLine is one classified physical line.
type SourceLine struct {
	Kind LineKind
	// Num is the 1-based line number.
	Num int
	// Raw is the line as read, without the line terminator.
	Raw string
	// Text is the payload: comment text, continuation text, or Raw for
	// LineOther. Empty for entry headers and blanks.
	Text string
	// ID and Value are set for LineEntryHeader only.
	ID    string
	Value string
}

// maxLineSize bounds a single physical line.
const maxLineSize = 1024 * 1024

// Lines reads r and classifies every physical line.
func Lines(r io.Reader) ([]SourceLine, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []SourceLine
	num := 0
	for scanner.Scan() {
		num++
		ln := Classify(strings.TrimSuffix(scanner.Text(), "\r"))
		ln.Num = num
		lines = append(lines, ln)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading l20n source: %w", err)
	}
	return lines, nil
}

// Classify determines the kind of a single line and extracts its payload.
func Classify(raw string) SourceLine {
	ln := SourceLine{Raw: raw}
	trimmed := strings.Trim(raw, " \t")

	switch {
	case trimmed == "":
		ln.Kind = LineBlank

	case strings.HasPrefix(trimmed, "#"):
		ln.Kind = LineComment
		ln.Text = stripOneSpace(trimmed[1:])

	default:
		if id, value, ok := splitEntry(strings.TrimLeft(raw, " \t")); ok {
			ln.Kind = LineEntryHeader
			ln.ID = id
			ln.Value = value
			return ln
		}
		if strings.HasPrefix(trimmed, "|") {
			ln.Kind = LineContinuation
			ln.Text = stripOneSpace(strings.TrimLeft(raw, " \t")[1:])
			return ln
		}
		ln.Kind = LineOther
		ln.Text = raw
	}
	return ln
}

// splitEntry splits "id = value" at the first '='. Spaces and tabs around
// '=' are dropped; trailing content of the value is preserved.
func splitEntry(s string) (id, value string, ok bool) {
	before, after, found := strings.Cut(s, "=")
	if !found {
		return "", "", false
	}
	id = strings.Trim(before, " \t")
	if !validID(id) {
		return "", "", false
	}
	return id, strings.TrimLeft(after, " \t"), true
}

// validID rejects empty ids, ids containing whitespace, and texts that
// start like continuation or plural-variant syntax ("| a = b", "*[x] = y").
// Ids become "#:" locations, which gettext tools split on whitespace, so
// "two words = value" is not an entry.
func validID(id string) bool {
	if id == "" || strings.ContainsAny(id, " \t") {
		return false
	}
	switch id[0] {
	case '|', '[', '*', '{', '}', '$':
		return false
	}
	return true
}

func stripOneSpace(s string) string {
	return strings.TrimPrefix(s, " ")
}
