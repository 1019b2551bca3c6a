package l20nfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ---------------------------------------------------------------------------
// File model
// ---------------------------------------------------------------------------

// Value is an entry value: either a single line taken from the header, or
// the ordered lines of a multi-line block. Lines are kept as read until
// String joins them.
type Value struct {
	lines []string
	multi bool
}

// SingleLine returns a single-line value.
func SingleLine(s string) Value {
	return Value{lines: []string{s}}
}

// MultiLine returns a multi-line value made of lines.
func MultiLine(lines ...string) Value {
	return Value{lines: append([]string(nil), lines...), multi: true}
}

// IsMultiLine reports whether the value came from a multi-line block.
func (v Value) IsMultiLine() bool { return v.multi }

// Lines returns a copy of the value's lines.
func (v Value) Lines() []string { return append([]string(nil), v.lines...) }

// String joins the value's lines with "\n".
func (v Value) String() string { return strings.Join(v.lines, "\n") }

// Entry is a single localization definition.
type Entry struct {
	ID    string
	Value Value
	// Comments are the payloads of the comment lines directly above the
	// entry, in order.
	Comments []string
	// Line is the line number of the entry header.
	Line int
}

// File is a parsed L20n document.
type File struct {
	Entries []Entry
	// Warnings lists lines that were skipped while parsing.
	Warnings []*Diagnostic
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

var (
	// ErrMalformedEntryLine marks a line that is not a comment, entry or
	// continuation and appears outside any value.
	ErrMalformedEntryLine = errors.New("malformed entry line")
	// ErrOrphanContinuation marks a "|" line with no open value.
	ErrOrphanContinuation = errors.New("continuation without entry")
)

// Diagnostic is a non-fatal parse irregularity. The offending line is
// skipped.
type Diagnostic struct {
	Line int
	Text string
	Err  error
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %v: %q", d.Line, d.Err, d.Text)
}

func (d *Diagnostic) Unwrap() error { return d.Err }

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses an L20n file from disk.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads an L20n document from r. Only read failures are returned as
// errors; irregular lines end up in File.Warnings.
func Parse(r io.Reader) (*File, error) {
	lines, err := Lines(r)
	if err != nil {
		return nil, err
	}
	return ParseLines(lines), nil
}

// ParseLines assembles entries from already classified lines.
func ParseLines(lines []SourceLine) *File {
	p := &parser{file: &File{}}
	for _, ln := range lines {
		p.feed(ln)
	}
	p.finish()
	return p.file
}

// parser holds the state of one parse. The comment buffer lives here so
// independent parses never share it.
type parser struct {
	file     *File
	comments []string
	// open is the entry whose value is still accumulating, nil when idle.
	open *Entry
}

func (p *parser) feed(ln SourceLine) {
	if p.open != nil {
		switch ln.Kind {
		case LineContinuation, LineOther:
			p.open.Value.lines = append(p.open.Value.lines, ln.Text)
			return
		}
		p.finish()
	}

	switch ln.Kind {
	case LineBlank:
		p.comments = nil

	case LineComment:
		p.comments = append(p.comments, ln.Text)

	case LineEntryHeader:
		e := Entry{ID: ln.ID, Comments: p.comments, Line: ln.Num}
		p.comments = nil
		switch {
		case ln.Value == "":
			e.Value = Value{multi: true}
			p.open = &e
		case opensBlock(ln.Value):
			e.Value = Value{lines: []string{ln.Value}, multi: true}
			p.open = &e
		default:
			e.Value = SingleLine(ln.Value)
			p.file.Entries = append(p.file.Entries, e)
		}

	case LineContinuation:
		p.warn(ln, ErrOrphanContinuation)

	case LineOther:
		p.warn(ln, ErrMalformedEntryLine)
	}
}

// finish emits the open entry, if any.
func (p *parser) finish() {
	if p.open == nil {
		return
	}
	p.file.Entries = append(p.file.Entries, *p.open)
	p.open = nil
}

func (p *parser) warn(ln SourceLine, err error) {
	p.file.Warnings = append(p.file.Warnings, &Diagnostic{Line: ln.Num, Text: ln.Raw, Err: err})
}

// opensBlock reports whether a header value leaves a brace block open,
// as "{ PLURAL($num) ->" does. Braces inside string literals of a
// placeable, such as {"{"}, are not counted.
func opensBlock(value string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case inString:
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
		case c == '"' && depth > 0:
			inString = true
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		}
	}
	return depth > 0
}
