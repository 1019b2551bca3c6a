// Package pofile implements the translation-unit collection written by
// l20n2po: reading and writing of GNU gettext PO/POT files.
package pofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Unit is a single translatable message.
type Unit struct {
	// TranslatorComments are lines starting with "# ".
	TranslatorComments []string
	// DeveloperNotes are lines starting with "#." (extracted comments).
	DeveloperNotes []string
	// Locations are source locations from "#:" lines, one per token.
	Locations []string
	// Flags are format flags, lines starting with "#,".
	Flags []string
	// PreviousSource stores the previous msgid of fuzzy units ("#|").
	PreviousSource string

	// Context is the message context (msgctxt).
	Context string
	// Source is the untranslated string (msgid).
	Source string
	// SourcePlural is the untranslated plural string (msgid_plural).
	SourcePlural string
	// Target is the translated string (msgstr).
	Target string
	// TargetPlural maps plural form index to translated string.
	TargetPlural map[int]string

	// Obsolete marks units prefixed with "#~".
	Obsolete bool
}

// IsHeader reports whether u is the metadata unit (msgid "").
func (u *Unit) IsHeader() bool {
	return u.Source == "" && u.Context == "" && !u.Obsolete
}

// IsTranslated returns true if the unit has a non-empty, non-fuzzy target.
func (u *Unit) IsTranslated() bool {
	if u.Source == "" || u.IsFuzzy() {
		return false
	}
	if u.SourcePlural != "" {
		for _, v := range u.TargetPlural {
			if v == "" {
				return false
			}
		}
		return len(u.TargetPlural) > 0
	}
	return u.Target != ""
}

// IsFuzzy returns true if the unit is marked fuzzy.
func (u *Unit) IsFuzzy() bool {
	return u.HasFlag("fuzzy")
}

// HasFlag checks if a specific flag is present.
func (u *Unit) HasFlag(flag string) bool {
	for _, f := range u.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Notes returns the comments of the given origin joined by "\n".
// Origin "developer" selects the "#." notes, "translator" the "# " comments;
// an empty origin returns both, developer notes first.
func (u *Unit) Notes(origin string) string {
	switch origin {
	case "developer":
		return strings.Join(u.DeveloperNotes, "\n")
	case "translator":
		return strings.Join(u.TranslatorComments, "\n")
	}
	all := append(append([]string(nil), u.DeveloperNotes...), u.TranslatorComments...)
	return strings.Join(all, "\n")
}

// File is a translation-unit collection: one header unit followed by the
// content units.
type File struct {
	// Header is the metadata unit (msgid "").
	Header *Unit
	// Units are the content units in document order.
	Units []*Unit
}

// NewFile creates a new collection with an empty header.
func NewFile() *File {
	return &File{
		Header: &Unit{},
		Units:  make([]*Unit, 0),
	}
}

// AllUnits returns the header followed by the content units.
func (f *File) AllUnits() []*Unit {
	all := make([]*Unit, 0, len(f.Units)+1)
	if f.Header != nil {
		all = append(all, f.Header)
	}
	return append(all, f.Units...)
}

// ContentCount returns the number of non-header, non-obsolete units.
func (f *File) ContentCount() int {
	n := 0
	for _, u := range f.Units {
		if !u.Obsolete {
			n++
		}
	}
	return n
}

// HeaderField returns a header field value by name.
func (f *File) HeaderField(name string) string {
	if f.Header == nil {
		return ""
	}
	for _, line := range strings.Split(f.Header.Target, "\n") {
		if idx := strings.Index(line, ":"); idx > 0 {
			key := strings.TrimSpace(line[:idx])
			if strings.EqualFold(key, name) {
				return strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return ""
}

// SetHeaderField sets a header field value.
func (f *File) SetHeaderField(name, value string) {
	if f.Header == nil {
		f.Header = &Unit{}
	}

	lines := strings.Split(f.Header.Target, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, ":"); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
				lines[i] = name + ": " + value
				f.Header.Target = strings.Join(lines, "\n")
				return
			}
		}
	}
	// Insert before the trailing empty line.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = append(lines[:len(lines)-1], name+": "+value, "")
	} else {
		lines = append(lines, name+": "+value)
	}
	f.Header.Target = strings.Join(lines, "\n")
}

// Stats returns translation statistics over the content units.
func (f *File) Stats() (total, translated, fuzzy, untranslated int) {
	for _, u := range f.Units {
		if u.Source == "" || u.Obsolete {
			continue
		}
		total++
		switch {
		case u.IsFuzzy():
			fuzzy++
		case u.IsTranslated():
			translated++
		default:
			untranslated++
		}
	}
	return
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads a PO/POT file from disk.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a PO/POT file from a reader.
func Parse(r io.Reader) (*File, error) {
	f := NewFile()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current *Unit
	var lastField string // last msgid/msgstr/etc. field, for continuation strings
	sawHeader := false
	lineNum := 0

	flush := func() {
		if current == nil {
			return
		}
		if !sawHeader && current.IsHeader() {
			f.Header = current
			sawHeader = true
		} else {
			f.Units = append(f.Units, current)
		}
		current = nil
		lastField = ""
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		// Empty line separates units
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		// A keyword after a msgstr starts a new unit even without a blank line.
		body := strings.TrimPrefix(strings.TrimPrefix(line, "#~"), " ")
		if current != nil && strings.HasPrefix(lastField, "msgstr") &&
			(strings.HasPrefix(body, "#") || strings.HasPrefix(body, "msgid ") || strings.HasPrefix(body, "msgctxt ")) {
			flush()
		}

		if current == nil {
			current = &Unit{TargetPlural: make(map[int]string)}
		}

		if strings.HasPrefix(line, "#~") {
			current.Obsolete = true
			line = strings.TrimPrefix(strings.TrimPrefix(line, "#~"), " ")
			if strings.TrimSpace(line) == "" {
				continue
			}
		}

		if strings.HasPrefix(line, "#") {
			switch {
			case strings.HasPrefix(line, "#:"):
				current.Locations = append(current.Locations, strings.Fields(line[2:])...)
			case strings.HasPrefix(line, "#,"):
				for _, flag := range strings.Split(line[2:], ",") {
					if flag = strings.TrimSpace(flag); flag != "" {
						current.Flags = append(current.Flags, flag)
					}
				}
			case strings.HasPrefix(line, "#."):
				current.DeveloperNotes = append(current.DeveloperNotes, strings.TrimPrefix(line[2:], " "))
			case strings.HasPrefix(line, "#|"):
				prev := strings.TrimSpace(line[2:])
				if strings.HasPrefix(prev, "msgid ") {
					current.PreviousSource = unquote(strings.TrimPrefix(prev, "msgid "))
				}
			default:
				current.TranslatorComments = append(current.TranslatorComments, strings.TrimPrefix(line[1:], " "))
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "msgctxt "):
			current.Context = unquote(strings.TrimPrefix(line, "msgctxt "))
			lastField = "msgctxt"

		case strings.HasPrefix(line, "msgid_plural "):
			current.SourcePlural = unquote(strings.TrimPrefix(line, "msgid_plural "))
			lastField = "msgid_plural"

		case strings.HasPrefix(line, "msgid "):
			current.Source = unquote(strings.TrimPrefix(line, "msgid "))
			lastField = "msgid"

		case strings.HasPrefix(line, "msgstr["):
			var idx int
			if n, err := fmt.Sscanf(line, "msgstr[%d]", &idx); err != nil || n != 1 {
				return nil, fmt.Errorf("line %d: invalid msgstr index: %s", lineNum, line)
			}
			bracketEnd := strings.Index(line, "] ")
			if bracketEnd < 0 {
				return nil, fmt.Errorf("line %d: invalid msgstr format: %s", lineNum, line)
			}
			current.TargetPlural[idx] = unquote(line[bracketEnd+2:])
			lastField = fmt.Sprintf("msgstr[%d]", idx)

		case strings.HasPrefix(line, "msgstr "):
			current.Target = unquote(strings.TrimPrefix(line, "msgstr "))
			lastField = "msgstr"

		case strings.HasPrefix(line, `"`):
			val := unquote(line)
			switch {
			case lastField == "msgctxt":
				current.Context += val
			case lastField == "msgid":
				current.Source += val
			case lastField == "msgid_plural":
				current.SourcePlural += val
			case lastField == "msgstr":
				current.Target += val
			case strings.HasPrefix(lastField, "msgstr["):
				var idx int
				fmt.Sscanf(lastField, "msgstr[%d]", &idx)
				current.TargetPlural[idx] += val
			default:
				return nil, fmt.Errorf("line %d: string continuation without keyword", lineNum)
			}

		default:
			return nil, fmt.Errorf("line %d: unexpected line: %s", lineNum, line)
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PO file: %w", err)
	}

	return f, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Write writes the collection to w in PO format.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if f.Header != nil {
		writeUnit(bw, f.Header)
	}
	for i, u := range f.Units {
		if i > 0 || f.Header != nil {
			bw.WriteByte('\n')
		}
		writeUnit(bw, u)
	}

	return bw.Flush()
}

func writeUnit(w *bufio.Writer, u *Unit) {
	prefix := ""
	if u.Obsolete {
		prefix = "#~ "
	}

	for _, c := range u.TranslatorComments {
		writeComment(w, "#", c)
	}
	for _, c := range u.DeveloperNotes {
		writeComment(w, "#.", c)
	}
	if len(u.Locations) > 0 {
		fmt.Fprintf(w, "#: %s\n", strings.Join(u.Locations, " "))
	}
	if len(u.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(u.Flags, ", "))
	}
	if u.PreviousSource != "" {
		fmt.Fprintf(w, "#| msgid %s\n", quote(u.PreviousSource))
	}

	if u.Context != "" {
		writeQuotedField(w, prefix+"msgctxt", u.Context)
	}
	writeQuotedField(w, prefix+"msgid", u.Source)
	if u.SourcePlural != "" {
		writeQuotedField(w, prefix+"msgid_plural", u.SourcePlural)
	}

	if u.SourcePlural != "" && len(u.TargetPlural) > 0 {
		indices := make([]int, 0, len(u.TargetPlural))
		for idx := range u.TargetPlural {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		for _, idx := range indices {
			writeQuotedField(w, fmt.Sprintf("%smsgstr[%d]", prefix, idx), u.TargetPlural[idx])
		}
	} else {
		writeQuotedField(w, prefix+"msgstr", u.Target)
	}
}

// writeComment writes one comment per line of c; gettext comments cannot
// span lines.
func writeComment(w *bufio.Writer, marker, c string) {
	for _, line := range strings.Split(c, "\n") {
		if line == "" {
			fmt.Fprintf(w, "%s\n", marker)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", marker, line)
	}
}

// writeQuotedField writes a PO field with multiline quoting.
func writeQuotedField(w *bufio.Writer, field, value string) {
	if !strings.Contains(value, "\n") {
		fmt.Fprintf(w, "%s %s\n", field, quote(value))
		return
	}

	// Multiline: empty string on the keyword line
	fmt.Fprintf(w, "%s \"\"\n", field)
	parts := strings.Split(value, "\n")
	for i, part := range parts {
		if i < len(parts)-1 {
			fmt.Fprintf(w, "%s\n", quote(part+"\n"))
		} else if part != "" {
			fmt.Fprintf(w, "%s\n", quote(part))
		}
	}
}

// quote produces a PO-style quoted string.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return `"` + s + `"`
}

// unquote removes PO-style quoting from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		default:
			b.WriteByte(s[i])
			continue
		}
		i++
	}
	return b.String()
}
