package l20nfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// flat is a comparable view of an entry.
type flat struct {
	ID       string
	Value    string
	Comments []string
}

func flatten(f *File) []flat {
	out := make([]flat, 0, len(f.Entries))
	for _, e := range f.Entries {
		out = append(out, flat{ID: e.ID, Value: e.Value.String(), Comments: e.Comments})
	}
	return out
}

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return f
}

func TestParseEntries(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []flat
	}{
		{
			name: "simple entry",
			src:  "l20n-string-id = Hello, L20n!\n",
			want: []flat{{ID: "l20n-string-id", Value: "Hello, L20n!"}},
		},
		{
			name: "tabs around equals",
			src:  "property\t=\tvalue",
			want: []flat{{ID: "property", Value: "value"}},
		},
		{
			name: "literal backslash n passes through",
			src:  "# Comment\nl20n-string-id = Hello, L20n!\\n",
			want: []flat{{ID: "l20n-string-id", Value: `Hello, L20n!\n`, Comments: []string{"Comment"}}},
		},
		{
			name: "multiline value",
			src: "description =\n" +
				"  | Loki is a simple micro-blogging\n" +
				"  | app written entirely in <i>HTML5</i>.\n" +
				"  | It uses L20n to implement localization.",
			want: []flat{{
				ID: "description",
				Value: "Loki is a simple micro-blogging\n" +
					"app written entirely in <i>HTML5</i>.\n" +
					"It uses L20n to implement localization.",
			}},
		},
		{
			name: "multiple comments",
			src:  "# Comment\n# Comment 2\nl20n-string-id = Hello, L20n!\n",
			want: []flat{{ID: "l20n-string-id", Value: "Hello, L20n!", Comments: []string{"Comment", "Comment 2"}}},
		},
		{
			name: "comments do not carry past an entry",
			src:  "# first\na = 1\nb = 2\n",
			want: []flat{
				{ID: "a", Value: "1", Comments: []string{"first"}},
				{ID: "b", Value: "2"},
			},
		},
		{
			name: "blank line resets comments",
			src:  "# file header\n\na = 1\n",
			want: []flat{{ID: "a", Value: "1"}},
		},
		{
			name: "comment ends multiline value and attaches to next entry",
			src:  "a =\n  | one\n  | two\n# about b\nb = 2\n",
			want: []flat{
				{ID: "a", Value: "one\ntwo"},
				{ID: "b", Value: "2", Comments: []string{"about b"}},
			},
		},
		{
			name: "entry header ends multiline value",
			src:  "a =\n  | one\nb = 2\n",
			want: []flat{
				{ID: "a", Value: "one"},
				{ID: "b", Value: "2"},
			},
		},
		{
			name: "blank line ends multiline value",
			src:  "a =\n  | one\n\n  | stray\nb = 2\n",
			want: []flat{
				{ID: "a", Value: "one"},
				{ID: "b", Value: "2"},
			},
		},
		{
			name: "multiline keeps comments snapshot",
			src:  "# about a\na =\n  | x\n",
			want: []flat{{ID: "a", Value: "x", Comments: []string{"about a"}}},
		},
		{
			name: "empty document",
			src:  "",
			want: []flat{},
		},
		{
			name: "comments only",
			src:  "# nothing here\n",
			want: []flat{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := flatten(mustParse(t, tc.src))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePluralBlockVerbatim(t *testing.T) {
	src := `new-notifications = { PLURAL($num) ->
  [0] No new notifications.
  [1] One new notification.
  [2] Two new notifications.
 *[other] { $num } new notifications.
}
`
	f := mustParse(t, src)
	if len(f.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(f.Entries))
	}
	want := `{ PLURAL($num) ->
  [0] No new notifications.
  [1] One new notification.
  [2] Two new notifications.
 *[other] { $num } new notifications.
}`
	e := f.Entries[0]
	if e.ID != "new-notifications" {
		t.Fatalf("ID = %q", e.ID)
	}
	if got := e.Value.String(); got != want {
		t.Fatalf("Value =\n%s\nwant\n%s", got, want)
	}
	if !e.Value.IsMultiLine() {
		t.Fatal("plural value should be multi-line")
	}
	if len(f.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", f.Warnings)
	}
}

func TestParseBalancedBracesStaySingleLine(t *testing.T) {
	f := mustParse(t, "greeting = Hello { $name }\n")
	if len(f.Entries) != 1 || f.Entries[0].Value.IsMultiLine() {
		t.Fatalf("entries = %+v, want one single-line value", f.Entries)
	}
}

func TestParseBracesInStringLiterals(t *testing.T) {
	f := mustParse(t, "brace = Opening brace: {\"{\"}\nstray line\nquote = { \"\\\"{\" }\n")

	want := []flat{
		{ID: "brace", Value: `Opening brace: {"{"}`},
		{ID: "quote", Value: `{ "\"{" }`},
	}
	if diff := cmp.Diff(want, flatten(f)); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if len(f.Warnings) != 1 || !errors.Is(f.Warnings[0], ErrMalformedEntryLine) || f.Warnings[0].Line != 2 {
		t.Fatalf("warnings = %v, want malformed line 2", f.Warnings)
	}
}

func TestOpensBlock(t *testing.T) {
	cases := map[string]bool{
		"Hello":                   false,
		"Hello { $name }":         false,
		"{ PLURAL($num) ->":       true,
		"{ PLURAL($num) ->  ":     true,
		`Opening brace: {"{"}`:    false,
		`Closing brace: {"}"}`:    false,
		`{ "}" ->`:                true,
		`"{" outside a placeable`: true,
		`{ "a\"}" }`:              false,
	}
	for in, want := range cases {
		if got := opensBlock(in); got != want {
			t.Errorf("opensBlock(%q) = %v, want %v", in, got, want)
		}
	}
}

// Lines without "|" inside an open value are accepted as verbatim
// continuation, even when their indentation looks accidental.
func TestParseAmbiguousOtherLineIsContinuation(t *testing.T) {
	f := mustParse(t, "a =\n  | first\nsecond without marker\n")
	if len(f.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(f.Entries))
	}
	if got := f.Entries[0].Value.String(); got != "first\nsecond without marker" {
		t.Fatalf("Value = %q", got)
	}
	if len(f.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", f.Warnings)
	}
}

func TestParseWarningsAreNonFatal(t *testing.T) {
	src := "| orphan\nnot an entry\na = 1\n"
	f := mustParse(t, src)

	if len(f.Entries) != 1 || f.Entries[0].ID != "a" {
		t.Fatalf("entries = %+v, want only a", f.Entries)
	}
	if len(f.Warnings) != 2 {
		t.Fatalf("warnings = %d, want 2", len(f.Warnings))
	}
	if !errors.Is(f.Warnings[0], ErrOrphanContinuation) || f.Warnings[0].Line != 1 {
		t.Fatalf("warnings[0] = %v, want orphan continuation on line 1", f.Warnings[0])
	}
	if !errors.Is(f.Warnings[1], ErrMalformedEntryLine) || f.Warnings[1].Line != 2 {
		t.Fatalf("warnings[1] = %v, want malformed line on line 2", f.Warnings[1])
	}
	if !strings.Contains(f.Warnings[1].Error(), "not an entry") {
		t.Fatalf("Error() = %q, want offending text", f.Warnings[1].Error())
	}
}

func TestParseEntryLineNumbers(t *testing.T) {
	f := mustParse(t, "# c\na = 1\n\nb =\n  | x\n")
	if f.Entries[0].Line != 2 || f.Entries[1].Line != 4 {
		t.Fatalf("lines = %d, %d, want 2, 4", f.Entries[0].Line, f.Entries[1].Line)
	}
}

func TestParseIndependentState(t *testing.T) {
	// A dangling comment at the end of one document must not reach the next.
	first := mustParse(t, "a = 1\n# dangling\n")
	second := mustParse(t, "b = 2\n")
	if len(first.Entries) != 1 || len(second.Entries[0].Comments) != 0 {
		t.Fatalf("comment leaked between parses: %+v", second.Entries[0])
	}
}

func TestValueVariants(t *testing.T) {
	if v := SingleLine("x"); v.IsMultiLine() || v.String() != "x" {
		t.Fatalf("SingleLine = %+v", v)
	}
	lines := []string{"a", "b"}
	v := MultiLine(lines...)
	lines[0] = "changed"
	if !v.IsMultiLine() || v.String() != "a\nb" {
		t.Fatalf("MultiLine = %+v", v)
	}
	if got := v.Lines(); len(got) != 2 || got[0] != "a" {
		t.Fatalf("Lines() = %v", got)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.ftl")
	if err := os.WriteFile(path, []byte("hello = Hello\n"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	if len(f.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(f.Entries))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.ftl")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("ParseFile(missing) error = %v, want ErrNotExist", err)
	}
}
