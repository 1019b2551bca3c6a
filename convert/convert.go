// Package convert turns parsed L20n documents into gettext translation
// collections, optionally carrying targets forward from a prior PO file.
package convert

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/minios-linux/l20n2po/l20nfile"
	"github.com/minios-linux/l20n2po/merge"
	po "github.com/minios-linux/l20n2po/pofile"
)

// Options controls a conversion.
type Options struct {
	// POT produces a template: targets stay empty and any template input
	// is ignored.
	POT bool
	// Header is the metadata for the synthesized header unit. Its Template
	// field is derived from POT.
	Header po.HeaderInfo
	// Logger receives parse warnings. Nil discards them.
	Logger *zerolog.Logger
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return o.Logger.With().Str("sys", "convert").Logger()
}

// Result summarizes one conversion.
type Result struct {
	// Units is the number of content units written (header excluded).
	Units int
	// Carried counts units whose non-empty target came from the template.
	Carried int
	// Warnings are the lines skipped while parsing the source.
	Warnings []*l20nfile.Diagnostic
}

// Convert maps doc's entries to a translation collection. The first unit
// is always a freshly synthesized header, followed by one unit per entry in
// document order. When tmpl is non-nil and opts.POT is false, targets are
// copied from the template unit with the same first location.
func Convert(doc *l20nfile.File, tmpl *merge.Index, opts Options) *po.File {
	f, _ := convert(doc, tmpl, opts)
	return f
}

func convert(doc *l20nfile.File, tmpl *merge.Index, opts Options) (*po.File, int) {
	info := opts.Header
	info.Template = opts.POT
	if opts.POT {
		info.Language = ""
		tmpl = nil
	}

	f := po.NewFile()
	f.Header = po.MakeHeader(info)
	tmpl.CarryHeader(f)

	carried := 0
	for _, e := range doc.Entries {
		u := &po.Unit{
			Locations: []string{e.ID},
			Source:    e.Value.String(),
		}
		if len(e.Comments) > 0 {
			u.DeveloperNotes = append([]string(nil), e.Comments...)
		}
		if tmpl.Apply(u) {
			carried++
		}
		f.Units = append(f.Units, u)
	}
	return f, carried
}

// ConvertL20n reads an L20n document from in, converts it and writes the PO
// result to out. tmpl, when non-nil, is a prior PO file whose targets are
// carried forward. Output is assembled in memory first: on any error
// nothing is written to out.
func ConvertL20n(in io.Reader, out io.Writer, tmpl io.Reader, opts Options) (Result, error) {
	log := opts.logger()

	doc, err := l20nfile.Parse(in)
	if err != nil {
		return Result{}, err
	}

	var idx *merge.Index
	if tmpl != nil && !opts.POT {
		prior, err := po.Parse(tmpl)
		if err != nil {
			return Result{}, fmt.Errorf("reading template: %w", err)
		}
		idx = merge.NewIndex(prior)
		log.Debug().Int("units", idx.Len()).Msg("template indexed")
	}

	for _, w := range doc.Warnings {
		log.Warn().Int("line", w.Line).Str("text", w.Text).Msg(w.Err.Error())
	}

	f, carried := convert(doc, idx, opts)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return Result{}, fmt.Errorf("encoding PO: %w", err)
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return Result{}, fmt.Errorf("writing output: %w", err)
	}

	total, translated, _, untranslated := f.Stats()
	log.Debug().
		Int("total", total).
		Int("translated", translated).
		Int("untranslated", untranslated).
		Msg("converted")

	return Result{Units: f.ContentCount(), Carried: carried, Warnings: doc.Warnings}, nil
}

// ConvertFile converts the file at inPath to outPath. tmplPath may be
// empty. The output is written to a temporary file next to outPath and
// renamed into place, so a failed conversion leaves no partial file.
func ConvertFile(inPath, outPath, tmplPath string, opts Options) (Result, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return Result{}, fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	var tmpl io.Reader
	if tmplPath != "" && !opts.POT {
		t, err := os.Open(tmplPath)
		if err != nil {
			return Result{}, fmt.Errorf("opening template: %w", err)
		}
		defer t.Close()
		tmpl = t
	}

	if opts.Logger != nil {
		l := opts.Logger.With().Str("file", inPath).Logger()
		opts.Logger = &l
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Result{}, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outPath)+".*")
	if err != nil {
		return Result{}, fmt.Errorf("creating output: %w", err)
	}
	defer os.Remove(tmp.Name())

	res, err := ConvertL20n(in, tmp, tmpl, opts)
	if err != nil {
		tmp.Close()
		return Result{}, fmt.Errorf("%s: %w", inPath, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return Result{}, fmt.Errorf("writing %s: %w", outPath, err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", outPath, err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", outPath, err)
	}
	return res, nil
}
