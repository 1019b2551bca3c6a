// Package merge carries existing translations forward when a translation
// collection is regenerated from an updated source document.
package merge

import (
	po "github.com/minios-linux/l20n2po/pofile"
)

// Index looks up units of a prior translation collection by their first
// location. A nil *Index is valid and finds nothing.
type Index struct {
	header *po.Unit
	byLoc  map[string]*po.Unit
}

// NewIndex builds the lookup once over prior. The header, obsolete units
// and units without locations are skipped; when several units share a
// first location the earliest one wins.
func NewIndex(prior *po.File) *Index {
	idx := &Index{byLoc: make(map[string]*po.Unit)}
	if prior == nil {
		return idx
	}
	idx.header = prior.Header
	for _, u := range prior.Units {
		if u.Obsolete || len(u.Locations) == 0 {
			continue
		}
		if _, ok := idx.byLoc[u.Locations[0]]; ok {
			continue
		}
		idx.byLoc[u.Locations[0]] = u
	}
	return idx
}

// Lookup returns the prior unit for location id.
func (idx *Index) Lookup(id string) (*po.Unit, bool) {
	if idx == nil {
		return nil, false
	}
	u, ok := idx.byLoc[id]
	return u, ok
}

// Len returns the number of indexed units.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byLoc)
}

// Header returns the prior collection's header unit, or nil.
func (idx *Index) Header() *po.Unit {
	if idx == nil {
		return nil
	}
	return idx.header
}

// translatorFields are the header fields owned by translators rather than
// by the generator.
var translatorFields = []string{
	"PO-Revision-Date",
	"Last-Translator",
	"Language-Team",
	"Language",
	"Plural-Forms",
}

// CarryHeader copies the translator-owned header fields of the indexed
// collection into f's header. Fields that are empty in the prior header
// are left untouched.
func (idx *Index) CarryHeader(f *po.File) {
	prior := idx.Header()
	if prior == nil {
		return
	}
	old := &po.File{Header: prior}
	for _, name := range translatorFields {
		if v := old.HeaderField(name); v != "" {
			f.SetHeaderField(name, v)
		}
	}
	if len(prior.TranslatorComments) > 0 {
		f.Header.TranslatorComments = append([]string(nil), prior.TranslatorComments...)
	}
}

// Apply copies the prior target of the unit at u.Locations[0] into u.
// Source and notes of u are never touched. It reports whether a target was
// carried.
func (idx *Index) Apply(u *po.Unit) bool {
	if len(u.Locations) == 0 {
		return false
	}
	prior, ok := idx.Lookup(u.Locations[0])
	if !ok {
		return false
	}
	u.Target = prior.Target
	return prior.Target != ""
}
