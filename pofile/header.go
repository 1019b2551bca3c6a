package pofile

import (
	"fmt"
	"strings"
	"time"
)

// HeaderInfo describes the metadata written into a header unit.
type HeaderInfo struct {
	Package         string
	Version         string
	BugsAddress     string
	CopyrightHolder string
	// Language is the gettext language code; empty for templates.
	Language string
	// Generator names the producing tool in X-Generator.
	Generator string
	// Template selects POT wording and placeholder fields.
	Template bool
	// Now is the creation time. The zero value means time.Now().
	Now time.Time
}

// MakeHeader creates a standard PO/POT header unit.
func MakeHeader(info HeaderInfo) *Unit {
	now := info.Now
	if now.IsZero() {
		now = time.Now()
	}
	stamp := now.UTC().Format("2006-01-02 15:04+0000")

	pkg := info.Package
	if pkg == "" {
		pkg = "PACKAGE"
	}
	projectID := strings.TrimSpace(pkg + " " + info.Version)

	revision := stamp
	lastTranslator := ""
	team := ""
	if info.Template {
		revision = "YEAR-MO-DA HO:MI+ZONE"
		lastTranslator = "FULL NAME <EMAIL@ADDRESS>"
		team = "LANGUAGE <LL@li.org>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project-Id-Version: %s\n", projectID)
	fmt.Fprintf(&b, "Report-Msgid-Bugs-To: %s\n", info.BugsAddress)
	fmt.Fprintf(&b, "POT-Creation-Date: %s\n", stamp)
	fmt.Fprintf(&b, "PO-Revision-Date: %s\n", revision)
	fmt.Fprintf(&b, "Last-Translator: %s\n", lastTranslator)
	fmt.Fprintf(&b, "Language-Team: %s\n", team)
	fmt.Fprintf(&b, "Language: %s\n", info.Language)
	b.WriteString("MIME-Version: 1.0\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\n")
	if !info.Template && info.Language != "" {
		fmt.Fprintf(&b, "Plural-Forms: %s\n", PluralFormsForLang(info.Language))
	}
	if info.Generator != "" {
		fmt.Fprintf(&b, "X-Generator: %s\n", info.Generator)
	}

	title := fmt.Sprintf("Translations for %s.", pkg)
	if info.Template {
		title = fmt.Sprintf("Translations template for %s.", pkg)
	}
	holder := info.CopyrightHolder
	if holder == "" {
		holder = "THE PACKAGE'S COPYRIGHT HOLDER"
	}
	comments := []string{
		title,
		fmt.Sprintf("Copyright (C) %d %s", now.Year(), holder),
		fmt.Sprintf("This file is distributed under the same license as the %s package.", pkg),
	}

	u := &Unit{
		TranslatorComments: comments,
		Target:             b.String(),
	}
	if info.Template {
		u.Flags = []string{"fuzzy"}
	}
	return u
}

// PluralFormsForLang returns the standard Plural-Forms header for a language code.
func PluralFormsForLang(lang string) string {
	base := lang
	if idx := strings.IndexAny(lang, "_-"); idx > 0 {
		base = lang[:idx]
	}

	switch base {
	case "ja", "ko", "zh", "vi", "th", "id", "ms":
		return "nplurals=1; plural=0;"
	case "fr", "pt":
		return "nplurals=2; plural=(n > 1);"
	case "ru", "uk", "be", "hr", "sr", "bs":
		return "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"
	case "pl":
		return "nplurals=3; plural=(n==1 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"
	case "cs", "sk":
		return "nplurals=3; plural=(n==1 ? 0 : n>=2 && n<=4 ? 1 : 2);"
	case "ro":
		return "nplurals=3; plural=(n==1 ? 0 : (n==0 || (n%100 > 0 && n%100 < 20)) ? 1 : 2);"
	case "lt":
		return "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && (n%100<10 || n%100>=20) ? 1 : 2);"
	case "lv":
		return "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n != 0 ? 1 : 2);"
	case "ar":
		return "nplurals=6; plural=(n==0 ? 0 : n==1 ? 1 : n==2 ? 2 : n%100>=3 && n%100<=10 ? 3 : n%100>=11 ? 4 : 5);"
	default:
		return "nplurals=2; plural=(n != 1);"
	}
}
