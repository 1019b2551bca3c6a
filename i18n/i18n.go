// Package i18n translates the messages of the l20n2po command itself.
//
// Catalogs are embedded under locales/<lang>/LC_MESSAGES/l20n2po.po and
// loaded with gotext. The user's locale is matched against the embedded
// catalogs, so "pt-BR" or "ru_RU.UTF-8" find "pt_BR" or "ru".
//
// Usage:
//
//	i18n.Init("") // auto-detect from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	fmt.Println(i18n.T("Convert Fluent/L20n files to gettext PO"))
//	fmt.Println(i18n.N("%d warning", "%d warnings", n))
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

// domain is the gettext domain of the command.
const domain = "l20n2po"

// po is the active catalog; nil means untranslated passthrough.
var po *gotext.Locale

// Init loads the catalog best matching lang and returns its name, or ""
// when messages stay untranslated. An empty lang is detected from the
// environment following GNU gettext priority.
func Init(lang string) string {
	po = nil
	if lang == "" {
		lang = detectLanguage()
	}

	name := match(lang, Available())
	if name == "" {
		return ""
	}
	l := gotext.NewLocaleFSWithPath(name, locales, "locales")
	l.AddDomain(domain)
	l.SetDomain(domain)
	po = l
	return name
}

// Available lists the embedded catalog names, sorted.
func Available() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// match picks the catalog for lang among names using BCP 47 matching.
func match(lang string, names []string) string {
	if len(names) == 0 {
		return ""
	}
	want, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return ""
	}

	// Index 0 is the untranslated fallback.
	tags := []language.Tag{language.English}
	for _, n := range names {
		t, err := language.Parse(strings.ReplaceAll(n, "_", "-"))
		if err != nil {
			t = language.Und
		}
		tags = append(tags, t)
	}

	_, idx, conf := language.NewMatcher(tags).Match(want)
	if idx == 0 || conf == language.No {
		return ""
	}
	return names[idx-1]
}

// T translates msgid, or returns it unchanged without a catalog.
func T(msgid string, vars ...any) string {
	if po == nil {
		if len(vars) > 0 {
			return fmt.Sprintf(msgid, vars...)
		}
		return msgid
	}
	return po.Get(msgid, vars...)
}

// N translates a message with plural forms.
func N(singular, plural string, n int, vars ...any) string {
	if po == nil {
		msg := plural
		if n == 1 {
			msg = singular
		}
		if len(vars) > 0 {
			return fmt.Sprintf(msg, vars...)
		}
		return msg
	}
	return po.GetN(singular, plural, n, vars...)
}

// detectLanguage reads the locale environment variables in GNU gettext
// order: LANGUAGE, LC_ALL, LC_MESSAGES, LANG.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE is a colon-separated list; take the first.
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// "ru_RU.UTF-8" -> "ru_RU", "sr_RS@latin" -> "sr_RS"
		if idx := strings.IndexAny(val, ".@"); idx >= 0 {
			val = val[:idx]
		}
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
