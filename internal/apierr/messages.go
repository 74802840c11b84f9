package apierr

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when a requested locale matches no catalog.
const DefaultLocale = "ja"

//go:embed messages/*.yaml
var catalogFS embed.FS

type catalog struct {
	Locale   string          `yaml:"locale"`
	Fallback string          `yaml:"fallback"`
	Codes    map[Code]string `yaml:"codes"`
}

var (
	catalogs []catalog
	matcher  language.Matcher
)

func init() {
	var err error
	catalogs, err = loadCatalogs(catalogFS)
	if err != nil {
		panic(err)
	}
	tags := make([]language.Tag, len(catalogs))
	for i, c := range catalogs {
		tags[i] = language.Make(c.Locale)
	}
	matcher = language.NewMatcher(tags)
}

// loadCatalogs reads every messages/*.yaml file. The DefaultLocale catalog is
// placed first so the matcher falls back to it, and every catalog must cover
// the whole taxonomy.
func loadCatalogs(fsys fs.FS) ([]catalog, error) {
	entries, err := fs.ReadDir(fsys, "messages")
	if err != nil {
		return nil, err
	}
	var out []catalog
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		b, err := fs.ReadFile(fsys, path.Join("messages", e.Name()))
		if err != nil {
			return nil, err
		}
		var c catalog
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		for _, code := range Codes {
			if c.Codes[code] == "" {
				return nil, fmt.Errorf("catalog %s: missing message for %s", c.Locale, code)
			}
		}
		if c.Locale == DefaultLocale {
			out = append([]catalog{c}, out...)
		} else {
			out = append(out, c)
		}
	}
	if len(out) == 0 || out[0].Locale != DefaultLocale {
		return nil, fmt.Errorf("default catalog %q not found", DefaultLocale)
	}
	return out, nil
}

func catalogFor(locale string) catalog {
	_, idx := language.MatchStrings(matcher, locale)
	return catalogs[idx]
}

// Locales returns the locales with a message catalog.
func Locales() []string {
	out := make([]string, len(catalogs))
	for i, c := range catalogs {
		out[i] = c.Locale
	}
	return out
}

// UserMessage returns the user-facing sentence for err in the requested
// locale. Known kinds map to a fixed catalog string; otherwise the error's own
// message is used, and the catalog fallback when that is empty too.
func UserMessage(err error, locale string) string {
	c := catalogFor(locale)
	if err == nil {
		return c.Fallback
	}
	if e, ok := As(err); ok {
		if msg, ok := c.Codes[e.Code]; ok {
			return msg
		}
		return orDefault(e.Message, c.Fallback)
	}
	return orDefault(err.Error(), c.Fallback)
}
