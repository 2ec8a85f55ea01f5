// Package i18n provides the message catalogs and locale selection.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Fallback is used for keys missing from the selected catalog.
var Fallback = language.English

// Bundle holds every catalog.
type Bundle struct {
	tags     []language.Tag
	catalogs map[language.Tag]map[string]string
	matcher  language.Matcher
}

// Load parses the embedded catalogs.
func Load() (*Bundle, error) {
	return LoadFS(localeFS, "locales")
}

// LoadFS parses every <tag>.yaml file in dir.
func LoadFS(fsys fs.FS, dir string) (*Bundle, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	b := &Bundle{catalogs: make(map[language.Tag]map[string]string)}
	for _, file := range files {
		tag, err := language.Parse(strings.TrimSuffix(path.Base(file), ".yaml"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, err
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		msgs := make(map[string]string)
		flatten("", raw, msgs)
		b.catalogs[tag] = msgs
		b.tags = append(b.tags, tag)
	}
	if _, ok := b.catalogs[Fallback]; !ok {
		return nil, fmt.Errorf("no %s catalog in %s", Fallback, dir)
	}

	// The fallback goes first so the matcher picks it when nothing fits.
	sort.SliceStable(b.tags, func(i, j int) bool { return b.tags[i] == Fallback })
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// flatten turns nested maps into dotted keys.
func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := v.(type) {
		case map[string]any:
			flatten(key, v, out)
		case string:
			out[key] = v
		default:
			out[key] = fmt.Sprint(v)
		}
	}
}

// Supported lists the available languages, fallback first.
func (b *Bundle) Supported() []language.Tag {
	return append([]language.Tag(nil), b.tags...)
}

// Match returns the supported language closest to the first usable
// preference. Preferences that are empty or match nothing are skipped.
func (b *Bundle) Match(prefs ...string) language.Tag {
	for _, p := range prefs {
		if p == "" {
			continue
		}
		tag, err := language.Parse(p)
		if err != nil {
			continue
		}
		_, idx, conf := b.matcher.Match(tag)
		if conf != language.No {
			return b.tags[idx]
		}
	}
	return Fallback
}

// Localizer returns a translator for tag, which should come from Match.
func (b *Bundle) Localizer(tag language.Tag) *Localizer {
	msgs, ok := b.catalogs[tag]
	if !ok {
		tag = Fallback
		msgs = b.catalogs[Fallback]
	}
	return &Localizer{tag: tag, msgs: msgs, fallback: b.catalogs[Fallback]}
}

// Localizer translates keys into one language.
type Localizer struct {
	tag      language.Tag
	msgs     map[string]string
	fallback map[string]string
}

func (l *Localizer) Tag() language.Tag { return l.tag }

// T returns the message for key with {{name}} placeholders filled from the
// name/value pairs in kv. Missing keys fall back to English and then to the
// key itself. A nil Localizer returns keys untranslated.
func (l *Localizer) T(key string, kv ...string) string {
	msg := key
	if l != nil {
		if m, ok := l.msgs[key]; ok {
			msg = m
		} else if m, ok := l.fallback[key]; ok {
			msg = m
		}
	}
	for i := 0; i+1 < len(kv); i += 2 {
		msg = strings.ReplaceAll(msg, "{{"+kv[i]+"}}", kv[i+1])
	}
	return msg
}

// Has reports whether key exists in the selected or fallback catalog.
func (l *Localizer) Has(key string) bool {
	if l == nil {
		return false
	}
	_, ok := l.msgs[key]
	if !ok {
		_, ok = l.fallback[key]
	}
	return ok
}

// EnvLocale returns the POSIX locale from LC_ALL, LC_MESSAGES or LANG as a
// BCP 47 string, or "" when none is set.
func EnvLocale(lookup func(string) (string, bool)) string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v, ok := lookup(key)
		if !ok || v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}
