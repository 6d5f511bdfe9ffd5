package speech

import (
	"strings"
	"sync"
)

// localeFor maps a segment language to the locale preferred for exact-match
// fallback searches.
func localeFor(lang Language) string {
	switch lang {
	case LangHindi:
		return "hi-IN"
	default:
		return "en-US"
	}
}

// Catalog is the voice selection table: (language, gender) to voice id,
// rebuilt wholesale on every voice-list delivery from the synthesizer.
type Catalog struct {
	mu     sync.RWMutex
	slots  map[Language]map[Gender]Voice
	firsts map[Language]Voice
	all    []Voice
}

func NewCatalog() *Catalog {
	return &Catalog{
		slots:  make(map[Language]map[Gender]Voice),
		firsts: make(map[Language]Voice),
	}
}

// Rebuild replaces the whole table. The synthesizer may deliver the list
// several times; stale entries must not survive, so this never appends.
func (c *Catalog) Rebuild(voices []Voice) {
	slots := make(map[Language]map[Gender]Voice)
	firsts := make(map[Language]Voice)

	for _, v := range voices {
		lang := languageOf(v.Locale)
		if lang == "" {
			continue
		}
		if _, ok := firsts[lang]; !ok {
			firsts[lang] = v
		}
		if v.Gender != GenderMale && v.Gender != GenderFemale {
			continue
		}
		if slots[lang] == nil {
			slots[lang] = make(map[Gender]Voice)
		}
		if _, ok := slots[lang][v.Gender]; !ok {
			slots[lang][v.Gender] = v
		}
	}

	// A language with voices but no gendered match serves the first
	// available voice for both genders.
	for lang, first := range firsts {
		if slots[lang] == nil {
			slots[lang] = map[Gender]Voice{GenderMale: first, GenderFemale: first}
			continue
		}
		for _, g := range []Gender{GenderMale, GenderFemale} {
			if _, ok := slots[lang][g]; !ok {
				slots[lang][g] = first
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = slots
	c.firsts = firsts
	c.all = append([]Voice(nil), voices...)
}

// Resolve picks a voice id for a segment. Hindi prefers the female slot, then
// male, then the language's first voice. English honors an explicit female
// hint; anything else takes the male slot. When the table has nothing for the
// language, the full list is searched for an exact locale match, then a
// language-prefix match. Empty result means "use the engine default".
func (c *Catalog) Resolve(lang Language, gender Gender) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if lang == LangHindi {
		if v, ok := c.slots[lang][GenderFemale]; ok {
			return v.ID
		}
		if v, ok := c.slots[lang][GenderMale]; ok {
			return v.ID
		}
		if v, ok := c.firsts[lang]; ok {
			return v.ID
		}
		return c.searchLocked(lang)
	}

	slot := GenderMale
	if gender == GenderFemale {
		slot = GenderFemale
	}
	if v, ok := c.slots[lang][slot]; ok {
		return v.ID
	}
	return c.searchLocked(lang)
}

func (c *Catalog) searchLocked(lang Language) string {
	want := localeFor(lang)
	for _, v := range c.all {
		if strings.EqualFold(v.Locale, want) {
			return v.ID
		}
	}
	prefix := string(lang)
	for _, v := range c.all {
		if languageOf(v.Locale) == Language(prefix) {
			return v.ID
		}
	}
	return ""
}

func languageOf(locale string) Language {
	locale = strings.ToLower(strings.TrimSpace(locale))
	switch {
	case locale == "hi" || strings.HasPrefix(locale, "hi-") || strings.HasPrefix(locale, "hi_"):
		return LangHindi
	case locale == "en" || strings.HasPrefix(locale, "en-") || strings.HasPrefix(locale, "en_"):
		return LangEnglish
	default:
		return ""
	}
}
