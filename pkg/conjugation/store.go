package conjugation

import (
	"fmt"
	"sort"
)

// Store is the immutable conjugation dataset, keyed by language and
// infinitive. It is built once at startup and never mutated afterwards,
// so all lookup methods are safe for concurrent use. Returned records
// share the Store's backing slices; callers must treat them as read-only.
type Store struct {
	primary      string
	languages    []string
	verbs        map[string]map[string]VerbData // language -> infinitive -> record
	translations map[string]map[string]string
	tenseCount   map[string]int
}

// NewStore builds a Store from a dataset and enforces the data model
// invariants: unique tense ids, every verb covering the full tense table,
// and every tense carrying exactly one form per canonical person. A
// malformed dataset is a construction error, never a lookup failure.
// The first language in the dataset becomes the primary language.
func NewStore(ds *Dataset) (*Store, error) {
	if ds == nil || len(ds.Languages) == 0 {
		return nil, fmt.Errorf("dataset has no languages")
	}

	s := &Store{
		verbs:        make(map[string]map[string]VerbData),
		translations: make(map[string]map[string]string),
		tenseCount:   make(map[string]int),
	}

	for _, lang := range ds.Languages {
		if lang.Language == "" {
			return nil, fmt.Errorf("language set with empty language tag")
		}
		if _, dup := s.verbs[lang.Language]; dup {
			return nil, fmt.Errorf("duplicate language %q", lang.Language)
		}
		if len(lang.Tenses) == 0 {
			return nil, fmt.Errorf("language %q declares no tenses", lang.Language)
		}
		if len(lang.Persons) == 0 {
			return nil, fmt.Errorf("language %q declares no persons", lang.Language)
		}

		seenTense := make(map[string]bool, len(lang.Tenses))
		for _, t := range lang.Tenses {
			if t.ID == "" {
				return nil, fmt.Errorf("language %q has a tense with empty id", lang.Language)
			}
			if seenTense[t.ID] {
				return nil, fmt.Errorf("language %q has duplicate tense id %q", lang.Language, t.ID)
			}
			seenTense[t.ID] = true
		}

		byInf := make(map[string]VerbData, len(lang.Verbs))
		byTr := make(map[string]string, len(lang.Verbs))
		for _, v := range lang.Verbs {
			if v.Infinitive == "" {
				return nil, fmt.Errorf("language %q has a verb with empty infinitive", lang.Language)
			}
			if _, dup := byInf[v.Infinitive]; dup {
				return nil, fmt.Errorf("language %q has duplicate verb %q", lang.Language, v.Infinitive)
			}
			rec, err := buildVerb(lang, v)
			if err != nil {
				return nil, err
			}
			byInf[v.Infinitive] = rec
			byTr[v.Infinitive] = v.Translation
		}

		if s.primary == "" {
			s.primary = lang.Language
		}
		s.languages = append(s.languages, lang.Language)
		s.verbs[lang.Language] = byInf
		s.translations[lang.Language] = byTr
		s.tenseCount[lang.Language] = len(lang.Tenses)
	}

	return s, nil
}

// buildVerb merges the language tense table with one verb's raw forms
// into an ordered VerbData record.
func buildVerb(lang LanguageSet, v VerbEntry) (VerbData, error) {
	rec := VerbData{
		Infinitive: v.Infinitive,
		Language:   lang.Language,
		Tenses:     make([]TenseData, 0, len(lang.Tenses)),
	}

	for _, t := range lang.Tenses {
		conj, ok := v.Forms[t.ID]
		if !ok {
			return VerbData{}, fmt.Errorf("verb %q (%s) is missing tense %q", v.Infinitive, lang.Language, t.ID)
		}
		if len(conj) != len(lang.Persons) {
			return VerbData{}, fmt.Errorf("verb %q (%s) tense %q has %d conjugations, want %d",
				v.Infinitive, lang.Language, t.ID, len(conj), len(lang.Persons))
		}
		for i, c := range conj {
			if c.Person != lang.Persons[i] {
				return VerbData{}, fmt.Errorf("verb %q (%s) tense %q conjugation %d has person %q, want %q",
					v.Infinitive, lang.Language, t.ID, i, c.Person, lang.Persons[i])
			}
			if c.Form == "" {
				return VerbData{}, fmt.Errorf("verb %q (%s) tense %q has an empty form for %q",
					v.Infinitive, lang.Language, t.ID, c.Person)
			}
		}
		rec.Tenses = append(rec.Tenses, TenseData{
			TenseID:      t.ID,
			TenseName:    t.Name,
			Description:  t.Description,
			Conjugations: conj,
		})
	}

	for id := range v.Forms {
		found := false
		for _, t := range lang.Tenses {
			if t.ID == id {
				found = true
				break
			}
		}
		if !found {
			return VerbData{}, fmt.Errorf("verb %q (%s) has forms for unknown tense %q", v.Infinitive, lang.Language, id)
		}
	}

	return rec, nil
}

// PrimaryLanguage returns the Store's default language.
func (s *Store) PrimaryLanguage() string { return s.primary }

// Languages returns the supported languages in dataset order.
func (s *Store) Languages() []string {
	out := make([]string, len(s.languages))
	copy(out, s.languages)
	return out
}

// TenseCount returns the fixed per-verb tense count for a language, or 0
// if the language is unsupported.
func (s *Store) TenseCount(language string) int { return s.tenseCount[language] }

// Lookup retrieves the full conjugation record for an infinitive in the
// primary language. The second return value is false when the verb is
// unknown; an unknown verb is a routine outcome, not an error.
func (s *Store) Lookup(infinitive string) (VerbData, bool) {
	return s.LookupIn(s.primary, infinitive)
}

// LookupIn is Lookup for an explicit language. An unsupported language
// folds into not-found. Matching is exact: no case folding or diacritic
// normalization is applied to the key.
func (s *Store) LookupIn(language, infinitive string) (VerbData, bool) {
	byInf, ok := s.verbs[language]
	if !ok {
		return VerbData{}, false
	}
	rec, ok := byInf[infinitive]
	return rec, ok
}

// Has reports whether a Lookup for the infinitive would succeed.
func (s *Store) Has(infinitive string) bool {
	_, ok := s.Lookup(infinitive)
	return ok
}

// HasIn reports whether a LookupIn for the language and infinitive would
// succeed.
func (s *Store) HasIn(language, infinitive string) bool {
	_, ok := s.LookupIn(language, infinitive)
	return ok
}

// VerbTranslation returns the short infinitive gloss for a verb, or ""
// when the verb is unknown or carries no translation.
func (s *Store) VerbTranslation(language, infinitive string) string {
	return s.translations[language][infinitive]
}

// Infinitives returns the sorted infinitives available for a language.
func (s *Store) Infinitives(language string) []string {
	byInf := s.verbs[language]
	out := make([]string, 0, len(byInf))
	for inf := range byInf {
		out = append(out, inf)
	}
	sort.Strings(out)
	return out
}
