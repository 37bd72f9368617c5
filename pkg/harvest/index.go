// Package harvest finds known conjugated verb forms in real-world text
// and records the sightings as study material.
package harvest

import (
	"strings"
	"unicode"

	"github.com/levavakian/flashidioma-sub001/pkg/conjugation"
)

// InfinitiveTenseID is the pseudo tense id used when the sighted form is
// the infinitive itself rather than a conjugated form.
const InfinitiveTenseID = "infinitive"

// FormRef points one surface form back at its place in the conjugation
// store.
type FormRef struct {
	Infinitive  string
	Language    string
	TenseID     string
	PersonIndex int // -1 for the infinitive itself
}

// Match is one recognized occurrence of a form in a sentence.
type Match struct {
	Surface string
	Refs    []FormRef
}

// FormIndex is a reverse index from surface forms to store entries.
// Keys are lowercased: the store's lookup contract stays exact-match,
// but text scanning folds case so sentence-initial capitals still hit.
type FormIndex struct {
	language string
	refs     map[string][]FormRef
	maxWords int
}

// NewFormIndex builds the reverse index over every form of every verb in
// one of the store's languages. Compound forms index under their full
// multi-word string.
func NewFormIndex(store *conjugation.Store, language string) *FormIndex {
	ix := &FormIndex{
		language: language,
		refs:     make(map[string][]FormRef),
		maxWords: 1,
	}
	for _, inf := range store.Infinitives(language) {
		rec, ok := store.LookupIn(language, inf)
		if !ok {
			continue
		}
		ix.add(strings.ToLower(inf), FormRef{
			Infinitive:  inf,
			Language:    language,
			TenseID:     InfinitiveTenseID,
			PersonIndex: -1,
		})
		for _, tense := range rec.Tenses {
			for i, c := range tense.Conjugations {
				ix.add(strings.ToLower(c.Form), FormRef{
					Infinitive:  inf,
					Language:    language,
					TenseID:     tense.TenseID,
					PersonIndex: i,
				})
			}
		}
	}
	return ix
}

func (ix *FormIndex) add(key string, ref FormRef) {
	ix.refs[key] = append(ix.refs[key], ref)
	if n := len(strings.Fields(key)); n > ix.maxWords {
		ix.maxWords = n
	}
}

// Language returns the language this index was built for.
func (ix *FormIndex) Language() string { return ix.language }

// Lookup returns the store entries a lowercased surface form maps to,
// or nil when the form is unknown.
func (ix *FormIndex) Lookup(form string) []FormRef {
	return ix.refs[strings.ToLower(form)]
}

// Scan tokenizes a sentence and returns the recognized forms in order of
// appearance. Longer n-grams win over shorter ones so a compound form
// like "he hablado" matches as one unit instead of leaking a bare
// auxiliary match.
func (ix *FormIndex) Scan(sentence string) []Match {
	words := tokenize(sentence)
	var out []Match
	for i := 0; i < len(words); {
		matched := false
		max := ix.maxWords
		if rem := len(words) - i; rem < max {
			max = rem
		}
		for n := max; n >= 1; n-- {
			candidate := strings.Join(words[i:i+n], " ")
			if refs := ix.refs[candidate]; len(refs) > 0 {
				out = append(out, Match{Surface: candidate, Refs: refs})
				i += n
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	return out
}

// tokenize lowercases and splits on anything that is not a letter, so
// Spanish punctuation (¿ ¡ « ») never sticks to a form.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
