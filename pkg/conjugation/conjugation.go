// Package conjugation holds the verb conjugation store, the lookup
// service over it, and the construct filter used to narrow which tenses
// are surfaced to a learner.
package conjugation

// ConjugationForm is one grammatical person's conjugated form within a tense.
type ConjugationForm struct {
	Person string `json:"person"`
	// Form is the conjugated surface form. For compound tenses this is
	// the pre-composed auxiliary + participle string (e.g. "he hablado"),
	// never decomposed.
	Form            string `json:"form"`
	MiniTranslation string `json:"miniTranslation"`
}

// TenseData is one tense's conjugation table for a verb.
type TenseData struct {
	// TenseID is unique within a verb's tense list and stable across
	// verbs: the same id means the same grammatical tense for every verb
	// in a language.
	TenseID     string `json:"tenseId"`
	TenseName   string `json:"tenseName"`
	Description string `json:"description"`
	// Conjugations is ordered by the language's canonical person order.
	// Index position is load-bearing: callers address forms positionally.
	Conjugations []ConjugationForm `json:"conjugations"`
}

// VerbData is one verb's full conjugation record.
type VerbData struct {
	Infinitive string `json:"infinitive"`
	Language   string `json:"language"`
	// Tenses holds one entry per supported tense, in the canonical
	// presentation order, with length fixed at the language's
	// supported-tense count.
	Tenses []TenseData `json:"tenses"`
}

// ConstructChecklist maps tense ids to enablement. Keys may cover any
// subset of the tense-id universe; an absent key means enabled.
type ConstructChecklist map[string]bool
