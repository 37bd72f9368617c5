package conjugation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

// Dataset is the on-disk schema for conjugation data. Tense metadata is
// declared once per language; verbs carry only their forms, keyed by
// tense id. The Store merges the two at construction time.
type Dataset struct {
	Languages []LanguageSet `json:"languages"`
}

// LanguageSet is one language's tense table and verb list.
type LanguageSet struct {
	Language string `json:"language"`
	// Persons is the canonical person order every conjugation sequence
	// in this language must follow.
	Persons []string    `json:"persons"`
	Tenses  []TenseInfo `json:"tenses"`
	Verbs   []VerbEntry `json:"verbs"`
}

// TenseInfo is the per-language tense metadata, in canonical
// presentation order.
type TenseInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// VerbEntry is one verb's raw forms, keyed by tense id.
type VerbEntry struct {
	Infinitive  string                       `json:"infinitive"`
	Translation string                       `json:"translation"`
	Forms       map[string][]ConjugationForm `json:"forms"`
}

//go:embed data/spanish.json
var spanishJSON []byte

// DefaultDataset parses the bundled Spanish dataset.
func DefaultDataset() (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(spanishJSON, &ds); err != nil {
		return nil, fmt.Errorf("parse bundled dataset: %w", err)
	}
	return &ds, nil
}

// LoadDataset reads a dataset JSON file. Both the object wrapper form
// { "languages": [...] } and a bare array of language sets are accepted.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ds Dataset
	dec := json.NewDecoder(f)
	if err := dec.Decode(&ds); err == nil && len(ds.Languages) > 0 {
		return &ds, nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	var langs []LanguageSet
	dec = json.NewDecoder(f)
	if err := dec.Decode(&langs); err != nil {
		return nil, fmt.Errorf("failed to parse dataset as object or array: %w", err)
	}
	return &Dataset{Languages: langs}, nil
}
