package conjugation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validLanguageSet() LanguageSet {
	return LanguageSet{
		Language: "testlang",
		Persons:  []string{"yo", "tú"},
		Tenses: []TenseInfo{
			{ID: "present", Name: "Present"},
			{ID: "preterite", Name: "Preterite"},
		},
		Verbs: []VerbEntry{
			{
				Infinitive: "cantar",
				Forms: map[string][]ConjugationForm{
					"present":   {{Person: "yo", Form: "canto"}, {Person: "tú", Form: "cantas"}},
					"preterite": {{Person: "yo", Form: "canté"}, {Person: "tú", Form: "cantaste"}},
				},
			},
		},
	}
}

func TestNewStoreValidDataset(t *testing.T) {
	s, err := NewStore(&Dataset{Languages: []LanguageSet{validLanguageSet()}})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if s.PrimaryLanguage() != "testlang" {
		t.Errorf("primary = %q, want testlang", s.PrimaryLanguage())
	}
	if !s.Has("cantar") {
		t.Errorf("expected cantar to be found")
	}
}

func TestNewStoreRejectsMalformedDatasets(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*LanguageSet)
		wantErr string
	}{
		{
			name:    "duplicate tense id",
			mutate:  func(l *LanguageSet) { l.Tenses[1].ID = "present" },
			wantErr: "duplicate tense id",
		},
		{
			name:    "missing tense for verb",
			mutate:  func(l *LanguageSet) { delete(l.Verbs[0].Forms, "preterite") },
			wantErr: "missing tense",
		},
		{
			name:    "empty conjugations",
			mutate:  func(l *LanguageSet) { l.Verbs[0].Forms["present"] = nil },
			wantErr: "has 0 conjugations",
		},
		{
			name: "inconsistent person count",
			mutate: func(l *LanguageSet) {
				l.Verbs[0].Forms["present"] = l.Verbs[0].Forms["present"][:1]
			},
			wantErr: "conjugations",
		},
		{
			name: "person out of canonical order",
			mutate: func(l *LanguageSet) {
				forms := l.Verbs[0].Forms["present"]
				forms[0], forms[1] = forms[1], forms[0]
			},
			wantErr: "has person",
		},
		{
			name: "unknown tense id in forms",
			mutate: func(l *LanguageSet) {
				l.Verbs[0].Forms["gerund"] = []ConjugationForm{{Person: "yo", Form: "cantando"}, {Person: "tú", Form: "cantando"}}
			},
			wantErr: "unknown tense",
		},
		{
			name: "duplicate verb",
			mutate: func(l *LanguageSet) {
				l.Verbs = append(l.Verbs, l.Verbs[0])
			},
			wantErr: "duplicate verb",
		},
		{
			name: "empty form",
			mutate: func(l *LanguageSet) {
				l.Verbs[0].Forms["present"][1].Form = ""
			},
			wantErr: "empty form",
		},
		{
			name:    "no tenses declared",
			mutate:  func(l *LanguageSet) { l.Tenses = nil },
			wantErr: "declares no tenses",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lang := validLanguageSet()
			tc.mutate(&lang)
			_, err := NewStore(&Dataset{Languages: []LanguageSet{lang}})
			if err == nil {
				t.Fatalf("expected construction to fail")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestNewStoreRejectsEmptyDataset(t *testing.T) {
	if _, err := NewStore(nil); err == nil {
		t.Errorf("expected nil dataset to fail")
	}
	if _, err := NewStore(&Dataset{}); err == nil {
		t.Errorf("expected empty dataset to fail")
	}
}

func TestDefaultDatasetBuildsStore(t *testing.T) {
	ds, err := DefaultDataset()
	if err != nil {
		t.Fatalf("DefaultDataset: %v", err)
	}
	if _, err := NewStore(ds); err != nil {
		t.Fatalf("bundled dataset failed validation: %v", err)
	}
}

func TestLoadDatasetWrapperAndArray(t *testing.T) {
	tmp := t.TempDir()

	wrapper := filepath.Join(tmp, "wrapper.json")
	if err := os.WriteFile(wrapper, []byte(`{"languages":[{"language":"x","persons":["yo"],"tenses":[{"id":"present"}],"verbs":[]}]}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ds, err := LoadDataset(wrapper)
	if err != nil {
		t.Fatalf("load wrapper form: %v", err)
	}
	if len(ds.Languages) != 1 || ds.Languages[0].Language != "x" {
		t.Errorf("unexpected wrapper parse: %+v", ds)
	}

	array := filepath.Join(tmp, "array.json")
	if err := os.WriteFile(array, []byte(`[{"language":"y","persons":["yo"],"tenses":[{"id":"present"}],"verbs":[]}]`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ds, err = LoadDataset(array)
	if err != nil {
		t.Fatalf("load array form: %v", err)
	}
	if len(ds.Languages) != 1 || ds.Languages[0].Language != "y" {
		t.Errorf("unexpected array parse: %+v", ds)
	}

	bad := filepath.Join(tmp, "bad.json")
	if err := os.WriteFile(bad, []byte(`not json`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadDataset(bad); err == nil {
		t.Errorf("expected parse failure for invalid JSON")
	}
}
