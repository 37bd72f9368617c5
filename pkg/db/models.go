package db

import "time"

// Verb is a verb the learner is studying.
type Verb struct {
	ID          int64
	Infinitive  string
	Language    string
	Translation string
	AddedAt     time.Time
}

// Source is a provenance record for where verbs were sighted.
type Source struct {
	ID         int64
	SourceType string
	Title      string
	Author     string
	Website    string
	URL        string
	Meta       string
	AddedAt    time.Time
}

// Sighting links a verb with a source: one conjugated surface form seen
// in a text, with an example sentence and an occurrence count.
type Sighting struct {
	ID              int64
	VerbID          int64
	SourceID        int64
	TenseID         string
	SurfaceForm     string
	ExampleSentence string
	OccurrenceCount int
	FirstSeenAt     time.Time
}

// TenseUnlock is one persisted construct-checklist entry: whether a
// grammatical tense is currently surfaced for study in a language.
type TenseUnlock struct {
	Language string
	TenseID  string
	Enabled  bool
}
