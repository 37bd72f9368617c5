package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/levavakian/flashidioma-sub001/pkg/conjugation"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// CreateOrGetVerb returns the existing study-verb id or inserts a new row
// and returns its id. A later non-empty translation overwrites an earlier
// empty one.
func CreateOrGetVerb(db DBExecutor, infinitive, language, translation string) (int64, error) {
	trimmed := strings.TrimSpace(infinitive)
	if trimmed == "" {
		return 0, fmt.Errorf("infinitive must be non-empty")
	}
	if language == "" {
		return 0, fmt.Errorf("language must be non-empty")
	}

	var id int64
	query := `INSERT INTO verbs (infinitive, language, translation)
			  VALUES (?, ?, ?)
			  ON CONFLICT(infinitive, language)
			  DO UPDATE SET
			    translation = COALESCE(NULLIF(excluded.translation, ''), verbs.translation)
			  RETURNING id`

	err := db.QueryRow(query, trimmed, language, translation).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert verb: %w", err)
	}
	return id, nil
}

// CreateOrGetSource returns existing source id or inserts a new source and returns its id.
func CreateOrGetSource(db DBExecutor, sourceType, title, author, website, url, meta string) (int64, error) {
	trimmedSourceType := strings.TrimSpace(sourceType)
	if trimmedSourceType == "" {
		return 0, fmt.Errorf("sourceType must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		// First, try to find an existing source.
		err := db.QueryRow(
			`SELECT id FROM sources WHERE IFNULL(url, '') = ? AND IFNULL(title, '') = ? AND IFNULL(author, '') = ?`,
			url, title, author,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return 0, err
		}

		// No existing row; try to insert one.
		res, err := db.Exec(
			`INSERT INTO sources (source_type, title, author, website, url, meta) VALUES (?, ?, ?, ?, ?, ?)`,
			trimmedSourceType, title, author, website, url, meta,
		)
		if err != nil {
			// If another concurrent transaction inserted the same source, retry the SELECT.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}

		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get source after %d retries", maxRetries)
}

// getOrCreateSentence dedupes example sentences. Returns 0 for blank text.
func getOrCreateSentence(db DBExecutor, text string) (int64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, nil
	}
	var id int64
	if err := db.QueryRow(`SELECT id FROM sentences WHERE text = ?`, trimmed).Scan(&id); err == nil {
		return id, nil
	} else if err != sql.ErrNoRows {
		return 0, err
	}
	// Insert if missing (concurrent-safe via UNIQUE constraint)
	if _, err := db.Exec(`INSERT OR IGNORE INTO sentences (text) VALUES (?)`, trimmed); err != nil {
		return 0, err
	}
	if err := db.QueryRow(`SELECT id FROM sentences WHERE text = ?`, trimmed).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// RecordSighting records that a conjugated surface form of a verb was
// seen in a source, creating or incrementing the sighting row.
func RecordSighting(db DBExecutor, verbID, sourceID int64, tenseID, surfaceForm, sentence string, incrementAmount int) error {
	if verbID <= 0 {
		return fmt.Errorf("verbID must be positive")
	}
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	if tenseID == "" || surfaceForm == "" {
		return fmt.Errorf("tenseID and surfaceForm must be non-empty")
	}
	if incrementAmount < 1 {
		return fmt.Errorf("incrementAmount must be positive, got %d", incrementAmount)
	}

	sentID, err := getOrCreateSentence(db, sentence)
	if err != nil {
		return fmt.Errorf("get/create example sentence: %w", err)
	}

	_, err = db.Exec(`INSERT INTO verb_sightings (verb_id, source_id, tense_id, surface_form, example_sentence_id, occurrence_count, first_seen_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(verb_id, source_id, tense_id, surface_form) DO UPDATE SET
	  occurrence_count = verb_sightings.occurrence_count + excluded.occurrence_count,
	  example_sentence_id = COALESCE(excluded.example_sentence_id, verb_sightings.example_sentence_id)`,
		verbID, sourceID, tenseID, surfaceForm, nullableInt64(sentID), incrementAmount, time.Now())
	return err
}

// nullableInt64 returns nil for 0 (meaning no sentence) else the value.
func nullableInt64(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

// GetVerbsBySource returns the verbs sighted in a given source.
func GetVerbsBySource(db DBExecutor, sourceID int64) ([]Verb, error) {
	rows, err := db.Query(`SELECT DISTINCT v.id, v.infinitive, v.language, v.translation
		FROM verbs v JOIN verb_sightings s ON s.verb_id = v.id WHERE s.source_id = ? ORDER BY v.infinitive`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Verb
	for rows.Next() {
		var v Verb
		var tr sql.NullString
		if err := rows.Scan(&v.ID, &v.Infinitive, &v.Language, &tr); err != nil {
			return nil, err
		}
		if tr.Valid {
			v.Translation = tr.String
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListVerbs returns all study verbs for a language, ordered by infinitive.
func ListVerbs(db DBExecutor, language string) ([]Verb, error) {
	rows, err := db.Query(`SELECT id, infinitive, language, translation FROM verbs WHERE language = ? ORDER BY infinitive`, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Verb
	for rows.Next() {
		var v Verb
		var tr sql.NullString
		if err := rows.Scan(&v.ID, &v.Infinitive, &v.Language, &tr); err != nil {
			return nil, err
		}
		if tr.Valid {
			v.Translation = tr.String
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetSightingsByVerb returns a verb's sightings with example sentences.
func GetSightingsByVerb(db DBExecutor, verbID int64) ([]Sighting, error) {
	rows, err := db.Query(`SELECT s.id, s.verb_id, s.source_id, s.tense_id, s.surface_form,
		IFNULL(sen.text, ''), s.occurrence_count
		FROM verb_sightings s LEFT JOIN sentences sen ON sen.id = s.example_sentence_id
		WHERE s.verb_id = ? ORDER BY s.occurrence_count DESC, s.id`, verbID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Sighting
	for rows.Next() {
		var s Sighting
		if err := rows.Scan(&s.ID, &s.VerbID, &s.SourceID, &s.TenseID, &s.SurfaceForm, &s.ExampleSentence, &s.OccurrenceCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetTenseEnabled persists one construct-checklist entry.
func SetTenseEnabled(db DBExecutor, language, tenseID string, enabled bool) error {
	if language == "" || tenseID == "" {
		return fmt.Errorf("language and tenseID must be non-empty")
	}
	_, err := db.Exec(`INSERT INTO tense_unlocks (language, tense_id, enabled, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(language, tense_id) DO UPDATE SET
		  enabled = excluded.enabled,
		  updated_at = excluded.updated_at`,
		language, tenseID, enabled, time.Now())
	return err
}

// LoadChecklist materializes the persisted checklist for a language.
// Tenses with no row are simply absent from the map, which the filter
// treats as enabled.
func LoadChecklist(db DBExecutor, language string) (conjugation.ConstructChecklist, error) {
	rows, err := db.Query(`SELECT tense_id, enabled FROM tense_unlocks WHERE language = ?`, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cl := make(conjugation.ConstructChecklist)
	for rows.Next() {
		var tenseID string
		var enabled bool
		if err := rows.Scan(&tenseID, &enabled); err != nil {
			return nil, err
		}
		cl[tenseID] = enabled
	}
	return cl, rows.Err()
}

// GetSourceProgress returns the last processed sentence index for a source.
func GetSourceProgress(db DBExecutor, sourceID int64) (int, error) {
	var index int
	err := db.QueryRow("SELECT last_processed_sentence FROM sources WHERE id = ?", sourceID).Scan(&index)
	if err != nil {
		return 0, err
	}
	return index, nil
}

// UpdateSourceProgress updates the last processed sentence index.
func UpdateSourceProgress(db DBExecutor, sourceID int64, index int) error {
	_, err := db.Exec("UPDATE sources SET last_processed_sentence = ? WHERE id = ?", index, sourceID)
	return err
}
