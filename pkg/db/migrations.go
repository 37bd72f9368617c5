package db

// migrationsSQL holds the full schema. InitDB splits on ';', so no
// statement may contain a literal semicolon.
const migrationsSQL = `
CREATE TABLE IF NOT EXISTS verbs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	infinitive TEXT NOT NULL,
	language TEXT NOT NULL,
	translation TEXT,
	added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(infinitive, language)
);

CREATE TABLE IF NOT EXISTS sources (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_type TEXT NOT NULL,
	title TEXT,
	author TEXT,
	website TEXT,
	url TEXT,
	meta TEXT,
	last_processed_sentence INTEGER DEFAULT -1,
	added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sentences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS verb_sightings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	verb_id INTEGER NOT NULL REFERENCES verbs(id),
	source_id INTEGER NOT NULL REFERENCES sources(id),
	tense_id TEXT NOT NULL,
	surface_form TEXT NOT NULL,
	example_sentence_id INTEGER REFERENCES sentences(id),
	occurrence_count INTEGER NOT NULL DEFAULT 0,
	first_seen_at TIMESTAMP,
	UNIQUE(verb_id, source_id, tense_id, surface_form)
);

CREATE TABLE IF NOT EXISTS tense_unlocks (
	language TEXT NOT NULL,
	tense_id TEXT NOT NULL,
	enabled INTEGER NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY(language, tense_id)
);

CREATE INDEX IF NOT EXISTS idx_sightings_verb ON verb_sightings(verb_id);

CREATE INDEX IF NOT EXISTS idx_sightings_source ON verb_sightings(source_id)
`
