// Package server exposes the conjugation store and study state as a
// JSON REST API for a browser flashcard UI.
//
// Endpoints:
//
//	GET /api/languages
//	GET /api/verbs?language=<lang>
//	GET /api/conjugation?verb=<infinitive>[&language=<lang>][&filtered=true]
//	GET /api/checklist?language=<lang>
//	PUT /api/checklist   body: {"language":"...","tenseId":"...","enabled":bool}
package server

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/rs/cors"

	"github.com/levavakian/flashidioma-sub001/pkg/conjugation"
	"github.com/levavakian/flashidioma-sub001/pkg/db"
)

// Server serves lookup and checklist state. The conjugation store is
// immutable; the database carries the learner's persisted state.
type Server struct {
	Store *conjugation.Store
	DB    *sql.DB
}

func New(store *conjugation.Store, conn *sql.DB) *Server {
	return &Server{Store: store, DB: conn}
}

// ---- JSON response types ------------------------------------------------

type languagesResponse struct {
	Languages []string `json:"languages"`
	Primary   string   `json:"primary"`
}

type verbListEntry struct {
	Infinitive  string `json:"infinitive"`
	Translation string `json:"translation,omitempty"`
	Studied     bool   `json:"studied"`
}

type verbsResponse struct {
	Language string          `json:"language"`
	Verbs    []verbListEntry `json:"verbs"`
}

type conjugationResponse struct {
	conjugation.VerbData
	Filtered bool `json:"filtered"`
}

type checklistResponse struct {
	Language  string                         `json:"language"`
	Checklist conjugation.ConstructChecklist `json:"checklist"`
}

type checklistUpdate struct {
	Language string `json:"language"`
	TenseID  string `json:"tenseId"`
	Enabled  *bool  `json:"enabled"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- helpers ------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// language resolves the optional language query parameter.
func (s *Server) language(r *http.Request) string {
	if lang := r.URL.Query().Get("language"); lang != "" {
		return lang
	}
	return s.Store.PrimaryLanguage()
}

// ---- handlers -----------------------------------------------------------

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	writeJSON(w, http.StatusOK, languagesResponse{
		Languages: s.Store.Languages(),
		Primary:   s.Store.PrimaryLanguage(),
	})
}

func (s *Server) handleVerbs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	lang := s.language(r)

	studied := map[string]bool{}
	if s.DB != nil {
		verbs, err := db.ListVerbs(s.DB, lang)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, v := range verbs {
			studied[v.Infinitive] = true
		}
	}

	out := verbsResponse{Language: lang, Verbs: []verbListEntry{}}
	for _, inf := range s.Store.Infinitives(lang) {
		out.Verbs = append(out.Verbs, verbListEntry{
			Infinitive:  inf,
			Translation: s.Store.VerbTranslation(lang, inf),
			Studied:     studied[inf],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleConjugation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	verb := r.URL.Query().Get("verb")
	if verb == "" {
		writeError(w, http.StatusBadRequest, "missing 'verb' query parameter")
		return
	}
	lang := s.language(r)

	rec, ok := s.Store.LookupIn(lang, verb)
	if !ok {
		writeError(w, http.StatusNotFound, "verb not found")
		return
	}

	resp := conjugationResponse{VerbData: rec}
	if r.URL.Query().Get("filtered") == "true" && s.DB != nil {
		checklist, err := db.LoadChecklist(s.DB, lang)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Tenses = conjugation.FilterTenses(rec.Tenses, checklist)
		resp.Filtered = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChecklist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		lang := s.language(r)
		checklist, err := db.LoadChecklist(s.DB, lang)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, checklistResponse{Language: lang, Checklist: checklist})
	case http.MethodPut:
		var upd checklistUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			writeError(w, http.StatusBadRequest, "body must be JSON")
			return
		}
		if upd.TenseID == "" || upd.Enabled == nil {
			writeError(w, http.StatusBadRequest, "tenseId and enabled are required")
			return
		}
		if upd.Language == "" {
			upd.Language = s.Store.PrimaryLanguage()
		}
		if err := db.SetTenseEnabled(s.DB, upd.Language, upd.TenseID, *upd.Enabled); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		checklist, err := db.LoadChecklist(s.DB, upd.Language)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, checklistResponse{Language: upd.Language, Checklist: checklist})
	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or PUT required")
	}
}

// Handler builds the full routing table, CORS-wrapped so browser UIs on
// other origins can call it.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/languages", s.handleLanguages)
	mux.HandleFunc("/api/verbs", s.handleVerbs)
	mux.HandleFunc("/api/conjugation", s.handleConjugation)
	mux.HandleFunc("/api/checklist", s.handleChecklist)

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPut},
	})
	return c.Handler(mux)
}
