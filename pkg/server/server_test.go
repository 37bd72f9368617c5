package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/levavakian/flashidioma-sub001/pkg/conjugation"
	"github.com/levavakian/flashidioma-sub001/pkg/db"
	_ "github.com/mattn/go-sqlite3"
)

func setupServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	ds, err := conjugation.DefaultDataset()
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	store, err := conjugation.NewStore(ds)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	if err := db.InitDB(conn); err != nil {
		t.Fatalf("init db: %v", err)
	}
	srv := httptest.NewServer(New(store, conn).Handler())
	t.Cleanup(func() {
		srv.Close()
		conn.Close()
	})
	return srv, conn
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestLanguagesEndpoint(t *testing.T) {
	srv, _ := setupServer(t)
	var resp struct {
		Languages []string `json:"languages"`
		Primary   string   `json:"primary"`
	}
	getJSON(t, srv.URL+"/api/languages", http.StatusOK, &resp)
	if resp.Primary != "spanish" {
		t.Errorf("primary = %q, want spanish", resp.Primary)
	}
	if len(resp.Languages) != 1 || resp.Languages[0] != "spanish" {
		t.Errorf("languages = %v", resp.Languages)
	}
}

func TestConjugationEndpoint(t *testing.T) {
	srv, _ := setupServer(t)

	var rec conjugation.VerbData
	getJSON(t, srv.URL+"/api/conjugation?verb=hablar", http.StatusOK, &rec)
	if rec.Infinitive != "hablar" || rec.Language != "spanish" {
		t.Errorf("record echoes %s/%s", rec.Language, rec.Infinitive)
	}
	if len(rec.Tenses) != 16 {
		t.Errorf("got %d tenses, want 16", len(rec.Tenses))
	}

	getJSON(t, srv.URL+"/api/conjugation?verb=xyzverbar", http.StatusNotFound, nil)
	getJSON(t, srv.URL+"/api/conjugation", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/api/conjugation?verb=hablar&language=klingon", http.StatusNotFound, nil)
}

func TestConjugationFiltered(t *testing.T) {
	srv, conn := setupServer(t)

	// disable everything except present
	ds, _ := conjugation.DefaultDataset()
	for _, tense := range ds.Languages[0].Tenses {
		if tense.ID == "present" {
			continue
		}
		if err := db.SetTenseEnabled(conn, "spanish", tense.ID, false); err != nil {
			t.Fatalf("disable %s: %v", tense.ID, err)
		}
	}

	var rec struct {
		conjugation.VerbData
		Filtered bool `json:"filtered"`
	}
	getJSON(t, srv.URL+"/api/conjugation?verb=ser&filtered=true", http.StatusOK, &rec)
	if !rec.Filtered {
		t.Errorf("expected filtered response")
	}
	if len(rec.Tenses) != 1 || rec.Tenses[0].TenseID != "present" {
		t.Errorf("expected only present tense, got %d tenses", len(rec.Tenses))
	}

	// unfiltered request still returns the full table
	var full conjugation.VerbData
	getJSON(t, srv.URL+"/api/conjugation?verb=ser", http.StatusOK, &full)
	if len(full.Tenses) != 16 {
		t.Errorf("unfiltered got %d tenses, want 16", len(full.Tenses))
	}
}

func TestChecklistEndpoint(t *testing.T) {
	srv, _ := setupServer(t)

	body := strings.NewReader(`{"tenseId":"future-subjunctive","enabled":false}`)
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/checklist", body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status %d", resp.StatusCode)
	}

	var cl struct {
		Language  string          `json:"language"`
		Checklist map[string]bool `json:"checklist"`
	}
	getJSON(t, srv.URL+"/api/checklist", http.StatusOK, &cl)
	if cl.Language != "spanish" {
		t.Errorf("language = %q", cl.Language)
	}
	if v, ok := cl.Checklist["future-subjunctive"]; !ok || v {
		t.Errorf("expected future-subjunctive=false, got %v", cl.Checklist)
	}
}

func TestVerbsEndpoint(t *testing.T) {
	srv, conn := setupServer(t)

	if _, err := db.CreateOrGetVerb(conn, "hablar", "spanish", "to speak"); err != nil {
		t.Fatal(err)
	}

	var resp struct {
		Language string `json:"language"`
		Verbs    []struct {
			Infinitive string `json:"infinitive"`
			Studied    bool   `json:"studied"`
		} `json:"verbs"`
	}
	getJSON(t, srv.URL+"/api/verbs", http.StatusOK, &resp)
	if len(resp.Verbs) != 12 {
		t.Fatalf("expected 12 verbs, got %d", len(resp.Verbs))
	}
	var hablar, ser bool
	for _, v := range resp.Verbs {
		if v.Infinitive == "hablar" {
			hablar = v.Studied
		}
		if v.Infinitive == "ser" {
			ser = v.Studied
		}
	}
	if !hablar {
		t.Errorf("expected hablar to be marked studied")
	}
	if ser {
		t.Errorf("expected ser to be unstudied")
	}
}
