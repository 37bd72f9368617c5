package main_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func buildCLI(t *testing.T, dir string) string {
	t.Helper()
	bin := filepath.Join(dir, "flashidioma.bin")
	build := exec.Command("go", "build", "-o", bin, "github.com/levavakian/flashidioma-sub001/cmd/flashidioma")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		t.Fatalf("failed to build CLI: %v", err)
	}
	return bin
}

func TestCLI_HarvestOffline(t *testing.T) {
	tmp := t.TempDir()

	// Load fixture content. Try both package-relative and repo-root-relative paths.
	fixture := filepath.Join("..", "..", "pkg", "harvest", "testdata", "articulo.html")
	body, err := os.ReadFile(fixture)
	if err != nil {
		body, err = os.ReadFile("pkg/harvest/testdata/articulo.html")
	}
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}

	// Start local HTTP server serving the fixture
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
	}))
	defer srv.Close()

	dbPath := filepath.Join(tmp, "flashidioma.db")
	bin := buildCLI(t, tmp)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, bin, "-harvest", srv.URL, "-db", dbPath)
	cmd.Dir = tmp
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		t.Fatalf("cli timed out, output:\n%s", out)
	}
	if err != nil {
		t.Fatalf("cli failed: %v\noutput:\n%s", err, out)
	}

	outStr := string(out)
	if !strings.Contains(outStr, "Harvest complete") {
		t.Fatalf("unexpected CLI output; expected success message, got:\n%s", outStr)
	}
	if !strings.Contains(outStr, "hablar") {
		t.Fatalf("expected hablar among harvested verbs, got:\n%s", outStr)
	}

	// Verify the DB recorded the source and at least one sighting
	dbConn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer dbConn.Close()

	var cnt int
	if err := dbConn.QueryRow("SELECT COUNT(*) FROM sources").Scan(&cnt); err != nil {
		t.Fatalf("db query failed: %v", err)
	}
	if cnt == 0 {
		t.Fatalf("expected at least one source in DB, found 0")
	}
	if err := dbConn.QueryRow("SELECT COUNT(*) FROM verb_sightings").Scan(&cnt); err != nil {
		t.Fatalf("db query failed: %v", err)
	}
	if cnt == 0 {
		t.Fatalf("expected verb sightings in DB, found 0")
	}
}

func TestCLI_VerbLookupAndChecklist(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "flashidioma.db")
	bin := buildCLI(t, tmp)

	run := func(args ...string) string {
		t.Helper()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		cmd := exec.CommandContext(ctx, bin, append([]string{"-db", dbPath}, args...)...)
		cmd.Dir = tmp
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("cli %v failed: %v\noutput:\n%s", args, err, out)
		}
		return string(out)
	}

	out := run("-verb", "hablar")
	if !strings.Contains(out, "hablo") || !strings.Contains(out, "he hablado") {
		t.Fatalf("expected full conjugation table, got:\n%s", out)
	}

	run("-disable", "present-perfect")

	out = run("-verb", "hablar")
	if strings.Contains(out, "he hablado") {
		t.Fatalf("disabled tense still printed:\n%s", out)
	}
	if !strings.Contains(out, "hablo") {
		t.Fatalf("unlisted tense was dropped:\n%s", out)
	}

	out = run("-verb", "hablar", "-all")
	if !strings.Contains(out, "he hablado") {
		t.Fatalf("-all did not bypass the checklist:\n%s", out)
	}

	// unknown verb is a clean non-error outcome
	out = run("-verb", "xyzverbar")
	if !strings.Contains(out, "No conjugation data") {
		t.Fatalf("expected not-found message, got:\n%s", out)
	}
}
