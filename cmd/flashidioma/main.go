package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/levavakian/flashidioma-sub001/pkg/conjugation"
	"github.com/levavakian/flashidioma-sub001/pkg/db"
	"github.com/levavakian/flashidioma-sub001/pkg/harvest"
	"github.com/levavakian/flashidioma-sub001/pkg/server"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	dbFlag := flag.String("db", "flashidioma.db", "Path to SQLite database")
	datasetFlag := flag.String("dataset", "", "Path to a conjugation dataset JSON file (bundled Spanish data when omitted)")
	langFlag := flag.String("lang", "", "Language to operate on (dataset primary language when omitted)")
	verbFlag := flag.String("verb", "", "Infinitive to look up and print")
	allFlag := flag.Bool("all", false, "With -verb: ignore the persisted checklist and print every tense")
	harvestFlag := flag.String("harvest", "", "URL of an article to harvest verb sightings from")
	enableFlag := flag.String("enable", "", "Tense id to enable in the construct checklist")
	disableFlag := flag.String("disable", "", "Tense id to disable in the construct checklist")
	serveFlag := flag.String("serve", "", "Address to serve the JSON API on (e.g. :8080)")
	flag.Parse()

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load the conjugation dataset and build the store. A malformed
	// dataset is fatal here, before anything can observe it.
	var (
		ds  *conjugation.Dataset
		err error
	)
	if *datasetFlag != "" {
		if err := conjugation.EnsureDataset(ctx, *datasetFlag); err != nil {
			log.Fatalf("Failed to ensure dataset at %s: %v", *datasetFlag, err)
		}
		ds, err = conjugation.LoadDataset(*datasetFlag)
	} else {
		ds, err = conjugation.DefaultDataset()
	}
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	store, err := conjugation.NewStore(ds)
	if err != nil {
		log.Fatalf("Invalid dataset: %v", err)
	}

	language := *langFlag
	if language == "" {
		language = store.PrimaryLanguage()
	}

	// Initialize DB
	conn, err := sql.Open("sqlite3", *dbFlag)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	if err := db.InitDB(conn); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	switch {
	case *enableFlag != "" || *disableFlag != "":
		if *enableFlag != "" {
			if err := db.SetTenseEnabled(conn, language, *enableFlag, true); err != nil {
				log.Fatalf("Failed to enable tense: %v", err)
			}
			fmt.Printf("Enabled %s for %s\n", *enableFlag, language)
		}
		if *disableFlag != "" {
			if err := db.SetTenseEnabled(conn, language, *disableFlag, false); err != nil {
				log.Fatalf("Failed to disable tense: %v", err)
			}
			fmt.Printf("Disabled %s for %s\n", *disableFlag, language)
		}

	case *verbFlag != "":
		printVerb(conn, store, language, *verbFlag, *allFlag)

	case *harvestFlag != "":
		runHarvest(ctx, conn, store, language, *harvestFlag)

	case *serveFlag != "":
		srv := server.New(store, conn)
		log.Printf("listening on %s", *serveFlag)
		if err := listenAndServe(ctx, *serveFlag, srv.Handler()); err != nil {
			log.Fatalf("server error: %v", err)
		}

	default:
		flag.Usage()
		log.Fatal("Please provide one of -verb, -harvest, -enable/-disable or -serve")
	}
}

// listenAndServe runs the HTTP server until ctx is canceled, then shuts
// down gracefully.
func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// printVerb prints a verb's conjugation tables, narrowed by the
// persisted construct checklist unless showAll is set. An unknown verb
// is reported and exits cleanly: it is not an error.
func printVerb(conn *sql.DB, store *conjugation.Store, language, infinitive string, showAll bool) {
	rec, ok := store.LookupIn(language, infinitive)
	if !ok {
		fmt.Printf("No conjugation data for %q in %s.\n", infinitive, language)
		return
	}

	tenses := rec.Tenses
	if !showAll {
		checklist, err := db.LoadChecklist(conn, language)
		if err != nil {
			log.Fatalf("Failed to load checklist: %v", err)
		}
		tenses = conjugation.FilterTenses(tenses, checklist)
	}

	fmt.Printf("%s (%s)", rec.Infinitive, rec.Language)
	if tr := store.VerbTranslation(language, infinitive); tr != "" {
		fmt.Printf(" — %s", tr)
	}
	fmt.Println()

	if len(tenses) == 0 {
		fmt.Println("All tenses are disabled in the checklist. Use -all to show everything.")
		return
	}
	for _, tense := range tenses {
		fmt.Printf("\n%s (%s)\n", tense.TenseName, tense.TenseID)
		for _, c := range tense.Conjugations {
			if c.MiniTranslation != "" {
				fmt.Printf("  %-14s %-22s %s\n", c.Person, c.Form, c.MiniTranslation)
			} else {
				fmt.Printf("  %-14s %s\n", c.Person, c.Form)
			}
		}
	}
}

// runHarvest fetches an article, scans it for known verb forms and
// persists the sightings.
func runHarvest(ctx context.Context, conn *sql.DB, store *conjugation.Store, language, url string) {
	fmt.Printf("Fetching %s...\n", url)
	article, err := harvest.FetchArticle(ctx, url)
	if err != nil {
		log.Fatalf("Failed to fetch article: %v", err)
	}

	fmt.Printf("Title: %s\n", article.Title)
	fmt.Printf("Extracted Text Length: %d chars\n", len(article.Text))

	sourceID, err := db.CreateOrGetSource(conn, "website_article", article.Title, article.Byline, article.SiteName, url, "")
	if err != nil {
		log.Fatalf("Failed to persist source: %v", err)
	}
	fmt.Printf("Source saved with ID: %d\n", sourceID)

	sentences := harvest.SplitSentences(article.Text)
	fmt.Printf("Split into %d sentences.\n", len(sentences))

	h := harvest.NewHarvester(conn, store, language)
	h.Logger = log.Default()
	count, err := h.Harvest(ctx, sourceID, sentences)
	if err != nil {
		log.Fatalf("Harvest failed: %v", err)
	}

	verbs, err := db.GetVerbsBySource(conn, sourceID)
	if err != nil {
		log.Fatalf("Failed to list harvested verbs: %v", err)
	}
	for _, v := range verbs {
		if v.Translation != "" {
			fmt.Printf("  %s — %s\n", v.Infinitive, v.Translation)
		} else {
			fmt.Printf("  %s\n", v.Infinitive)
		}
	}
	fmt.Printf("Harvest complete. Recorded %d verb sightings.\n", count)
}
