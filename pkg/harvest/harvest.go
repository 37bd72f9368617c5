package harvest

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/levavakian/flashidioma-sub001/pkg/conjugation"
	"github.com/levavakian/flashidioma-sub001/pkg/db"
)

// Article is the readable content extracted from a web page.
type Article struct {
	Title    string
	Byline   string
	SiteName string
	Text     string
}

// maxBodySize caps fetched HTML to keep untrusted URLs from exhausting memory.
const maxBodySize = 10 * 1024 * 1024

// FetchArticle downloads a page and extracts its readable text.
func FetchArticle(ctx context.Context, pageURL string) (Article, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return Article{}, fmt.Errorf("create request: %w", err)
	}
	// Mimic a real browser; some sites 403 unadorned clients.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Article{}, fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Article{}, fmt.Errorf("got status code %d", resp.StatusCode)
	}
	if resp.ContentLength > maxBodySize {
		return Article{}, fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, maxBodySize)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Article{}, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(bodyBytes)) >= int64(maxBodySize) {
		return Article{}, fmt.Errorf("response body exceeded maximum size limit of %d bytes", maxBodySize)
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(bodyBytes), parsedURL)
	if err != nil {
		return Article{}, fmt.Errorf("extract article: %w", err)
	}

	return Article{
		Title:    article.Title,
		Byline:   article.Byline,
		SiteName: article.SiteName,
		Text:     article.TextContent,
	}, nil
}

// SplitSentences breaks text on sentence punctuation and newlines.
// Inverted Spanish marks only open sentences, so they never terminate one.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			flush()
		}
	}
	flush()
	return sentences
}

// Harvester scans sentences for known verb forms and persists the
// sightings. Zero values get sensible defaults from NewHarvester.
type Harvester struct {
	DB        *sql.DB
	Index     *FormIndex
	Store     *conjugation.Store
	BatchSize int
	Workers   int
	// Logger reports resume status and per-sentence failures. nil means silent.
	Logger *log.Logger
	// OnProgress is called periodically with processed and total sentence counts.
	OnProgress func(current, total int)
}

// NewHarvester creates a Harvester over the given connection and store.
func NewHarvester(conn *sql.DB, store *conjugation.Store, language string) *Harvester {
	return &Harvester{
		DB:        conn,
		Index:     NewFormIndex(store, language),
		Store:     store,
		BatchSize: 50,
		Workers:   4,
	}
}

// scannedSentence is one sentence's scan result, tagged for ordering.
type scannedSentence struct {
	Index    int
	Sentence string
	Matches  []Match
}

// Harvest scans sentences concurrently and batch-writes the sightings,
// checkpointing progress per sentence so an interrupted run resumes
// where it left off. It returns the number of sightings recorded.
func (h *Harvester) Harvest(ctx context.Context, sourceID int64, sentences []string) (int, error) {
	lastProcessed, err := db.GetSourceProgress(h.DB, sourceID)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Printf("Warning: failed to retrieve progress: %v", err)
		}
		lastProcessed = -1
	}
	if lastProcessed >= 0 && h.Logger != nil {
		h.Logger.Printf("Resuming from sentence index %d", lastProcessed+1)
	}

	total := len(sentences)
	startIdx := lastProcessed + 1
	if startIdx >= total {
		return 0, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := NewWorkerPool(h.Workers, h.Workers*2)
	pool.Start(ctx)

	resultCh := make(chan scannedSentence, h.Workers*2)
	bw := NewBatchWriter(h.DB, h.BatchSize, 100*time.Millisecond)

	var totalSightings int64

	// Consumer: reorder scan results by sentence index and hand each to
	// the batch writer so progress checkpoints stay monotonic.
	doneCh := make(chan error, 1)
	go func() {
		defer close(doneCh)
		buffer := make(map[int]scannedSentence)
		nextIdx := startIdx

		for res := range resultCh {
			buffer[res.Index] = res
			for {
				item, ok := buffer[nextIdx]
				if !ok {
					break
				}
				delete(buffer, nextIdx)

				if err := bw.Submit(h.writeSentence(sourceID, item, &totalSightings)); err != nil {
					cancel()
					doneCh <- err
					return
				}

				if h.OnProgress != nil && (nextIdx+1)%h.BatchSize == 0 {
					h.OnProgress(nextIdx+1, total)
				}
				nextIdx++
			}
		}
		if h.OnProgress != nil {
			h.OnProgress(total, total)
		}
	}()

	// Producer: scanning is CPU-bound, so it runs on the pool.
Loop:
	for i := startIdx; i < total; i++ {
		idx := i
		sentence := sentences[i]
		err := pool.Submit(ctx, func(ctx context.Context) {
			res := scannedSentence{
				Index:    idx,
				Sentence: sentence,
				Matches:  h.Index.Scan(sentence),
			}
			select {
			case resultCh <- res:
			case <-ctx.Done():
			}
		})
		if err != nil {
			break Loop
		}
	}

	pool.Close()
	close(resultCh)

	consumerErr := <-doneCh

	if err := bw.Close(); err != nil && consumerErr == nil {
		consumerErr = err
	}
	if consumerErr == nil {
		consumerErr = ctx.Err()
	}

	return int(atomic.LoadInt64(&totalSightings)), consumerErr
}

// writeSentence turns one scanned sentence into the batched DB writes:
// upsert the verb, record each sighting, checkpoint progress.
func (h *Harvester) writeSentence(sourceID int64, item scannedSentence, totalSightings *int64) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		for _, m := range item.Matches {
			for _, ref := range m.Refs {
				translation := h.Store.VerbTranslation(ref.Language, ref.Infinitive)
				verbID, err := db.CreateOrGetVerb(tx, ref.Infinitive, ref.Language, translation)
				if err != nil {
					return fmt.Errorf("failed to persist verb %s: %w", ref.Infinitive, err)
				}
				if err := db.RecordSighting(tx, verbID, sourceID, ref.TenseID, m.Surface, item.Sentence, 1); err != nil {
					return fmt.Errorf("failed to record sighting of %s: %w", m.Surface, err)
				}
				atomic.AddInt64(totalSightings, 1)
			}
		}
		if err := db.UpdateSourceProgress(tx, sourceID, item.Index); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}
		return nil
	}
}
