package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"prophet-bnb/models"
	"prophet-bnb/utils"
)

// FieldSpec maps one output column to a CSS selector (relative to the
// listing card) and the attribute to read. Attr "text" (or empty) reads
// the element's text; anything else ("href", "src", ...) reads that
// attribute. An empty selector reads from the card element itself.
type FieldSpec struct {
	Selector string
	Attr     string
}

// WebScrapeSource extracts a table from an arbitrary HTML page: one row
// per element matching CardSelector, one column per mapped field. Static
// pages are fetched with a plain HTTP client; RenderJS drives a headless
// browser first so script-built markup is visible to the selectors.
type WebScrapeSource struct {
	URL          string
	CardSelector string
	Fields       map[string]FieldSpec
	RenderJS     bool

	Client *http.Client
	Logger *utils.Logger
	Retry  *utils.RetryConfig
}

// Load fetches the page and extracts one row per matched listing card.
// Zero matched cards fail with NoListingsFound.
func (s *WebScrapeSource) Load() (*models.RecordSet, string, error) {
	if s.CardSelector == "" {
		return nil, "", &SourceError{Kind: ParseError, Reason: "no listing card selector configured"}
	}

	var page string
	var err error
	if s.RenderJS {
		page, err = s.fetchRendered()
	} else {
		page, err = s.fetchStatic()
	}
	if err != nil {
		return nil, "", &SourceError{Kind: FetchError, Reason: s.URL, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, "", &SourceError{Kind: ParseError, Reason: s.URL, Err: err}
	}

	cards := doc.Find(s.CardSelector)
	if cards.Length() == 0 {
		return nil, "", &SourceError{
			Kind:   NoListingsFound,
			Reason: fmt.Sprintf("selector %q matched nothing at %s", s.CardSelector, s.URL),
		}
	}

	// Sorted field order keeps the column layout deterministic.
	columns := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	rs := models.NewRecordSet(columns...)
	cards.Each(func(_ int, card *goquery.Selection) {
		row := make([]string, len(columns))
		for i, name := range columns {
			row[i] = extractField(card, s.Fields[name])
		}
		rs.Append(row)
	})

	s.Logger.Info("[scrape] Extracted %d listings from %s", rs.Len(), s.URL)
	return rs, "Scraped: " + hostOf(s.URL), nil
}

// extractField reads one field value from a card.
func extractField(card *goquery.Selection, spec FieldSpec) string {
	sel := card
	if spec.Selector != "" {
		sel = card.Find(spec.Selector).First()
	}
	if sel.Length() == 0 {
		return ""
	}
	if spec.Attr == "" || spec.Attr == "text" {
		return strings.Join(strings.Fields(sel.Text()), " ")
	}
	val, _ := sel.Attr(spec.Attr)
	return strings.TrimSpace(val)
}

func (s *WebScrapeSource) fetchStatic() (string, error) {
	resp, err := s.Client.Get(s.URL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// fetchRendered loads the page in headless Chrome and returns the rendered
// DOM, so selectors see markup that scripts built after load.
func (s *WebScrapeSource) fetchRendered() (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if bin := findChromeBinary(); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	var page string
	run := func() error {
		ctx, cancel := chromedp.NewContext(allocCtx,
			chromedp.WithLogf(func(string, ...interface{}) {}))
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		return chromedp.Run(ctx,
			chromedp.Navigate(s.URL),
			chromedp.Sleep(4*time.Second),
			chromedp.OuterHTML("html", &page),
		)
	}

	var err error
	if s.Retry != nil {
		err = s.Retry.Do("render "+hostOf(s.URL), run)
	} else {
		err = run()
	}
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return page, nil
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
