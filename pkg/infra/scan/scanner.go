package scan

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/theus-ai/omfetch/pkg/domain/model"
)

// Scanner extracts candidate document URLs from a listing page without
// any agent involvement: direct PDF anchors, and anchors whose text
// matches a known document phrase.
type Scanner struct {
	client *http.Client
}

// NewScanner creates a page scanner
func NewScanner() *Scanner {
	return &Scanner{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// ScanPage fetches the page HTML over plain HTTP and extracts candidate
// links. Used when the browser or agent is unavailable.
func (s *Scanner) ScanPage(ctx context.Context, pageURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create page request", goerr.V("url", pageURL))
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch page", goerr.V("url", pageURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.New("unexpected status fetching page",
			goerr.V("url", pageURL), goerr.V("status", resp.StatusCode))
	}

	return s.Extract(pageURL, resp.Body)
}

// Extract parses HTML and returns candidate document URLs in document
// order, resolved against base, deduplicated.
func (s *Scanner) Extract(base string, r io.Reader) ([]string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid base URL", goerr.V("base", base))
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse page HTML")
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "#") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := baseURL.ResolveReference(ref).String()

		if !isCandidate(abs, sel.Text()) {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})

	return links, nil
}

func isCandidate(absURL, anchorText string) bool {
	u, err := url.Parse(absURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	if strings.HasSuffix(path, ".pdf") {
		return true
	}
	if strings.Contains(path, "download") {
		return true
	}
	// Otherwise the anchor text has to name the document
	return containsPhrase(strings.ToLower(anchorText))
}

func containsPhrase(text string) bool {
	for _, phrase := range model.DocumentPhrases {
		if strings.Contains(text, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
