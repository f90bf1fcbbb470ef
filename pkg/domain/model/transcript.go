package model

import "time"

// LinkSource describes where an observed PDF link came from
type LinkSource string

const (
	LinkSourceNetwork    LinkSource = "network"    // PDF response seen on the wire
	LinkSourceTab        LinkSource = "tab"        // New tab opened on a PDF URL
	LinkSourceNavigation LinkSource = "navigation" // Main frame navigated to a PDF URL
	LinkSourceDownload   LinkSource = "download"   // Browser download started for the URL
	LinkSourcePageScan   LinkSource = "page-scan"  // Static anchor scan of the listing page
)

// ObservedLink is a URL discovered during a navigation run. Insertion
// order equals discovery order; duplicates are preserved and deduped by
// the orchestrator before fetching.
type ObservedLink struct {
	URL    string
	Source LinkSource
	At     time.Time
}

// SavedFile is a file the browser itself downloaded during the run
type SavedFile struct {
	Path string
	Size int64
}

// NavigationTranscript is everything one navigation run produced: the
// agent's action log, links observed by the PDF URL observer, and files
// the browser saved on its own.
type NavigationTranscript struct {
	RunID    string
	Steps    []string
	Observed []ObservedLink
	Saved    []SavedFile
}

// ObservedURLs returns the observed link URLs in discovery order with
// duplicates removed.
func (t *NavigationTranscript) ObservedURLs() []string {
	seen := make(map[string]struct{}, len(t.Observed))
	urls := make([]string, 0, len(t.Observed))
	for _, link := range t.Observed {
		if _, ok := seen[link.URL]; ok {
			continue
		}
		seen[link.URL] = struct{}{}
		urls = append(urls, link.URL)
	}
	return urls
}
