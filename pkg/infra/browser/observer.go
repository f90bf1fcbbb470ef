package browser

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/theus-ai/omfetch/pkg/domain/model"
)

// downloadState tracks one browser-initiated download by GUID
type downloadState struct {
	guid              string
	url               string
	suggestedFilename string
	completed         bool
	failed            bool
	finalPath         string
}

// Observer passively watches one session's browser events and collects
// PDF URLs and completed downloads. All handlers run on the chromedp
// event goroutine and must stay short.
type Observer struct {
	downloadDir string

	mu        sync.Mutex
	observed  []model.ObservedLink
	downloads map[string]*downloadState
	cond      *sync.Cond
}

// NewObserver creates a standalone observer. Sessions attach one
// automatically; tests and fakes build their own.
func NewObserver(downloadDir string) *Observer {
	o := &Observer{
		downloadDir: downloadDir,
		downloads:   make(map[string]*downloadState),
	}
	o.cond = sync.NewCond(&o.mu)
	return o
}

// Links returns the observed links collected so far, discovery order,
// duplicates preserved.
func (o *Observer) Links() []model.ObservedLink {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]model.ObservedLink, len(o.observed))
	copy(out, o.observed)
	return out
}

// Saved returns files the browser finished downloading
func (o *Observer) Saved() []model.SavedFile {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []model.SavedFile
	for _, d := range o.downloads {
		if !d.completed || d.failed || d.finalPath == "" {
			continue
		}
		info, err := os.Stat(d.finalPath)
		if err != nil || info.Size() == 0 {
			continue
		}
		out = append(out, model.SavedFile{Path: d.finalPath, Size: info.Size()})
	}
	return out
}

// Record appends a link discovered outside the event stream, such as the
// static page scan.
func (o *Observer) Record(rawURL string, source model.LinkSource) {
	o.appendLink(rawURL, source)
}

// WaitDownloads blocks until every download the browser started has
// finished (or failed), or the deadline passes. Returns immediately when
// nothing is in flight.
func (o *Observer) WaitDownloads(ctx context.Context, timeout time.Duration) {
	deadline := time.Now().Add(timeout)

	// Wake the cond wait when the deadline or ctx expires. The waker
	// takes the lock so the broadcast cannot slip between the predicate
	// check and the wait.
	waitCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	go func() {
		<-waitCtx.Done()
		o.mu.Lock()
		o.cond.Broadcast()
		o.mu.Unlock()
	}()

	o.mu.Lock()
	defer o.mu.Unlock()
	for o.pendingLocked() > 0 && waitCtx.Err() == nil {
		o.cond.Wait()
	}
}

func (o *Observer) pendingLocked() int {
	n := 0
	for _, d := range o.downloads {
		if !d.completed {
			n++
		}
	}
	return n
}

func (o *Observer) appendLink(rawURL string, source model.LinkSource) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observed = append(o.observed, model.ObservedLink{
		URL:    rawURL,
		Source: source,
		At:     time.Now(),
	})
}

// handleEvent is registered with chromedp.ListenTarget / ListenBrowser
func (o *Observer) handleEvent(ev any) {
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		if e.Response == nil {
			return
		}
		if isPDFContentType(e.Response.MimeType) || IsPDFURL(e.Response.URL) {
			o.appendLink(e.Response.URL, model.LinkSourceNetwork)
		}
	case *page.EventFrameNavigated:
		if e.Frame != nil && e.Frame.ParentID == "" && IsPDFURL(e.Frame.URL) {
			o.appendLink(e.Frame.URL, model.LinkSourceNavigation)
		}
	case *target.EventTargetCreated:
		if e.TargetInfo != nil && e.TargetInfo.Type == "page" && IsPDFURL(e.TargetInfo.URL) {
			o.appendLink(e.TargetInfo.URL, model.LinkSourceTab)
		}
	case *browser.EventDownloadWillBegin:
		o.handleDownloadWillBegin(e)
	case *browser.EventDownloadProgress:
		o.handleDownloadProgress(e)
	}
}

func (o *Observer) handleDownloadWillBegin(e *browser.EventDownloadWillBegin) {
	o.mu.Lock()
	o.downloads[e.GUID] = &downloadState{
		guid:              e.GUID,
		url:               e.URL,
		suggestedFilename: e.SuggestedFilename,
	}
	o.mu.Unlock()

	if e.URL != "" {
		o.appendLink(e.URL, model.LinkSourceDownload)
	}
}

func (o *Observer) handleDownloadProgress(e *browser.EventDownloadProgress) {
	o.mu.Lock()
	defer o.mu.Unlock()

	d, ok := o.downloads[e.GUID]
	if !ok {
		d = &downloadState{guid: e.GUID}
		o.downloads[e.GUID] = d
	}

	switch e.State {
	case browser.DownloadProgressStateCompleted:
		d.completed = true
		d.finalPath = o.finalizeDownloadLocked(d)
		o.cond.Broadcast()
	case browser.DownloadProgressStateCanceled:
		d.completed = true
		d.failed = true
		o.cond.Broadcast()
	}
}

// finalizeDownloadLocked renames the GUID-named file Chrome wrote to the
// suggested filename. The rename is retried briefly since Chrome may
// still be flushing the file when the completed event arrives.
func (o *Observer) finalizeDownloadLocked(d *downloadState) string {
	guidPath := filepath.Join(o.downloadDir, d.guid)
	name := SanitizeFilename(d.suggestedFilename)
	if name == "" {
		name = d.guid + ".pdf"
	}
	finalPath := filepath.Join(o.downloadDir, name)

	for i := 0; i < 10; i++ {
		if err := os.Rename(guidPath, finalPath); err == nil {
			return finalPath
		}
		time.Sleep(50 * time.Millisecond)
	}
	if _, err := os.Stat(guidPath); err == nil {
		return guidPath
	}
	return ""
}

// IsPDFURL reports whether the URL path carries a PDF signature
func IsPDFURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

func isPDFContentType(mimeType string) bool {
	return strings.EqualFold(strings.TrimSpace(mimeType), "application/pdf")
}

// SanitizeFilename strips path separators and control characters from a
// browser-suggested filename.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer("/", "-", "\\", "-", "..", "-", "\x00", "")
	name = replacer.Replace(name)
	return strings.Trim(name, ". ")
}
