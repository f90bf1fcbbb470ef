package fetch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/theus-ai/omfetch/pkg/domain/interfaces"
	"github.com/theus-ai/omfetch/pkg/domain/model"
	"github.com/theus-ai/omfetch/pkg/domain/types"
)

// Browser-like headers so document hosts do not reject the request with
// a 403 the way they do for default Go user agents.
const (
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultAccept    = "application/pdf,application/octet-stream,*/*"
)

var pdfMagic = []byte("%PDF")

type fetcher struct {
	client *http.Client
}

// Option is a functional option for the fetcher
type Option func(*fetcher)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(f *fetcher) {
		f.client = client
	}
}

// NewFetcher creates an HTTP fetcher that accepts only PDF responses
func NewFetcher(opts ...Option) interfaces.Fetcher {
	f := &fetcher{
		client: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL into destDir. The response must be 2xx and
// look like a PDF by content type or %PDF magic bytes; anything else is
// a FetchRejected error and the caller moves on to the next link. The
// body is streamed to a temp file and renamed, so a failed fetch never
// leaves a partial file behind.
func (f *fetcher) Fetch(ctx context.Context, rawURL, referer, destDir string) (*model.DownloadResult, error) {
	logger := ctxlog.From(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request",
			goerr.V("url", rawURL), goerr.T(types.TagFetchRejected))
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", defaultAccept)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "request failed",
			goerr.V("url", rawURL), goerr.T(types.TagFetchRejected))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.New("unexpected status",
			goerr.V("url", rawURL),
			goerr.V("status", resp.StatusCode),
			goerr.T(types.TagFetchRejected))
	}

	// Sniff before writing: content type alone is not trusted
	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, goerr.Wrap(err, "failed to read response body",
			goerr.V("url", rawURL), goerr.T(types.TagFetchRejected))
	}
	head = head[:n]

	if !isPDFContentType(resp.Header.Get("Content-Type")) && !bytes.HasPrefix(head, pdfMagic) {
		return nil, goerr.New("response is not a PDF",
			goerr.V("url", rawURL),
			goerr.V("content_type", resp.Header.Get("Content-Type")),
			goerr.T(types.TagFetchRejected))
	}

	result, err := f.writeFile(rawURL, destDir, io.MultiReader(bytes.NewReader(head), resp.Body))
	if err != nil {
		return nil, err
	}

	logger.Info("Fetched PDF",
		"url", rawURL,
		"path", result.Path,
		"size_bytes", result.Size,
	)
	return result, nil
}

// writeFile streams body into a temp file under destDir, then renames it
// to the deterministic filename for rawURL. Rename overwrites, which is
// the documented collision policy.
func (f *fetcher) writeFile(rawURL, destDir string, body io.Reader) (*model.DownloadResult, error) {
	tmp, err := os.CreateTemp(destDir, ".tmp-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temp file",
			goerr.V("dir", destDir), goerr.T(types.TagIOFailure))
	}
	tmpPath := tmp.Name()

	size, err := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, goerr.Wrap(err, "failed to write file",
			goerr.V("url", rawURL), goerr.T(types.TagIOFailure))
	}

	finalPath := filepath.Join(destDir, Filename(rawURL))
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return nil, goerr.Wrap(err, "failed to finalize file",
			goerr.V("path", finalPath), goerr.T(types.TagIOFailure))
	}

	return &model.DownloadResult{Path: finalPath, Size: size}, nil
}

// Filename derives the deterministic local filename for a source URL:
// the sanitized URL path tail with a .pdf extension ensured, or
// document-<sha256[:8]>.pdf when the URL has no usable tail. The same
// URL always maps to the same name.
func Filename(rawURL string) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	name = sanitize(name)
	if name == "" || name == "." || name == "/" {
		name = "document-" + urlHash(rawURL)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

func urlHash(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:8]
}

func sanitize(name string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", "\x00", "", "?", "-", "&", "-", "#", "-")
	return strings.Trim(replacer.Replace(strings.TrimSpace(name)), ". ")
}

func isPDFContentType(contentType string) bool {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return strings.EqualFold(mediaType, "application/pdf")
}
