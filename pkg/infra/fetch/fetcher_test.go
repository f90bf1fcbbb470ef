package fetch_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/theus-ai/omfetch/pkg/domain/types"
	"github.com/theus-ai/omfetch/pkg/infra/fetch"
)

func pdfBody(size int) []byte {
	body := make([]byte, size)
	copy(body, "%PDF-1.4\n")
	return body
}

func TestFetcher_DownloadsPDF(t *testing.T) {
	body := pdfBody(500000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.V(t, r.Header.Get("Referer")).Equal("https://site.example/listing/42")
		gt.V(t, strings.Contains(r.Header.Get("User-Agent"), "Mozilla")).Equal(true)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := fetch.NewFetcher()

	result, err := f.Fetch(context.Background(), srv.URL+"/docs/om.pdf", "https://site.example/listing/42", dir)
	gt.NoError(t, err)
	gt.V(t, result.Size).Equal(int64(500000))
	gt.V(t, result.Path).Equal(filepath.Join(dir, "om.pdf"))

	written, err := os.ReadFile(result.Path)
	gt.NoError(t, err)
	gt.V(t, bytes.Equal(written, body)).Equal(true)
}

func TestFetcher_ForbiddenIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := fetch.NewFetcher()

	_, err := f.Fetch(context.Background(), srv.URL+"/om.pdf", "", dir)
	gt.Error(t, err)
	gt.V(t, goerr.HasTag(err, types.TagFetchRejected)).Equal(true)
}

func TestFetcher_NonPDFContentIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not a document</html>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := fetch.NewFetcher()

	_, err := f.Fetch(context.Background(), srv.URL+"/om.pdf", "", dir)
	gt.Error(t, err)
	gt.V(t, goerr.HasTag(err, types.TagFetchRejected)).Equal(true)

	// No partial file may remain
	entries, readErr := os.ReadDir(dir)
	gt.NoError(t, readErr)
	gt.V(t, len(entries)).Equal(0)
}

func TestFetcher_MagicBytesBeatContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(pdfBody(2048))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := fetch.NewFetcher()

	result, err := f.Fetch(context.Background(), srv.URL+"/download", "", dir)
	gt.NoError(t, err)
	gt.V(t, result.Size).Equal(int64(2048))
}

func TestFetcher_CollisionOverwrites(t *testing.T) {
	serveSize := 1000
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdfBody(serveSize))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := fetch.NewFetcher()
	url := srv.URL + "/om.pdf"

	first, err := f.Fetch(context.Background(), url, "", dir)
	gt.NoError(t, err)

	serveSize = 2000
	second, err := f.Fetch(context.Background(), url, "", dir)
	gt.NoError(t, err)

	gt.V(t, first.Path).Equal(second.Path)
	info, err := os.Stat(second.Path)
	gt.NoError(t, err)
	gt.V(t, info.Size()).Equal(int64(2000))

	entries, err := os.ReadDir(dir)
	gt.NoError(t, err)
	gt.V(t, len(entries)).Equal(1)
}

func TestFilename(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "URL path tail",
			url:  "https://site.example/docs/om.pdf",
			want: "om.pdf",
		},
		{
			name: "Query string stripped",
			url:  "https://site.example/docs/flyer.pdf?token=abc",
			want: "flyer.pdf",
		},
		{
			name: "Extension appended",
			url:  "https://site.example/download/brochure",
			want: "brochure.pdf",
		},
		{
			name: "Uppercase extension kept",
			url:  "https://site.example/docs/OM.PDF",
			want: "OM.PDF",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.V(t, fetch.Filename(tc.url)).Equal(tc.want)
		})
	}
}

func TestFilename_NoUsableTail(t *testing.T) {
	name := fetch.Filename("https://site.example/")
	gt.V(t, strings.HasPrefix(name, "document-")).Equal(true)
	gt.V(t, strings.HasSuffix(name, ".pdf")).Equal(true)

	// Deterministic per URL, distinct across URLs
	gt.V(t, fetch.Filename("https://site.example/")).Equal(name)
	gt.V(t, fetch.Filename("https://other.example/") == name).Equal(false)
}
