package scan_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/theus-ai/omfetch/pkg/infra/scan"
)

const listingHTML = `<html><body>
<a href="/docs/om.pdf">Offering Memorandum</a>
<a href="https://cdn.example/files/flyer.pdf?v=2">Flyer</a>
<a href="/contact">Contact us</a>
<a href="#top">Back to top</a>
<a href="javascript:void(0)">Menu</a>
<a href="/lead/package">View Package</a>
<a href="/docs/om.pdf">Offering Memorandum (footer)</a>
</body></html>`

func TestScanner_Extract(t *testing.T) {
	s := scan.NewScanner()

	links, err := s.Extract("https://site.example/listing/42", strings.NewReader(listingHTML))
	gt.NoError(t, err)

	gt.V(t, links).Equal([]string{
		"https://site.example/docs/om.pdf",
		"https://cdn.example/files/flyer.pdf?v=2",
		"https://site.example/lead/package",
	})
}

func TestScanner_ExtractNothing(t *testing.T) {
	s := scan.NewScanner()

	links, err := s.Extract("https://site.example/listing/42",
		strings.NewReader(`<html><body><a href="/about">About</a></body></html>`))
	gt.NoError(t, err)
	gt.V(t, len(links)).Equal(0)
}

func TestScanner_ScanPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.V(t, strings.Contains(r.Header.Get("User-Agent"), "Mozilla")).Equal(true)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/docs/om.pdf">Download</a></body></html>`))
	}))
	defer srv.Close()

	s := scan.NewScanner()
	links, err := s.ScanPage(context.Background(), srv.URL+"/listing/1")
	gt.NoError(t, err)
	gt.V(t, len(links)).Equal(1)
	gt.V(t, links[0]).Equal(srv.URL + "/docs/om.pdf")
}

func TestScanner_ScanPageErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := scan.NewScanner()
	_, err := s.ScanPage(context.Background(), srv.URL+"/gone")
	gt.Error(t, err)
}
