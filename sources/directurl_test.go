package sources

import (
	"compress/gzip"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}

func TestDirectURLParsesCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("id,name,price\n1,Alpha,100\n2,Beta,80\n"))
	}))
	defer srv.Close()

	src := &DirectURLSource{URL: srv.URL + "/listings.csv", Client: testClient(), Logger: newTestLogger()}
	rs, label, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rs.Len() != 2 {
		t.Errorf("rows: got %d, want 2", rs.Len())
	}
	if label == "" {
		t.Error("expected a provenance label")
	}
}

func TestDirectURLDecompressesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("id,name,price\n1,Alpha,100\n"))
		_ = gz.Close()
	}))
	defer srv.Close()

	src := &DirectURLSource{URL: srv.URL + "/listings.csv.gz", Client: testClient(), Logger: newTestLogger()}
	rs, _, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rs.Len() != 1 {
		t.Errorf("rows: got %d, want 1", rs.Len())
	}
}

func TestDirectURLFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := &DirectURLSource{URL: srv.URL, Client: testClient(), Logger: newTestLogger()}
	_, _, err := src.Load()

	var serr *SourceError
	if !errors.As(err, &serr) || serr.Kind != FetchError {
		t.Fatalf("expected a FetchError, got %v", err)
	}
}

func TestDirectURLUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // closed on purpose

	src := &DirectURLSource{URL: srv.URL, Client: testClient(), Logger: newTestLogger()}
	_, _, err := src.Load()

	var serr *SourceError
	if !errors.As(err, &serr) || serr.Kind != FetchError {
		t.Fatalf("expected a FetchError, got %v", err)
	}
}
