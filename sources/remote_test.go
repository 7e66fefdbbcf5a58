package sources

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"prophet-bnb/catalog"
	"prophet-bnb/config"
	"prophet-bnb/models"
)

func snapshotServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/listings.csv.gz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("id,name,price,neighbourhood\n" +
			"1,Alpha,100,DOWNTOWN\n" +
			"2,Beta,80,uptown\n" +
			"3,Gamma,60,Harbor\n"))
	})
	mux.HandleFunc("/reviews.csv.gz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("listing_id,comment\n1,nice\n1,great\n2,ok\n"))
	})
	mux.HandleFunc("/neighbourhoods.csv.gz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("neighbourhood\nDowntown\nUptown\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func snapshotCache(t *testing.T) *catalog.SnapshotCache {
	t.Helper()
	return catalog.NewSnapshotCache(&config.Config{
		CacheDir:       t.TempDir(),
		HTTPTimeoutSec: 5,
		MaxRetries:     1,
	}, newTestLogger())
}

func TestRemoteSnapshotJoins(t *testing.T) {
	srv := snapshotServer(t)

	src := &RemoteSnapshotSource{
		Cache: snapshotCache(t),
		Version: models.VersionDescriptor{
			ListingsURL:       srv.URL + "/listings.csv.gz",
			ReviewsURL:        srv.URL + "/reviews.csv.gz",
			NeighbourhoodsURL: srv.URL + "/neighbourhoods.csv.gz",
		},
		City:   "new-york",
		Date:   "2026-06-01",
		Logger: newTestLogger(),
	}

	rs, label, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if label != "new-york 2026-06-01" {
		t.Errorf("label: got %q, want %q", label, "new-york 2026-06-01")
	}
	if rs.Len() != 3 {
		t.Fatalf("rows: got %d, want 3", rs.Len())
	}

	// Left join over the reviews file: unmatched listing 3 gets 0.
	col := rs.ColumnIndex("num_reviews")
	if col < 0 {
		t.Fatal("num_reviews column missing after join")
	}
	wantCounts := []string{"2", "1", "0"}
	for i, w := range wantCounts {
		if rs.Rows[i][col] != w {
			t.Errorf("row %d num_reviews: got %q, want %q", i, rs.Rows[i][col], w)
		}
	}

	// Neighbourhood values take the canonical casing from the
	// neighbourhoods file; values with no canonical match are left as-is.
	hood := rs.ColumnIndex("neighbourhood")
	wantHoods := []string{"Downtown", "Uptown", "Harbor"}
	for i, w := range wantHoods {
		if rs.Rows[i][hood] != w {
			t.Errorf("row %d neighbourhood: got %q, want %q", i, rs.Rows[i][hood], w)
		}
	}
}

func TestRemoteSnapshotListingsOnly(t *testing.T) {
	srv := snapshotServer(t)

	src := &RemoteSnapshotSource{
		Cache:   snapshotCache(t),
		Version: models.VersionDescriptor{ListingsURL: srv.URL + "/listings.csv.gz"},
		City:    "amsterdam",
		Date:    "2026-05-15",
		Logger:  newTestLogger(),
	}

	rs, _, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rs.Len() != 3 {
		t.Errorf("rows: got %d, want 3", rs.Len())
	}
	if rs.ColumnIndex("num_reviews") >= 0 {
		t.Error("no reviews file, so no num_reviews column should be added")
	}
}

func TestRemoteSnapshotResolveFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	src := &RemoteSnapshotSource{
		Cache:   snapshotCache(t),
		Version: models.VersionDescriptor{ListingsURL: srv.URL + "/listings.csv.gz"},
		City:    "oslo",
		Date:    "2026-01-01",
		Logger:  newTestLogger(),
	}

	_, _, err := src.Load()
	var serr *SourceError
	if !errors.As(err, &serr) || serr.Kind != FetchError {
		t.Fatalf("expected a FetchError, got %v", err)
	}
	var derr *catalog.DownloadError
	if !errors.As(err, &derr) {
		t.Errorf("expected the download failure in the chain, got %v", err)
	}
}
