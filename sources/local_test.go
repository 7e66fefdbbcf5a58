package sources

import (
	"errors"
	"io"
	"strings"
	"testing"

	"prophet-bnb/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard) }

func TestLocalUploadReviewCountJoin(t *testing.T) {
	listings := strings.NewReader("id,name,price\n1,Alpha,100\n2,Beta,80\n3,Gamma,60\n")
	reviews := strings.NewReader("listing_id,comment\n1,nice\n1,great\n2,ok\n")

	src := &LocalUploadSource{Listings: listings, Reviews: reviews, Logger: newTestLogger()}
	rs, label, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if label != "Local CSV Upload" {
		t.Errorf("label: got %q", label)
	}
	if rs.Len() != 3 {
		t.Fatalf("expected 3 listings kept, got %d", rs.Len())
	}

	col := rs.ColumnIndex("num_reviews")
	if col < 0 {
		t.Fatal("num_reviews column missing after join")
	}
	// Left join: unmatched listing 3 gets an explicit 0.
	want := []string{"2", "1", "0"}
	for i, w := range want {
		if rs.Rows[i][col] != w {
			t.Errorf("row %d num_reviews: got %q, want %q", i, rs.Rows[i][col], w)
		}
	}
}

func TestLocalUploadBadReviewsIsWarning(t *testing.T) {
	listings := strings.NewReader("id,name,price\n1,Alpha,100\n")
	reviews := strings.NewReader("") // unreadable: no header

	src := &LocalUploadSource{Listings: listings, Reviews: reviews, Logger: newTestLogger()}
	rs, _, err := src.Load()
	if err != nil {
		t.Fatalf("reviews failure must not be fatal: %v", err)
	}
	if rs.Len() != 1 {
		t.Errorf("listings should still be returned, got %d rows", rs.Len())
	}
}

func TestLocalUploadMissingJoinKeySkipsMerge(t *testing.T) {
	listings := strings.NewReader("code,name,price\n1,Alpha,100\n")
	reviews := strings.NewReader("listing_id,comment\n1,nice\n")

	src := &LocalUploadSource{Listings: listings, Reviews: reviews, Logger: newTestLogger()}
	rs, _, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rs.ColumnIndex("num_reviews") >= 0 {
		t.Error("merge should be skipped when the listings id column is missing")
	}
}

func TestLocalUploadMalformedListings(t *testing.T) {
	src := &LocalUploadSource{Listings: strings.NewReader(""), Logger: newTestLogger()}
	_, _, err := src.Load()

	var serr *SourceError
	if !errors.As(err, &serr) || serr.Kind != ParseError {
		t.Fatalf("expected a ParseError, got %v", err)
	}
}

func TestLocalUploadRaggedRowsTolerated(t *testing.T) {
	listings := strings.NewReader("id,name,price\n1,Alpha\n2,Beta,80,extra\n")

	src := &LocalUploadSource{Listings: listings, Logger: newTestLogger()}
	rs, _, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rs.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", rs.Len())
	}
	for i, row := range rs.Rows {
		if len(row) != 3 {
			t.Errorf("row %d not aligned to header: %d cells", i, len(row))
		}
	}
}

func TestExampleSource(t *testing.T) {
	rs, label, err := ExampleSource{}.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if label != ExampleLabel {
		t.Errorf("label: got %q", label)
	}
	if rs.Len() != 10 {
		t.Errorf("demo rows: got %d, want 10", rs.Len())
	}
	priceCol := rs.ColumnIndex("price")
	if priceCol < 0 || rs.Rows[0][priceCol] != "120" {
		t.Errorf("unexpected demo price layout")
	}
}
