package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chainmeet/backend/internal/meetup"
)

const samplePage = `<!doctype html>
<html>
<head>
<title>Fallback Title</title>
<meta property="og:title" content="Community Call #12">
<meta property="og:description" content="Monthly community video call.">
<meta property="og:image" content="https://cdn.example/call.png">
</head>
<body>hello</body>
</html>`

// TestPreviewExtractsOpenGraph verifies preview extracts open graph behavior.
func TestPreviewExtractsOpenGraph(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	svc := New(2*time.Second, nil)
	rec := meetup.Record{ID: 1, LocationKind: meetup.KindOnline, Location: srv.URL}
	p, err := svc.For(context.Background(), rec)
	if err != nil {
		t.Fatalf("For() error = %v", err)
	}
	if p.Title != "Community Call #12" {
		t.Fatalf("Title = %q", p.Title)
	}
	if p.Description != "Monthly community video call." {
		t.Fatalf("Description = %q", p.Description)
	}
	if p.ImageURL != "https://cdn.example/call.png" {
		t.Fatalf("ImageURL = %q", p.ImageURL)
	}
}

// TestPreviewTitleFallback verifies preview title fallback behavior.
func TestPreviewTitleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title> Plain Page </title></head></html>`))
	}))
	defer srv.Close()

	svc := New(2*time.Second, nil)
	p, err := svc.For(context.Background(), meetup.Record{ID: 2, LocationKind: meetup.KindOnline, Location: srv.URL})
	if err != nil {
		t.Fatalf("For() error = %v", err)
	}
	if p.Title != "Plain Page" {
		t.Fatalf("Title = %q, want trimmed document title", p.Title)
	}
}

// TestPreviewRejectsNonOnline verifies preview rejects non online behavior.
func TestPreviewRejectsNonOnline(t *testing.T) {
	svc := New(2*time.Second, nil)
	rec := meetup.Record{ID: 3, LocationKind: meetup.KindInPerson, Location: "51.5,-0.09"}
	if _, err := svc.For(context.Background(), rec); err == nil {
		t.Fatal("For() accepted an in-person record")
	}
}

// TestPreviewFetchFailure verifies preview fetch failure behavior.
func TestPreviewFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	svc := New(2*time.Second, nil)
	if _, err := svc.For(context.Background(), meetup.Record{ID: 4, LocationKind: meetup.KindOnline, Location: srv.URL}); err == nil {
		t.Fatal("For() ignored a fetch failure")
	}
	if _, err := svc.For(context.Background(), meetup.Record{ID: 5, LocationKind: meetup.KindOnline, Location: "ftp://example.com"}); err == nil {
		t.Fatal("For() accepted a non-http scheme")
	}
}
