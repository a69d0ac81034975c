package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
)

func TestPost(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %v, want %v", ct, "application/json")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("Unmarshal() error = %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := Post(context.Background(), srv.URL, Embed{Title: "Warn", Color: 0xFF0000})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if len(got.Embeds) != 1 {
		t.Fatalf("embeds = %v, want %v", len(got.Embeds), 1)
	}
	if got.Embeds[0].Title != "Warn" {
		t.Errorf("Title = %v, want %v", got.Embeds[0].Title, "Warn")
	}
	if got.Embeds[0].Timestamp == "" {
		t.Error("Timestamp should be filled in")
	}
}

func TestPostEmptyURL(t *testing.T) {
	if err := Post(context.Background(), "", Embed{}); err != nil {
		t.Errorf("Post() error = %v, want nil", err)
	}
}

func TestPostErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if err := Post(context.Background(), srv.URL, Embed{}); err == nil {
		t.Error("Post() should fail on a 400 response")
	}
}
