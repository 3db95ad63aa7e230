package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchVideos(t *testing.T) {
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [
			{"id": {"videoId": "abc123"}, "snippet": {
				"title": "Unity Tutorial",
				"description": "Learn Unity",
				"channelTitle": "GameDev",
				"publishedAt": "2024-01-15T00:00:00Z",
				"thumbnails": {"medium": {"url": "https://img/m.jpg"}, "default": {"url": "https://img/d.jpg"}}
			}},
			{"id": {}, "snippet": {"title": "not a video"}}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	videos, err := c.SearchVideos(context.Background(), "unity basics", SearchOptions{})
	if err != nil {
		t.Fatalf("SearchVideos() error = %v", err)
	}

	if gotQuery != "unity basics" {
		t.Errorf("query param = %q", gotQuery)
	}
	if gotKey != "test-key" {
		t.Errorf("key param = %q", gotKey)
	}
	if len(videos) != 1 {
		t.Fatalf("len(videos) = %d, want 1 (entries without a videoId are skipped)", len(videos))
	}
	v := videos[0]
	if v.ID != "abc123" || v.Title != "Unity Tutorial" {
		t.Errorf("video = %+v", v)
	}
	if v.URL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("URL = %q", v.URL)
	}
	if v.EmbedURL != "https://www.youtube.com/embed/abc123" {
		t.Errorf("EmbedURL = %q", v.EmbedURL)
	}
	if v.Thumbnail != "https://img/m.jpg" {
		t.Errorf("Thumbnail = %q, want medium preferred", v.Thumbnail)
	}
}

func TestSearchVideosErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	if _, err := c.SearchVideos(context.Background(), "q", SearchOptions{}); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestVideoDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			t.Errorf("path = %q, want /videos", r.URL.Path)
		}
		if id := r.URL.Query().Get("id"); id != "a,b" {
			t.Errorf("id param = %q", id)
		}
		w.Write([]byte(`{"items": [
			{"id": "a", "contentDetails": {"duration": "PT4M13S"}, "statistics": {"viewCount": "1024"}},
			{"id": "b", "contentDetails": {"duration": "PT1H2M3S"}, "statistics": {"viewCount": "7"}}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	details, err := c.VideoDetails(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("VideoDetails() error = %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("len(details) = %d", len(details))
	}
	if details[0].Duration != "4:13" {
		t.Errorf("details[0].Duration = %q", details[0].Duration)
	}
	if details[1].Duration != "1:02:03" {
		t.Errorf("details[1].Duration = %q", details[1].Duration)
	}
}

func TestVideoDetailsEmptyInput(t *testing.T) {
	c := New("http://unused", "k")
	details, err := c.VideoDetails(context.Background(), nil)
	if err != nil || details != nil {
		t.Errorf("VideoDetails(nil) = %v, %v", details, err)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		iso  string
		want string
	}{
		{"PT4M13S", "4:13"},
		{"PT1H2M3S", "1:02:03"},
		{"PT45S", "0:45"},
		{"PT2H", "2:00:00"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.iso); got != tt.want {
			t.Errorf("FormatDuration(%q) = %q, want %q", tt.iso, got, tt.want)
		}
	}
}
