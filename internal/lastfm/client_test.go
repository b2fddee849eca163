package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		apiKey:      "test-api-key",
		httpClient:  server.Client(),
		baseURL:     server.URL + "/",
		maxTags:     defaultMaxTags,
		retryDelays: []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond},
	}
}

func artistTags(names ...string) artistTagsResponse {
	var resp artistTagsResponse
	resp.TopTags.Tag = []Tag{}
	for _, n := range names {
		resp.TopTags.Tag = append(resp.TopTags.Tag, Tag{Name: n, URL: "http://last.fm/tag/" + n})
	}
	return resp
}

func TestArtistTags(t *testing.T) {
	tests := []struct {
		name     string
		artist   string
		response any
		wantTags []string
		wantErr  error
	}{
		{
			name:     "artist has tags",
			artist:   "Radiohead",
			response: artistTags("Alternative", "rock", "Electronic"),
			wantTags: []string{"alternative", "rock", "electronic"},
		},
		{
			name:     "keeps only top five",
			artist:   "Cher",
			response: artistTags("pop", "dance", "80s", "disco", "female vocalists", "diva"),
			wantTags: []string{"pop", "dance", "80s", "disco", "female vocalists"},
		},
		{
			name:     "no tags returns empty slice",
			artist:   "Unknown Artist",
			response: artistTags(),
			wantTags: []string{},
		},
		{
			name:     "unknown artist returns empty slice",
			artist:   "zzzzzz",
			response: apiError{Error: 6, Message: "The artist you supplied could not be found"},
			wantTags: []string{},
		},
		{
			name:     "invalid API key",
			artist:   "Test",
			response: apiError{Error: 10, Message: "Invalid API key"},
			wantErr:  ErrInvalidAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("method") != "artist.getTopTags" {
					t.Errorf("unexpected method: %s", q.Get("method"))
				}
				if q.Get("artist") != tt.artist {
					t.Errorf("artist = %q, want %q", q.Get("artist"), tt.artist)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			tags, err := newTestClient(server).ArtistTags(context.Background(), tt.artist)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ArtistTags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if tags == nil {
				t.Fatal("ArtistTags() = nil, want non-nil slice")
			}
			if !slices.Equal(tags, tt.wantTags) {
				t.Errorf("ArtistTags() = %v, want %v", tags, tt.wantTags)
			}
		})
	}
}

func TestArtistTags_EmptyArtistSkipsRequest(t *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
	}))
	defer server.Close()

	tags, err := newTestClient(server).ArtistTags(context.Background(), "  ")
	if err != nil || len(tags) != 0 {
		t.Errorf("ArtistTags() = %v, %v, want empty, nil", tags, err)
	}
	if count := requestCount.Load(); count != 0 {
		t.Errorf("Expected 0 requests, got %d", count)
	}
}

func TestArtistTags_RateLimitRetry(t *testing.T) {
	var requestCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		w.Header().Set("Content-Type", "application/json")

		// Fail first 2 requests with rate limit, succeed on 3rd
		if count < 3 {
			json.NewEncoder(w).Encode(apiError{Error: 29, Message: "Rate limit exceeded"})
			return
		}
		json.NewEncoder(w).Encode(artistTags("rock"))
	}))
	defer server.Close()

	tags, err := newTestClient(server).ArtistTags(context.Background(), "Artist")
	if err != nil {
		t.Fatalf("ArtistTags() error = %v", err)
	}
	if len(tags) != 1 || tags[0] != "rock" {
		t.Errorf("ArtistTags() got unexpected tags: %v", tags)
	}

	// 2 rate limited + 1 success
	if count := requestCount.Load(); count != 3 {
		t.Errorf("Expected 3 requests, got %d", count)
	}
}

func TestArtistTags_RateLimitExhausted(t *testing.T) {
	var requestCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(apiError{Error: 29, Message: "Rate limit exceeded"})
	}))
	defer server.Close()

	_, err := newTestClient(server).ArtistTags(context.Background(), "Artist")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("ArtistTags() error = %v, want ErrRateLimited", err)
	}

	// 1 initial + 3 retries
	if count := requestCount.Load(); count != 4 {
		t.Errorf("Expected 4 requests, got %d", count)
	}
}

func TestArtistTags_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := newTestClient(server).ArtistTags(context.Background(), "Artist"); err == nil {
		t.Error("ArtistTags() error = nil, want error for 503")
	}
}

func TestArtistTags_ContextCancelledDuringRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(apiError{Error: 29, Message: "Rate limit exceeded"})
	}))
	defer server.Close()

	client := newTestClient(server)
	client.retryDelays = []time.Duration{time.Minute}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.ArtistTags(ctx, "Artist"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("ArtistTags() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient(&Config{APIKey: "test-key"})

	if client.apiKey != "test-key" {
		t.Errorf("NewClient() apiKey = %s, want test-key", client.apiKey)
	}
	if client.httpClient == nil || client.httpClient.Timeout != defaultTimeout {
		t.Error("NewClient() httpClient not configured with default timeout")
	}
	if client.maxTags != defaultMaxTags {
		t.Errorf("NewClient() maxTags = %d, want %d", client.maxTags, defaultMaxTags)
	}
	if client.baseURL != baseURL {
		t.Errorf("NewClient() baseURL = %s, want %s", client.baseURL, baseURL)
	}
	if len(client.retryDelays) != 3 {
		t.Errorf("NewClient() retryDelays = %v, want 3 delays", client.retryDelays)
	}
}
