package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/shelfsync/internal/remote"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, handler http.Handler) (*remote.HTTPClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &oauth2.Config{Endpoint: oauth2.Endpoint{AuthURL: server.URL + "/authorize", TokenURL: server.URL + "/token"}}
	tok := &oauth2.Token{AccessToken: "test-token"}
	return remote.NewHTTPClient(server.URL, cfg, tok), server
}

func TestListUserPlaylistsAppliesFilter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": "1", "name": "Keep Me", "description": "", "snapshot_id": "s1"},
				{"id": "2", "name": "Archive 2020", "description": "", "snapshot_id": "s2"},
				{"id": "3", "name": "Another", "description": "banned word here", "snapshot_id": "s3"},
			},
		})
	})

	client, _ := newTestClient(t, mux)

	playlists, err := client.ListUserPlaylists(context.Background(), remote.FilterConfig{
		ForbiddenNameSubstrings:   []string{"archive"},
		ForbiddenDescriptionTerms: []string{"banned"},
	})
	if err != nil {
		t.Fatalf("ListUserPlaylists: %v", err)
	}
	if len(playlists) != 1 || playlists[0].ID != "1" {
		t.Errorf("ListUserPlaylists = %+v, want only id 1", playlists)
	}
}

func TestListPlaylistItemsPages(t *testing.T) {
	mux := http.NewServeMux()
	page1 := false
	mux.HandleFunc("/playlists/p1/tracks", func(w http.ResponseWriter, r *http.Request) {
		if !page1 {
			page1 = true
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{"added_at": "2024-01-01T00:00:00Z", "track": map[string]any{"uri": "u1", "name": "T1", "artists": []map[string]any{{"name": "A"}}}}},
				"next":  "/playlists/p1/tracks?offset=1",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"added_at": "2024-01-02T00:00:00Z", "track": map[string]any{"uri": "u2", "name": "T2"}}},
			"next":  "",
		})
	})

	client, _ := newTestClient(t, mux)
	items, err := client.ListPlaylistItems(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ListPlaylistItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListPlaylistItems returned %d items, want 2", len(items))
	}
	if items[0].URI != "u1" || items[1].URI != "u2" {
		t.Errorf("ListPlaylistItems = %+v", items)
	}
}

func TestRateLimitedError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	client, _ := newTestClient(t, mux)
	_, err := client.ListUserPlaylists(context.Background(), remote.FilterConfig{})
	if err == nil {
		t.Fatal("expected an error")
	}
	var rlErr *remote.RateLimitedError
	if !asRateLimited(err, &rlErr) {
		t.Fatalf("expected RateLimitedError, got %v (%T)", err, err)
	}
}

func asRateLimited(err error, target **remote.RateLimitedError) bool {
	if e, ok := err.(*remote.RateLimitedError); ok {
		*target = e
		return true
	}
	return false
}

func TestAddItemsSplitsBatches(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/p1/tracks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			calls++
		}
		w.WriteHeader(http.StatusOK)
	})

	client, _ := newTestClient(t, mux)
	uris := make([]string, 250)
	for i := range uris {
		uris[i] = "u"
	}
	if err := client.AddItems(context.Background(), "p1", uris); err != nil {
		t.Fatalf("AddItems: %v", err)
	}
	if calls != 3 {
		t.Errorf("AddItems made %d requests, want 3 (ceil(250/100))", calls)
	}
}
