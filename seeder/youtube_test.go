package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"aniseed/model"
)

func newTestYoutube(t *testing.T, handler http.Handler) (*Youtube, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := youtube.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return NewYoutube(svc, 0, testLogger()), srv
}

func TestSearchPaginatesUntilCap(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/search", func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "channel", r.URL.Query().Get("type"))

		page := youtube.SearchListResponse{}
		switch r.URL.Query().Get("pageToken") {
		case "":
			page.NextPageToken = "page2"
			page.Items = []*youtube.SearchResult{
				{Id: &youtube.ResourceId{ChannelId: "c1"}, Snippet: &youtube.SearchResultSnippet{Title: "One"}},
				{Id: &youtube.ResourceId{ChannelId: "c2"}, Snippet: &youtube.SearchResultSnippet{Title: "Two"}},
			}
		case "page2":
			page.Items = []*youtube.SearchResult{
				// id carried in the snippet instead of the resource id
				{Id: &youtube.ResourceId{}, Snippet: &youtube.SearchResultSnippet{Title: "Three", ChannelId: "c3"}},
				{Id: &youtube.ResourceId{ChannelId: "c4"}, Snippet: &youtube.SearchResultSnippet{Title: "Four"}},
			}
		}
		json.NewEncoder(w).Encode(page)
	})

	yt, _ := newTestYoutube(t, mux)
	results, err := yt.SearchChannels(context.Background(), "anything", 3)
	require.NoError(t, err)

	assert.Equal(t, 2, requests)
	require.Len(t, results, 3, "results beyond the cap are dropped")
	assert.Equal(t, "c3", results[2].ID, "snippet-carried ids are normalized")
}

func TestVideosBatchesRequests(t *testing.T) {
	var batches [][]string
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query()["id"]
		batches = append(batches, ids)

		resp := youtube.VideoListResponse{}
		for _, id := range ids {
			resp.Items = append(resp.Items, &youtube.Video{
				Id:             id,
				Snippet:        &youtube.VideoSnippet{Title: "Episode " + id, PublishedAt: "2024-03-01T12:00:00Z"},
				ContentDetails: &youtube.VideoContentDetails{Duration: "PT22M5S"},
				Status:         &youtube.VideoStatus{Embeddable: true, PrivacyStatus: "public"},
			})
		}
		json.NewEncoder(w).Encode(resp)
	})

	ids := make([]string, 60)
	for i := range ids {
		ids[i] = fmt.Sprintf("v%02d", i)
	}

	yt, _ := newTestYoutube(t, mux)
	videos, err := yt.Videos(context.Background(), ids)
	require.NoError(t, err)

	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 50)
	assert.Len(t, batches[1], 10)
	require.Len(t, videos, 60)
	assert.Equal(t, 22*60+5, videos[0].Duration)
	assert.Equal(t, 2024, videos[0].PublishedAt.Year())
}

func TestVideosCanonicalizesRegionAndPrivacy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		resp := youtube.VideoListResponse{
			Items: []*youtube.Video{
				{
					Id:      "blocked",
					Snippet: &youtube.VideoSnippet{Title: "Blocked"},
					ContentDetails: &youtube.VideoContentDetails{
						RegionRestriction: &youtube.VideoContentDetailsRegionRestriction{Blocked: []string{"IN"}},
					},
					Status: &youtube.VideoStatus{Embeddable: true, PrivacyStatus: "unlisted"},
				},
				{
					// no status part at all
					Id:      "bare",
					Snippet: &youtube.VideoSnippet{Title: "Bare"},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})

	yt, _ := newTestYoutube(t, mux)
	videos, err := yt.Videos(context.Background(), []string{"blocked", "bare"})
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, model.PrivacyUnlisted, videos[0].PrivacyStatus)
	require.NotNil(t, videos[0].Region)
	assert.Equal(t, []string{"IN"}, videos[0].Region.Blocked)

	assert.Equal(t, model.PrivacyPublic, videos[1].PrivacyStatus, "missing status defaults to public")
	assert.Nil(t, videos[1].Region)
	assert.False(t, videos[1].Embeddable)
}

func TestFailedPageDegradesToPartialResult(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("pageToken") == "page2" {
			http.Error(w, `{"error": {"code": 500}}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(youtube.PlaylistItemListResponse{
			NextPageToken: "page2",
			Items: []*youtube.PlaylistItem{
				{ContentDetails: &youtube.PlaylistItemContentDetails{VideoId: "v1"}},
				{ContentDetails: &youtube.PlaylistItemContentDetails{VideoId: "v2"}},
			},
		})
	})

	yt, _ := newTestYoutube(t, mux)
	ids, err := yt.PlaylistItems(context.Background(), "pl1", 100)
	require.NoError(t, err, "a failed page must not surface as an error")
	assert.Equal(t, []string{"v1", "v2"}, ids)
	assert.Equal(t, 1+retryAttempts, requests, "the failing page is retried before giving up")
}

func TestPlaylistsExcludedWhenChannelUnknown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/playlists", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "chan-x", r.URL.Query().Get("channelId"))
		json.NewEncoder(w).Encode(youtube.PlaylistListResponse{
			Items: []*youtube.Playlist{
				{Id: "p1", Snippet: &youtube.PlaylistSnippet{Title: "Season 1", ChannelTitle: "Chan"}},
			},
		})
	})

	yt, _ := newTestYoutube(t, mux)
	playlists, err := yt.Playlists(context.Background(), "chan-x", 10)
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, Playlist{ID: "p1", Title: "Season 1", ChannelTitle: "Chan"}, playlists[0])
}
