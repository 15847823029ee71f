package seeder

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"google.golang.org/api/youtube/v3"

	"aniseed/model"
)

const (
	// videos.list accepts at most 50 ids per request.
	videoBatchSize = 50
	pageSize       = 50

	retryAttempts = 3
	retryDelay    = 200 * time.Millisecond
)

// SearchResult is the canonical shape of one search hit, regardless of
// where the upstream response carries the id.
type SearchResult struct {
	ID           string
	Title        string
	ChannelTitle string
}

type Playlist struct {
	ID           string
	Title        string
	ChannelTitle string
}

// Video is the canonical per-episode metadata record. All downstream
// components consume this shape only.
type Video struct {
	YoutubeID     string
	Title         string
	Description   string
	Duration      int
	PublishedAt   time.Time
	Thumbnails    model.ThumbnailSet
	Embeddable    bool
	PrivacyStatus string
	Region        *model.RegionRestriction
}

// VideoAPI is the external video platform boundary. Implementations are
// expected to tolerate transport failure by returning partial results.
type VideoAPI interface {
	SearchChannels(ctx context.Context, query string, max int64) ([]SearchResult, error)
	SearchPlaylists(ctx context.Context, query string, max int64) ([]SearchResult, error)
	Playlists(ctx context.Context, channelID string, max int64) ([]Playlist, error)
	PlaylistItems(ctx context.Context, playlistID string, max int64) ([]string, error)
	Videos(ctx context.Context, ids []string) ([]Video, error)
}

// Youtube wraps the YouTube Data API with a fixed inter-call delay. The
// pipeline is long-running and quota-sensitive, so every request is
// followed by a sleep and a failed page degrades to an empty result
// instead of aborting the run.
type Youtube struct {
	svc    *youtube.Service
	delay  time.Duration
	logger *slog.Logger
}

func NewYoutube(svc *youtube.Service, delay time.Duration, logger *slog.Logger) *Youtube {
	return &Youtube{
		svc:    svc,
		delay:  delay,
		logger: logger,
	}
}

func (y *Youtube) SearchChannels(ctx context.Context, query string, max int64) ([]SearchResult, error) {
	return y.search(ctx, query, "channel", max)
}

func (y *Youtube) SearchPlaylists(ctx context.Context, query string, max int64) ([]SearchResult, error) {
	return y.search(ctx, query, "playlist", max)
}

func (y *Youtube) search(ctx context.Context, query, kind string, max int64) ([]SearchResult, error) {
	results := []SearchResult{}
	token := ""
	for {
		call := y.svc.Search.List([]string{"snippet"}).
			Q(query).
			Type(kind).
			MaxResults(min(max, pageSize)).
			PageToken(token).
			Context(ctx)

		var resp *youtube.SearchListResponse
		err := retry.Do(func() error {
			var err error
			resp, err = call.Do()
			return err
		}, retry.Attempts(retryAttempts), retry.Delay(retryDelay), retry.LastErrorOnly(true), retry.Context(ctx))
		y.sleep()
		if err != nil {
			y.logger.Error("search request failed",
				slog.String("query", query), slog.String("kind", kind), slog.String("error", err.Error()))
			return results, nil
		}

		for _, item := range resp.Items {
			results = append(results, SearchResult{
				ID:           searchResultID(item, kind),
				Title:        item.Snippet.Title,
				ChannelTitle: item.Snippet.ChannelTitle,
			})
		}
		token = resp.NextPageToken
		if token == "" || int64(len(results)) >= max {
			break
		}
	}
	if int64(len(results)) > max {
		results = results[:max]
	}

	return results, nil
}

func (y *Youtube) Playlists(ctx context.Context, channelID string, max int64) ([]Playlist, error) {
	playlists := []Playlist{}
	token := ""
	for {
		call := y.svc.Playlists.List([]string{"snippet", "contentDetails"}).
			ChannelId(channelID).
			MaxResults(pageSize).
			PageToken(token).
			Context(ctx)

		var resp *youtube.PlaylistListResponse
		err := retry.Do(func() error {
			var err error
			resp, err = call.Do()
			return err
		}, retry.Attempts(retryAttempts), retry.Delay(retryDelay), retry.LastErrorOnly(true), retry.Context(ctx))
		y.sleep()
		if err != nil {
			y.logger.Error("playlist listing failed",
				slog.String("channel", channelID), slog.String("error", err.Error()))
			return playlists, nil
		}

		for _, item := range resp.Items {
			playlists = append(playlists, Playlist{
				ID:           item.Id,
				Title:        item.Snippet.Title,
				ChannelTitle: item.Snippet.ChannelTitle,
			})
		}
		token = resp.NextPageToken
		if token == "" || int64(len(playlists)) >= max {
			break
		}
	}
	if int64(len(playlists)) > max {
		playlists = playlists[:max]
	}

	return playlists, nil
}

func (y *Youtube) PlaylistItems(ctx context.Context, playlistID string, max int64) ([]string, error) {
	ids := []string{}
	token := ""
	for {
		call := y.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(pageSize).
			PageToken(token).
			Context(ctx)

		var resp *youtube.PlaylistItemListResponse
		err := retry.Do(func() error {
			var err error
			resp, err = call.Do()
			return err
		}, retry.Attempts(retryAttempts), retry.Delay(retryDelay), retry.LastErrorOnly(true), retry.Context(ctx))
		y.sleep()
		if err != nil {
			y.logger.Error("playlist item listing failed",
				slog.String("playlist", playlistID), slog.String("error", err.Error()))
			return ids, nil
		}

		for _, item := range resp.Items {
			if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
				continue
			}
			ids = append(ids, item.ContentDetails.VideoId)
		}
		token = resp.NextPageToken
		if token == "" || int64(len(ids)) >= max {
			break
		}
	}
	if int64(len(ids)) > max {
		ids = ids[:max]
	}

	return ids, nil
}

func (y *Youtube) Videos(ctx context.Context, ids []string) ([]Video, error) {
	videos := []Video{}
	for start := 0; start < len(ids); start += videoBatchSize {
		batch := ids[start:min(start+videoBatchSize, len(ids))]
		call := y.svc.Videos.List([]string{"snippet", "contentDetails", "status"}).
			Id(batch...).
			Context(ctx)

		var resp *youtube.VideoListResponse
		err := retry.Do(func() error {
			var err error
			resp, err = call.Do()
			return err
		}, retry.Attempts(retryAttempts), retry.Delay(retryDelay), retry.LastErrorOnly(true), retry.Context(ctx))
		y.sleep()
		if err != nil {
			y.logger.Error("video metadata fetch failed",
				slog.Int("batch", len(batch)), slog.String("error", err.Error()))
			continue
		}

		for _, item := range resp.Items {
			videos = append(videos, canonicalVideo(item))
		}
	}

	return videos, nil
}

func (y *Youtube) sleep() {
	time.Sleep(y.delay)
}

// searchResultID normalizes the two places the API may put the id of a
// search hit.
func searchResultID(item *youtube.SearchResult, kind string) string {
	if item.Id != nil {
		switch kind {
		case "channel":
			if item.Id.ChannelId != "" {
				return item.Id.ChannelId
			}
		case "playlist":
			if item.Id.PlaylistId != "" {
				return item.Id.PlaylistId
			}
		}
	}
	if kind == "channel" && item.Snippet != nil {
		return item.Snippet.ChannelId
	}

	return ""
}

func canonicalVideo(item *youtube.Video) Video {
	video := Video{
		YoutubeID:     item.Id,
		PrivacyStatus: model.PrivacyPublic,
	}
	if item.Snippet != nil {
		video.Title = item.Snippet.Title
		video.Description = item.Snippet.Description
		video.Thumbnails = thumbnailSet(item.Snippet.Thumbnails)
		if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			video.PublishedAt = ts
		}
	}
	if item.ContentDetails != nil {
		video.Duration = ParseISO8601Duration(item.ContentDetails.Duration)
		if rr := item.ContentDetails.RegionRestriction; rr != nil {
			video.Region = &model.RegionRestriction{
				Allowed: rr.Allowed,
				Blocked: rr.Blocked,
			}
		}
	}
	if item.Status != nil {
		video.Embeddable = item.Status.Embeddable
		if item.Status.PrivacyStatus != "" {
			video.PrivacyStatus = item.Status.PrivacyStatus
		}
	}

	return video
}

func thumbnailSet(details *youtube.ThumbnailDetails) model.ThumbnailSet {
	if details == nil {
		return nil
	}
	set := model.ThumbnailSet{}
	for key, thumb := range map[string]*youtube.Thumbnail{
		"default":  details.Default,
		"medium":   details.Medium,
		"high":     details.High,
		"standard": details.Standard,
		"maxres":   details.Maxres,
	} {
		if thumb != nil {
			set[key] = model.Thumbnail{URL: thumb.Url, Width: thumb.Width, Height: thumb.Height}
		}
	}
	if len(set) == 0 {
		return nil
	}

	return set
}
