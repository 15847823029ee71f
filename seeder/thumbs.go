package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"aniseed/model"
	"aniseed/storage"
)

const oembedEndpoint = "https://www.youtube.com/oembed"

// ThumbnailFiller fills in missing episode thumbnails from the public
// oEmbed endpoint, which needs no API quota. Members-only and private
// videos 404 there, so per-episode failures are expected and silent.
type ThumbnailFiller struct {
	series   storage.SeriesRepository
	client   *http.Client
	endpoint string
	delay    time.Duration
	logger   *slog.Logger
}

func NewThumbnailFiller(series storage.SeriesRepository, client *http.Client, delay time.Duration, logger *slog.Logger) *ThumbnailFiller {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ThumbnailFiller{
		series:   series,
		client:   client,
		endpoint: oembedEndpoint,
		delay:    delay,
		logger:   logger,
	}
}

func (t *ThumbnailFiller) Run(ctx context.Context) error {
	all, err := t.series.FindBySource(ctx, model.ProvenanceYoutube)
	if err != nil {
		return fmt.Errorf("list series: %w", err)
	}

	filled := 0
	for _, s := range all {
		for _, ep := range s.Episodes {
			if len(ep.Thumbnails) > 0 || ep.YoutubeID == "" {
				continue
			}
			thumbURL := t.fetchThumbnailURL(ctx, ep.YoutubeID)
			time.Sleep(t.delay)
			if thumbURL == "" {
				continue
			}
			set := model.ThumbnailSet{"default": {URL: thumbURL}}
			if err := t.series.SetEpisodeThumbnails(ctx, s.ID, ep.YoutubeID, set); err != nil {
				t.logger.Error("thumbnail update failed",
					slog.String("video", ep.YoutubeID), slog.String("error", err.Error()))
				continue
			}
			filled++
		}
	}
	t.logger.Info("thumbnail backfill finished",
		slog.Int("series", len(all)), slog.Int("filled", filled))

	return nil
}

func (t *ThumbnailFiller) fetchThumbnailURL(ctx context.Context, youtubeID string) string {
	q := url.Values{}
	q.Set("url", "https://www.youtube.com/watch?v="+youtubeID)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return ""
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var body struct {
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}

	return body.ThumbnailURL
}
