package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"aniseed/model"
	"aniseed/storage"
)

// StatusRefresher re-checks the playability fields of episodes that were
// ingested before status tracking existed. Updates apply to every series
// containing the episode id.
type StatusRefresher struct {
	api       VideoAPI
	series    storage.SeriesRepository
	maxVideos int
	logger    *slog.Logger
}

func NewStatusRefresher(api VideoAPI, series storage.SeriesRepository, maxVideos int, logger *slog.Logger) *StatusRefresher {
	return &StatusRefresher{
		api:       api,
		series:    series,
		maxVideos: maxVideos,
		logger:    logger,
	}
}

func (r *StatusRefresher) Run(ctx context.Context) error {
	all, err := r.series.FindBySource(ctx, model.ProvenanceYoutube)
	if err != nil {
		return fmt.Errorf("list series: %w", err)
	}

	ids := []string{}
	seen := map[string]bool{}
	for _, s := range all {
		for _, ep := range s.Episodes {
			if ep.YoutubeID == "" || seen[ep.YoutubeID] {
				continue
			}
			if ep.PrivacyStatus != "" {
				continue
			}
			seen[ep.YoutubeID] = true
			ids = append(ids, ep.YoutubeID)
		}
	}
	if len(ids) > r.maxVideos {
		ids = ids[:r.maxVideos]
	}
	r.logger.Info("refreshing episode status", slog.Int("videos", len(ids)))
	if len(ids) == 0 {
		return nil
	}

	videos, err := r.api.Videos(ctx, ids)
	if err != nil {
		return fmt.Errorf("fetch video status: %w", err)
	}
	for _, v := range videos {
		n, err := r.series.UpdateEpisodeStatus(ctx, v.YoutubeID, v.Embeddable, v.PrivacyStatus, v.Region)
		if err != nil {
			r.logger.Error("status update failed",
				slog.String("video", v.YoutubeID), slog.String("error", err.Error()))
			continue
		}
		r.logger.Info("updated episode status",
			slog.String("video", v.YoutubeID),
			slog.String("privacy", v.PrivacyStatus),
			slog.Bool("embeddable", v.Embeddable),
			slog.Int64("series", n))
	}

	return nil
}
