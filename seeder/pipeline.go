package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"aniseed/model"
)

// PlaylistIngestor is the fetch → filter → upsert sub-pipeline shared by
// channel ingestion and genre backfill.
type PlaylistIngestor struct {
	api         VideoAPI
	writer      *CatalogWriter
	filter      PlayabilityFilter
	maxEpisodes int64
	logger      *slog.Logger
}

func NewPlaylistIngestor(api VideoAPI, writer *CatalogWriter, filter PlayabilityFilter, maxEpisodes int64, logger *slog.Logger) *PlaylistIngestor {
	return &PlaylistIngestor{
		api:         api,
		writer:      writer,
		filter:      filter,
		maxEpisodes: maxEpisodes,
		logger:      logger,
	}
}

// Ingest runs one playlist through the pipeline. The playlist is written
// only when at least minEpisodes candidates survive filtering; it
// reports whether a series was written. All failures below the store are
// contained here and surface as a false result.
func (p *PlaylistIngestor) Ingest(ctx context.Context, pl Playlist, genreNames []string, minEpisodes int) (bool, error) {
	logger := p.logger.With(slog.String("playlist", pl.Title))

	ids, err := p.api.PlaylistItems(ctx, pl.ID, p.maxEpisodes)
	if err != nil {
		return false, fmt.Errorf("list playlist items: %w", err)
	}
	if len(ids) == 0 {
		logger.Warn("playlist has no items, skipping")
		return false, nil
	}

	videos, err := p.api.Videos(ctx, ids)
	if err != nil {
		return false, fmt.Errorf("fetch video metadata: %w", err)
	}

	// Metadata responses may arrive unordered or partial. Restore
	// playlist order and drop ids the batch fetch did not return.
	byID := make(map[string]Video, len(videos))
	for _, v := range videos {
		byID[v.YoutubeID] = v
	}
	ordered := make([]Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}

	kept, relaxedPass := p.filter.Apply(ordered)
	if relaxedPass {
		logger.Warn("relaxed members-only heuristic to reach episode minimum")
	}
	logger.Info("filtered playlist",
		slog.Int("candidates", len(ordered)), slog.Int("kept", len(kept)))
	if len(kept) < minEpisodes || len(kept) == 0 {
		logger.Info("not enough usable episodes, skipping upsert")
		return false, nil
	}

	genreIDs, err := p.writer.EnsureGenres(ctx, genreNames)
	if err != nil {
		return false, err
	}

	name := SeriesName(pl.Title, pl.ChannelTitle)
	detail := fmt.Sprintf("Imported playlist %s from %s", pl.Title, pl.ChannelTitle)
	_, err = p.writer.UpsertSeries(ctx, name, detail, time.Now().Year(), genreIDs, episodes(kept))
	if err != nil {
		return false, err
	}

	return true, nil
}

// episodes converts filtered metadata into catalog episodes, numbering
// them by position in the final filtered sequence, one-indexed.
func episodes(videos []Video) []model.Episode {
	now := time.Now()
	eps := make([]model.Episode, 0, len(videos))
	for i, v := range videos {
		eps = append(eps, model.Episode{
			Title:             v.Title,
			YoutubeID:         v.YoutubeID,
			Season:            1,
			Episode:           i + 1,
			Duration:          v.Duration,
			PublishedAt:       v.PublishedAt,
			Thumbnails:        v.Thumbnails,
			Embeddable:        v.Embeddable,
			PrivacyStatus:     v.PrivacyStatus,
			RegionRestriction: v.Region,
			CreatedAt:         now,
		})
	}

	return eps
}
