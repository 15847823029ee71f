package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"aniseed/model"
	"aniseed/storage"
)

// backfillQueries is the descending-specificity ladder of search queries
// tried for an under-represented genre.
var backfillQueries = []string{
	"%s anime official playlist",
	"%s anime playlist",
	"%s anime full episodes official",
	"%s anime full episodes",
}

// GenreBackfiller tops up genres that direct channel ingestion left
// below the minimum series count, by searching playlists broadly.
type GenreBackfiller struct {
	api         VideoAPI
	pipeline    *PlaylistIngestor
	genres      storage.GenreRepository
	series      storage.SeriesRepository
	minPerGenre int
	maxSearches int64
	logger      *slog.Logger
}

func NewGenreBackfiller(api VideoAPI, pipeline *PlaylistIngestor, genres storage.GenreRepository, series storage.SeriesRepository, minPerGenre int, maxSearches int64, logger *slog.Logger) *GenreBackfiller {
	if minPerGenre <= 0 {
		minPerGenre = DefaultMinEpisodes
	}
	return &GenreBackfiller{
		api:         api,
		pipeline:    pipeline,
		genres:      genres,
		series:      series,
		minPerGenre: minPerGenre,
		maxSearches: maxSearches,
		logger:      logger,
	}
}

// Run checks every genre once. A genre that cannot reach the minimum is
// logged and left short; nothing here aborts the run.
func (b *GenreBackfiller) Run(ctx context.Context) error {
	genres, err := b.genres.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("list genres: %w", err)
	}

	for _, genre := range genres {
		if err := b.backfillGenre(ctx, genre); err != nil {
			b.logger.Error("genre backfill failed",
				slog.String("genre", genre.Name), slog.String("error", err.Error()))
		}
	}

	return nil
}

func (b *GenreBackfiller) backfillGenre(ctx context.Context, genre model.Genre) error {
	logger := b.logger.With(slog.String("genre", genre.Name))

	count, err := b.series.CountByGenre(ctx, genre.ID, model.ProvenanceYoutube)
	if err != nil {
		return fmt.Errorf("count series: %w", err)
	}
	logger.Info("genre coverage", slog.Int64("series", count))
	if count >= int64(b.minPerGenre) {
		return nil
	}

	need := b.minPerGenre - int(count)
	found := 0
	tried := map[string]bool{}

	for _, pattern := range backfillQueries {
		if found >= need {
			break
		}
		query := fmt.Sprintf(pattern, genre.Name)
		hits, err := b.api.SearchPlaylists(ctx, query, b.maxSearches)
		if err != nil {
			logger.Error("playlist search failed",
				slog.String("query", query), slog.String("error", err.Error()))
			continue
		}

		for _, hit := range hits {
			if found >= need {
				break
			}
			if hit.ID == "" || tried[hit.ID] {
				continue
			}
			tried[hit.ID] = true

			channelTitle := hit.ChannelTitle
			if channelTitle == "" {
				channelTitle = "search"
			}
			pl := Playlist{ID: hit.ID, Title: hit.Title, ChannelTitle: channelTitle}
			ok, err := b.pipeline.Ingest(ctx, pl, []string{genre.Name}, DefaultMinEpisodes)
			if err != nil {
				logger.Error("playlist ingestion failed",
					slog.String("playlist", hit.Title), slog.String("error", err.Error()))
				continue
			}
			if ok {
				found++
				logger.Info("seeded playlist for genre",
					slog.String("playlist", hit.Title), slog.String("query", query))
			}
		}
	}

	if found < need {
		logger.Warn("genre left under minimum",
			slog.Int("wanted", b.minPerGenre), slog.Int("seeded", found))
	}

	return nil
}
