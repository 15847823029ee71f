package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"aniseed/model"
	"aniseed/storage"
)

// maxSeriesNameLen bounds the derived series name.
const maxSeriesNameLen = 220

// CatalogWriter performs the idempotent writes into the catalog store:
// find-or-create for genres, upsert-merge for series.
type CatalogWriter struct {
	genres storage.GenreRepository
	series storage.SeriesRepository
	logger *slog.Logger
}

func NewCatalogWriter(genres storage.GenreRepository, series storage.SeriesRepository, logger *slog.Logger) *CatalogWriter {
	return &CatalogWriter{
		genres: genres,
		series: series,
		logger: logger,
	}
}

// EnsureGenres resolves each name to a genre reference, creating missing
// genres. Names are normalized (trimmed, lower-cased) and deduplicated
// while preserving call order. The store-level find-or-create is atomic,
// so concurrent runs cannot create duplicates.
func (w *CatalogWriter) EnsureGenres(ctx context.Context, names []string) ([]primitive.ObjectID, error) {
	ids := []primitive.ObjectID{}
	seen := map[string]bool{}
	for _, name := range names {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true

		genre, err := w.genres.FindOrCreate(ctx, normalized)
		if err != nil {
			return nil, fmt.Errorf("ensure genre %q: %w", normalized, err)
		}
		ids = append(ids, genre.ID)
	}

	return ids, nil
}

// UpsertSeries merges an episode list into the series identified by
// (name, youtube provenance), creating the series when absent. Episodes
// already present (by YouTube id) are left untouched, genre references
// are unioned and an existing detail text is never overwritten. Returns
// the number of episodes added; zero with an empty input is a no-op.
func (w *CatalogWriter) UpsertSeries(ctx context.Context, name, detail string, year int, genres []primitive.ObjectID, episodes []model.Episode) (int, error) {
	if len(episodes) == 0 {
		w.logger.Warn("no episodes to upsert", slog.String("series", name))
		return 0, nil
	}

	existing, err := w.series.FindByName(ctx, name, model.ProvenanceYoutube)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		series := &model.Series{
			Name:      name,
			Detail:    detail,
			Year:      year,
			Genres:    genres,
			Episodes:  episodes,
			Source:    model.ProvenanceYoutube,
			CreatedAt: time.Now(),
		}
		if err := w.series.Insert(ctx, series); err != nil {
			return 0, err
		}
		w.logger.Info("created series",
			slog.String("series", name), slog.Int("episodes", len(episodes)))
		return len(episodes), nil
	case err != nil:
		return 0, err
	}

	fresh := []model.Episode{}
	for _, ep := range episodes {
		if !existing.HasEpisode(ep.YoutubeID) {
			fresh = append(fresh, ep)
		}
	}
	if existing.Detail != "" {
		detail = ""
	}
	if err := w.series.Append(ctx, existing.ID, fresh, genres, detail); err != nil {
		return 0, err
	}
	w.logger.Info("updated series",
		slog.String("series", name), slog.Int("added", len(fresh)))

	return len(fresh), nil
}

// SeriesName derives the catalog name of a playlist-backed series.
func SeriesName(playlistTitle, channelTitle string) string {
	name := fmt.Sprintf("%s — %s", playlistTitle, channelTitle)
	if runes := []rune(name); len(runes) > maxSeriesNameLen {
		name = string(runes[:maxSeriesNameLen])
	}

	return name
}
