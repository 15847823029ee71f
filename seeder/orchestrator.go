package seeder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"aniseed/model"
	"aniseed/storage"
)

// Config carries the environment-provided tunables of one seeding run.
type Config struct {
	Region                 string
	ChannelQueries         []string
	MaxPlaylistsPerChannel int64
	MaxEpisodesPerPlaylist int64
	MaxSearchesPerGenre    int64
	MinSeriesPerGenre      int
	MaxStatusRefresh       int
	CallDelay              time.Duration

	// Reset asks for confirmation before purging all youtube-sourced
	// series. RefreshStatus and FillThumbnails enable the optional
	// maintenance passes.
	Reset          bool
	RefreshStatus  bool
	FillThumbnails bool
}

// Orchestrator sequences a full run: optional reset, baseline taxonomy,
// per-channel ingestion, genre backfill, maintenance passes. A failing
// channel or pass is logged and never stops the ones after it.
type Orchestrator struct {
	cfg    Config
	api    VideoAPI
	genres storage.GenreRepository
	series storage.SeriesRepository
	writer *CatalogWriter
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

func NewOrchestrator(cfg Config, api VideoAPI, genres storage.GenreRepository, series storage.SeriesRepository, writer *CatalogWriter, in io.Reader, out io.Writer, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		api:    api,
		genres: genres,
		series: series,
		writer: writer,
		in:     in,
		out:    out,
		logger: logger,
	}
}

func (o *Orchestrator) Run(ctx context.Context) error {
	if o.cfg.Reset {
		if o.confirm("Delete existing series with youtube provenance before seeding?") {
			n, err := o.series.DeleteBySource(ctx, model.ProvenanceYoutube)
			if err != nil {
				return fmt.Errorf("reset youtube series: %w", err)
			}
			o.logger.Info("deleted youtube series", slog.Int64("count", n))
		} else {
			o.logger.Info("keeping existing youtube series")
		}
	}

	if err := o.seedBaselineGenres(ctx); err != nil {
		return err
	}

	filter := NewPlayabilityFilter(o.cfg.Region, DefaultMinEpisodes)
	pipeline := NewPlaylistIngestor(o.api, o.writer, filter, o.cfg.MaxEpisodesPerPlaylist, o.logger)
	ingestor := NewChannelIngestor(o.api, pipeline, o.cfg.MaxPlaylistsPerChannel, o.logger)

	for _, query := range o.cfg.ChannelQueries {
		o.logger.Info("processing channel", slog.String("channel", query))
		if err := ingestor.Ingest(ctx, query); err != nil {
			o.logger.Error("channel ingestion failed",
				slog.String("channel", query), slog.String("error", err.Error()))
		}
	}

	backfiller := NewGenreBackfiller(o.api, pipeline, o.genres, o.series, o.cfg.MinSeriesPerGenre, o.cfg.MaxSearchesPerGenre, o.logger)
	if err := backfiller.Run(ctx); err != nil {
		o.logger.Error("genre backfill failed", slog.String("error", err.Error()))
	}

	if o.cfg.RefreshStatus {
		refresher := NewStatusRefresher(o.api, o.series, o.cfg.MaxStatusRefresh, o.logger)
		if err := refresher.Run(ctx); err != nil {
			o.logger.Error("status refresh failed", slog.String("error", err.Error()))
		}
	}
	if o.cfg.FillThumbnails {
		filler := NewThumbnailFiller(o.series, nil, o.cfg.CallDelay, o.logger)
		if err := filler.Run(ctx); err != nil {
			o.logger.Error("thumbnail backfill failed", slog.String("error", err.Error()))
		}
	}

	return nil
}

// seedBaselineGenres creates the default taxonomy when the catalog has
// no genres at all.
func (o *Orchestrator) seedBaselineGenres(ctx context.Context) error {
	existing, err := o.genres.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("list genres: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	o.logger.Info("seeding baseline genre taxonomy", slog.Int("genres", len(BaselineGenres)))
	if _, err := o.writer.EnsureGenres(ctx, BaselineGenres); err != nil {
		return fmt.Errorf("seed baseline genres: %w", err)
	}

	return nil
}

func (o *Orchestrator) confirm(question string) bool {
	fmt.Fprintf(o.out, "%s (y/N): ", question)
	scanner := bufio.NewScanner(o.in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))

	return answer == "y" || answer == "yes"
}
