package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const channelSearchResults = 5

// genericPlaylistMarkers identify auto-generated playlists that mirror a
// channel's full upload history instead of one show.
var genericPlaylistMarkers = []string{"uploads", "upload", "mixed"}

// ChannelIngestor walks one channel query from resolution to upserted
// series: resolve channel, list playlists, run each playlist through the
// shared pipeline.
type ChannelIngestor struct {
	api          VideoAPI
	pipeline     *PlaylistIngestor
	maxPlaylists int64
	logger       *slog.Logger
}

func NewChannelIngestor(api VideoAPI, pipeline *PlaylistIngestor, maxPlaylists int64, logger *slog.Logger) *ChannelIngestor {
	return &ChannelIngestor{
		api:          api,
		pipeline:     pipeline,
		maxPlaylists: maxPlaylists,
		logger:       logger,
	}
}

// Ingest processes a single channel query. A query that cannot be
// resolved is skipped without error so sibling channels still run.
func (c *ChannelIngestor) Ingest(ctx context.Context, query string) error {
	logger := c.logger.With(slog.String("channel", query))

	channelID, err := c.resolveChannel(ctx, query)
	if err != nil {
		return fmt.Errorf("resolve channel %q: %w", query, err)
	}
	if channelID == "" {
		logger.Warn("could not resolve channel, skipping")
		return nil
	}

	playlists, err := c.api.Playlists(ctx, channelID, c.maxPlaylists)
	if err != nil {
		return fmt.Errorf("list playlists for %q: %w", query, err)
	}
	logger.Info("found playlists", slog.Int("count", len(playlists)))

	for _, pl := range selectPlaylists(playlists) {
		if pl.ChannelTitle == "" {
			pl.ChannelTitle = query
		}
		if _, err := c.pipeline.Ingest(ctx, pl, InferGenres(pl.Title), 1); err != nil {
			logger.Error("playlist ingestion failed",
				slog.String("playlist", pl.Title), slog.String("error", err.Error()))
		}
	}

	return nil
}

// resolveChannel searches channels by name and prefers an exact
// case-insensitive title match over the first hit.
func (c *ChannelIngestor) resolveChannel(ctx context.Context, query string) (string, error) {
	results, err := c.api.SearchChannels(ctx, query, channelSearchResults)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	for _, r := range results {
		if strings.EqualFold(r.Title, query) {
			return r.ID, nil
		}
	}

	return results[0].ID, nil
}

// selectPlaylists drops generic upload playlists. When the exclusion
// empties the set the unfiltered list is used instead, so an aggressive
// match never silently discards a whole channel.
func selectPlaylists(playlists []Playlist) []Playlist {
	selected := []Playlist{}
	for _, pl := range playlists {
		if !isGenericPlaylist(pl.Title) {
			selected = append(selected, pl)
		}
	}
	if len(selected) == 0 {
		return playlists
	}

	return selected
}

func isGenericPlaylist(title string) bool {
	lower := strings.ToLower(title)
	for _, marker := range genericPlaylistMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}
