package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"aniseed/seeder"
	"aniseed/storage"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).
		With(slog.String("run", uuid.New().String()))

	store, err := storage.NewMongo(ctx,
		getParam("MONGO_URI", "mongodb://localhost:27017"),
		getParam("MONGO_DB", "animecatalog"))
	if err != nil {
		logger.Error("unable to connect to store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close(ctx)

	ytClient, err := youtube.NewService(ctx, option.WithAPIKey(getParam("YT_API_KEY", "")))
	if err != nil {
		logger.Error("unable to create youtube service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg := seeder.Config{
		Region:                 strings.ToUpper(getParam("TARGET_REGION", "IN")),
		ChannelQueries:         splitParam(getParam("CHANNEL_QUERIES", "Muse Asia,Ani-One Asia")),
		MaxPlaylistsPerChannel: getIntParam(logger, "MAX_PLAYLISTS_PER_CHANNEL", 5),
		MaxEpisodesPerPlaylist: getIntParam(logger, "MAX_VIDEOS_PER_PLAYLIST", 30),
		MaxSearchesPerGenre:    getIntParam(logger, "MAX_SEARCHES_PER_GENRE", 6),
		MinSeriesPerGenre:      int(getIntParam(logger, "MIN_SERIES_PER_GENRE", 3)),
		MaxStatusRefresh:       int(getIntParam(logger, "MAX_STATUS_REFRESH", 200)),
		CallDelay:              getDurationParam(logger, "YT_CALL_DELAY", 150*time.Millisecond),
		Reset:                  getBoolParam("SEED_RESET"),
		RefreshStatus:          getBoolParam("REFRESH_STATUS"),
		FillThumbnails:         getBoolParam("FILL_THUMBNAILS"),
	}

	api := seeder.NewYoutube(ytClient, cfg.CallDelay, logger)
	writer := seeder.NewCatalogWriter(store, store, logger)
	orchestrator := seeder.NewOrchestrator(cfg, api, store, store, writer, os.Stdin, os.Stdout, logger)

	if err := orchestrator.Run(ctx); err != nil {
		logger.Error("seeding run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("seeding run finished")
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}

func getIntParam(logger *slog.Logger, param string, def int64) int64 {
	val, ok := os.LookupEnv(param)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		logger.Warn("invalid numeric parameter, using default",
			slog.String("param", param), slog.String("value", val))
		return def
	}
	return n
}

func getDurationParam(logger *slog.Logger, param string, def time.Duration) time.Duration {
	val, ok := os.LookupEnv(param)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		logger.Warn("invalid duration parameter, using default",
			slog.String("param", param), slog.String("value", val))
		return def
	}
	return d
}

func getBoolParam(param string) bool {
	switch strings.ToLower(getParam(param, "")) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func splitParam(val string) []string {
	parts := []string{}
	for _, p := range strings.Split(val, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
