package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"aniseed/model"
)

var ErrNotFound = errors.New("not found")

type GenreRepository interface {
	// FindOrCreate returns the genre with the given normalized name,
	// creating it atomically when absent.
	FindOrCreate(ctx context.Context, name string) (model.Genre, error)
	FindAll(ctx context.Context) ([]model.Genre, error)
}

type SeriesRepository interface {
	// FindByName returns ErrNotFound when no series matches the
	// (name, source) pair.
	FindByName(ctx context.Context, name string, source model.Provenance) (*model.Series, error)
	Insert(ctx context.Context, series *model.Series) error
	// Append adds episodes to an existing series, unions the genre
	// references and sets detail when it is non-empty.
	Append(ctx context.Context, id primitive.ObjectID, episodes []model.Episode, genres []primitive.ObjectID, detail string) error
	CountByGenre(ctx context.Context, genre primitive.ObjectID, source model.Provenance) (int64, error)
	FindBySource(ctx context.Context, source model.Provenance) ([]*model.Series, error)
	DeleteBySource(ctx context.Context, source model.Provenance) (int64, error)
	// UpdateEpisodeStatus refreshes the playability fields of every
	// episode with the given YouTube id, across all series.
	UpdateEpisodeStatus(ctx context.Context, youtubeID string, embeddable bool, privacyStatus string, region *model.RegionRestriction) (int64, error)
	SetEpisodeThumbnails(ctx context.Context, id primitive.ObjectID, youtubeID string, thumbs model.ThumbnailSet) error
}
