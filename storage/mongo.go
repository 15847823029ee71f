package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"aniseed/model"
)

type Mongo struct {
	client *mongo.Client
	series *mongo.Collection
	genres *mongo.Collection
}

func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	m := &Mongo{
		client: client,
		series: db.Collection("series"),
		genres: db.Collection("genres"),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	return m, nil
}

// ensureIndexes backs the find-or-create invariants: one genre per
// normalized name, one series per (name, source) pair.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.genres.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = m.series.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "source", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return err
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) FindOrCreate(ctx context.Context, name string) (model.Genre, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	res := m.genres.FindOneAndUpdate(ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": bson.M{"name": name}},
		opts)

	var genre model.Genre
	if err := res.Decode(&genre); err != nil {
		return model.Genre{}, fmt.Errorf("find or create genre %q: %w", name, err)
	}

	return genre, nil
}

func (m *Mongo) FindAll(ctx context.Context) ([]model.Genre, error) {
	cur, err := m.genres.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find genres: %w", err)
	}
	var genres []model.Genre
	if err := cur.All(ctx, &genres); err != nil {
		return nil, fmt.Errorf("decode genres: %w", err)
	}

	return genres, nil
}

func (m *Mongo) FindByName(ctx context.Context, name string, source model.Provenance) (*model.Series, error) {
	var series model.Series
	err := m.series.FindOne(ctx, bson.M{"name": name, "source": source}).Decode(&series)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("find series %q: %w", name, err)
	}

	return &series, nil
}

func (m *Mongo) Insert(ctx context.Context, series *model.Series) error {
	res, err := m.series.InsertOne(ctx, series)
	if err != nil {
		return fmt.Errorf("insert series %q: %w", series.Name, err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		series.ID = id
	}

	return nil
}

func (m *Mongo) Append(ctx context.Context, id primitive.ObjectID, episodes []model.Episode, genres []primitive.ObjectID, detail string) error {
	update := bson.M{
		"$push":     bson.M{"videos": bson.M{"$each": episodes}},
		"$addToSet": bson.M{"genre": bson.M{"$each": genres}},
	}
	if detail != "" {
		update["$set"] = bson.M{"detail": detail}
	}
	if _, err := m.series.UpdateByID(ctx, id, update); err != nil {
		return fmt.Errorf("append to series %s: %w", id.Hex(), err)
	}

	return nil
}

func (m *Mongo) CountByGenre(ctx context.Context, genre primitive.ObjectID, source model.Provenance) (int64, error) {
	count, err := m.series.CountDocuments(ctx, bson.M{"genre": genre, "source": source})
	if err != nil {
		return 0, fmt.Errorf("count series for genre %s: %w", genre.Hex(), err)
	}

	return count, nil
}

func (m *Mongo) FindBySource(ctx context.Context, source model.Provenance) ([]*model.Series, error) {
	cur, err := m.series.Find(ctx, bson.M{"source": source})
	if err != nil {
		return nil, fmt.Errorf("find series by source: %w", err)
	}
	var series []*model.Series
	if err := cur.All(ctx, &series); err != nil {
		return nil, fmt.Errorf("decode series: %w", err)
	}

	return series, nil
}

func (m *Mongo) DeleteBySource(ctx context.Context, source model.Provenance) (int64, error) {
	res, err := m.series.DeleteMany(ctx, bson.M{"source": source})
	if err != nil {
		return 0, fmt.Errorf("delete series by source: %w", err)
	}

	return res.DeletedCount, nil
}

func (m *Mongo) UpdateEpisodeStatus(ctx context.Context, youtubeID string, embeddable bool, privacyStatus string, region *model.RegionRestriction) (int64, error) {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"v.youtubeId": youtubeID}},
	})
	res, err := m.series.UpdateMany(ctx,
		bson.M{"videos.youtubeId": youtubeID},
		bson.M{"$set": bson.M{
			"videos.$[v].embeddable":        embeddable,
			"videos.$[v].privacyStatus":     privacyStatus,
			"videos.$[v].regionRestriction": region,
		}},
		opts)
	if err != nil {
		return 0, fmt.Errorf("update episode status %s: %w", youtubeID, err)
	}

	return res.ModifiedCount, nil
}

func (m *Mongo) SetEpisodeThumbnails(ctx context.Context, id primitive.ObjectID, youtubeID string, thumbs model.ThumbnailSet) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"v.youtubeId": youtubeID}},
	})
	_, err := m.series.UpdateByID(ctx, id,
		bson.M{"$set": bson.M{"videos.$[v].thumbnails": thumbs}},
		opts)
	if err != nil {
		return fmt.Errorf("set thumbnails for %s: %w", youtubeID, err)
	}

	return nil
}
