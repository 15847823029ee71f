package seeder

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"aniseed/model"
	"aniseed/storage"
)

// fakeAPI serves canned responses keyed on query, channel and playlist
// ids. Videos returns only ids it knows about, which doubles as the
// partial-response case.
type fakeAPI struct {
	channels       map[string][]SearchResult
	playlistSearch map[string][]SearchResult
	playlists      map[string][]Playlist
	items          map[string][]string
	videos         map[string]Video

	playlistSearches []string
	videoFetches     [][]string
}

func (f *fakeAPI) SearchChannels(_ context.Context, query string, _ int64) ([]SearchResult, error) {
	return f.channels[query], nil
}

func (f *fakeAPI) SearchPlaylists(_ context.Context, query string, _ int64) ([]SearchResult, error) {
	f.playlistSearches = append(f.playlistSearches, query)
	return f.playlistSearch[query], nil
}

func (f *fakeAPI) Playlists(_ context.Context, channelID string, max int64) ([]Playlist, error) {
	pls := f.playlists[channelID]
	if int64(len(pls)) > max {
		pls = pls[:max]
	}
	return pls, nil
}

func (f *fakeAPI) PlaylistItems(_ context.Context, playlistID string, max int64) ([]string, error) {
	ids := f.items[playlistID]
	if int64(len(ids)) > max {
		ids = ids[:max]
	}
	return ids, nil
}

func (f *fakeAPI) Videos(_ context.Context, ids []string) ([]Video, error) {
	f.videoFetches = append(f.videoFetches, ids)
	found := []Video{}
	for _, id := range ids {
		if v, ok := f.videos[id]; ok {
			found = append(found, v)
		}
	}
	return found, nil
}

// fakeCatalog is an in-memory stand-in for both store repositories.
type fakeCatalog struct {
	genres []model.Genre
	series []*model.Series
}

func (f *fakeCatalog) FindOrCreate(_ context.Context, name string) (model.Genre, error) {
	for _, g := range f.genres {
		if g.Name == name {
			return g, nil
		}
	}
	g := model.Genre{ID: primitive.NewObjectID(), Name: name}
	f.genres = append(f.genres, g)
	return g, nil
}

func (f *fakeCatalog) FindAll(_ context.Context) ([]model.Genre, error) {
	return f.genres, nil
}

func (f *fakeCatalog) FindByName(_ context.Context, name string, source model.Provenance) (*model.Series, error) {
	for _, s := range f.series {
		if s.Name == name && s.Source == source {
			return s, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeCatalog) Insert(_ context.Context, series *model.Series) error {
	series.ID = primitive.NewObjectID()
	f.series = append(f.series, series)
	return nil
}

func (f *fakeCatalog) Append(_ context.Context, id primitive.ObjectID, episodes []model.Episode, genres []primitive.ObjectID, detail string) error {
	for _, s := range f.series {
		if s.ID != id {
			continue
		}
		s.Episodes = append(s.Episodes, episodes...)
		for _, g := range genres {
			found := false
			for _, have := range s.Genres {
				if have == g {
					found = true
					break
				}
			}
			if !found {
				s.Genres = append(s.Genres, g)
			}
		}
		if detail != "" {
			s.Detail = detail
		}
	}
	return nil
}

func (f *fakeCatalog) CountByGenre(_ context.Context, genre primitive.ObjectID, source model.Provenance) (int64, error) {
	var count int64
	for _, s := range f.series {
		if s.Source != source {
			continue
		}
		for _, g := range s.Genres {
			if g == genre {
				count++
				break
			}
		}
	}
	return count, nil
}

func (f *fakeCatalog) FindBySource(_ context.Context, source model.Provenance) ([]*model.Series, error) {
	found := []*model.Series{}
	for _, s := range f.series {
		if s.Source == source {
			found = append(found, s)
		}
	}
	return found, nil
}

func (f *fakeCatalog) DeleteBySource(_ context.Context, source model.Provenance) (int64, error) {
	kept := []*model.Series{}
	var deleted int64
	for _, s := range f.series {
		if s.Source == source {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	f.series = kept
	return deleted, nil
}

func (f *fakeCatalog) UpdateEpisodeStatus(_ context.Context, youtubeID string, embeddable bool, privacyStatus string, region *model.RegionRestriction) (int64, error) {
	var modified int64
	for _, s := range f.series {
		changed := false
		for i := range s.Episodes {
			if s.Episodes[i].YoutubeID == youtubeID {
				s.Episodes[i].Embeddable = embeddable
				s.Episodes[i].PrivacyStatus = privacyStatus
				s.Episodes[i].RegionRestriction = region
				changed = true
			}
		}
		if changed {
			modified++
		}
	}
	return modified, nil
}

func (f *fakeCatalog) SetEpisodeThumbnails(_ context.Context, id primitive.ObjectID, youtubeID string, thumbs model.ThumbnailSet) error {
	for _, s := range f.series {
		if s.ID != id {
			continue
		}
		for i := range s.Episodes {
			if s.Episodes[i].YoutubeID == youtubeID {
				s.Episodes[i].Thumbnails = thumbs
			}
		}
	}
	return nil
}

func publicVideo(id, title string) Video {
	return Video{
		YoutubeID:     id,
		Title:         title,
		Embeddable:    true,
		PrivacyStatus: model.PrivacyPublic,
	}
}
