package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aniseed/model"
)

func TestStatusRefresherTargetsOnlyUncheckedEpisodes(t *testing.T) {
	catalog := &fakeCatalog{
		series: []*model.Series{
			{
				Name:   "Show A",
				Source: model.ProvenanceYoutube,
				Episodes: []model.Episode{
					{YoutubeID: "v1"}, // no privacy status yet
					{YoutubeID: "v2", PrivacyStatus: model.PrivacyPublic},
				},
			},
			{
				Name:   "Show B",
				Source: model.ProvenanceYoutube,
				Episodes: []model.Episode{
					{YoutubeID: "v1"}, // same episode, second series
				},
			},
		},
	}
	v1 := publicVideo("v1", "Episode 1")
	v1.PrivacyStatus = model.PrivacyUnlisted
	v1.Embeddable = false
	api := &fakeAPI{videos: map[string]Video{"v1": v1}}

	refresher := NewStatusRefresher(api, catalog, 200, testLogger())
	require.NoError(t, refresher.Run(context.Background()))

	require.Len(t, api.videoFetches, 1)
	assert.Equal(t, []string{"v1"}, api.videoFetches[0], "v2 is already checked, v1 must be deduplicated")

	// both series carrying v1 were refreshed
	assert.Equal(t, model.PrivacyUnlisted, catalog.series[0].Episodes[0].PrivacyStatus)
	assert.Equal(t, model.PrivacyUnlisted, catalog.series[1].Episodes[0].PrivacyStatus)
	assert.False(t, catalog.series[0].Episodes[0].Embeddable)
	// the already-checked episode is untouched
	assert.Equal(t, model.PrivacyPublic, catalog.series[0].Episodes[1].PrivacyStatus)
}

func TestStatusRefresherNoWorkNoCalls(t *testing.T) {
	catalog := &fakeCatalog{
		series: []*model.Series{
			{
				Name:     "Show",
				Source:   model.ProvenanceYoutube,
				Episodes: []model.Episode{{YoutubeID: "v1", PrivacyStatus: model.PrivacyPublic}},
			},
		},
	}
	api := &fakeAPI{}

	refresher := NewStatusRefresher(api, catalog, 200, testLogger())
	require.NoError(t, refresher.Run(context.Background()))
	assert.Empty(t, api.videoFetches)
}

func TestStatusRefresherHonorsCap(t *testing.T) {
	eps := make([]model.Episode, 5)
	for i := range eps {
		eps[i] = model.Episode{YoutubeID: string(rune('a' + i))}
	}
	catalog := &fakeCatalog{
		series: []*model.Series{{Name: "Show", Source: model.ProvenanceYoutube, Episodes: eps}},
	}
	api := &fakeAPI{}

	refresher := NewStatusRefresher(api, catalog, 2, testLogger())
	require.NoError(t, refresher.Run(context.Background()))
	require.Len(t, api.videoFetches, 1)
	assert.Len(t, api.videoFetches[0], 2)
}
