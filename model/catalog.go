package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Provenance records how a series entered the catalog.
type Provenance string

const (
	ProvenanceYoutube Provenance = "youtube"
	ProvenanceTMDB    Provenance = "tmdb"
	ProvenanceOther   Provenance = "other"
)

const (
	PrivacyPublic   = "public"
	PrivacyPrivate  = "private"
	PrivacyUnlisted = "unlisted"
)

type Thumbnail struct {
	URL    string `bson:"url"`
	Width  int64  `bson:"width,omitempty"`
	Height int64  `bson:"height,omitempty"`
}

// ThumbnailSet maps a size key ("default", "medium", ...) to an image.
type ThumbnailSet map[string]Thumbnail

// RegionRestriction carries either an allow-list or a block-list of
// ISO 3166-1 country codes, never both.
type RegionRestriction struct {
	Allowed []string `bson:"allowed,omitempty"`
	Blocked []string `bson:"blocked,omitempty"`
}

// Episode is one playable video inside a series. YoutubeID is unique
// within the series and immutable; the status fields are refreshable.
type Episode struct {
	Title             string             `bson:"title"`
	YoutubeID         string             `bson:"youtubeId"`
	Season            int                `bson:"season"`
	Episode           int                `bson:"episode"`
	Duration          int                `bson:"duration"`
	PublishedAt       time.Time          `bson:"publishedAt,omitempty"`
	Thumbnails        ThumbnailSet       `bson:"thumbnails,omitempty"`
	Embeddable        bool               `bson:"embeddable"`
	PrivacyStatus     string             `bson:"privacyStatus,omitempty"`
	RegionRestriction *RegionRestriction `bson:"regionRestriction,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt"`
}

// Series is one playlist-derived catalog entry. At most one document
// exists per (name, source) pair. Rating and NumReviews are owned by the
// review flow and never touched by ingestion.
type Series struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	Name       string               `bson:"name"`
	Detail     string               `bson:"detail,omitempty"`
	Year       int                  `bson:"year,omitempty"`
	Genres     []primitive.ObjectID `bson:"genre"`
	Episodes   []Episode            `bson:"videos"`
	Source     Provenance           `bson:"source"`
	Rating     float64              `bson:"rating"`
	NumReviews int                  `bson:"numReviews"`
	CreatedAt  time.Time            `bson:"createdAt,omitempty"`
}

// Genre is a normalized tag. Series reference genres by id; a genre does
// not know which series point at it.
type Genre struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

// HasEpisode reports whether an episode with the given YouTube id is
// already part of the series.
func (s *Series) HasEpisode(youtubeID string) bool {
	for _, ep := range s.Episodes {
		if ep.YoutubeID == youtubeID {
			return true
		}
	}
	return false
}
