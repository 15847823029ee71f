package seeder

import "strings"

// GenreOther is the sentinel tag for titles that match nothing else.
const GenreOther = "other"

// genreKeywords maps each genre to the title keywords that imply it. The
// table is an ordered slice so classification is deterministic across
// runs.
var genreKeywords = []struct {
	name     string
	keywords []string
}{
	{"romance", []string{"romance", "love", "slice of life", "slice-of-life"}},
	{"horror", []string{"horror", "scary", "terror", "ghoul"}},
	{"action", []string{"action", "battle", "fight", "shounen", "shonen"}},
	{"comedy", []string{"comedy", "gag", "funny"}},
	{"drama", []string{"drama", "trag"}},
	{"fantasy", []string{"fantasy", "isekai", "magic"}},
	{"sci-fi", []string{"sci-fi", "science", "space", "future"}},
	{"thriller", []string{"thriller", "mystery"}},
	{"sports", []string{"sports", "baseball", "basketball", "soccer"}},
	{"mecha", []string{"mecha", "robot"}},
	{"slice of life", []string{"slice of life", "slice-of-life"}},
}

// BaselineGenres is the taxonomy seeded into an empty catalog.
var BaselineGenres = []string{
	"romance", "horror", "action", "comedy", "drama", "fantasy",
	"sci-fi", "thriller", "sports", "mecha", "slice of life",
}

// InferGenres maps a free-text title to genre tags by keyword
// containment. A genre matches when any of its keywords appears as a
// substring of the lower-cased title.
func InferGenres(title string) []string {
	lower := strings.ToLower(title)
	found := []string{}
	for _, entry := range genreKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				found = append(found, entry.name)
				break
			}
		}
	}
	if len(found) == 0 {
		return []string{GenreOther}
	}

	return found
}
