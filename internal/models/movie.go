package models

// DirectorUnavailable marks a movie whose credits listed no director.
const DirectorUnavailable = "unavailable"

// Movie is a document in the movies collection. The id is the external
// catalog id.
type Movie struct {
	ID            int64    `bson:"_id" json:"id" yaml:"id"`
	Title         string   `bson:"title" json:"title" yaml:"title"`
	ReleaseYear   int      `bson:"releaseYear,omitempty" json:"releaseYear,omitempty" yaml:"releaseYear"`
	Genres        []string `bson:"genres" json:"genres" yaml:"genres"`
	AverageRating float64  `bson:"averageRating" json:"averageRating" yaml:"averageRating"`
	PosterURL     string   `bson:"posterUrl,omitempty" json:"posterUrl,omitempty" yaml:"posterUrl"`
	Synopsis      string   `bson:"synopsis,omitempty" json:"synopsis,omitempty" yaml:"synopsis"`
	Director      string   `bson:"director,omitempty" json:"director,omitempty" yaml:"director"`
	Actors        []string `bson:"actors,omitempty" json:"actors,omitempty" yaml:"actors"`
}

// Enriched reports whether credits were already written for this movie.
func (m *Movie) Enriched() bool {
	return len(m.Actors) > 0
}

// HasKnownDirector is false for empty or sentinel directors.
func (m *Movie) HasKnownDirector() bool {
	return m.Director != "" && m.Director != DirectorUnavailable
}
