package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating bounds for an interaction.
const (
	MinRating = 0
	MaxRating = 10
)

// Interaction is a user's recorded relationship to one movie.
type Interaction struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	MovieID    int64              `bson:"movieId" json:"movieId"`
	Rating     *int               `bson:"rating,omitempty" json:"rating,omitempty"`
	HasWatched *bool              `bson:"hasWatched,omitempty" json:"hasWatched,omitempty"`
	IsFavorite *bool              `bson:"isFavorite,omitempty" json:"isFavorite,omitempty"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// InteractionPatch carries only the fields a client chose to set.
type InteractionPatch struct {
	Rating     *int
	HasWatched *bool
	IsFavorite *bool
}

// Empty reports whether the patch sets nothing.
func (p InteractionPatch) Empty() bool {
	return p.Rating == nil && p.HasWatched == nil && p.IsFavorite == nil
}

// InteractionSummary is one entry of the movieId-keyed interaction map.
type InteractionSummary struct {
	MovieID    int64 `json:"movieId"`
	Rating     *int  `json:"rating"`
	HasWatched bool  `json:"hasWatched"`
	IsFavorite bool  `json:"isFavorite"`
}

// Summary flattens the interaction for list views.
func (i *Interaction) Summary() InteractionSummary {
	return InteractionSummary{
		MovieID:    i.MovieID,
		Rating:     i.Rating,
		HasWatched: i.HasWatched != nil && *i.HasWatched,
		IsFavorite: i.IsFavorite != nil && *i.IsFavorite,
	}
}

// InteractionFlag selects a boolean list view.
type InteractionFlag string

const (
	FlagFavorite InteractionFlag = "isFavorite"
	FlagWatched  InteractionFlag = "hasWatched"
)
