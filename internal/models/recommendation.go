package models

// FriendRecommendation is a movie endorsed by FriendCount distinct friends.
type FriendRecommendation struct {
	Movie       Movie `json:"movie"`
	FriendCount int   `json:"friendCount"`
}

// MovieCount pairs a movie id with an endorsement tally.
type MovieCount struct {
	MovieID int64 `bson:"_id"`
	Count   int   `bson:"count"`
}

// GenreCount is one row of a genre frequency tally.
type GenreCount struct {
	Genre string `bson:"_id"`
	Count int    `bson:"count"`
}
