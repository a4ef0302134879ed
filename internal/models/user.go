// Package models contains the documents stored by PANORAM and the shapes
// returned over the API.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Genders accepted at registration.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// User is a document in the users collection.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username       string               `bson:"username" json:"username"`
	Email          string               `bson:"email" json:"email"`
	HashedPassword string               `bson:"hashedPassword" json:"-"`
	Gender         string               `bson:"gender,omitempty" json:"gender,omitempty"`
	Birthdate      *time.Time           `bson:"birthdate,omitempty" json:"birthdate,omitempty"`
	Friends        []primitive.ObjectID `bson:"friends" json:"-"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
}

// HasFriend reports whether id is in the user's friend set.
func (u *User) HasFriend(id primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// UserSummary is the public view returned by user search.
type UserSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
}

// FriendDetail is what a profile reveals about each friend.
type FriendDetail struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
}

// Profile is the caller's own record with resolved friends.
type Profile struct {
	ID            primitive.ObjectID `json:"id"`
	Username      string             `json:"username"`
	Email         string             `json:"email"`
	Gender        string             `json:"gender,omitempty"`
	Birthdate     *time.Time         `json:"birthdate,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	FriendDetails []FriendDetail     `json:"friendDetails"`
}

// NewProfile builds a Profile without exposing the password hash or raw friend ids.
func NewProfile(u *User, friends []FriendDetail) *Profile {
	if friends == nil {
		friends = []FriendDetail{}
	}
	return &Profile{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Gender:        u.Gender,
		Birthdate:     u.Birthdate,
		CreatedAt:     u.CreatedAt,
		FriendDetails: friends,
	}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}
