package models

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account stored in MongoDB
type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Username     string               `json:"username" bson:"username"`
	PasswordHash string               `json:"-" bson:"passwordHash,omitempty"` // empty for OAuth-only accounts, never serialized
	Name         string               `json:"name" bson:"name"`
	GoogleID     string               `json:"-" bson:"googleId,omitempty"`
	Bio          string               `json:"bio" bson:"bio"`
	AvatarURL    string               `json:"avatarUrl" bson:"avatarUrl"`
	Blogs        []primitive.ObjectID `json:"blogs" bson:"blogs"`
	Followers    []primitive.ObjectID `json:"followers" bson:"followers"`
	Following    []primitive.ObjectID `json:"following" bson:"following"`
}

// CreateUserRequest defines the request body for registering a new user
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest defines the request body for password login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateBioRequest defines the request body for updating a user's bio
type UpdateBioRequest struct {
	Bio string `json:"bio" validate:"max=300"`
}

// UserRef is the display projection of a user embedded in other responses
// (like lists, follower lists, notification senders).
type UserRef struct {
	ID        primitive.ObjectID `json:"id"`
	Username  string             `json:"username"`
	Name      string             `json:"name"`
	AvatarURL string             `json:"avatarUrl,omitempty"`
}

// ToRef returns the compact projection used in follower and like lists
func (u *User) ToRef() UserRef {
	return UserRef{ID: u.ID, Username: u.Username, Name: u.Name}
}

// ToSenderRef returns the projection used for notification senders, which
// additionally carries the avatar
func (u *User) ToSenderRef() UserRef {
	return UserRef{ID: u.ID, Username: u.Username, Name: u.Name, AvatarURL: u.AvatarURL}
}

// UserView is a user with follower/following ids resolved to display shape,
// returned by the follow and unfollow endpoints.
type UserView struct {
	ID        primitive.ObjectID   `json:"id"`
	Username  string               `json:"username"`
	Name      string               `json:"name"`
	Bio       string               `json:"bio"`
	AvatarURL string               `json:"avatarUrl"`
	Blogs     []primitive.ObjectID `json:"blogs"`
	Followers []UserRef            `json:"followers"`
	Following []UserRef            `json:"following"`
}

// GeneratedUsername builds a username for accounts created through OAuth:
// the display name with all whitespace removed, lower-cased, suffixed with
// a numeric discriminator to dodge collisions.
func GeneratedUsername(name string, discriminator int) string {
	stripped := strings.Join(strings.Fields(name), "")
	return strings.ToLower(stripped) + strconv.Itoa(discriminator)
}

// ContainsID reports whether id is a member of the given id set,
// compared by value
func ContainsID(set []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, member := range set {
		if member == id {
			return true
		}
	}
	return false
}

// AddID appends id to the set unless it is already present
func AddID(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	if ContainsID(set, id) {
		return set
	}
	return append(set, id)
}

// RemoveID removes id from the set; removing an absent id is a no-op
func RemoveID(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(set))
	for _, member := range set {
		if member != id {
			out = append(out, member)
		}
	}
	return out
}
