package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Blog represents a published blog post stored in MongoDB. Likes, comments
// and the owning user are stored as ObjectID references; the Author field is
// a free-text display name, distinct from the posting user.
type Blog struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title     string               `json:"title" bson:"title"`
	Author    string               `json:"author" bson:"author"`
	URL       string               `json:"url" bson:"url"`
	ImageURL  string               `json:"imageUrl" bson:"imageUrl"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"` // insertion order = like order
	UserID    primitive.ObjectID   `json:"user" bson:"user"`
	Comments  []primitive.ObjectID `json:"comments" bson:"comments"`
	Tags      []string             `json:"tags" bson:"tags"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// UpdateBlogRequest defines the request body for updating blog fields.
// Nil/empty fields are left untouched.
type UpdateBlogRequest struct {
	Title  string               `json:"title"`
	Author string               `json:"author"`
	URL    string               `json:"url"`
	Likes  []primitive.ObjectID `json:"likes"`
}

// CreateCommentRequest defines the request body for commenting on a blog
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// BlogView is a blog with its references resolved to display shape
type BlogView struct {
	ID        primitive.ObjectID `json:"id"`
	Title     string             `json:"title"`
	Author    string             `json:"author"`
	URL       string             `json:"url"`
	ImageURL  string             `json:"imageUrl"`
	Tags      []string           `json:"tags"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	User      UserRef            `json:"user"`
	Comments  []CommentView      `json:"comments"`
	Likes     []UserRef          `json:"likes"`
}

// BlogTitleRef is the minimal blog projection embedded in notifications
type BlogTitleRef struct {
	ID    primitive.ObjectID `json:"id"`
	Title string             `json:"title"`
}

// ProfileBlog is the blog projection embedded in a public user profile
type ProfileBlog struct {
	ID        primitive.ObjectID   `json:"id"`
	Title     string               `json:"title"`
	ImageURL  string               `json:"imageUrl"`
	Likes     []primitive.ObjectID `json:"likes"`
	CreatedAt time.Time            `json:"createdAt"`
}

// BlogRef is the blog projection embedded in the user listing
type BlogRef struct {
	ID     primitive.ObjectID `json:"id"`
	Title  string             `json:"title"`
	Author string             `json:"author"`
	URL    string             `json:"url"`
}

// NormalizeTags turns a comma-separated tag string into the stored form:
// trimmed, lower-cased, empties dropped, deduplicated by value.
// Normalization is idempotent.
func NormalizeTags(raw string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, t := range strings.Split(raw, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

// HasLiked reports whether the given user is in the blog's like set
func (b *Blog) HasLiked(userID primitive.ObjectID) bool {
	return ContainsID(b.Likes, userID)
}

// ToggleLike flips the given user's membership in the like set and reports
// whether the user likes the blog afterwards.
func (b *Blog) ToggleLike(userID primitive.ObjectID) bool {
	if b.HasLiked(userID) {
		b.Likes = RemoveID(b.Likes, userID)
		return false
	}
	b.Likes = AddID(b.Likes, userID)
	return true
}
