package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

// Notification represents a user notification stored in MongoDB. It is an
// append-only log entry referencing users and blogs by id; the blog field is
// set for like/comment notifications and absent for follows.
type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Recipient primitive.ObjectID `json:"recipient" bson:"recipient"`
	Sender    primitive.ObjectID `json:"sender" bson:"sender"`
	Type      string             `json:"type" bson:"type"`
	BlogID    primitive.ObjectID `json:"blog,omitempty" bson:"blog,omitempty"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NotificationView is a notification with sender and blog resolved to
// display shape
type NotificationView struct {
	ID        primitive.ObjectID `json:"id"`
	Type      string             `json:"type"`
	Read      bool               `json:"read"`
	CreatedAt time.Time          `json:"createdAt"`
	Sender    UserRef            `json:"sender"`
	Blog      *BlogTitleRef      `json:"blog,omitempty"`
}
