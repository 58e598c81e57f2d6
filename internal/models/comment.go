package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Comment represents a comment on a blog. The blog field is a weak
// back-reference; the blog's comments array holds the authoritative
// membership list.
type Comment struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Content string             `json:"content" bson:"content"`
	BlogID  primitive.ObjectID `json:"blog,omitempty" bson:"blog,omitempty"`
}

// CommentView is the comment projection embedded in blog responses
type CommentView struct {
	ID      primitive.ObjectID `json:"id"`
	Content string             `json:"content"`
}

// ToView returns the display projection of the comment
func (c *Comment) ToView() CommentView {
	return CommentView{ID: c.ID, Content: c.Content}
}
