package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a piece of content published by a Sone (MongoDB)
type Post struct {
	ID          string    `json:"id" bson:"_id"`
	SoneID      string    `json:"sone_id" bson:"sone_id"`
	RecipientID string    `json:"recipient_id,omitempty" bson:"recipient_id,omitempty"`
	Text        string    `json:"text" bson:"text"`
	Time        time.Time `json:"time" bson:"time"`
}

// Reply is a reply to a Post (MongoDB)
type Reply struct {
	ID     string    `json:"id" bson:"_id"`
	PostID string    `json:"post_id" bson:"post_id"`
	SoneID string    `json:"sone_id" bson:"sone_id"`
	Text   string    `json:"text" bson:"text"`
	Time   time.Time `json:"time" bson:"time"`
}

// KnownPost records that a post has been marked as known (MongoDB)
type KnownPost struct {
	ID       primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	PostID   string             `json:"post_id" bson:"post_id"`
	MarkedAt time.Time          `json:"marked_at" bson:"marked_at"`
}
