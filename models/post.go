package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a blog post document
// Collection: posts
type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
	Source       string             `bson:"source" json:"source"`
	Title        string             `bson:"title" json:"title"`
	Link         string             `bson:"link" json:"link"`
	Author       string             `bson:"author" json:"author"`
	Summary      string             `bson:"summary" json:"summary"`
	ThumbnailURL string             `bson:"thumbnail_url" json:"thumbnail_url"`
	Categories   []string           `bson:"categories" json:"categories"`
	Tags         []string           `bson:"tags" json:"tags"`
	Featured     bool               `bson:"featured" json:"featured"`
	PublishedAt  time.Time          `bson:"published_at" json:"published_at"`
}
