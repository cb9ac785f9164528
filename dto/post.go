package dto

import (
	"time"

	"podbase-blog/models"
)

// BlogPost exposes the fields the blog listing renders.
// ID is a hex string to keep transport simple.
// Summary is empty when the query did not ask for it.
type BlogPost struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	Author       string    `json:"author"`
	Summary      string    `json:"summary,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Categories   []string  `json:"categories"`
	Tags         []string  `json:"tags"`
	Featured     bool      `json:"featured"`
	PublishedAt  time.Time `json:"published_at"`
}

// NewBlogPost constructs BlogPost from models.Post
func NewBlogPost(p models.Post, withSummary bool) BlogPost {
	out := BlogPost{
		ID:           p.ID.Hex(),
		Title:        p.Title,
		Link:         p.Link,
		Author:       p.Author,
		ThumbnailURL: p.ThumbnailURL,
		Categories:   p.Categories,
		Tags:         p.Tags,
		Featured:     p.Featured,
		PublishedAt:  p.PublishedAt,
	}
	if withSummary {
		out.Summary = p.Summary
	}
	return out
}
