package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"podbase-blog/config"
	"podbase-blog/feeder"
	"podbase-blog/models"
)

type fakeFetcher struct {
	items map[string][]feeder.FeedItem
}

func (f *fakeFetcher) Fetch(_ context.Context, feedURL string, _ int) ([]feeder.FeedItem, error) {
	items, ok := f.items[feedURL]
	if !ok {
		return nil, errors.New("feed unavailable")
	}
	return items, nil
}

type fakePosts struct {
	posts    []*models.Post
	known    map[string]bool
	featured int
}

func (f *fakePosts) UpsertByLink(_ context.Context, p *models.Post) (*mongo.UpdateResult, error) {
	f.posts = append(f.posts, p)
	if f.known[p.Link] {
		return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func (f *fakePosts) MarkFeatured(_ context.Context, n int) error {
	f.featured = n
	return nil
}

func TestRunOnce(t *testing.T) {
	published := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{items: map[string][]feeder.FeedItem{
		"https://a.example/feed": {
			{
				Title:       "Season two",
				Link:        "https://a.example/season-two",
				Author:      "Jane",
				Categories:  []string{"Podcasting"},
				Content:     `<p>We are back.</p><img src="/cover.jpg">`,
				PublishedAt: published,
			},
			{Title: "", Link: "https://a.example/untitled"},
			{Title: "Known", Link: "https://a.example/known", Content: "<p>old</p>"},
		},
	}}
	posts := &fakePosts{known: map[string]bool{"https://a.example/known": true}}

	svc := NewImportService(fetcher, posts, config.FeedsConfig{
		Sources: []config.FeedSource{
			{Name: "A", URL: "https://a.example/feed", Category: "News", Tags: []string{"a"}},
			{Name: "Down", URL: "https://down.example/feed"},
		},
		FeaturedCount: 3,
	})

	stats, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Feeds: 2, Failed: 1, Inserted: 1, Updated: 1, Skipped: 1}, stats)
	assert.Equal(t, 3, posts.featured)

	require.Len(t, posts.posts, 2)
	p := posts.posts[0]
	assert.Equal(t, "A", p.Source)
	assert.Equal(t, []string{"News", "Podcasting"}, p.Categories)
	assert.Equal(t, []string{"a"}, p.Tags)
	assert.Equal(t, "We are back.", p.Summary)
	assert.Equal(t, "https://a.example/cover.jpg", p.ThumbnailURL)
	assert.Equal(t, published, p.PublishedAt)
}

func TestRunOnceNoSources(t *testing.T) {
	posts := &fakePosts{featured: -1}
	stats, err := NewImportService(&fakeFetcher{}, posts, config.FeedsConfig{}).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Feeds)
	assert.Equal(t, -1, posts.featured, "nothing to feature without sources")
}

func TestToPostKeepsExistingCategory(t *testing.T) {
	p := toPost(config.FeedSource{Name: "A", Category: "news"}, feeder.FeedItem{
		Title:      "x",
		Link:       "https://a.example/x",
		Categories: []string{"News"},
		ImageURL:   "https://cdn/img.png",
	})
	assert.Equal(t, []string{"News"}, p.Categories)
	assert.Equal(t, "https://cdn/img.png", p.ThumbnailURL)
}
