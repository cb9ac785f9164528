package main

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"podbase-blog/config"
	"podbase-blog/feeder"
	"podbase-blog/logger"
	"podbase-blog/models"
	"podbase-blog/parser"
)

type feedFetcher interface {
	Fetch(ctx context.Context, feedURL string, limit int) ([]feeder.FeedItem, error)
}

type postStore interface {
	UpsertByLink(ctx context.Context, p *models.Post) (*mongo.UpdateResult, error)
	MarkFeatured(ctx context.Context, n int) error
}

// ImportService 피드 수집 후 posts 컬렉션 갱신
type ImportService struct {
	fetcher feedFetcher
	posts   postStore
	cfg     config.FeedsConfig
}

// ImportStats 한 번의 수집 결과
type ImportStats struct {
	Feeds    int
	Failed   int
	Inserted int
	Updated  int
	Skipped  int
}

func NewImportService(fetcher feedFetcher, posts postStore, cfg config.FeedsConfig) *ImportService {
	return &ImportService{fetcher: fetcher, posts: posts, cfg: cfg}
}

// RunOnce 설정된 모든 피드를 한 번 수집하고 최신 글을 featured 로 표시한다.
// 피드 하나의 실패는 로그만 남기고 다음 피드로 넘어간다.
func (s *ImportService) RunOnce(ctx context.Context) (ImportStats, error) {
	var stats ImportStats
	if len(s.cfg.Sources) == 0 {
		logger.Log.Warn("no feeds configured in config.yaml (key: feeds.sources)")
		return stats, nil
	}

	for _, src := range s.cfg.Sources {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Feeds++

		items, err := s.fetcher.Fetch(ctx, src.URL, s.cfg.ItemsPerFeed)
		if err != nil {
			stats.Failed++
			logger.ErrorWithFields("failed to fetch feed", logger.Fields{"feed": src.Name, "url": src.URL, "error": err.Error()})
			continue
		}

		for _, item := range items {
			if item.Link == "" || item.Title == "" {
				stats.Skipped++
				continue
			}
			p := toPost(src, item)
			res, err := s.posts.UpsertByLink(ctx, p)
			if err != nil {
				logger.ErrorWithFields("failed to upsert post", logger.Fields{"feed": src.Name, "link": item.Link, "error": err.Error()})
				continue
			}
			if res != nil && res.UpsertedCount > 0 {
				stats.Inserted++
			} else {
				stats.Updated++
			}
		}
	}

	if err := s.posts.MarkFeatured(ctx, s.cfg.FeaturedCount); err != nil {
		return stats, err
	}

	logger.InfoWithFields("feed import finished", logger.Fields{
		"feeds":    stats.Feeds,
		"failed":   stats.Failed,
		"inserted": stats.Inserted,
		"updated":  stats.Updated,
		"skipped":  stats.Skipped,
	})
	return stats, nil
}

func toPost(src config.FeedSource, item feeder.FeedItem) *models.Post {
	categories := item.Categories
	if src.Category != "" && !containsFold(categories, src.Category) {
		categories = append([]string{src.Category}, categories...)
	}

	thumbnail := item.ImageURL
	if thumbnail == "" {
		thumbnail = parser.FirstImage(item.Content, item.Link)
	}

	return &models.Post{
		Source:       src.Name,
		Title:        item.Title,
		Link:         item.Link,
		Author:       item.Author,
		Summary:      parser.Summarize(item.Content, parser.DefaultSummaryRunes),
		ThumbnailURL: thumbnail,
		Categories:   categories,
		Tags:         src.Tags,
		PublishedAt:  item.PublishedAt,
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
