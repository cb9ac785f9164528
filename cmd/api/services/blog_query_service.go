package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"podbase-blog/dto"
	"podbase-blog/models"
	"podbase-blog/repositories"
)

// FeaturedLimit caps the featured posts returned with an initial load.
const FeaturedLimit = 5

// ErrUnsupportedSort is returned for any sorting name other than "date".
var ErrUnsupportedSort = errors.New("unsupported sorting")

// PostStore is the subset of repositories.PostRepository the query service needs.
type PostStore interface {
	Query(ctx context.Context, q repositories.PostQuery) (repositories.PostPage, error)
	Featured(ctx context.Context, limit int) ([]models.Post, error)
	Categories(ctx context.Context) ([]string, error)
}

// BlogQueryService encapsulates the blog listing query and DTO mapping.
//
// - store: Mongo posts 컬렉션 (테스트에서는 fake 로 교체)
type BlogQueryService struct {
	store PostStore
}

func NewBlogQueryService(store PostStore) *BlogQueryService {
	return &BlogQueryService{store: store}
}

// Query runs one page query and, when asked, attaches featured posts and categories.
func (s *BlogQueryService) Query(ctx context.Context, in dto.BlogQueryRequest) (dto.BlogQueryResponse, error) {
	q, err := toPostQuery(in.Input)
	if err != nil {
		return dto.BlogQueryResponse{}, err
	}

	page, err := s.store.Query(ctx, q)
	if err != nil {
		return dto.BlogQueryResponse{}, fmt.Errorf("query posts: %w", err)
	}

	out := dto.BlogQueryResponse{
		Response: dto.BlogPostPage{
			Items: mapPosts(page.Posts, in.WithSummary),
			Pagination: dto.BlogPagination{
				FirstItemOnPage: page.First,
				LastItemOnPage:  page.Last,
				TotalItems:      page.Total,
			},
		},
	}

	if in.WithFeaturedPosts {
		featured, err := s.store.Featured(ctx, FeaturedLimit)
		if err != nil {
			return dto.BlogQueryResponse{}, fmt.Errorf("featured posts: %w", err)
		}
		out.FeaturedBlogPosts = mapPosts(featured, in.WithSummary)
	}
	if in.WithCategories {
		cats, err := s.store.Categories(ctx)
		if err != nil {
			return dto.BlogQueryResponse{}, fmt.Errorf("categories: %w", err)
		}
		out.BlogCategories = cats
	}
	return out, nil
}

func (s *BlogQueryService) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}

func toPostQuery(in dto.BlogQueryInput) (repositories.PostQuery, error) {
	q := repositories.PostQuery{
		Categories: in.Filter.Categories,
		Search:     in.Filter.Search,
		PageSize:   in.Pagination.PageSize,
		SkipPages:  in.Pagination.SkipPages,
		After:      in.Pagination.LastItemOnPage,
		Before:     in.Pagination.FirstItemOnPage,
	}
	// 정렬은 날짜 하나만 지원한다. 첫 항목의 방향을 따른다.
	for i, s := range in.Sorting {
		if !strings.EqualFold(s.Name, "date") {
			return repositories.PostQuery{}, fmt.Errorf("%w: %q", ErrUnsupportedSort, s.Name)
		}
		if i == 0 {
			q.SortAsc = s.Asc
		}
	}
	return q, nil
}

func mapPosts(posts []models.Post, withSummary bool) []dto.BlogPost {
	out := make([]dto.BlogPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, dto.NewBlogPost(p, withSummary))
	}
	return out
}
