package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"podbase-blog/dto"
	"podbase-blog/models"
	"podbase-blog/repositories"
)

type fakeStore struct {
	got           repositories.PostQuery
	page          repositories.PostPage
	featured      []models.Post
	categories    []string
	queryErr      error
	featuredCalls int
	categoryCalls int
}

func (f *fakeStore) Query(_ context.Context, q repositories.PostQuery) (repositories.PostPage, error) {
	f.got = q
	return f.page, f.queryErr
}

func (f *fakeStore) Featured(_ context.Context, _ int) ([]models.Post, error) {
	f.featuredCalls++
	return f.featured, nil
}

func (f *fakeStore) Categories(context.Context) ([]string, error) {
	f.categoryCalls++
	return f.categories, nil
}

func post(title string) models.Post {
	return models.Post{ID: primitive.NewObjectID(), Title: title, Summary: "summary of " + title}
}

func TestQueryMapsRequest(t *testing.T) {
	store := &fakeStore{page: repositories.PostPage{Posts: []models.Post{post("a")}, First: "f", Last: "l", Total: 7}}
	svc := NewBlogQueryService(store)

	resp, err := svc.Query(context.Background(), dto.BlogQueryRequest{
		WithSummary: true,
		Input: dto.BlogQueryInput{
			Pagination: dto.PaginationInput{SkipPages: -2, PageSize: 3, FirstItemOnPage: "first", LastItemOnPage: "last"},
			Sorting:    []dto.SortingInput{{Name: "date", Asc: false}},
			Filter:     dto.FilterInput{Categories: []string{"Tech"}, Search: "go"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, repositories.PostQuery{
		Categories: []string{"Tech"},
		Search:     "go",
		PageSize:   3,
		SkipPages:  -2,
		After:      "last",
		Before:     "first",
	}, store.got)
	require.Len(t, resp.Response.Items, 1)
	assert.Equal(t, "summary of a", resp.Response.Items[0].Summary)
	assert.Equal(t, dto.BlogPagination{FirstItemOnPage: "f", LastItemOnPage: "l", TotalItems: 7}, resp.Response.Pagination)
	assert.Nil(t, resp.FeaturedBlogPosts)
	assert.Nil(t, resp.BlogCategories)
	assert.Zero(t, store.featuredCalls)
	assert.Zero(t, store.categoryCalls)
}

func TestQueryInitialLoadExtras(t *testing.T) {
	store := &fakeStore{
		featured:   []models.Post{post("featured")},
		categories: []string{"News", "Tech"},
	}
	svc := NewBlogQueryService(store)

	resp, err := svc.Query(context.Background(), dto.BlogQueryRequest{
		WithCategories:    true,
		WithFeaturedPosts: true,
	})
	require.NoError(t, err)

	assert.NotNil(t, resp.Response.Items)
	assert.Empty(t, resp.Response.Items)
	require.Len(t, resp.FeaturedBlogPosts, 1)
	assert.Empty(t, resp.FeaturedBlogPosts[0].Summary, "summary stripped when with_summary is false")
	assert.Equal(t, []string{"News", "Tech"}, resp.BlogCategories)
}

func TestQuerySorting(t *testing.T) {
	tests := []struct {
		name    string
		sorting []dto.SortingInput
		wantAsc bool
		wantErr error
	}{
		{name: "none", sorting: nil},
		{name: "date desc", sorting: []dto.SortingInput{{Name: "date"}}},
		{name: "date asc", sorting: []dto.SortingInput{{Name: "DATE", Asc: true}}, wantAsc: true},
		{name: "unknown", sorting: []dto.SortingInput{{Name: "title"}}, wantErr: ErrUnsupportedSort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			_, err := NewBlogQueryService(store).Query(context.Background(), dto.BlogQueryRequest{
				Input: dto.BlogQueryInput{Sorting: tt.sorting},
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAsc, store.got.SortAsc)
		})
	}
}

func TestQueryWrapsStoreError(t *testing.T) {
	store := &fakeStore{queryErr: repositories.ErrInvalidCursor}
	_, err := NewBlogQueryService(store).Query(context.Background(), dto.BlogQueryRequest{})
	require.ErrorIs(t, err, repositories.ErrInvalidCursor)
}
