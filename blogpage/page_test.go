package blogpage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podbase-blog/dto"
	"podbase-blog/seo"
)

type fakeQueryService struct {
	mu       sync.Mutex
	requests []dto.BlogQueryRequest
	respond  func(ctx context.Context, n int, req dto.BlogQueryRequest) (dto.BlogQueryResponse, error)
}

func (f *fakeQueryService) QueryBlogPosts(ctx context.Context, req dto.BlogQueryRequest) (dto.BlogQueryResponse, error) {
	f.mu.Lock()
	n := len(f.requests)
	f.requests = append(f.requests, req)
	respond := f.respond
	f.mu.Unlock()

	if respond != nil {
		return respond(ctx, n, req)
	}
	return pageResponse(n, req), nil
}

func (f *fakeQueryService) calls() []dto.BlogQueryRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dto.BlogQueryRequest(nil), f.requests...)
}

// pageResponse 는 n 번째 호출에 대한 결정적인 응답을 만든다.
func pageResponse(n int, req dto.BlogQueryRequest) dto.BlogQueryResponse {
	resp := dto.BlogQueryResponse{
		Response: dto.BlogPostPage{
			Items: []dto.BlogPost{{ID: fmt.Sprintf("post-%d", n), Title: fmt.Sprintf("Post %d", n)}},
			Pagination: dto.BlogPagination{
				FirstItemOnPage: fmt.Sprintf("first-%d", n),
				LastItemOnPage:  fmt.Sprintf("last-%d", n),
				TotalItems:      30,
			},
		},
	}
	if req.WithFeaturedPosts {
		resp.FeaturedBlogPosts = []dto.BlogPost{{ID: "featured-1"}}
	}
	if req.WithCategories {
		resp.BlogCategories = []string{"Tech", "News"}
	}
	return resp
}

type recordingMeta struct {
	mu    sync.Mutex
	metas []seo.PageMeta
}

func (r *recordingMeta) SetPageMeta(_ context.Context, meta seo.PageMeta) {
	r.mu.Lock()
	r.metas = append(r.metas, meta)
	r.mu.Unlock()
}

func newTestPage(t *testing.T, svc QueryService, opts ...Option) (*Page, *recordingMeta) {
	t.Helper()
	meta := &recordingMeta{}
	p := New(svc, meta, opts...)
	t.Cleanup(p.Close)
	return p, meta
}

func TestPageInitialState(t *testing.T) {
	p, _ := newTestPage(t, &fakeQueryService{})

	v := p.View()
	assert.Equal(t, "Recent Posts", v.Title)
	assert.Equal(t, AllCategories, v.SelectedCategory)
	assert.Equal(t, DefaultPageSize, v.PageSize)
	assert.Equal(t, 0, v.PageIndex)
}

func TestPageInitLoadsFeaturedAndCategoriesOnce(t *testing.T) {
	svc := &fakeQueryService{}
	p, meta := newTestPage(t, svc, WithMeta(seo.PageMeta{Title: "Blog", Description: "desc"}))
	ctx := context.Background()

	require.NoError(t, p.Init(ctx))
	require.NoError(t, p.Init(ctx))
	require.NoError(t, p.FilterPosts(ctx))
	require.NoError(t, p.NextPage(ctx))

	calls := svc.calls()
	require.Len(t, calls, 3)
	assert.True(t, calls[0].WithCategories)
	assert.True(t, calls[0].WithFeaturedPosts)
	for _, req := range calls[1:] {
		assert.False(t, req.WithCategories)
		assert.False(t, req.WithFeaturedPosts)
		// 전체 카테고리 선택 시 알려진 카테고리 전체로 필터한다.
		assert.Equal(t, []string{"Tech", "News"}, req.Input.Filter.Categories)
	}

	v := p.View()
	assert.Equal(t, []dto.BlogPost{{ID: "featured-1"}}, v.FeaturedPosts)
	assert.Equal(t, []string{"Tech", "News"}, v.Categories)
	assert.Equal(t, []string{AllCategories, "Tech", "News"}, v.CategoryChoices())
	assert.Equal(t, []seo.PageMeta{{Title: "Blog", Description: "desc"}}, meta.metas)
}

func TestPageAdvanceRoundTrip(t *testing.T) {
	svc := &fakeQueryService{}
	p, _ := newTestPage(t, svc)
	ctx := context.Background()
	require.NoError(t, p.Init(ctx))

	require.NoError(t, p.NextPage(ctx))
	assert.Equal(t, 1, p.View().PageIndex)
	require.NoError(t, p.PrevPage(ctx))
	assert.Equal(t, 0, p.View().PageIndex)

	calls := svc.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, 1, calls[1].Input.Pagination.SkipPages)
	assert.Equal(t, "first-0", calls[1].Input.Pagination.FirstItemOnPage)
	assert.Equal(t, "last-0", calls[1].Input.Pagination.LastItemOnPage)
	assert.Equal(t, -1, calls[2].Input.Pagination.SkipPages)
	assert.Equal(t, "first-1", calls[2].Input.Pagination.FirstItemOnPage)
	assert.Equal(t, "last-1", calls[2].Input.Pagination.LastItemOnPage)
}

func TestPageAdvanceHasNoLocalBounds(t *testing.T) {
	p, _ := newTestPage(t, &fakeQueryService{})
	ctx := context.Background()
	require.NoError(t, p.Init(ctx))

	require.NoError(t, p.PrevPage(ctx))
	assert.Equal(t, -1, p.View().PageIndex)
}

func TestPageSearchDebouncesToSingleRefetch(t *testing.T) {
	svc := &fakeQueryService{}
	p, _ := newTestPage(t, svc, WithSearchDebounce(40*time.Millisecond))
	ctx := context.Background()
	require.NoError(t, p.Init(ctx))
	require.NoError(t, p.NextPage(ctx))
	require.Equal(t, 1, p.View().PageIndex)

	for _, q := range []string{"g", "go", "gol", "gola", "golang"} {
		p.SetQuery(q)
		p.SearchPosts()
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, p.View().SearchPending)

	require.Eventually(t, func() bool { return len(svc.calls()) == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	calls := svc.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "golang", calls[2].Input.Filter.Search)
	assert.Equal(t, 0, calls[2].Input.Pagination.SkipPages)

	require.Eventually(t, func() bool { return p.View().PageIndex == 0 }, time.Second, 5*time.Millisecond)
	v := p.View()
	assert.Equal(t, "Search Results", v.Title)
	assert.False(t, v.SearchPending)
}

func TestPageSelectCategory(t *testing.T) {
	svc := &fakeQueryService{}
	p, _ := newTestPage(t, svc)
	ctx := context.Background()
	require.NoError(t, p.Init(ctx))

	require.NoError(t, p.SelectCategory(ctx, "Tech"))
	v := p.View()
	assert.Equal(t, "Posts in Category 'Tech'", v.Title)
	assert.Equal(t, "Tech", v.SelectedCategory)

	calls := svc.calls()
	assert.Equal(t, []string{"Tech"}, calls[1].Input.Filter.Categories)

	require.NoError(t, p.SelectCategory(ctx, ""))
	assert.Equal(t, AllCategories, p.View().SelectedCategory)
}

func TestPageStaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	svc := &fakeQueryService{}
	svc.respond = func(ctx context.Context, n int, req dto.BlogQueryRequest) (dto.BlogQueryResponse, error) {
		if n == 1 {
			// 취소를 무시하고 늦게 도착하는 응답
			<-release
		}
		return pageResponse(n, req), nil
	}
	p, _ := newTestPage(t, svc)
	ctx := context.Background()
	require.NoError(t, p.Init(ctx))

	errCh := make(chan error, 1)
	go func() { errCh <- p.NextPage(ctx) }()
	require.Eventually(t, func() bool { return len(svc.calls()) == 2 }, time.Second, time.Millisecond)

	p.SetQuery("rust")
	require.NoError(t, p.FilterPosts(ctx))
	close(release)

	require.ErrorIs(t, <-errCh, ErrSuperseded)
	v := p.View()
	require.Len(t, v.Posts, 1)
	assert.Equal(t, "post-2", v.Posts[0].ID)
	assert.Equal(t, 0, v.PageIndex)
}

func TestPageSupersededRequestContextIsCancelled(t *testing.T) {
	svc := &fakeQueryService{}
	svc.respond = func(ctx context.Context, n int, req dto.BlogQueryRequest) (dto.BlogQueryResponse, error) {
		if n == 1 {
			<-ctx.Done()
			return dto.BlogQueryResponse{}, ctx.Err()
		}
		return pageResponse(n, req), nil
	}
	p, _ := newTestPage(t, svc)
	ctx := context.Background()
	require.NoError(t, p.Init(ctx))

	errCh := make(chan error, 1)
	go func() { errCh <- p.FilterPosts(ctx) }()
	require.Eventually(t, func() bool { return len(svc.calls()) == 2 }, time.Second, time.Millisecond)

	require.NoError(t, p.FilterPosts(ctx))
	require.ErrorIs(t, <-errCh, ErrSuperseded)
	assert.NoError(t, p.View().Err)
}

func TestPageFailedRefetchIsReported(t *testing.T) {
	boom := errors.New("query service unavailable")
	svc := &fakeQueryService{}
	svc.respond = func(ctx context.Context, n int, req dto.BlogQueryRequest) (dto.BlogQueryResponse, error) {
		if n == 1 {
			return dto.BlogQueryResponse{}, boom
		}
		return pageResponse(n, req), nil
	}

	var mu sync.Mutex
	var seen []View
	p, _ := newTestPage(t, svc, WithObserver(func(v View) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	}))
	ctx := context.Background()
	require.NoError(t, p.Init(ctx))

	err := p.NextPage(ctx)
	require.ErrorIs(t, err, boom)

	v := p.View()
	assert.ErrorIs(t, v.Err, boom)
	assert.Equal(t, 0, v.PageIndex)
	assert.Equal(t, "post-0", v.Posts[0].ID)

	mu.Lock()
	last := seen[len(seen)-1]
	mu.Unlock()
	assert.ErrorIs(t, last.Err, boom)
	assert.False(t, last.Loading)

	require.NoError(t, p.NextPage(ctx))
	assert.NoError(t, p.View().Err)
	assert.Equal(t, 1, p.View().PageIndex)
}

func TestPageRequestsBeforeInitCarryInitialFlags(t *testing.T) {
	svc := &fakeQueryService{}
	p, _ := newTestPage(t, svc)
	ctx := context.Background()

	require.NoError(t, p.FilterPosts(ctx))
	require.NoError(t, p.Init(ctx))

	calls := svc.calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].WithCategories)
	assert.Equal(t, []string{"Tech", "News"}, p.View().Categories)
}

func TestPageRequestTimeout(t *testing.T) {
	svc := &fakeQueryService{}
	svc.respond = func(ctx context.Context, n int, req dto.BlogQueryRequest) (dto.BlogQueryResponse, error) {
		<-ctx.Done()
		return dto.BlogQueryResponse{}, ctx.Err()
	}
	p, _ := newTestPage(t, svc, WithRequestTimeout(20*time.Millisecond))

	err := p.Init(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPageClose(t *testing.T) {
	svc := &fakeQueryService{}
	meta := &recordingMeta{}
	p := New(svc, meta, WithSearchDebounce(20*time.Millisecond))
	ctx := context.Background()
	require.NoError(t, p.Init(ctx))

	p.SetQuery("go")
	p.SearchPosts()
	p.Close()
	p.Close()
	time.Sleep(60 * time.Millisecond)

	assert.Len(t, svc.calls(), 1)
	assert.ErrorIs(t, p.FilterPosts(ctx), ErrClosed)
	assert.ErrorIs(t, p.Init(ctx), ErrClosed)
	assert.ErrorIs(t, p.NextPage(ctx), ErrClosed)
}

func TestPageCloseCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	svc := &fakeQueryService{}
	svc.respond = func(ctx context.Context, n int, req dto.BlogQueryRequest) (dto.BlogQueryResponse, error) {
		close(started)
		<-ctx.Done()
		return dto.BlogQueryResponse{}, ctx.Err()
	}
	p := New(svc, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- p.Init(context.Background()) }()
	<-started
	p.Close()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("in-flight request was not cancelled on close")
	}
}

func TestPageInitPublishesMetaEvenWhenAlreadyLoaded(t *testing.T) {
	p, meta := newTestPage(t, &fakeQueryService{})
	ctx := context.Background()

	require.NoError(t, p.FilterPosts(ctx))
	require.NoError(t, p.Init(ctx))

	assert.Len(t, meta.metas, 1)
}
