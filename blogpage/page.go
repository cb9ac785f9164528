package blogpage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"podbase-blog/dto"
	"podbase-blog/logger"
	"podbase-blog/seo"
)

const (
	DefaultPageSize       = 3
	DefaultSearchDebounce = time.Second
)

var (
	// ErrSuperseded is returned when a newer request was issued before this one completed.
	// Its response, if any, is discarded.
	ErrSuperseded = errors.New("blogpage: request superseded by a newer one")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("blogpage: page closed")
)

// QueryService is the remote blog post query endpoint.
type QueryService interface {
	QueryBlogPosts(ctx context.Context, req dto.BlogQueryRequest) (dto.BlogQueryResponse, error)
}

// View is a copy of the page state handed to observers and renderers.
type View struct {
	Title            string
	Posts            []dto.BlogPost
	FeaturedPosts    []dto.BlogPost
	Categories       []string
	SelectedCategory string
	SearchQuery      string
	PageIndex        int
	PageSize         int
	TotalItems       int64
	Loading          bool
	SearchPending    bool
	Err              error
}

// CategoryChoices returns the selector options for this view.
func (v View) CategoryChoices() []string {
	return CategoryChoices(v.Categories)
}

type Option func(*Page)

func WithPageSize(n int) Option {
	return func(p *Page) {
		if n > 0 {
			p.state.PageSize = n
		}
	}
}

func WithSearchDebounce(d time.Duration) Option {
	return func(p *Page) {
		if d > 0 {
			p.debounceDelay = d
		}
	}
}

// WithRequestTimeout bounds every query round trip. 0 leaves it to the caller's context.
func WithRequestTimeout(d time.Duration) Option {
	return func(p *Page) { p.requestTimeout = d }
}

func WithMeta(meta seo.PageMeta) Option {
	return func(p *Page) { p.pageMeta = meta }
}

// WithObserver registers fn to receive a View after every state change.
// fn runs outside the page lock and may call View but no mutating method synchronously.
func WithObserver(fn func(View)) Option {
	return func(p *Page) {
		if fn != nil {
			p.observers = append(p.observers, fn)
		}
	}
}

// Page is the blog listing controller: it owns the filter state, turns reader
// actions into queries, and applies only the response of the latest request.
type Page struct {
	svc            QueryService
	meta           seo.MetaService
	pageMeta       seo.PageMeta
	debounceDelay  time.Duration
	requestTimeout time.Duration
	observers      []func(View)

	debounce *Debouncer
	ctx      context.Context
	res      scope

	mu       sync.Mutex
	state    FilterState
	result   ResultState
	title    string
	err      error
	seq      uint64
	cancel   context.CancelFunc
	loading  bool
	loaded   bool
	metaSent bool
	closed   bool
}

func New(svc QueryService, meta seo.MetaService, opts ...Option) *Page {
	p := &Page{
		svc:           svc,
		meta:          meta,
		debounceDelay: DefaultSearchDebounce,
		pageMeta: seo.PageMeta{
			Title:       "Blog",
			Description: "The Podbase blog - news, advice and other articles",
		},
		state: FilterState{
			SelectedCategory: AllCategories,
			PageSize:         DefaultPageSize,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.title = DeriveTitle(p.state.SearchQuery, p.state.SelectedCategory)

	ctx, cancel := context.WithCancel(context.Background())
	p.ctx = ctx
	p.debounce = NewDebouncer(p.debounceDelay)

	p.res.add(cancel)
	p.res.add(p.debounce.Stop)
	p.res.add(p.cancelInFlight)
	return p
}

// Init publishes the page metadata and performs the initial load, which is the only
// request asking for featured posts and categories. Once it succeeded, further calls
// are no-ops.
func (p *Page) Init(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	loaded := p.loaded
	sendMeta := !p.metaSent
	p.metaSent = true
	p.mu.Unlock()

	if sendMeta && p.meta != nil {
		p.meta.SetPageMeta(ctx, p.pageMeta)
	}
	if loaded {
		return nil
	}

	return p.refetch(ctx, fetch{
		op:   "init",
		opts: QueryOptions{InitialLoad: true},
	})
}

// SetQuery stores the search text without querying.
func (p *Page) SetQuery(query string) {
	p.mu.Lock()
	p.state.SearchQuery = query
	p.mu.Unlock()
}

// SearchPosts schedules FilterPosts after the debounce delay, replacing any
// schedule that has not fired yet.
func (p *Page) SearchPosts() {
	p.debounce.Trigger(func() {
		// 실패는 refetch 에서 이미 로그와 View.Err 로 남는다.
		_ = p.FilterPosts(p.ctx)
	})
	p.notify()
}

// FilterPosts re-queries with the current filters and resets to the first page.
func (p *Page) FilterPosts(ctx context.Context) error {
	return p.refetch(ctx, fetch{op: "filter"})
}

// SelectCategory changes the category filter and re-queries from the first page.
// An empty category selects AllCategories.
func (p *Page) SelectCategory(ctx context.Context, category string) error {
	if category == "" {
		category = AllCategories
	}
	return p.refetch(ctx, fetch{
		op: "select_category",
		prepare: func(s *FilterState) {
			s.SelectedCategory = category
		},
	})
}

func (p *Page) NextPage(ctx context.Context) error { return p.Advance(ctx, 1) }
func (p *Page) PrevPage(ctx context.Context) error { return p.Advance(ctx, -1) }

// Advance moves delta pages from the last applied page. The page index changes
// immediately; no bounds are checked locally.
func (p *Page) Advance(ctx context.Context, delta int) error {
	return p.refetch(ctx, fetch{
		op:   "advance",
		opts: QueryOptions{SkipPages: delta},
		prepare: func(s *FilterState) {
			s.PageIndex += delta
		},
		relative: true,
	})
}

// View returns a snapshot of the current state.
func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

// Close cancels the pending search, any in-flight request and the page context.
// It is safe to call more than once.
func (p *Page) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.res.close()
}

type fetch struct {
	op      string
	opts    QueryOptions
	prepare func(*FilterState)
	// relative: 응답 적용 후 페이지 인덱스 = 커서 페이지 + SkipPages, 아니면 0
	relative bool
}

func (p *Page) refetch(ctx context.Context, f fetch) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	seq := p.seq

	if f.prepare != nil {
		f.prepare(&p.state)
	}
	// 첫 응답이 적용되기 전까지는 어떤 요청이든 초기 로드로 취급한다.
	if !p.loaded {
		f.opts.InitialLoad = true
	}
	target := 0
	if f.relative {
		target = p.result.PageIndex + f.opts.SkipPages
	}
	req := BuildQuery(p.state, p.result.Categories, p.result.Cursor, f.opts)

	var reqCtx context.Context
	var cancel context.CancelFunc
	if p.requestTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, p.requestTimeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	p.cancel = cancel
	p.loading = true
	view := p.viewLocked()
	p.mu.Unlock()
	defer cancel()

	p.notifyView(view)

	start := time.Now()
	resp, err := p.svc.QueryBlogPosts(reqCtx, req)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if seq != p.seq {
		p.mu.Unlock()
		logger.DebugWithFields("blog query superseded", logger.Fields{"op": f.op, "seq": seq})
		return ErrSuperseded
	}
	p.cancel = nil
	p.loading = false

	if err != nil {
		p.err = err
		// 인덱스를 마지막으로 적용된 커서의 페이지로 되돌린다.
		p.state.PageIndex = p.result.PageIndex
		view = p.viewLocked()
		p.mu.Unlock()

		logger.ErrorWithFields("blog query failed", logger.Fields{
			"op":         f.op,
			"search":     req.Input.Filter.Search,
			"categories": req.Input.Filter.Categories,
			"skip_pages": req.Input.Pagination.SkipPages,
			"duration":   time.Since(start).String(),
			"error":      err.Error(),
		})
		p.notifyView(view)
		return fmt.Errorf("blogpage: %s: %w", f.op, err)
	}

	p.applyLocked(resp, f.opts.InitialLoad, target)
	view = p.viewLocked()
	p.mu.Unlock()

	logger.DebugWithFields("blog query applied", logger.Fields{
		"op":          f.op,
		"items":       len(resp.Response.Items),
		"total_items": resp.Response.Pagination.TotalItems,
		"page_index":  target,
		"duration":    time.Since(start).String(),
	})
	p.notifyView(view)
	return nil
}

func (p *Page) applyLocked(resp dto.BlogQueryResponse, initial bool, pageIndex int) {
	p.result.Posts = resp.Response.Items
	p.result.Cursor = PaginationCursor{
		FirstItemOnPage: resp.Response.Pagination.FirstItemOnPage,
		LastItemOnPage:  resp.Response.Pagination.LastItemOnPage,
	}
	p.result.TotalItems = resp.Response.Pagination.TotalItems
	p.result.PageIndex = pageIndex
	if initial {
		p.result.FeaturedPosts = resp.FeaturedBlogPosts
		p.result.Categories = resp.BlogCategories
		p.loaded = true
	}

	p.state.PageIndex = pageIndex
	p.err = nil
	p.title = DeriveTitle(p.state.SearchQuery, p.state.SelectedCategory)
}

func (p *Page) cancelInFlight() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Page) viewLocked() View {
	return View{
		Title:            p.title,
		Posts:            append([]dto.BlogPost(nil), p.result.Posts...),
		FeaturedPosts:    append([]dto.BlogPost(nil), p.result.FeaturedPosts...),
		Categories:       append([]string(nil), p.result.Categories...),
		SelectedCategory: p.state.SelectedCategory,
		SearchQuery:      p.state.SearchQuery,
		PageIndex:        p.state.PageIndex,
		PageSize:         p.state.PageSize,
		TotalItems:       p.result.TotalItems,
		Loading:          p.loading,
		SearchPending:    p.debounce.Pending(),
		Err:              p.err,
	}
}

func (p *Page) notify() {
	if len(p.observers) == 0 {
		return
	}
	p.notifyView(p.View())
}

func (p *Page) notifyView(v View) {
	for _, fn := range p.observers {
		fn(v)
	}
}
