package dto

// BlogQueryRequest 는 블로그 목록 쿼리 한 번에 해당하는 요청 페이로드다.
// 생성 이후에는 변경하지 않는다.
type BlogQueryRequest struct {
	WithSummary       bool           `json:"with_summary"`
	WithCategories    bool           `json:"with_categories"`
	WithFeaturedPosts bool           `json:"with_featured_posts"`
	Input             BlogQueryInput `json:"input"`
}

type BlogQueryInput struct {
	Pagination PaginationInput `json:"pagination"`
	Sorting    []SortingInput  `json:"sorting" binding:"dive"`
	Filter     FilterInput     `json:"filter"`
}

// PaginationInput 은 커서 기반 페이지 이동 요청이다.
//   - SkipPages: 이전 응답의 커서 기준으로 이동할 페이지 수 (음수면 이전 페이지 방향)
//   - FirstItemOnPage/LastItemOnPage: 이전 응답이 돌려준 불투명 커서를 그대로 되돌려 보낸다.
type PaginationInput struct {
	SkipPages       int    `json:"skip_pages"`
	PageSize        int    `json:"page_size" binding:"gte=0,lte=100"`
	FirstItemOnPage string `json:"first_item_on_page,omitempty"`
	LastItemOnPage  string `json:"last_item_on_page,omitempty"`
}

type SortingInput struct {
	Name string `json:"name" binding:"required"`
	Asc  bool   `json:"asc"`
}

type FilterInput struct {
	Categories []string `json:"categories"`
	Search     string   `json:"search"`
}

// BlogQueryResponse 는 쿼리 서비스 응답이다.
// FeaturedBlogPosts/BlogCategories 는 요청에서 with_* 를 켠 경우에만 채워진다.
type BlogQueryResponse struct {
	Response          BlogPostPage `json:"response"`
	FeaturedBlogPosts []BlogPost   `json:"featured_blog_posts,omitempty"`
	BlogCategories    []string     `json:"blog_categories,omitempty"`
}

type BlogPostPage struct {
	Items      []BlogPost     `json:"items"`
	Pagination BlogPagination `json:"pagination"`
}

// BlogPagination carries the opaque cursors of the returned page.
// Both cursors are empty when the page has no items.
type BlogPagination struct {
	FirstItemOnPage string `json:"first_item_on_page,omitempty"`
	LastItemOnPage  string `json:"last_item_on_page,omitempty"`
	TotalItems      int64  `json:"total_items"`
}

// CategoriesResponse lists the distinct categories of all posts.
type CategoriesResponse struct {
	Items []string `json:"items"`
}
