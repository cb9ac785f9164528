package blogpage

import "podbase-blog/dto"

// SortByDate is the only sort key the listing uses.
const SortByDate = "date"

// QueryOptions selects the kind of request being built.
//   - InitialLoad: first query of the page; also asks for featured posts and categories.
//   - SkipPages: signed page delta relative to the cursor (0 means the first page).
type QueryOptions struct {
	InitialLoad bool
	SkipPages   int
}

// BuildQuery maps the filter state, the known categories and the last cursor to a
// request payload. It never mutates its inputs and returns fresh slices.
func BuildQuery(state FilterState, categories []string, cursor PaginationCursor, opts QueryOptions) dto.BlogQueryRequest {
	var filterCategories []string
	if state.Filtered() {
		filterCategories = []string{state.SelectedCategory}
	} else {
		filterCategories = append([]string{}, categories...)
	}

	return dto.BlogQueryRequest{
		WithSummary:       true,
		WithCategories:    opts.InitialLoad,
		WithFeaturedPosts: opts.InitialLoad,
		Input: dto.BlogQueryInput{
			Pagination: dto.PaginationInput{
				SkipPages:       opts.SkipPages,
				PageSize:        state.PageSize,
				FirstItemOnPage: cursor.FirstItemOnPage,
				LastItemOnPage:  cursor.LastItemOnPage,
			},
			Sorting: []dto.SortingInput{
				{Name: SortByDate, Asc: false},
			},
			Filter: dto.FilterInput{
				Categories: filterCategories,
				Search:     state.SearchQuery,
			},
		},
	}
}
