package blogpage

import "podbase-blog/dto"

// AllCategories is the category selector value meaning "no category filter".
const AllCategories = "All Categories"

// FilterState is what the reader has chosen on the page.
type FilterState struct {
	SelectedCategory string
	SearchQuery      string
	PageIndex        int
	PageSize         int
}

// Filtered reports whether a concrete category is selected.
func (s FilterState) Filtered() bool {
	return s.SelectedCategory != "" && s.SelectedCategory != AllCategories
}

// PaginationCursor holds the opaque markers of the page last returned by the
// query service. It is replaced wholesale on every applied response.
type PaginationCursor struct {
	FirstItemOnPage string
	LastItemOnPage  string
}

// ResultState is the data most recently applied from the query service.
// PageIndex is the index of the page the cursor belongs to.
type ResultState struct {
	Posts         []dto.BlogPost
	Cursor        PaginationCursor
	TotalItems    int64
	PageIndex     int
	FeaturedPosts []dto.BlogPost
	Categories    []string
}

// CategoryChoices returns the selector options: the sentinel first, then every known category.
func CategoryChoices(categories []string) []string {
	out := make([]string, 0, len(categories)+1)
	out = append(out, AllCategories)
	for _, c := range categories {
		if c == AllCategories {
			continue
		}
		out = append(out, c)
	}
	return out
}
