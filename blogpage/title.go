package blogpage

import "fmt"

const (
	titleRecentPosts    = "Recent Posts"
	titleSearchResults  = "Search Results"
	titleCategoryPosts  = "Posts in Category"
	titleCategorySuffix = "in Category"
)

// DeriveTitle returns the listing heading for the given search text and category.
func DeriveTitle(search, category string) string {
	filtered := FilterState{SelectedCategory: category}.Filtered()

	switch {
	case search != "" && filtered:
		return fmt.Sprintf("%s %s '%s'", titleSearchResults, titleCategorySuffix, category)
	case search != "":
		return titleSearchResults
	case filtered:
		return fmt.Sprintf("%s '%s'", titleCategoryPosts, category)
	default:
		return titleRecentPosts
	}
}
