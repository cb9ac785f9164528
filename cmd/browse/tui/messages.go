package tui

import (
	"podbase-blog/blogpage"
	"podbase-blog/seo"
)

// viewMsg carries a page snapshot from the page observer.
type viewMsg struct {
	view blogpage.View
}

type metaMsg struct {
	meta seo.PageMeta
}

// opDoneMsg is returned by every page command once the call has returned.
type opDoneMsg struct {
	op  string
	err error
}
