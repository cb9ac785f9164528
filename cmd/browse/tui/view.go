package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"podbase-blog/blogpage"
	"podbase-blog/dto"
)

func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder

	title := a.meta.Title
	if title == "" {
		title = "Blog"
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	if a.meta.Description != "" {
		b.WriteString(subtitleStyle.Render(truncateStr(a.meta.Description, width-2)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(renderTabs(a.view.CategoryChoices(), a.view.SelectedCategory, width))
	b.WriteString("\n")

	if a.mode == modeSearch {
		b.WriteString(a.searchInput.View())
		b.WriteString("\n")
	} else if a.view.SearchQuery != "" {
		b.WriteString(subtitleStyle.Render("search: " + a.view.SearchQuery))
		b.WriteString("\n")
	}

	if len(a.view.FeaturedPosts) > 0 {
		names := make([]string, 0, len(a.view.FeaturedPosts))
		for _, p := range a.view.FeaturedPosts {
			names = append(names, p.Title)
		}
		b.WriteString(featuredStyle.Render(truncateStr("★ "+strings.Join(names, " · "), width-2)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render(a.view.Title))
	b.WriteString("\n\n")

	if len(a.view.Posts) == 0 && !a.view.Loading {
		b.WriteString(subtitleStyle.Render("No posts found."))
		b.WriteString("\n")
	}
	for i, p := range a.view.Posts {
		b.WriteString(renderPost(p, i == a.cursor, width))
		b.WriteString("\n")
	}

	if a.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("error: " + a.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.renderStatusBar(width))
	return b.String()
}

func renderTabs(choices []string, selected string, width int) string {
	tabs := make([]string, 0, len(choices))
	for _, c := range choices {
		if c == selected {
			tabs = append(tabs, tabActiveStyle.Render(c))
			continue
		}
		tabs = append(tabs, tabInactiveStyle.Render(c))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if lipgloss.Width(row) > width {
		// 좁은 화면에서는 선택된 카테고리만 보여준다.
		return tabActiveStyle.Render(truncateStr(selected, width-2))
	}
	return row
}

func renderPost(p dto.BlogPost, selected bool, width int) string {
	titleStyle := itemTitleStyle
	marker := "  "
	if selected {
		titleStyle = itemSelectedStyle
		marker = "> "
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString(titleStyle.Render(truncateStr(p.Title, width-4)))
	b.WriteString("\n  ")

	meta := relativeTime(p.PublishedAt)
	if p.Author != "" {
		meta = p.Author + " · " + meta
	}
	if len(p.Categories) > 0 {
		meta += " · " + strings.Join(p.Categories, ", ")
	}
	b.WriteString(itemMetaStyle.Render(truncateStr(meta, width-4)))

	if p.Summary != "" {
		b.WriteString("\n  ")
		b.WriteString(itemSummaryStyle.Render(truncateStr(p.Summary, width-4)))
	}
	b.WriteString("\n")
	return b.String()
}

func (a *App) renderStatusBar(width int) string {
	left := fmt.Sprintf(" page %d/%d · %d posts", a.view.PageIndex+1, pageCount(a.view), a.view.TotalItems)
	if a.view.Loading {
		left += " " + a.spinner.View()
	}
	if a.view.SearchPending {
		left += " (searching...)"
	}

	right := " / search  tab category  ←/→ page  q quit "
	if a.mode == modeSearch {
		right = " esc done "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// pageCount is the number of pages for the view's total, at least 1.
func pageCount(v blogpage.View) int {
	size := v.PageSize
	if size <= 0 {
		size = blogpage.DefaultPageSize
	}
	n := int((v.TotalItems + int64(size) - 1) / int64(size))
	if n < 1 {
		return 1
	}
	return n
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}
