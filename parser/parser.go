package parser

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// DefaultSummaryRunes 는 요약 길이 기본값이다.
const DefaultSummaryRunes = 280

// Summarize extracts plain text from an HTML fragment or document and trims it to
// maxRunes runes at a word boundary, appending "…" when cut.
//
// readability 로 본문을 먼저 시도하고, 짧은 피드 조각처럼 실패하는 경우 텍스트 노드를 직접 모은다.
func Summarize(htmlStr string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultSummaryRunes
	}
	text := ExtractText(htmlStr)
	return truncate(text, maxRunes)
}

// ExtractText returns the whitespace-normalized text of htmlStr.
func ExtractText(htmlStr string) string {
	if strings.TrimSpace(htmlStr) == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return normalizeSpace(htmlStr)
	}

	if article, err := readability.FromDocument(doc, nil); err == nil {
		if text := normalizeSpace(article.TextContent); text != "" {
			return text
		}
	}
	return normalizeSpace(textOf(doc))
}

// FirstImage returns the first <img src> of htmlStr resolved against pageURL.
func FirstImage(htmlStr, pageURL string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var src string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil || src != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "img" {
			for _, a := range n.Attr {
				if strings.EqualFold(a.Key, "src") && strings.TrimSpace(a.Val) != "" {
					src = strings.TrimSpace(a.Val)
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if src == "" || pageURL == "" {
		return src
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return b.String()
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	cut := maxRunes
	// 단어 중간에서 자르지 않는다. 공백이 너무 앞에 있으면 그냥 자른다.
	for i := maxRunes; i > maxRunes/2; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + "…"
}
