package feeder

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedItem 은 RSS/Atom 항목 중 블로그 게시글로 옮길 필드만 담는다.
//   - Content: 본문 HTML (없으면 Description 과 같다)
//   - ImageURL: 피드가 제공한 대표 이미지 (없으면 빈 문자열)
type FeedItem struct {
	Title       string
	Link        string
	Author      string
	Categories  []string
	Description string
	Content     string
	ImageURL    string
	PublishedAt time.Time
}

const FeederTimeout = 30 * time.Second

// rssUserAgent 는 RSS 피드를 요청할 때 사용할 브라우저 유사 User-Agent 이다.
// 일부 블로그(특히 CDN/보안 프록시 뒤에 있는 경우)는 기본 Go HTTP 클라이언트 UA를 차단한다.
const rssUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

// Fetcher 는 피드를 내려받아 파싱한다. 하나의 Fetcher 를 여러 피드에 재사용한다.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
}

// NewFetcher 는 기본 클라이언트로 Fetcher 를 만든다.
// insecure 가 true 면 인증서 검증을 건너뛴다 (체인이 깨진 블로그가 종종 있다).
func NewFetcher(insecure bool) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return NewFetcherWithClient(&http.Client{
		Timeout:   FeederTimeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			// 리다이렉트 시 이전 요청의 User-Agent를 유지
			req.Header.Set("User-Agent", rssUserAgent)
			return nil
		},
	})
}

func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client, parser: gofeed.NewParser()}
}

// Fetch fetches the feed at feedURL. If limit is greater than 0, it returns only
// the first limit items.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string, limit int) ([]FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("User-Agent", rssUserAgent)
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodySample, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, fmt.Errorf("failed to fetch feed: status code %d, url: %s, body: %s", resp.StatusCode, feedURL, string(bodySample))
	}

	cleaned, err := cleanControlCharacters(resp.Body)
	if err != nil {
		return nil, err
	}

	feed, err := f.parser.Parse(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]FeedItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		items = append(items, toFeedItem(item))
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func toFeedItem(item *gofeed.Item) FeedItem {
	var published time.Time
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	out := FeedItem{
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		Description: item.Description,
		Content:     item.Content,
		PublishedAt: published,
	}
	if out.Content == "" {
		out.Content = item.Description
	}

	if item.Author != nil {
		out.Author = item.Author.Name
	} else if len(item.Authors) > 0 && item.Authors[0] != nil {
		out.Author = item.Authors[0].Name
	}

	seen := map[string]struct{}{}
	for _, c := range item.Categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(c)]; ok {
			continue
		}
		seen[strings.ToLower(c)] = struct{}{}
		out.Categories = append(out.Categories, c)
	}

	if item.Image != nil {
		out.ImageURL = item.Image.URL
	} else {
		for _, enc := range item.Enclosures {
			if enc != nil && strings.HasPrefix(enc.Type, "image/") {
				out.ImageURL = enc.URL
				break
			}
		}
	}
	return out
}

// XML에서 허용되지 않는 모든 제어 문자 범위입니다 (0x00부터 0x1F까지 중 탭, LF, CR 제외).
var invalidControlCharRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)

func cleanControlCharacters(r io.Reader) (io.Reader, error) {
	bodyBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read body for cleaning: %w", err)
	}
	return bytes.NewReader(invalidControlCharRegex.ReplaceAll(bodyBytes, nil)), nil
}
