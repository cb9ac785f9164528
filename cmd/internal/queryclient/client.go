package queryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"podbase-blog/cmd/internal/httpclient"
	"podbase-blog/dto"
)

// Client는 블로그 쿼리 서비스(cmd/api) HTTP API를 호출하는 얇은 클라이언트다.
// blogpage.QueryService 를 구현한다.
//
// baseURL 예: http://localhost:8080
type Client struct {
	base *httpclient.BaseClient
}

// ErrBadRequest 는 쿼리 서비스가 400 으로 거절한 요청이다.
var ErrBadRequest = errors.New("query service rejected the request")

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: httpclient.NewBaseClientWithClient(httpclient.New(httpclient.Config{Timeout: timeout}), baseURL),
	}
}

// NewWithHTTPClient 는 테스트 등에서 준비된 http.Client 를 그대로 사용한다.
func NewWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{base: httpclient.NewBaseClientWithClient(httpClient, baseURL)}
}

// QueryBlogPosts는 POST /api/v1/blog/posts/query 를 호출한다.
// 400 응답은 ErrBadRequest 로 감싸서 반환한다.
func (c *Client) QueryBlogPosts(ctx context.Context, in dto.BlogQueryRequest) (dto.BlogQueryResponse, error) {
	buf, err := json.Marshal(in)
	if err != nil {
		return dto.BlogQueryResponse{}, err
	}

	req, err := c.base.NewRequest(ctx, http.MethodPost, "/api/v1/blog/posts/query", nil, bytes.NewReader(buf))
	if err != nil {
		return dto.BlogQueryResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return dto.BlogQueryResponse{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out dto.BlogQueryResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return dto.BlogQueryResponse{}, fmt.Errorf("query-service QueryBlogPosts: decode: %w", err)
		}
		return out, nil
	case http.StatusBadRequest:
		return dto.BlogQueryResponse{}, fmt.Errorf("%w: %s", ErrBadRequest, errorMessage(resp.Body))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return dto.BlogQueryResponse{}, fmt.Errorf("query-service QueryBlogPosts: status=%d body=%s", resp.StatusCode, string(body))
	}
}

// Categories는 GET /api/v1/blog/categories 를 호출한다.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	req, err := c.base.NewRequest(ctx, http.MethodGet, "/api/v1/blog/categories", nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("query-service Categories: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out dto.CategoriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Health는 GET /health 를 호출해 서비스 상태를 확인한다.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.base.NewRequest(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return err
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("query-service Health: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}

func errorMessage(r io.Reader) string {
	var body dto.ErrorResponseDTO
	raw, _ := io.ReadAll(io.LimitReader(r, 2048))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return string(raw)
}
