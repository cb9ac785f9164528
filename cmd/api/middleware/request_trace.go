package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"podbase-blog/cmd/internal/trace"
)

const (
	headerRequestID = "X-Request-Id"
	headerSpanID    = "X-Span-Id"

	ctxKeyBodySnippet = "body_snippet"
	maxBodyLog        = 1024
)

// RequestTrace는 모든 inbound HTTP 요청에 대해 Request ID와 Span ID를 보장하고,
// 이를 컨텍스트/헤더에 저장한다. 요청 바디 앞부분은 로깅용으로 gin 컨텍스트에 남긴다.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := c.Request

		// inbound 는 span_id=0, 이후 outbound 호출은 1,2,3,... 로 증가
		ctx := trace.Join(req.Context(), req.Header.Get(headerRequestID), req.Method+" "+req.URL.Path)
		c.Request = req.WithContext(ctx)

		requestID, span := trace.ID(ctx), trace.Hop(ctx)
		c.Request.Header.Set(headerRequestID, requestID)
		c.Request.Header.Set(headerSpanID, span)
		c.Writer.Header().Set(headerRequestID, requestID)
		c.Writer.Header().Set(headerSpanID, span)

		if c.Request.Body != nil && c.Request.ContentLength != 0 &&
			(req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch) {
			if bodyBytes, err := io.ReadAll(c.Request.Body); err == nil {
				if len(bodyBytes) > 0 {
					snippet := bodyBytes
					if len(snippet) > maxBodyLog {
						snippet = snippet[:maxBodyLog]
					}
					c.Set(ctxKeyBodySnippet, string(snippet))
				}
				// gin 핸들러에서 다시 읽을 수 있도록 Body 를 복원한다.
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}
		}

		c.Next()
	}
}
