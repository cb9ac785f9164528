package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"podbase-blog/cmd/internal/trace"
	"podbase-blog/logger"
)

// SlowRequestThreshold 를 넘긴 요청은 warn 으로 남긴다.
var SlowRequestThreshold = 2 * time.Second

// RequestLoggingMiddleware 는 요청 진입부터 응답까지 걸린 시간을 로깅한다.
// RequestTrace 뒤에 등록해야 request_id 가 채워진다.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		queryParams := map[string][]string{}
		for key, values := range c.Request.URL.Query() {
			if len(values) > 0 {
				queryParams[key] = values
			}
		}

		c.Next()

		duration := time.Since(start)
		ctx := c.Request.Context()
		fields := logger.Fields{
			"method":       method,
			"path":         path,
			"query_params": queryParams,
			"status":       c.Writer.Status(),
			"duration":     duration.String(),
			"request_id":   trace.ID(ctx),
			"span_id":      trace.Hop(ctx),
		}
		if body := c.GetString(ctxKeyBodySnippet); body != "" {
			fields["body"] = body
		}

		if duration > SlowRequestThreshold {
			logger.WarnWithFields("slow request", fields)
			return
		}
		logger.InfoWithFields("completed request", fields)
	}
}
