package router

import (
	"context"

	"github.com/gin-gonic/gin"

	"podbase-blog/cmd/api/handlers"
	"podbase-blog/cmd/api/middleware"
	"podbase-blog/cmd/api/services"
)

// Deps 는 라우터가 필요로 하는 외부 의존성이다.
type Deps struct {
	Store services.PostStore
	Ping  func(context.Context) error
}

func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace(), middleware.RequestLoggingMiddleware())

	// Health check
	r.GET("/health", handlers.HealthHandler(deps.Ping))

	// v1 routes
	api := r.Group("/api/v1")
	{
		blogSvc := services.NewBlogQueryService(deps.Store)
		api.POST("/blog/posts/query", handlers.QueryBlogPostsHandler(blogSvc))
		api.GET("/blog/categories", handlers.ListCategoriesHandler(blogSvc))
	}

	return r
}
