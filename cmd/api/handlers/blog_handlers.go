package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"podbase-blog/cmd/api/services"
	"podbase-blog/dto"
	"podbase-blog/logger"
	"podbase-blog/repositories"
)

// QueryBlogPostsHandler godoc
// @Summary      블로그 글 목록 조회
// @Description  카테고리/검색어 필터와 정렬을 적용해 커서 기반으로 한 페이지를 조회합니다. 잘못된 본문, 알 수 없는 정렬, 깨진 커서는 400 으로 응답합니다.
// @Tags         blog
// @Accept       json
// @Produce      json
// @Param        body  body      dto.BlogQueryRequest  true  "조회 조건"
// @Success      200   {object}  dto.BlogQueryResponse
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /api/v1/blog/posts/query [post]
func QueryBlogPostsHandler(svc *services.BlogQueryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.BlogQueryRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}

		resp, err := svc.Query(c.Request.Context(), in)
		if err != nil {
			if errors.Is(err, repositories.ErrInvalidCursor) || errors.Is(err, services.ErrUnsupportedSort) {
				c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
				return
			}
			logger.ErrorWithFields("blog query failed", logger.Fields{"error": err.Error()})
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: "internal error"})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ListCategoriesHandler godoc
// @Summary      카테고리 목록
// @Description  저장된 글의 카테고리를 중복 없이 이름순으로 돌려줍니다.
// @Tags         blog
// @Produce      json
// @Success      200  {object}  dto.CategoriesResponse
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /api/v1/blog/categories [get]
func ListCategoriesHandler(svc *services.BlogQueryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.Categories(c.Request.Context())
		if err != nil {
			logger.ErrorWithFields("list categories failed", logger.Fields{"error": err.Error()})
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: "internal error"})
			return
		}
		if cats == nil {
			cats = []string{}
		}
		c.JSON(http.StatusOK, dto.CategoriesResponse{Items: cats})
	}
}

// HealthHandler godoc
// @Summary      헬스 체크
// @Description  Mongo ping 이 3초 안에 실패하면 503 을 돌려줍니다.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func HealthHandler(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
