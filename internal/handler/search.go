package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/utils"
)

// SearchHandler 搜索处理器
type SearchHandler struct {
	service AudioService
	logger  *zap.Logger
}

// NewSearchHandler 创建搜索处理器
func NewSearchHandler(service AudioService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{service: service, logger: logger}
}

// Search 搜索视频
// GET /api/v1/youtube/search?q=&max_results=
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		models.BadRequest(c, "q is required")
		return
	}

	maxResults := 0
	if raw := c.Query("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			models.BadRequest(c, "invalid max_results")
			return
		}
		maxResults = n
	}

	result, err := h.service.Search(c.Request.Context(), query, maxResults)
	if err != nil {
		if errors.Is(err, utils.ErrEmptyQuery) {
			models.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		models.InternalError(c, "search failed")
		return
	}

	models.Success(c, result)
}
