package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/utils"
)

// InfoHandler 视频信息处理器
type InfoHandler struct {
	service AudioService
	logger  *zap.Logger
}

// NewInfoHandler 创建视频信息处理器
func NewInfoHandler(service AudioService, logger *zap.Logger) *InfoHandler {
	return &InfoHandler{service: service, logger: logger}
}

// Info 查询视频信息
// GET /api/v1/youtube/info?url=
func (h *InfoHandler) Info(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		models.BadRequest(c, "url is required")
		return
	}

	ref, err := h.service.Info(c.Request.Context(), url)
	switch {
	case err == nil:
		models.Success(c, ref)
	case errors.Is(err, utils.ErrInvalidURL), errors.Is(err, utils.ErrUnsupportedPlatform):
		models.BadRequest(c, err.Error())
	case errors.Is(err, utils.ErrVideoNotFound),
		errors.Is(err, utils.ErrVideoPrivate),
		errors.Is(err, utils.ErrVideoDeleted):
		models.NotFound(c, err.Error())
	default:
		h.logger.Error("info lookup failed", zap.String("url", url), zap.Error(err))
		models.InternalError(c, "failed to get video info")
	}
}
