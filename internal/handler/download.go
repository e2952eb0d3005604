package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vasset/audio-service/internal/extraction"
	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/utils"
)

// DownloadHandler 音频下载处理器
type DownloadHandler struct {
	service AudioService
	logger  *zap.Logger
}

// NewDownloadHandler 创建下载处理器
func NewDownloadHandler(service AudioService, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{service: service, logger: logger}
}

// DownloadRequest POST 请求体
type DownloadRequest struct {
	URL string `json:"url" form:"url"`
}

// Download 下载音频
// GET /api/v1/youtube/download?url=
// POST /api/v1/youtube/download {"url": "..."}
func (h *DownloadHandler) Download(c *gin.Context) {
	var req DownloadRequest
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBind(&req); err != nil {
			models.BadRequest(c, "invalid request body")
			return
		}
	} else {
		req.URL = c.Query("url")
	}

	if req.URL == "" {
		models.BadRequest(c, "url is required")
		return
	}

	payload, err := h.service.Download(c.Request.Context(), req.URL)
	if err != nil {
		h.writeError(c, req.URL, err)
		return
	}

	// 整个文件已在内存中, 临时目录已删除
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, payload.Disposition()))
	c.Header("Content-Length", strconv.FormatInt(payload.Size, 10))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	if payload.Thumbnail != "" {
		c.Header("X-Thumbnail-URL", payload.Thumbnail)
	}
	c.Data(http.StatusOK, payload.ContentType, payload.Data)
}

// writeError 错误映射: 参数错误 400, 机器人检测 503, 其余 500
func (h *DownloadHandler) writeError(c *gin.Context, url string, err error) {
	if errors.Is(err, utils.ErrInvalidURL) || errors.Is(err, utils.ErrUnsupportedPlatform) {
		models.BadRequest(c, err.Error())
		return
	}

	failure, ok := extraction.AsFailure(err)
	if ok && failure.IsBotDetection {
		h.logger.Warn("download blocked by bot detection", zap.String("url", url))
		remediation := failure.Remediation
		if remediation == nil {
			remediation = extraction.DefaultRemediation()
		}
		models.ErrorWithDetail(c, http.StatusServiceUnavailable, &models.ErrorDetail{
			Error:        utils.ErrBotDetection.Error(),
			Details:      remediation.Details,
			Instructions: remediation.Instructions,
			URL:          url,
		})
		return
	}

	h.logger.Error("download failed", zap.String("url", url), zap.Error(err))
	message := "failed to download audio"
	if ok {
		message = fmt.Sprintf("%s: %s", message, failure.Reason)
	}
	models.ErrorWithDetail(c, http.StatusInternalServerError, &models.ErrorDetail{
		Error:   message,
		Details: err.Error(),
		URL:     url,
	})
}
