package metadata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/utils"
	"vasset/audio-service/internal/ytdlp"
)

// VideoClient 视频元数据客户端
type VideoClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
}

// InfoExtractor yt-dlp 元数据提取
type InfoExtractor interface {
	ExtractInfo(ctx context.Context, url string, auth *models.AuthMaterial) (*ytdlp.VideoInfo, error)
}

// ParseVideoURL 解析视频地址, 只填充 ID、规范地址与默认缩略图
func ParseVideoURL(rawURL string) (*models.VideoReference, error) {
	rawURL = utils.NormalizeURL(rawURL)
	if !utils.IsValidURL(rawURL) {
		return nil, utils.ErrInvalidURL
	}
	if !utils.IsYouTubeURL(rawURL) {
		return nil, utils.ErrUnsupportedPlatform
	}

	id, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidURL, err)
	}

	return &models.VideoReference{
		ID:           id,
		DurationText: utils.FormatDuration(0),
		Thumbnail:    models.DefaultThumbnail(id),
		URL:          models.WatchURL(id),
	}, nil
}

// Resolver 视频信息查询
// 优先使用 YouTube 播放器接口, 失败时回退到 yt-dlp
type Resolver struct {
	client   VideoClient
	fallback InfoExtractor
	logger   *zap.Logger
}

// NewResolver 创建视频信息查询
func NewResolver(fallback InfoExtractor, timeout time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		client:   &youtube.Client{HTTPClient: &http.Client{Timeout: timeout}},
		fallback: fallback,
		logger:   logger,
	}
}

// Lookup 查询视频信息
func (r *Resolver) Lookup(ctx context.Context, rawURL string) (*models.VideoReference, error) {
	ref, err := ParseVideoURL(rawURL)
	if err != nil {
		return nil, err
	}

	video, err := r.client.GetVideoContext(ctx, ref.ID)
	if err == nil {
		return fromVideo(ref, video), nil
	}
	r.logger.Warn("player lookup failed, falling back to yt-dlp", zap.String("video_id", ref.ID), zap.Error(err))

	if r.fallback == nil {
		return nil, fmt.Errorf("failed to lookup video: %w", err)
	}
	info, ferr := r.fallback.ExtractInfo(ctx, ref.URL, nil)
	if ferr != nil {
		return nil, fmt.Errorf("failed to lookup video: %w", ferr)
	}
	if info.ID == "" {
		info.ID = ref.ID
	}
	out := info.Reference()
	return &out, nil
}

func fromVideo(ref *models.VideoReference, video *youtube.Video) *models.VideoReference {
	out := *ref
	out.Title = video.Title
	out.Channel = video.Author
	out.Duration = int(video.Duration.Seconds())
	out.DurationText = utils.FormatDuration(out.Duration)

	// 列表按分辨率升序
	if n := len(video.Thumbnails); n > 0 && video.Thumbnails[n-1].URL != "" {
		out.Thumbnail = video.Thumbnails[n-1].URL
	}
	if out.Title == "" {
		out.Title = "Unknown Title"
	}
	if out.Channel == "" {
		out.Channel = "Unknown"
	}
	return &out
}
