package extraction

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/delivery"
	"vasset/audio-service/internal/lifecycle"
	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/storage"
	"vasset/audio-service/internal/utils"
	"vasset/audio-service/internal/ytdlp"
)

// 调用方目录可能残留旧文件, 只接受本次开始前后这一窗口内写入的文件
const callerDirSlack = 2 * time.Second

// Downloader 音频下载后端
type Downloader interface {
	DownloadAudio(ctx context.Context, opts ytdlp.DownloadOptions) (*ytdlp.VideoInfo, error)
}

// CredentialSource cookie 来源
type CredentialSource interface {
	ResolveWithOverride(override *models.AuthMaterial) *models.AuthMaterial
}

// Orchestrator 音频提取编排
type Orchestrator struct {
	downloader  Downloader
	credentials CredentialSource
	lifecycle   *lifecycle.Lifecycle
	assembler   *delivery.Assembler
	fileManager *storage.FileManager
	limiter     *utils.ConcurrencyLimiter
	audioExt    string
	logger      *zap.Logger
	now         func() time.Time
}

// NewOrchestrator 创建提取编排器
func NewOrchestrator(
	cfg *config.YTDLPConfig,
	downloader Downloader,
	credentials CredentialSource,
	lc *lifecycle.Lifecycle,
	assembler *delivery.Assembler,
	fileManager *storage.FileManager,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		downloader:  downloader,
		credentials: credentials,
		lifecycle:   lc,
		assembler:   assembler,
		fileManager: fileManager,
		limiter:     utils.NewConcurrencyLimiter(cfg.MaxConcurrent),
		audioExt:    "." + strings.TrimPrefix(cfg.AudioFormat, "."),
		logger:      logger,
		now:         time.Now,
	}
}

// Acquire 完整流程: 准备目录 → 提取 → 读入内存并释放目录
// 任何返回路径上自建目录都会被删除
func (o *Orchestrator) Acquire(ctx context.Context, req *models.ExtractionRequest) (*models.AudioPayload, error) {
	attemptID := uuid.New().String()
	logger := o.logger.With(zap.String("attempt_id", attemptID))

	targetURL := requestURL(req)
	if !utils.IsValidURL(targetURL) {
		return nil, utils.ErrInvalidURL
	}

	// 1. 并发控制
	if err := o.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer o.limiter.Release()

	// 2. 准备目录
	scratch, err := o.lifecycle.Begin(req.OutputDir, attemptID)
	if err != nil {
		logger.Error("failed to prepare scratch directory", zap.Error(err))
		return nil, err
	}
	defer o.lifecycle.End(scratch)

	// 3. 提取
	artifact, err := o.Extract(ctx, req, scratch)
	if err != nil {
		return nil, err
	}

	// 4. 组装
	payload, err := o.assembler.Assemble(artifact, scratch)
	if err != nil {
		logger.Error("failed to assemble payload", zap.String("path", artifact.Path), zap.Error(err))
		return nil, err
	}

	logger.Info("✓ audio acquired",
		zap.String("url", targetURL),
		zap.String("file_name", payload.Disposition()),
		zap.Int64("size", payload.Size))
	return payload, nil
}

// Extract 在 scratch 中生成音频文件
func (o *Orchestrator) Extract(ctx context.Context, req *models.ExtractionRequest, scratch *lifecycle.Scratch) (*models.Artifact, error) {
	logger := o.logger.With(zap.String("attempt_id", scratch.AttemptID))
	targetURL := requestURL(req)

	since := time.Time{}
	if !scratch.Owned {
		since = o.now().Add(-callerDirSlack)
	}

	// 1. 解析 cookie, 本次提取内只解析一次
	auth := o.credentials.ResolveWithOverride(req.Auth)
	logger.Info("starting extraction",
		zap.String("url", targetURL),
		zap.String("auth", auth.Describe()),
		zap.String("dir", scratch.Path))

	// 2. 下载, cookie 加载失败时不带 cookie 重试一次
	info, err := o.download(ctx, targetURL, scratch.Path, auth, logger)
	if err != nil && auth != nil && errors.Is(err, utils.ErrCookieLoad) {
		logger.Warn("cookie loading failed, retrying without cookies",
			zap.String("auth", auth.Describe()), zap.Error(err))
		info, err = o.download(ctx, targetURL, scratch.Path, nil, logger)
	}
	if err != nil {
		failure := classify(err)
		logger.Error("extraction failed",
			zap.String("kind", string(failure.Kind)),
			zap.Bool("bot_detection", failure.IsBotDetection),
			zap.Error(err))
		return nil, failure
	}

	// 3. 查找输出文件
	path, err := o.fileManager.FindNewest(scratch.Path, o.audioExt, since)
	if err != nil {
		logger.Error("failed to scan scratch directory", zap.Error(err))
		return nil, &Failure{Kind: KindArtifactMissing, Reason: "artifact not found", Err: err}
	}
	if path == "" {
		logger.Error("artifact not found", zap.String("dir", scratch.Path))
		return nil, &Failure{Kind: KindArtifactMissing, Reason: "artifact not found"}
	}

	// 4. 校验大小
	size, err := o.fileManager.GetFileSize(path)
	if err != nil {
		return nil, &Failure{Kind: KindArtifactMissing, Reason: "artifact not found", Err: err}
	}
	if size == 0 {
		logger.Error("empty artifact", zap.String("path", path))
		return nil, &Failure{Kind: KindEmptyArtifact, Reason: "empty artifact"}
	}
	logger.Info("✓ artifact located", zap.String("path", path), zap.Int64("size", size))

	return buildArtifact(path, size, info, req), nil
}

// download 单次后端调用
func (o *Orchestrator) download(ctx context.Context, url, dir string, auth *models.AuthMaterial, logger *zap.Logger) (*ytdlp.VideoInfo, error) {
	lastLogged := -1
	return o.downloader.DownloadAudio(ctx, ytdlp.DownloadOptions{
		URL:       url,
		OutputDir: dir,
		Auth:      auth,
		OnProgress: func(p *ytdlp.Progress) {
			step := int(p.Percent) / 25
			if step > lastLogged {
				lastLogged = step
				logger.Debug("download progress",
					zap.Float64("percent", p.Percent),
					zap.String("speed", p.Speed),
					zap.String("eta", p.ETA))
			}
		},
	})
}

// classify 将后端错误归类
func classify(err error) *Failure {
	switch {
	case errors.Is(err, utils.ErrBotDetection):
		return &Failure{
			Kind:           KindBotDetectionSuspected,
			Reason:         utils.ErrBotDetection.Error(),
			IsBotDetection: true,
			Remediation:    DefaultRemediation(),
			Err:            err,
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Failure{Kind: KindUpstreamRejected, Reason: "extraction cancelled", Err: err}
	default:
		return &Failure{Kind: KindUpstreamRejected, Reason: "upstream rejected the request", Err: err}
	}
}

func buildArtifact(path string, size int64, info *ytdlp.VideoInfo, req *models.ExtractionRequest) *models.Artifact {
	artifact := &models.Artifact{Path: path, Size: size}
	if info != nil {
		artifact.Title = info.Title
		artifact.VideoID = info.ID
		artifact.Thumbnail = info.BestThumbnail()
	}
	if req.Video != nil {
		if artifact.Title == "" {
			artifact.Title = req.Video.Title
		}
		if artifact.VideoID == "" {
			artifact.VideoID = req.Video.ID
		}
		if artifact.Thumbnail == "" {
			artifact.Thumbnail = req.Video.Thumbnail
		}
	}
	if artifact.Title == "" {
		artifact.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return artifact
}

func requestURL(req *models.ExtractionRequest) string {
	if req == nil {
		return ""
	}
	if req.URL != "" {
		return req.URL
	}
	if req.Video != nil {
		return req.Video.URL
	}
	return ""
}
