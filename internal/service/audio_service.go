package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"vasset/audio-service/internal/cache"
	"vasset/audio-service/internal/metadata"
	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/utils"
)

// Searcher 搜索级联
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) []models.VideoReference
	NormalizeLimit(maxResults int) int
}

// Acquirer 音频获取
type Acquirer interface {
	Acquire(ctx context.Context, req *models.ExtractionRequest) (*models.AudioPayload, error)
}

// InfoResolver 视频信息查询
type InfoResolver interface {
	Lookup(ctx context.Context, rawURL string) (*models.VideoReference, error)
}

// AudioService 音频服务
type AudioService struct {
	searcher Searcher
	acquirer Acquirer
	info     InfoResolver
	cache    cache.SearchCache
	logger   *zap.Logger
}

// NewAudioService 创建音频服务, searchCache 为 nil 时不缓存
func NewAudioService(
	searcher Searcher,
	acquirer Acquirer,
	info InfoResolver,
	searchCache cache.SearchCache,
	logger *zap.Logger,
) *AudioService {
	if searchCache == nil {
		searchCache = cache.NopCache{}
	}
	return &AudioService{
		searcher: searcher,
		acquirer: acquirer,
		info:     info,
		cache:    searchCache,
		logger:   logger,
	}
}

// Search 搜索视频
func (s *AudioService) Search(ctx context.Context, query string, maxResults int) (*models.SearchResult, error) {
	// 1. 校验查询词
	query = utils.SanitizeString(query)
	if query == "" {
		return nil, utils.ErrEmptyQuery
	}
	limit := s.searcher.NormalizeLimit(maxResults)

	// 2. 检查缓存
	if cached, err := s.cache.Get(ctx, query, limit); err == nil {
		s.logger.Info("cache hit", zap.String("query", query), zap.Int("results", len(cached)))
		return &models.SearchResult{Query: query, Videos: cached}, nil
	} else if !errors.Is(err, utils.ErrCacheMiss) {
		s.logger.Warn("search cache unavailable", zap.Error(err))
	}

	// 3. 级联搜索, 无结果时返回空列表
	videos := s.searcher.Search(ctx, query, limit)
	if videos == nil {
		videos = []models.VideoReference{}
	}

	// 4. 写入缓存
	if err := s.cache.Set(ctx, query, limit, videos); err != nil {
		s.logger.Warn("failed to cache search result", zap.Error(err))
	}

	return &models.SearchResult{Query: query, Videos: videos}, nil
}

// Download 获取音频
func (s *AudioService) Download(ctx context.Context, rawURL string) (*models.AudioPayload, error) {
	ref, err := metadata.ParseVideoURL(rawURL)
	if err != nil {
		return nil, err
	}

	return s.acquirer.Acquire(ctx, &models.ExtractionRequest{
		URL:   ref.URL,
		Video: ref,
	})
}

// Info 查询视频信息
func (s *AudioService) Info(ctx context.Context, rawURL string) (*models.VideoReference, error) {
	return s.info.Lookup(ctx, rawURL)
}
