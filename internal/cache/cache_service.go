package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/utils"
)

// SearchCache 搜索结果缓存
// 只缓存搜索结果, 音频数据不缓存
type SearchCache interface {
	Get(ctx context.Context, query string, maxResults int) ([]models.VideoReference, error)
	Set(ctx context.Context, query string, maxResults int, videos []models.VideoReference) error
}

// Service Redis 搜索缓存
type Service struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewService 创建缓存服务
func NewService(redisClient *redis.Client, ttl time.Duration) *Service {
	return &Service{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Get 从缓存获取搜索结果
func (s *Service) Get(ctx context.Context, query string, maxResults int) ([]models.VideoReference, error) {
	key := generateCacheKey(query, maxResults)

	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, utils.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var videos []models.VideoReference
	if err := json.Unmarshal(data, &videos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return videos, nil
}

// Set 写入搜索结果, 空结果不缓存
func (s *Service) Set(ctx context.Context, query string, maxResults int, videos []models.VideoReference) error {
	if len(videos) == 0 {
		return nil
	}
	key := generateCacheKey(query, maxResults)

	data, err := json.Marshal(videos)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete 删除缓存
func (s *Service) Delete(ctx context.Context, query string, maxResults int) error {
	return s.redis.Del(ctx, generateCacheKey(query, maxResults)).Err()
}

// NopCache 禁用缓存时使用
type NopCache struct{}

func (NopCache) Get(context.Context, string, int) ([]models.VideoReference, error) {
	return nil, utils.ErrCacheMiss
}

func (NopCache) Set(context.Context, string, int, []models.VideoReference) error {
	return nil
}

// generateCacheKey 生成缓存key, 查询词忽略大小写与多余空白
func generateCacheKey(query string, maxResults int) string {
	normalized := strings.ToLower(utils.SanitizeString(query))
	hash := md5.Sum([]byte(fmt.Sprintf("%s|%d", normalized, maxResults)))
	return fmt.Sprintf("search:%x", hash)
}
