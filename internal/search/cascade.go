package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/models"
)

// Strategy 单一搜索方式
// 返回空结果或错误时由 Cascade 继续尝试下一个
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, query string, maxResults int) ([]models.VideoReference, error)
}

// Cascade 按顺序尝试各搜索方式, 直到某一方式返回非空结果
type Cascade struct {
	strategies     []Strategy
	defaultResults int
	maxResults     int
	logger         *zap.Logger
}

// NewCascade 创建搜索级联
func NewCascade(cfg *config.SearchConfig, logger *zap.Logger, strategies ...Strategy) *Cascade {
	return &Cascade{
		strategies:     strategies,
		defaultResults: cfg.DefaultResults,
		maxResults:     cfg.MaxResults,
		logger:         logger,
	}
}

// Strategies 已配置的搜索方式名称
func (c *Cascade) Strategies() []string {
	names := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}
	return names
}

// NormalizeLimit 规范化结果数量
func (c *Cascade) NormalizeLimit(maxResults int) int {
	if maxResults <= 0 {
		maxResults = c.defaultResults
	}
	if c.maxResults > 0 && maxResults > c.maxResults {
		maxResults = c.maxResults
	}
	return maxResults
}

// Search 执行搜索, 所有方式失败时返回空切片, 不返回错误
func (c *Cascade) Search(ctx context.Context, query string, maxResults int) []models.VideoReference {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.VideoReference{}
	}
	maxResults = c.NormalizeLimit(maxResults)

	for _, strategy := range c.strategies {
		if ctx.Err() != nil {
			c.logger.Warn("search cancelled", zap.String("query", query), zap.Error(ctx.Err()))
			break
		}

		logger := c.logger.With(zap.String("strategy", strategy.Name()), zap.String("query", query))
		results, err := strategy.Attempt(ctx, query, maxResults)
		if err != nil {
			logger.Warn("search strategy failed", zap.Error(err))
			continue
		}

		results = dropInvalid(results)
		if len(results) == 0 {
			logger.Info("search strategy returned no results")
			continue
		}

		if len(results) > maxResults {
			results = results[:maxResults]
		}
		logger.Info("✓ search strategy succeeded", zap.Int("results", len(results)))
		return results
	}

	c.logger.Warn("all search strategies exhausted", zap.String("query", query))
	return []models.VideoReference{}
}

// dropInvalid 去掉没有 ID 的条目
func dropInvalid(in []models.VideoReference) []models.VideoReference {
	out := in[:0:0]
	for _, v := range in {
		if v.ID != "" {
			out = append(out, v)
		}
	}
	return out
}
