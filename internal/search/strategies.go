package search

import (
	"go.uber.org/zap"

	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/ytdlp"
)

// DefaultStrategies 默认顺序: 结构化搜索 → 扁平结果页 → 页面抓取
func DefaultStrategies(executor *ytdlp.Executor, cfg *config.Config, logger *zap.Logger) []Strategy {
	return []Strategy{
		NewStructuredStrategy(executor),
		NewFlatStrategy(executor),
		NewScrapeStrategy(&cfg.Search, cfg.YTDLP.Headers, logger),
	}
}
