package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/storage"
)

// Scheduler 遗留临时目录清理调度器
// 正常请求会自行释放目录, 这里只处理进程异常退出后残留的目录
type Scheduler struct {
	root        string
	prefix      string
	fileManager *storage.FileManager
	interval    time.Duration
	maxAge      time.Duration
	enabled     bool
	logger      *zap.Logger
	now         func() time.Time
}

// NewScheduler 创建清理调度器
func NewScheduler(cfg *config.ScratchConfig, fileManager *storage.FileManager, logger *zap.Logger) *Scheduler {
	root := cfg.Root
	if root == "" {
		root = os.TempDir()
	}
	return &Scheduler{
		root:        root,
		prefix:      cfg.Prefix,
		fileManager: fileManager,
		interval:    cfg.GetSweepInterval(),
		maxAge:      cfg.GetMaxAge(),
		enabled:     cfg.SweepEnabled,
		logger:      logger,
		now:         time.Now,
	}
}

// Start 启动清理调度器, 阻塞直到 ctx 取消
func (s *Scheduler) Start(ctx context.Context) {
	if !s.enabled {
		s.logger.Info("scratch sweeper is disabled")
		return
	}

	s.logger.Info("starting scratch sweeper",
		zap.String("root", s.root),
		zap.Duration("interval", s.interval),
		zap.Duration("max_age", s.maxAge))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// 启动时先执行一次
	s.Sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			s.logger.Info("scratch sweeper stopped")
			return
		}
	}
}

// Sweep 执行一次清理, 返回删除数量
func (s *Scheduler) Sweep(ctx context.Context) int {
	startTime := s.now()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.logger.Warn("failed to read scratch root", zap.String("root", s.root), zap.Error(err))
		return 0
	}

	deletedCount := 0
	failedCount := 0
	for _, entry := range entries {
		// 检查上下文是否取消
		select {
		case <-ctx.Done():
			return deletedCount
		default:
		}

		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), s.prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || startTime.Sub(info.ModTime()) < s.maxAge {
			continue
		}

		path := filepath.Join(s.root, entry.Name())
		if err := s.fileManager.DeleteDir(path); err != nil {
			s.logger.Warn("failed to remove stale scratch directory", zap.String("path", path), zap.Error(err))
			failedCount++
			continue
		}
		deletedCount++
	}

	if deletedCount > 0 || failedCount > 0 {
		s.logger.Info("scratch sweep completed",
			zap.Int("deleted", deletedCount),
			zap.Int("failed", failedCount),
			zap.Duration("elapsed", time.Since(startTime)))
	}
	return deletedCount
}
