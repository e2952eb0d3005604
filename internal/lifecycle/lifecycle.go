package lifecycle

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/storage"
)

// ErrInsufficientDisk 临时目录所在磁盘空间不足
var ErrInsufficientDisk = errors.New("insufficient disk space for scratch directory")

// Lifecycle 临时目录生命周期管理
type Lifecycle struct {
	root          string
	prefix        string
	diskThreshold float64
	fileManager   *storage.FileManager
	logger        *zap.Logger
}

// NewLifecycle 创建生命周期管理器
func NewLifecycle(cfg *config.ScratchConfig, fileManager *storage.FileManager, logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		root:          cfg.Root,
		prefix:        cfg.Prefix,
		diskThreshold: cfg.DiskThreshold,
		fileManager:   fileManager,
		logger:        logger,
	}
}

// Root 临时目录根路径
func (l *Lifecycle) Root() string {
	if l.root == "" {
		return os.TempDir()
	}
	return l.root
}

// Prefix 自建目录前缀
func (l *Lifecycle) Prefix() string {
	return l.prefix
}

// Begin 为一次提取准备目录
// preferredDir 非空时使用调用方目录(不存在则创建), 该目录不会被删除
func (l *Lifecycle) Begin(preferredDir, attemptID string) (*Scratch, error) {
	logger := l.logger.With(zap.String("attempt_id", attemptID))

	if preferredDir != "" {
		if err := l.fileManager.EnsureDir(preferredDir); err != nil {
			return nil, err
		}
		logger.Debug("using caller directory", zap.String("path", preferredDir))
		return newScratch(preferredDir, false, attemptID, l.fileManager, logger), nil
	}

	root := l.Root()
	if err := l.fileManager.EnsureDir(root); err != nil {
		return nil, err
	}
	if l.diskThreshold > 0 {
		ok, err := l.fileManager.IsDiskSpaceSufficient(root, l.diskThreshold)
		if err != nil {
			logger.Warn("disk space check failed", zap.Error(err))
		} else if !ok {
			return nil, ErrInsufficientDisk
		}
	}

	path, err := os.MkdirTemp(root, l.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	logger.Debug("scratch directory created", zap.String("path", path))
	return newScratch(path, true, attemptID, l.fileManager, logger), nil
}

// End 释放目录, 等价于 s.Release()
func (l *Lifecycle) End(s *Scratch) error {
	if s == nil {
		return nil
	}
	return s.Release()
}

// Scratch 单次提取使用的目录
type Scratch struct {
	Path      string
	Owned     bool
	AttemptID string

	once        sync.Once
	mu          sync.Mutex
	released    bool
	releaseErr  error
	fileManager *storage.FileManager
	logger      *zap.Logger
}

func newScratch(path string, owned bool, attemptID string, fm *storage.FileManager, logger *zap.Logger) *Scratch {
	return &Scratch{
		Path:        path,
		Owned:       owned,
		AttemptID:   attemptID,
		fileManager: fm,
		logger:      logger,
	}
}

// Release 删除自建目录, 可重复调用
// 删除失败只记录日志并返回, 调用方不应以此覆盖提取结果
func (s *Scratch) Release() error {
	s.once.Do(func() {
		var err error
		if s.Owned {
			err = s.fileManager.DeleteDir(s.Path)
			if err != nil {
				s.logger.Warn("scratch cleanup failed", zap.String("path", s.Path), zap.Error(err))
			} else {
				s.logger.Info("✓ scratch directory removed", zap.String("path", s.Path))
			}
		}

		s.mu.Lock()
		s.released = true
		s.releaseErr = err
		s.mu.Unlock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseErr
}

// Released 是否已释放
func (s *Scratch) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
