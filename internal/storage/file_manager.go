package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// FileManager 文件管理器
type FileManager struct {
	logger *zap.Logger
}

// NewFileManager 创建文件管理器
func NewFileManager(logger *zap.Logger) *FileManager {
	return &FileManager{logger: logger}
}

// GetFileSize 获取文件大小
func (m *FileManager) GetFileSize(filePath string) (int64, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to get file info: %w", err)
	}
	return info.Size(), nil
}

// DeleteDir 删除目录及其内容, 目录不存在视为成功
func (m *FileManager) DeleteDir(dirPath string) error {
	if err := os.RemoveAll(dirPath); err != nil {
		return fmt.Errorf("failed to delete directory: %w", err)
	}
	m.logger.Debug("deleted directory", zap.String("path", dirPath))
	return nil
}

// EnsureDir 确保目录存在
func (m *FileManager) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// FileExists 检查文件是否存在
func (m *FileManager) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

// FindNewest 查找目录下指定扩展名、修改时间不早于 since 的最新文件
// 没有匹配时返回空字符串
func (m *FileManager) FindNewest(dir, ext string, since time.Time) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory: %w", err)
	}

	var newest string
	var newestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(since) {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = filepath.Join(dir, entry.Name())
			newestTime = info.ModTime()
		}
	}
	return newest, nil
}

// DiskUsage 磁盘使用情况
type DiskUsage struct {
	Total       uint64  // 总空间(字节)
	Available   uint64  // 可用空间(字节)
	Used        uint64  // 已用空间(字节)
	UsedPercent float64 // 使用百分比
}

// CheckDiskSpace 检查磁盘空间
func (m *FileManager) CheckDiskSpace(path string) (*DiskUsage, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("failed to get disk stats: %w", err)
	}

	total := stat.Blocks * uint64(stat.Bsize)
	available := stat.Bavail * uint64(stat.Bsize)
	used := total - available
	var usedPercent float64
	if total > 0 {
		usedPercent = float64(used) / float64(total) * 100
	}

	return &DiskUsage{
		Total:       total,
		Available:   available,
		Used:        used,
		UsedPercent: usedPercent,
	}, nil
}

// IsDiskSpaceSufficient 检查磁盘空间是否充足
func (m *FileManager) IsDiskSpaceSufficient(path string, threshold float64) (bool, error) {
	usage, err := m.CheckDiskSpace(path)
	if err != nil {
		return false, err
	}

	if usage.UsedPercent > threshold {
		m.logger.Warn("disk usage above threshold",
			zap.Float64("used_percent", usage.UsedPercent),
			zap.Float64("threshold", threshold))
		return false, nil
	}

	return true, nil
}
