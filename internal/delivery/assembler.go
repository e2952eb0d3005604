package delivery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/utils"
)

const contentTypeMP3 = "audio/mpeg"

var (
	// ErrEmptyAudio 读取到的音频为空
	ErrEmptyAudio = errors.New("audio artifact is empty")
	// ErrSizeMismatch 读取长度与文件大小不一致
	ErrSizeMismatch = errors.New("audio artifact size mismatch")
)

// Releaser 临时目录释放
type Releaser interface {
	Release() error
}

// Assembler 音频响应组装
type Assembler struct {
	logger *zap.Logger
}

// NewAssembler 创建组装器
func NewAssembler(logger *zap.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Assemble 将音频完整读入内存后释放目录, 再构造返回数据
// 释放失败只记录日志, 不影响返回
func (a *Assembler) Assemble(artifact *models.Artifact, releaser Releaser) (*models.AudioPayload, error) {
	// 1. 读取文件
	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio artifact: %w", err)
	}

	// 2. 校验长度
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}
	if artifact.Size > 0 && int64(len(data)) != artifact.Size {
		return nil, fmt.Errorf("%w: read %d bytes, expected %d", ErrSizeMismatch, len(data), artifact.Size)
	}

	// 3. 数据已在内存中, 释放临时目录
	if releaser != nil {
		if err := releaser.Release(); err != nil {
			a.logger.Warn("release after read failed", zap.Error(err))
		}
	}

	// 4. 构造返回
	title := artifact.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(artifact.Path), filepath.Ext(artifact.Path))
	}

	return &models.AudioPayload{
		Data:        data,
		Size:        int64(len(data)),
		FileName:    utils.SafeFilename(title),
		Thumbnail:   artifact.Thumbnail,
		ContentType: contentTypeMP3,
	}, nil
}
