package handler

import (
	"context"

	"vasset/audio-service/internal/models"
)

// AudioService 处理器依赖的业务接口
type AudioService interface {
	Search(ctx context.Context, query string, maxResults int) (*models.SearchResult, error)
	Download(ctx context.Context, rawURL string) (*models.AudioPayload, error)
	Info(ctx context.Context, rawURL string) (*models.VideoReference, error)
}
