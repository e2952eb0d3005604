package search

import (
	"context"
	"fmt"

	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/ytdlp"
)

// StructuredSearcher ytsearch 结构化搜索后端
type StructuredSearcher interface {
	SearchStructured(ctx context.Context, query string, maxResults int) ([]ytdlp.VideoInfo, error)
}

// FlatSearcher 扁平结果页搜索后端
type FlatSearcher interface {
	SearchFlat(ctx context.Context, query string, maxResults int) ([]ytdlp.VideoInfo, error)
}

// StructuredStrategy 使用 yt-dlp ytsearch
type StructuredStrategy struct {
	backend StructuredSearcher
}

// NewStructuredStrategy 创建结构化搜索
func NewStructuredStrategy(backend StructuredSearcher) *StructuredStrategy {
	return &StructuredStrategy{backend: backend}
}

func (s *StructuredStrategy) Name() string { return "structured" }

func (s *StructuredStrategy) Attempt(ctx context.Context, query string, maxResults int) ([]models.VideoReference, error) {
	infos, err := s.backend.SearchStructured(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("structured search: %w", err)
	}
	return toReferences(infos), nil
}

// FlatStrategy 使用 yt-dlp 扁平解析结果页
type FlatStrategy struct {
	backend FlatSearcher
}

// NewFlatStrategy 创建扁平搜索
func NewFlatStrategy(backend FlatSearcher) *FlatStrategy {
	return &FlatStrategy{backend: backend}
}

func (s *FlatStrategy) Name() string { return "flat" }

func (s *FlatStrategy) Attempt(ctx context.Context, query string, maxResults int) ([]models.VideoReference, error) {
	infos, err := s.backend.SearchFlat(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("flat search: %w", err)
	}
	return toReferences(infos), nil
}

func toReferences(infos []ytdlp.VideoInfo) []models.VideoReference {
	refs := make([]models.VideoReference, 0, len(infos))
	for _, info := range infos {
		if info.ID == "" {
			continue
		}
		refs = append(refs, info.Reference())
	}
	return refs
}
