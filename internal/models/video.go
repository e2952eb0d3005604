package models

import "fmt"

const (
	// WatchURLFormat 视频观看地址
	WatchURLFormat = "https://www.youtube.com/watch?v=%s"
	// ThumbnailFormat 默认缩略图
	ThumbnailFormat = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
)

// VideoReference 搜索结果/视频引用
type VideoReference struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Channel      string `json:"channel"`
	Duration     int    `json:"duration"` // 秒, 未知为 0
	DurationText string `json:"duration_text"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	URL          string `json:"url"`
}

// WatchURL 根据视频 ID 生成观看地址
func WatchURL(id string) string {
	return fmt.Sprintf(WatchURLFormat, id)
}

// DefaultThumbnail 根据视频 ID 生成默认缩略图地址
func DefaultThumbnail(id string) string {
	return fmt.Sprintf(ThumbnailFormat, id)
}

// SearchResult 搜索响应
type SearchResult struct {
	Query  string           `json:"query"`
	Videos []VideoReference `json:"videos"`
}
