package ytdlp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/utils"
)

const (
	defaultTitle   = "Unknown Title"
	defaultChannel = "Unknown"
)

// VideoInfo yt-dlp 输出的视频信息(字段为所需子集)
type VideoInfo struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Channel    string      `json:"channel"`
	Uploader   string      `json:"uploader"`
	Duration   float64     `json:"duration"`
	Thumbnail  string      `json:"thumbnail"`
	Thumbnails []Thumbnail `json:"thumbnails"`
	WebpageURL string      `json:"webpage_url"`
	URL        string      `json:"url"`
}

// Thumbnail 缩略图
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Progress 下载进度
type Progress struct {
	Percent float64
	Speed   string
	ETA     string
}

// BestThumbnail 优先使用 thumbnail 字段, 其次取列表最后一项(分辨率最高)
func (v *VideoInfo) BestThumbnail() string {
	if v.Thumbnail != "" {
		return v.Thumbnail
	}
	for i := len(v.Thumbnails) - 1; i >= 0; i-- {
		if v.Thumbnails[i].URL != "" {
			return v.Thumbnails[i].URL
		}
	}
	return ""
}

// Reference 转换为 VideoReference, 缺失字段使用默认值
func (v *VideoInfo) Reference() models.VideoReference {
	title := v.Title
	if title == "" {
		title = defaultTitle
	}
	channel := v.Channel
	if channel == "" {
		channel = v.Uploader
	}
	if channel == "" {
		channel = defaultChannel
	}
	thumbnail := v.BestThumbnail()
	if thumbnail == "" {
		thumbnail = models.DefaultThumbnail(v.ID)
	}
	duration := int(v.Duration)
	if duration < 0 {
		duration = 0
	}

	return models.VideoReference{
		ID:           v.ID,
		Title:        title,
		Channel:      channel,
		Duration:     duration,
		DurationText: utils.FormatDuration(duration),
		Thumbnail:    thumbnail,
		URL:          models.WatchURL(v.ID),
	}
}

// ResultsURL 搜索结果页地址
func ResultsURL(base, query string) string {
	return fmt.Sprintf("%s/results?search_query=%s", strings.TrimRight(base, "/"), url.QueryEscape(query))
}

// parseJSONLines 逐行解析 JSON, 跳过非 JSON 行
func parseJSONLines(lines []string) []VideoInfo {
	var infos []VideoInfo
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info VideoInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			continue
		}
		infos = append(infos, info)
	}
	return infos
}

// parseFlatPlaylist 解析 --dump-single-json 输出
func parseFlatPlaylist(output string) ([]VideoInfo, error) {
	var playlist struct {
		Entries []VideoInfo `json:"entries"`
	}
	start := strings.Index(output, "{")
	if start < 0 {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(output[start:]), &playlist); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}
	return playlist.Entries, nil
}

var (
	percentRe = regexp.MustCompile(`(\d+\.?\d*)%`)
	speedRe   = regexp.MustCompile(`at\s+(\d+\.?\d*\w+/s)`)
	etaRe     = regexp.MustCompile(`ETA\s+(\d+:\d+(?::\d+)?)`)
)

// parseProgress 解析 yt-dlp 进度输出
// 格式: [download]  45.2% of 100.00MiB at 2.50MiB/s ETA 00:22
func parseProgress(line string) *Progress {
	if !strings.Contains(line, "[download]") {
		return nil
	}

	percentMatch := percentRe.FindStringSubmatch(line)
	if len(percentMatch) < 2 {
		return nil
	}
	percent, err := strconv.ParseFloat(percentMatch[1], 64)
	if err != nil {
		return nil
	}

	progress := &Progress{Percent: percent}
	if m := speedRe.FindStringSubmatch(line); len(m) >= 2 {
		progress.Speed = m[1]
	}
	if m := etaRe.FindStringSubmatch(line); len(m) >= 2 {
		progress.ETA = m[1]
	}
	return progress
}

// stderrCollector 保留 stderr 尾部, 并逐行回调
type stderrCollector struct {
	mu      sync.Mutex
	limit   int
	buf     []byte
	partial []byte
	onLine  func(string)
}

func newStderrCollector(limit int, onLine func(string)) *stderrCollector {
	return &stderrCollector{limit: limit, onLine: onLine}
}

func (c *stderrCollector) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buf = append(c.buf, p...)
	if len(c.buf) > c.limit {
		c.buf = c.buf[len(c.buf)-c.limit:]
	}

	if c.onLine != nil {
		c.partial = append(c.partial, p...)
		for {
			i := bytes.IndexByte(c.partial, '\n')
			if i < 0 {
				break
			}
			c.onLine(string(c.partial[:i]))
			c.partial = c.partial[i+1:]
		}
		if len(c.partial) > c.limit {
			c.partial = c.partial[len(c.partial)-c.limit:]
		}
	}
	return len(p), nil
}

func (c *stderrCollector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.buf)
}
