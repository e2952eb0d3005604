package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"

	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/utils"
	"vasset/audio-service/internal/ytdlp"
)

const (
	maxPageBytes = 8 << 20
	// 先取前若干条匹配再去重
	scrapeScanLimit = 10
)

var videoRendererPattern = regexp.MustCompile(
	`(?s)"videoId":"([a-zA-Z0-9_-]{11})".*?"title":\{"runs":\[\{"text":"([^"]+)"\}\].*?"ownerText":\{"runs":\[\{"text":"([^"]+)"`)

// DefaultThumbnailTemplates 缩略图候选, 按顺序探测
var DefaultThumbnailTemplates = []string{
	"https://i.ytimg.com/vi/%s/hqdefault.jpg",
	"https://i.ytimg.com/vi/%s/mqdefault.jpg",
	"https://img.youtube.com/vi/%s/hqdefault.jpg",
	"https://img.youtube.com/vi/%s/mqdefault.jpg",
}

// ScrapeStrategy 直接抓取搜索结果页并用正则提取
type ScrapeStrategy struct {
	client             *http.Client
	baseURL            string
	limit              int
	headers            map[string]string
	thumbnailTemplates []string
	probeTimeout       time.Duration
	logger             *zap.Logger
}

// NewScrapeStrategy 创建页面抓取搜索
func NewScrapeStrategy(cfg *config.SearchConfig, headers map[string]string, logger *zap.Logger) *ScrapeStrategy {
	h := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		h[k] = v
	}
	if cfg.UserAgent != "" {
		h["User-Agent"] = cfg.UserAgent
	}
	// 让 Transport 自行处理压缩
	delete(h, "Accept-Encoding")

	return &ScrapeStrategy{
		client:             &http.Client{Timeout: cfg.GetScrapeTimeout()},
		baseURL:            cfg.ScrapeBaseURL,
		limit:              cfg.ScrapeLimit,
		headers:            h,
		thumbnailTemplates: DefaultThumbnailTemplates,
		probeTimeout:       cfg.GetThumbnailTimeout(),
		logger:             logger,
	}
}

func (s *ScrapeStrategy) Name() string { return "scrape" }

func (s *ScrapeStrategy) Attempt(ctx context.Context, query string, maxResults int) ([]models.VideoReference, error) {
	page, err := s.fetch(ctx, ytdlp.ResultsURL(s.baseURL, query)+"&sp=CAMSAhAB")
	if err != nil {
		return nil, err
	}

	limit := s.limit
	if maxResults > 0 && maxResults < limit {
		limit = maxResults
	}

	matches := videoRendererPattern.FindAllStringSubmatch(page, scrapeScanLimit)
	seen := make(map[string]bool)
	var refs []models.VideoReference
	for _, m := range matches {
		if len(refs) >= limit {
			break
		}
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true

		refs = append(refs, models.VideoReference{
			ID:           id,
			Title:        utils.CleanScrapedTitle(m[2]),
			Channel:      m[3],
			Duration:     0,
			DurationText: utils.FormatDuration(0),
			Thumbnail:    s.probeThumbnail(ctx, id),
			URL:          models.WatchURL(id),
		})
	}
	return refs, nil
}

// fetch 获取页面内容
func (s *ScrapeStrategy) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch results page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("results page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read results page: %w", err)
	}
	return string(body), nil
}

// probeThumbnail 依次探测缩略图, 都不可用时返回第一个候选
func (s *ScrapeStrategy) probeThumbnail(ctx context.Context, id string) string {
	if len(s.thumbnailTemplates) == 0 {
		return ""
	}
	for _, tmpl := range s.thumbnailTemplates {
		candidate := fmt.Sprintf(tmpl, id)
		if s.headOK(ctx, candidate) {
			return candidate
		}
	}
	return fmt.Sprintf(s.thumbnailTemplates[0], id)
}

func (s *ScrapeStrategy) headOK(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("thumbnail probe failed", zap.String("url", url), zap.Error(err))
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
