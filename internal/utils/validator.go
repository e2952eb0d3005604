package utils

import (
	"net/url"
	"regexp"
	"strings"
)

var youtubePattern = regexp.MustCompile(`^https?://([a-z0-9-]+\.)?(youtube\.com|youtu\.be|youtube-nocookie\.com)/`)

// IsValidURL 验证URL格式是否有效
func IsValidURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	// 必须是http或https协议
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != ""
}

// IsYouTubeURL 是否为 YouTube 地址
func IsYouTubeURL(rawURL string) bool {
	return IsValidURL(rawURL) && youtubePattern.MatchString(strings.ToLower(rawURL))
}

// NormalizeURL 标准化URL(去除追踪参数等)
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	q := u.Query()
	trackingParams := []string{"utm_source", "utm_medium", "utm_campaign", "fbclid", "gclid", "si", "feature"}
	for _, param := range trackingParams {
		q.Del(param)
	}

	u.RawQuery = q.Encode()
	return u.String()
}

// SanitizeString 清理字符串中的多余空白
func SanitizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
