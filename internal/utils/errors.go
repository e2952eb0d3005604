package utils

import (
	"errors"
	"strings"
)

var (
	// URL相关错误
	ErrInvalidURL          = errors.New("invalid URL")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrEmptyQuery          = errors.New("empty search query")

	// 视频相关错误
	ErrVideoNotFound  = errors.New("video not found")
	ErrVideoPrivate   = errors.New("video is private")
	ErrVideoDeleted   = errors.New("video has been deleted")
	ErrGeoRestricted  = errors.New("video is geo-restricted")
	ErrAgeRestricted  = errors.New("video is age-restricted")
	ErrCopyrightClaim = errors.New("video removed due to copyright claim")
	ErrBotDetection   = errors.New("YouTube bot detection triggered")
	ErrCookieLoad     = errors.New("failed to load cookies")

	// 系统相关错误
	ErrTimeout       = errors.New("yt-dlp timeout")
	ErrCacheMiss     = errors.New("cache miss")
	ErrYTDLPNotFound = errors.New("yt-dlp binary not found")
	ErrYTDLPFailed   = errors.New("yt-dlp execution failed")
)

var botPhrases = []string{
	"sign in to confirm",
	"not a bot",
}

var cookieLoadPhrases = []string{
	"could not find chrome cookies database",
	"could not find firefox cookies database",
	"could not copy chrome cookie database",
	"failed to decrypt",
	"failed to load cookies",
	"unsupported browser",
	"does not look like a netscape format cookies file",
	"cookies file",
	"cookie database",
}

// IsBotDetection stderr 是否包含机器人检测提示
func IsBotDetection(stderr string) bool {
	return containsAny(strings.ToLower(stderr), botPhrases)
}

// IsCookieLoadError stderr 是否为 cookie 加载失败
func IsCookieLoadError(stderr string) bool {
	return containsAny(strings.ToLower(stderr), cookieLoadPhrases)
}

// MapYTDLPError 将yt-dlp的错误输出映射到具体错误
func MapYTDLPError(stderr string) error {
	lowerStderr := strings.ToLower(stderr)

	switch {
	case containsAny(lowerStderr, botPhrases):
		return ErrBotDetection
	case containsAny(lowerStderr, cookieLoadPhrases):
		return ErrCookieLoad
	case strings.Contains(lowerStderr, "private video"):
		return ErrVideoPrivate
	case strings.Contains(lowerStderr, "has been removed") || strings.Contains(lowerStderr, "has been deleted"):
		return ErrVideoDeleted
	case strings.Contains(lowerStderr, "not available in your country"):
		return ErrGeoRestricted
	case strings.Contains(lowerStderr, "age-restricted") || strings.Contains(lowerStderr, "confirm your age"):
		return ErrAgeRestricted
	case strings.Contains(lowerStderr, "copyright"):
		return ErrCopyrightClaim
	case strings.Contains(lowerStderr, "video unavailable"):
		return ErrVideoNotFound
	case strings.Contains(lowerStderr, "no such file") || strings.Contains(lowerStderr, "executable file not found"):
		return ErrYTDLPNotFound
	case strings.Contains(lowerStderr, "timed out") || strings.Contains(lowerStderr, "timeout"):
		return ErrTimeout
	default:
		return ErrYTDLPFailed
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
