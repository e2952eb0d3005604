package utils

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// MaxDisplayNameLength 展示名最大字符数
	MaxDisplayNameLength = 50
	// FallbackDisplayName 展示名为空时的默认值
	FallbackDisplayName = "audio"
)

// FormatDuration 秒数格式化为 M:SS 或 H:MM:SS
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// SafeFilename 仅保留字母、数字、空格、'-'、'_', 截断为 50 个字符
func SafeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	runes := []rune(strings.TrimRight(b.String(), " "))
	if len(runes) > MaxDisplayNameLength {
		runes = runes[:MaxDisplayNameLength]
	}
	name := strings.TrimSpace(string(runes))
	if name == "" {
		return FallbackDisplayName
	}
	return name
}

// CleanScrapedTitle 还原页面内嵌 JSON 中的转义
func CleanScrapedTitle(title string) string {
	title = strings.ReplaceAll(title, `\u0026`, "&")
	title = strings.ReplaceAll(title, `\`, "")
	return title
}
