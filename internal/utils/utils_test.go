package utils

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// \x5c is a backslash; keeps the escaped form out of the literal.
const escapedAmp = "\x5cu0026"

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{
		-5:   "0:00",
		0:    "0:00",
		9:    "0:09",
		65:   "1:05",
		600:  "10:00",
		3600: "1:00:00",
		3661: "1:01:01",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatDuration(in), "seconds=%d", in)
	}
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "Hello World - Live_2024", SafeFilename("Hello, World! - Live_2024?"))
	assert.Equal(t, "audio", SafeFilename("!!!"))
	assert.Equal(t, "audio", SafeFilename(""))
	assert.Equal(t, "Café Müller", SafeFilename("Café Müller/"))

	long := SafeFilename(strings.Repeat("ab", 40))
	assert.Len(t, []rune(long), MaxDisplayNameLength)

	multibyte := SafeFilename(strings.Repeat("日本", 40))
	assert.Len(t, []rune(multibyte), MaxDisplayNameLength)
}

func TestCleanScrapedTitle(t *testing.T) {
	assert.Equal(t, "Rock & Roll", CleanScrapedTitle("Rock "+escapedAmp+" Roll"))
	assert.Equal(t, `say "hi"`, CleanScrapedTitle(`say \"hi\"`))
}

func TestMapYTDLPError(t *testing.T) {
	cases := []struct {
		stderr string
		want   error
	}{
		{"ERROR: Sign in to confirm you're not a bot", ErrBotDetection},
		{"ERROR: could not find chrome cookies database in \"/root/.config\"", ErrCookieLoad},
		{"ERROR: Private video. Sign in if you've been granted access", ErrVideoPrivate},
		{"ERROR: Video unavailable", ErrVideoNotFound},
		{"ERROR: This video is not available in your country", ErrGeoRestricted},
		{"ERROR: Read timed out", ErrTimeout},
		{"something else", ErrYTDLPFailed},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, MapYTDLPError(tc.stderr), tc.want, tc.stderr)
	}
}

func TestBotAndCookieDetection(t *testing.T) {
	assert.True(t, IsBotDetection("ERROR: please confirm you are NOT A BOT"))
	assert.False(t, IsBotDetection("ERROR: Video unavailable"))
	assert.True(t, IsCookieLoadError("ERROR: failed to decrypt with DPAPI"))
	assert.False(t, IsCookieLoadError("ERROR: Video unavailable"))
}

func TestIsYouTubeURL(t *testing.T) {
	assert.True(t, IsYouTubeURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.True(t, IsYouTubeURL("https://youtu.be/dQw4w9WgXcQ"))
	assert.True(t, IsYouTubeURL("https://m.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.False(t, IsYouTubeURL("https://vimeo.com/12345"))
	assert.False(t, IsYouTubeURL("ftp://youtube.com/x"))
	assert.False(t, IsYouTubeURL(""))
}

func TestNormalizeURL(t *testing.T) {
	got := NormalizeURL(" https://youtu.be/dQw4w9WgXcQ?si=abc&t=10 ")
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ?t=10", got)
}

func TestConcurrencyLimiter(t *testing.T) {
	l := NewConcurrencyLimiter(1)
	require.NoError(t, l.Acquire(context.Background()))
	assert.Equal(t, 1, l.InUse())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Acquire(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	l.Release()
	assert.Equal(t, 0, l.InUse())
}
