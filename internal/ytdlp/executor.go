package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/utils"
)

const (
	maxStderrBytes = 64 * 1024
	maxLineBytes   = 32 * 1024 * 1024

	// OutputTemplate 下载文件名模板
	OutputTemplate = "%(title)s.%(ext)s"
)

// Executor yt-dlp 执行器
type Executor struct {
	binaryPath      string
	searchTimeout   time.Duration
	downloadTimeout time.Duration
	proxy           string
	defaultArgs     []string
	playerClients   []string
	audioFormat     string
	audioQuality    string
	headers         map[string]string
	logger          *zap.Logger
}

// NewExecutor 创建 yt-dlp 执行器
func NewExecutor(cfg *config.YTDLPConfig, logger *zap.Logger) *Executor {
	return &Executor{
		binaryPath:      cfg.BinaryPath,
		searchTimeout:   cfg.GetSearchTimeout(),
		downloadTimeout: cfg.GetDownloadTimeout(),
		proxy:           cfg.Proxy,
		defaultArgs:     cfg.DefaultArgs,
		playerClients:   cfg.PlayerClients,
		audioFormat:     cfg.AudioFormat,
		audioQuality:    cfg.AudioQuality,
		headers:         cfg.Headers,
		logger:          logger,
	}
}

// CommandError yt-dlp 执行失败
// Kind 为 utils 中映射后的错误, Stderr 为截断后的错误输出
type CommandError struct {
	Kind   error
	Stderr string
	Cause  error
}

func (e *CommandError) Error() string {
	if line := lastLine(e.Stderr); line != "" {
		return fmt.Sprintf("%v: %s", e.Kind, line)
	}
	return e.Kind.Error()
}

func (e *CommandError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// DownloadOptions 音频下载参数
type DownloadOptions struct {
	URL        string
	OutputDir  string
	Auth       *models.AuthMaterial
	OnProgress func(*Progress)
}

// SearchStructured ytsearch 结构化搜索, 每行一个 JSON
func (e *Executor) SearchStructured(ctx context.Context, query string, maxResults int) ([]VideoInfo, error) {
	args := []string{"--dump-json", "--skip-download"}
	args = e.appendCommon(args)
	args = append(args, fmt.Sprintf("ytsearch%d:%s", maxResults, query))

	lines, _, err := e.run(ctx, e.searchTimeout, args, nil)
	if err != nil {
		return nil, err
	}
	return parseJSONLines(lines), nil
}

// SearchFlat 以扁平播放列表方式解析搜索结果页
func (e *Executor) SearchFlat(ctx context.Context, query string, maxResults int) ([]VideoInfo, error) {
	args := []string{
		"--flat-playlist",
		"--dump-single-json",
		"--playlist-end", fmt.Sprintf("%d", maxResults),
	}
	args = e.appendCommon(args)
	args = append(args, ResultsURL("https://www.youtube.com", query))

	lines, _, err := e.run(ctx, e.searchTimeout, args, nil)
	if err != nil {
		return nil, err
	}
	return parseFlatPlaylist(strings.Join(lines, "\n"))
}

// ExtractInfo 提取单个视频信息(不下载)
func (e *Executor) ExtractInfo(ctx context.Context, url string, auth *models.AuthMaterial) (*VideoInfo, error) {
	args := []string{"--dump-json", "--skip-download", "--no-playlist"}
	args = e.appendCommon(args)
	args = append(args, authArgs(auth)...)
	args = append(args, url)

	lines, _, err := e.run(ctx, e.searchTimeout, args, nil)
	if err != nil {
		return nil, err
	}
	infos := parseJSONLines(lines)
	if len(infos) == 0 {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", utils.ErrYTDLPFailed)
	}
	return &infos[0], nil
}

// DownloadAudio 下载并转码音频到 OutputDir
// 返回 yt-dlp 打印的视频信息, 输出文件由调用方在目录中查找
func (e *Executor) DownloadAudio(ctx context.Context, opts DownloadOptions) (*VideoInfo, error) {
	args := e.buildDownloadArgs(opts)
	e.logger.Debug("running yt-dlp download",
		zap.String("url", opts.URL),
		zap.String("auth", opts.Auth.Describe()),
		zap.String("output_dir", opts.OutputDir))

	onLine := func(line string) {
		if opts.OnProgress == nil {
			return
		}
		if p := parseProgress(line); p != nil {
			opts.OnProgress(p)
		}
	}

	lines, _, err := e.run(ctx, e.downloadTimeout, args, onLine)
	if err != nil {
		return nil, err
	}

	infos := parseJSONLines(lines)
	if len(infos) == 0 {
		return &VideoInfo{}, nil
	}
	return &infos[0], nil
}

// buildDownloadArgs 构建下载命令参数
func (e *Executor) buildDownloadArgs(opts DownloadOptions) []string {
	args := []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", e.audioFormat,
		"--audio-quality", e.audioQuality,
		"--no-playlist",
		"--no-simulate",
		"--dump-json",
		"--progress",
		"--newline",
		"-P", opts.OutputDir,
		"-o", OutputTemplate,
	}
	args = e.appendCommon(args)
	args = append(args, authArgs(opts.Auth)...)
	args = append(args, opts.URL)
	return args
}

// appendCommon 默认参数、代理、客户端身份与请求头
func (e *Executor) appendCommon(args []string) []string {
	args = append(args, e.defaultArgs...)

	if e.proxy != "" {
		args = append(args, "--proxy", e.proxy)
	}

	if len(e.playerClients) > 0 {
		args = append(args, "--extractor-args",
			fmt.Sprintf("youtube:player_client=%s;player_skip=webpage", strings.Join(e.playerClients, ",")))
	}

	keys := make([]string, 0, len(e.headers))
	for k := range e.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--add-header", fmt.Sprintf("%s:%s", k, e.headers[k]))
	}
	return args
}

// authArgs cookie 参数
func authArgs(auth *models.AuthMaterial) []string {
	if auth == nil {
		return nil
	}
	switch auth.Kind {
	case models.AuthCookieFile:
		if auth.CookieFile != "" {
			return []string{"--cookies", auth.CookieFile}
		}
	case models.AuthBrowser:
		if auth.Browser != "" {
			return []string{"--cookies-from-browser", auth.Browser}
		}
	}
	return nil
}

// run 执行 yt-dlp, 返回 stdout 行与 stderr
func (e *Executor) run(ctx context.Context, timeout time.Duration, args []string, onLine func(string)) ([]string, string, error) {
	if onLine != nil {
		// stdout 与 stderr 在不同 goroutine 中读取
		var mu sync.Mutex
		inner := onLine
		onLine = func(line string) {
			mu.Lock()
			defer mu.Unlock()
			inner(line)
		}
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.binaryPath, args...)
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	stderr := newStderrCollector(maxStderrBytes, onLine)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, "", &CommandError{Kind: utils.ErrYTDLPNotFound, Cause: err}
		}
		return nil, "", fmt.Errorf("failed to start yt-dlp: %w", err)
	}

	var lines []string
	scanner := bufio.NewScanner(stdoutPipe)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if onLine != nil {
			onLine(line)
		}
		lines = append(lines, line)
	}
	// 扫描中断时继续排空, 避免子进程阻塞在写管道
	_, _ = io.Copy(io.Discard, stdoutPipe)

	waitErr := cmd.Wait()
	stderrText := stderr.String()
	if waitErr != nil {
		if parent.Err() != nil {
			return nil, stderrText, parent.Err()
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			e.logger.Warn("yt-dlp timed out", zap.Duration("timeout", timeout))
			return nil, stderrText, &CommandError{Kind: utils.ErrTimeout, Stderr: stderrText, Cause: waitErr}
		}
		return nil, stderrText, &CommandError{Kind: utils.MapYTDLPError(stderrText), Stderr: stderrText, Cause: waitErr}
	}

	return lines, stderrText, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
