package credential

import (
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"

	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/models"
)

const cookiesSubdir = "cookies"

// 来源标识
const (
	SourceOverride = "override"
	SourceEnv      = "env"
	SourceProject  = "project"
	SourceWorkDir  = "workdir"
	SourceShared   = "shared"
	SourceBrowser  = "browser"
)

// Resolver cookie 材料解析器
type Resolver struct {
	envVar         string
	projectDir     string
	cookieFileName string
	sharedPath     string
	browsers       []string
	requireProfile bool
	homeDir        string
	getwd          func() (string, error)
	logger         *zap.Logger
}

type fileCandidate struct {
	source string
	path   string
}

// NewResolver 创建 cookie 解析器
func NewResolver(cfg *config.CredentialsConfig, logger *zap.Logger) *Resolver {
	projectDir := cfg.ProjectDir
	if projectDir == "" {
		if exe, err := os.Executable(); err == nil {
			projectDir = filepath.Dir(exe)
		}
	}
	home, _ := os.UserHomeDir()

	return &Resolver{
		envVar:         cfg.EnvVar,
		projectDir:     projectDir,
		cookieFileName: cfg.CookieFileName,
		sharedPath:     cfg.SharedPath,
		browsers:       cfg.Browsers,
		requireProfile: cfg.BrowserProfileRequired(),
		homeDir:        home,
		getwd:          os.Getwd,
		logger:         logger,
	}
}

// Resolve 按优先级查找第一个可用的 cookie 来源, 没有则返回 nil
func (r *Resolver) Resolve() *models.AuthMaterial {
	return r.ResolveWithOverride(nil)
}

// ResolveWithOverride 显式指定的材料优先, 不可用时回退到默认顺序
func (r *Resolver) ResolveWithOverride(override *models.AuthMaterial) *models.AuthMaterial {
	if override != nil {
		if auth := r.acceptOverride(override); auth != nil {
			return auth
		}
	}

	for _, c := range r.fileCandidates() {
		if isReadableFile(c.path) {
			r.logger.Info("using cookie file", zap.String("source", c.source), zap.String("path", c.path))
			return &models.AuthMaterial{Kind: models.AuthCookieFile, CookieFile: c.path, Source: c.source}
		}
		r.logger.Debug("cookie candidate unavailable", zap.String("source", c.source), zap.String("path", c.path))
	}

	for _, browser := range r.browsers {
		if !r.requireProfile || r.hasBrowserProfile(browser) {
			r.logger.Info("using browser cookies", zap.String("browser", browser))
			return &models.AuthMaterial{Kind: models.AuthBrowser, Browser: browser, Source: SourceBrowser}
		}
		r.logger.Debug("browser profile not found", zap.String("browser", browser))
	}

	r.logger.Warn("no cookie source available, continuing unauthenticated")
	return nil
}

// acceptOverride 校验显式指定的材料
func (r *Resolver) acceptOverride(o *models.AuthMaterial) *models.AuthMaterial {
	switch o.Kind {
	case models.AuthCookieFile:
		if isReadableFile(o.CookieFile) {
			return &models.AuthMaterial{Kind: o.Kind, CookieFile: o.CookieFile, Source: SourceOverride}
		}
		r.logger.Warn("override cookie file unreadable, falling back", zap.String("path", o.CookieFile))
	case models.AuthBrowser:
		if o.Browser != "" {
			return &models.AuthMaterial{Kind: o.Kind, Browser: o.Browser, Source: SourceOverride}
		}
	}
	return nil
}

// fileCandidates cookie 文件候选, 按优先级排列并去重
func (r *Resolver) fileCandidates() []fileCandidate {
	var candidates []fileCandidate
	seen := make(map[string]bool)
	add := func(source, path string) {
		if path == "" {
			return
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if seen[path] {
			return
		}
		seen[path] = true
		candidates = append(candidates, fileCandidate{source: source, path: path})
	}

	if r.envVar != "" {
		add(SourceEnv, os.Getenv(r.envVar))
	}
	if r.projectDir != "" {
		add(SourceProject, filepath.Join(r.projectDir, cookiesSubdir, r.cookieFileName))
	}
	if wd, err := r.getwd(); err == nil {
		add(SourceWorkDir, filepath.Join(wd, cookiesSubdir, r.cookieFileName))
	}
	add(SourceShared, r.sharedPath)

	return candidates
}

// hasBrowserProfile 浏览器配置目录是否存在
func (r *Resolver) hasBrowserProfile(browser string) bool {
	for _, dir := range browserProfileDirs(r.homeDir, browser) {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// browserProfileDirs 各平台浏览器配置目录
func browserProfileDirs(home, browser string) []string {
	if home == "" {
		return nil
	}
	appSupport := filepath.Join(home, "Library", "Application Support")
	localAppData := os.Getenv("LOCALAPPDATA")
	roamingAppData := os.Getenv("APPDATA")

	var dirs []string
	switch browser {
	case "chrome":
		dirs = []string{
			filepath.Join(home, ".config", "google-chrome"),
			filepath.Join(appSupport, "Google", "Chrome"),
		}
		if localAppData != "" {
			dirs = append(dirs, filepath.Join(localAppData, "Google", "Chrome", "User Data"))
		}
	case "chromium":
		dirs = []string{
			filepath.Join(home, ".config", "chromium"),
			filepath.Join(appSupport, "Chromium"),
		}
	case "firefox":
		dirs = []string{
			filepath.Join(home, ".mozilla", "firefox"),
			filepath.Join(appSupport, "Firefox"),
		}
		if roamingAppData != "" {
			dirs = append(dirs, filepath.Join(roamingAppData, "Mozilla", "Firefox"))
		}
	case "edge":
		dirs = []string{
			filepath.Join(home, ".config", "microsoft-edge"),
			filepath.Join(appSupport, "Microsoft Edge"),
		}
		if localAppData != "" {
			dirs = append(dirs, filepath.Join(localAppData, "Microsoft", "Edge", "User Data"))
		}
	case "brave":
		dirs = []string{
			filepath.Join(home, ".config", "BraveSoftware", "Brave-Browser"),
			filepath.Join(appSupport, "BraveSoftware", "Brave-Browser"),
		}
	case "safari":
		if runtime.GOOS == "darwin" {
			dirs = []string{filepath.Join(home, "Library", "Safari")}
		}
	}
	return dirs
}

// isReadableFile 普通文件且可读
func isReadableFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
