package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Redis       RedisConfig       `yaml:"redis"`
	Cache       CacheConfig       `yaml:"cache"`
	YTDLP       YTDLPConfig       `yaml:"ytdlp"`
	Search      SearchConfig      `yaml:"search"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Scratch     ScratchConfig     `yaml:"scratch"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	CORS        CORSConfig        `yaml:"cors"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int    `yaml:"port"`
	Mode         string `yaml:"mode"`          // debug / release
	ReadTimeout  int    `yaml:"read_timeout"`  // 秒
	WriteTimeout int    `yaml:"write_timeout"` // 秒, 需覆盖完整下载耗时
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// CacheConfig 搜索结果缓存配置
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTL     int  `yaml:"ttl"` // 缓存TTL(秒)
}

// YTDLPConfig yt-dlp配置
type YTDLPConfig struct {
	BinaryPath      string            `yaml:"binary_path"`
	SearchTimeout   int               `yaml:"search_timeout"`   // 搜索超时(秒)
	DownloadTimeout int               `yaml:"download_timeout"` // 下载超时(秒)
	MaxConcurrent   int               `yaml:"max_concurrent"`   // 最大并发下载数
	Proxy           string            `yaml:"proxy"`
	DefaultArgs     []string          `yaml:"default_args"`
	PlayerClients   []string          `yaml:"player_clients"` // 客户端身份, 按顺序回退
	AudioFormat     string            `yaml:"audio_format"`
	AudioQuality    string            `yaml:"audio_quality"`
	Headers         map[string]string `yaml:"headers"` // 浏览器请求头
}

// SearchConfig 搜索配置
type SearchConfig struct {
	DefaultResults   int    `yaml:"default_results"`
	MaxResults       int    `yaml:"max_results"`
	ScrapeBaseURL    string `yaml:"scrape_base_url"`
	ScrapeLimit      int    `yaml:"scrape_limit"`
	ScrapeTimeout    int    `yaml:"scrape_timeout"`    // 秒
	ThumbnailTimeout int    `yaml:"thumbnail_timeout"` // 单次探测超时(秒)
	UserAgent        string `yaml:"user_agent"`
}

// CredentialsConfig cookie 来源配置
type CredentialsConfig struct {
	EnvVar                string   `yaml:"env_var"`
	ProjectDir            string   `yaml:"project_dir"`
	CookieFileName        string   `yaml:"cookie_file_name"`
	SharedPath            string   `yaml:"shared_path"`
	Browsers              []string `yaml:"browsers"`
	RequireBrowserProfile *bool    `yaml:"require_browser_profile"`
}

// ScratchConfig 临时目录配置
type ScratchConfig struct {
	Root          string  `yaml:"root"`
	Prefix        string  `yaml:"prefix"`
	SweepEnabled  bool    `yaml:"sweep_enabled"`
	SweepInterval int     `yaml:"sweep_interval"` // 秒
	MaxAge        int     `yaml:"max_age"`        // 秒
	DiskThreshold float64 `yaml:"disk_threshold"` // 磁盘使用率上限(%)
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	GlobalRPS float64 `yaml:"global_rps"`
	Burst     int     `yaml:"burst"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	ExposeHeaders  []string `yaml:"expose_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// 从环境变量覆盖配置
	applyEnvOverrides(&cfg)

	// 设置默认值
	cfg.ApplyDefaults()

	return &cfg, nil
}

// applyEnvOverrides 环境变量覆盖
func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
	if binary := os.Getenv("YTDLP_BINARY"); binary != "" {
		cfg.YTDLP.BinaryPath = binary
	}
	if proxy := os.Getenv("YTDLP_PROXY"); proxy != "" {
		cfg.YTDLP.Proxy = proxy
	}
	if root := os.Getenv("SCRATCH_ROOT"); root != "" {
		cfg.Scratch.Root = root
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// ApplyDefaults 填充未配置项
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 330
	}

	if c.Cache.TTL == 0 {
		c.Cache.TTL = 600
	}

	if c.YTDLP.BinaryPath == "" {
		c.YTDLP.BinaryPath = "yt-dlp"
	}
	if c.YTDLP.SearchTimeout == 0 {
		c.YTDLP.SearchTimeout = 45
	}
	if c.YTDLP.DownloadTimeout == 0 {
		c.YTDLP.DownloadTimeout = 300
	}
	if c.YTDLP.MaxConcurrent == 0 {
		c.YTDLP.MaxConcurrent = 4
	}
	if len(c.YTDLP.PlayerClients) == 0 {
		c.YTDLP.PlayerClients = []string{"android", "web"}
	}
	if c.YTDLP.AudioFormat == "" {
		c.YTDLP.AudioFormat = "mp3"
	}
	if c.YTDLP.AudioQuality == "" {
		c.YTDLP.AudioQuality = "192K"
	}
	if len(c.YTDLP.Headers) == 0 {
		c.YTDLP.Headers = DefaultBrowserHeaders()
	}

	if c.Search.DefaultResults == 0 {
		c.Search.DefaultResults = 5
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = 25
	}
	if c.Search.ScrapeBaseURL == "" {
		c.Search.ScrapeBaseURL = "https://www.youtube.com"
	}
	if c.Search.ScrapeLimit == 0 {
		c.Search.ScrapeLimit = 5
	}
	if c.Search.ScrapeTimeout == 0 {
		c.Search.ScrapeTimeout = 10
	}
	if c.Search.ThumbnailTimeout == 0 {
		c.Search.ThumbnailTimeout = 3
	}
	if c.Search.UserAgent == "" {
		c.Search.UserAgent = c.YTDLP.Headers["User-Agent"]
	}

	if c.Credentials.EnvVar == "" {
		c.Credentials.EnvVar = "YOUTUBE_COOKIES_PATH"
	}
	if c.Credentials.CookieFileName == "" {
		c.Credentials.CookieFileName = "youtube.com_cookies.txt"
	}
	if c.Credentials.SharedPath == "" {
		c.Credentials.SharedPath = "/tmp/youtube_cookies.txt"
	}
	if len(c.Credentials.Browsers) == 0 {
		c.Credentials.Browsers = []string{"chrome", "firefox", "edge", "safari"}
	}
	if c.Credentials.RequireBrowserProfile == nil {
		require := true
		c.Credentials.RequireBrowserProfile = &require
	}

	if c.Scratch.Prefix == "" {
		c.Scratch.Prefix = "youtube_dl_"
	}
	if c.Scratch.SweepInterval == 0 {
		c.Scratch.SweepInterval = 600
	}
	if c.Scratch.MaxAge == 0 {
		c.Scratch.MaxAge = 3600
	}
	if c.Scratch.DiskThreshold == 0 {
		c.Scratch.DiskThreshold = 95
	}

	if c.RateLimit.GlobalRPS == 0 {
		c.RateLimit.GlobalRPS = 20
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// DefaultBrowserHeaders 默认浏览器请求头
func DefaultBrowserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Accept-Encoding": "gzip, deflate",
		"Sec-Fetch-Mode":  "navigate",
	}
}

// GetCacheTTL 获取缓存TTL时间
func (c *CacheConfig) GetCacheTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// GetSearchTimeout 获取搜索超时时间
func (c *YTDLPConfig) GetSearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeout) * time.Second
}

// GetDownloadTimeout 获取下载超时时间
func (c *YTDLPConfig) GetDownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeout) * time.Second
}

// GetScrapeTimeout 获取页面抓取超时时间
func (c *SearchConfig) GetScrapeTimeout() time.Duration {
	return time.Duration(c.ScrapeTimeout) * time.Second
}

// GetThumbnailTimeout 获取缩略图探测超时时间
func (c *SearchConfig) GetThumbnailTimeout() time.Duration {
	return time.Duration(c.ThumbnailTimeout) * time.Second
}

// GetSweepInterval 获取清理间隔
func (c *ScratchConfig) GetSweepInterval() time.Duration {
	return time.Duration(c.SweepInterval) * time.Second
}

// GetMaxAge 获取临时目录最大存活时间
func (c *ScratchConfig) GetMaxAge() time.Duration {
	return time.Duration(c.MaxAge) * time.Second
}

// GetReadTimeout 获取读超时
func (c *ServerConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

// GetWriteTimeout 获取写超时
func (c *ServerConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

// BrowserProfileRequired 是否要求浏览器配置目录存在
func (c *CredentialsConfig) BrowserProfileRequired() bool {
	return c.RequireBrowserProfile == nil || *c.RequireBrowserProfile
}
