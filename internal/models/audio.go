package models

// AuthKind 认证材料类型
type AuthKind string

const (
	AuthCookieFile AuthKind = "cookie_file"
	AuthBrowser    AuthKind = "browser"
)

// AuthMaterial cookie 材料, CookieFile 与 Browser 二选一
type AuthMaterial struct {
	Kind       AuthKind `json:"kind"`
	CookieFile string   `json:"cookie_file,omitempty"`
	Browser    string   `json:"browser,omitempty"`
	Source     string   `json:"source,omitempty"` // 来源标识, 用于日志
}

// Describe 日志描述
func (a *AuthMaterial) Describe() string {
	if a == nil {
		return "none"
	}
	if a.Kind == AuthBrowser {
		return "browser:" + a.Browser
	}
	return "cookie_file:" + a.CookieFile
}

// ExtractionRequest 音频提取请求
type ExtractionRequest struct {
	URL       string          `json:"url"`
	Video     *VideoReference `json:"video,omitempty"`
	Auth      *AuthMaterial   `json:"-"`
	OutputDir string          `json:"-"` // 为空时使用临时目录
}

// Artifact 提取得到的音频文件
type Artifact struct {
	Path      string
	Size      int64
	Title     string
	VideoID   string
	Thumbnail string
}

// AudioPayload 返回给调用方的音频数据
type AudioPayload struct {
	Data        []byte
	Size        int64
	FileName    string // 展示名, 不含扩展名
	Thumbnail   string
	ContentType string
}

// Disposition 下载文件名
func (p *AudioPayload) Disposition() string {
	return p.FileName + ".mp3"
}
