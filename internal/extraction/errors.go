package extraction

import (
	"errors"
	"fmt"
)

// FailureKind 提取失败类型
type FailureKind string

const (
	KindArtifactMissing       FailureKind = "artifact_missing"
	KindEmptyArtifact         FailureKind = "empty_artifact"
	KindUpstreamRejected      FailureKind = "upstream_rejected"
	KindBotDetectionSuspected FailureKind = "bot_detection_suspected"
)

// Remediation 机器人检测时给调用方的处理建议
type Remediation struct {
	Details      string   `json:"details"`
	Instructions []string `json:"instructions"`
}

// DefaultRemediation cookie 失效时的处理建议
func DefaultRemediation() *Remediation {
	return &Remediation{
		Details: "Cookie file is missing or expired. Please update youtube.com_cookies.txt",
		Instructions: []string{
			"1. Export fresh cookies from your browser using a cookie export extension",
			"2. Save as cookies/youtube.com_cookies.txt in project root",
			"3. Or set YOUTUBE_COOKIES_PATH environment variable",
			"4. Restart the server",
		},
	}
}

// Failure 提取失败
type Failure struct {
	Kind           FailureKind
	Reason         string
	IsBotDetection bool
	Remediation    *Remediation
	Err            error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("extraction failed (%s): %s: %v", f.Kind, f.Reason, f.Err)
	}
	return fmt.Sprintf("extraction failed (%s): %s", f.Kind, f.Reason)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure 取出错误链中的 *Failure
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
