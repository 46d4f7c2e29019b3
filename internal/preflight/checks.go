package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"slidecast/internal/config"
	"slidecast/internal/deps"
)

// CheckOpenAIKey reports whether a key is configured for the production
// voice and transcription.
func CheckOpenAIKey(apiKey string) Result {
	const name = "OpenAI API key"
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing (offline voice only; set OPENAI_API_KEY or openai.api_key)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckOpenAI verifies that the API is reachable and the key is accepted by
// listing models once.
func CheckOpenAI(ctx context.Context, baseURL, apiKey string) Result {
	const name = "OpenAI API"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	target, err := url.JoinPath(base, "models")
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid base url (%v)", err)}
	}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, target, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(apiKey))

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%d)", resp.StatusCode)}
	}
}

// CheckPublish verifies that S3 publishing has a bucket to write to.
func CheckPublish(cfg config.Publish) Result {
	const name = "S3 publishing"
	if strings.TrimSpace(cfg.Bucket) == "" {
		return Result{Name: name, Detail: "publish.bucket is not set"}
	}
	detail := "s3://" + cfg.Bucket
	if cfg.Prefix != "" {
		detail += "/" + cfg.Prefix
	}
	if cfg.Region != "" {
		detail += fmt.Sprintf(" (%s)", cfg.Region)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Required for clips, concatenation and subtitles",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Required for output verification",
			Optional:    !cfg.Encoding.VerifyOutput,
		},
		{
			Name:        "mutool",
			Command:     cfg.Tools.Mutool,
			Description: "Required for PDF rasterization",
		},
		{
			Name:        "espeak-ng",
			Command:     cfg.OfflineVoice.Command,
			Description: "Offline demo voice",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}

func parentDir(path string) string {
	if strings.TrimSpace(path) == "" {
		return path
	}
	return filepath.Dir(filepath.Clean(path))
}

// summarizeNetError produces a human-readable summary for reachability failures.
func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (API unreachable)"
	}
	return err.Error()
}
