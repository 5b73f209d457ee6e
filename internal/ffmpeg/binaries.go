package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("binary not found")

// Locator finds the ffmpeg and ffprobe executables. Explicit paths win,
// then PATH, then the per-user cache directory
// (<cache>/cuestrip/ffmpeg/<os>/<arch>). Each binary is resolved once.
type Locator struct {
	FFmpeg  string
	FFprobe string

	// overridable in tests
	lookPath func(string) (string, error)
	cacheDir func() (string, error)

	ffmpegOnce  sync.Once
	ffmpegPath  string
	ffmpegErr   error
	ffprobeOnce sync.Once
	ffprobePath string
	ffprobeErr  error
}

func NewLocator(ffmpegPath, ffprobePath string) *Locator {
	return &Locator{FFmpeg: ffmpegPath, FFprobe: ffprobePath}
}

func (l *Locator) FFmpegPath() (string, error) {
	l.ffmpegOnce.Do(func() {
		l.ffmpegPath, l.ffmpegErr = l.resolve("ffmpeg", l.FFmpeg)
	})
	return l.ffmpegPath, l.ffmpegErr
}

func (l *Locator) FFprobePath() (string, error) {
	l.ffprobeOnce.Do(func() {
		l.ffprobePath, l.ffprobeErr = l.resolve("ffprobe", l.FFprobe)
	})
	return l.ffprobePath, l.ffprobeErr
}

func (l *Locator) resolve(name, explicit string) (string, error) {
	if explicit != "" {
		if !fileExists(explicit) {
			return "", fmt.Errorf("%s at %s: %w", name, explicit, ErrNotFound)
		}
		return explicit, nil
	}

	lookPath := l.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if found, err := lookPath(name); err == nil {
		return found, nil
	}

	cacheDir := l.cacheDir
	if cacheDir == nil {
		cacheDir = os.UserCacheDir
	}
	if dir, err := cacheDir(); err == nil && dir != "" {
		candidate := filepath.Join(installDir(dir), name+executableSuffix())
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf(
		"%s: %w: install it, add it to PATH or set CUESTRIP_%s_PATH",
		name,
		ErrNotFound,
		strings.ToUpper(name),
	)
}

func installDir(cacheDir string) string {
	return filepath.Join(cacheDir, "cuestrip", "ffmpeg", runtime.GOOS, runtime.GOARCH)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
