package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type DownloadDir string

func DownloadDirFrom(d string) DownloadDir {
	return DownloadDir(d)
}

// Ensure creates the directory and its parents. It is safe to call on an
// existing directory.
func (dir DownloadDir) Ensure() error {
	if err := os.MkdirAll(dir.Path(), 0o755); nil != err {
		return fmt.Errorf("failed to create download directory: %v", err)
	}

	return nil
}

func (dir DownloadDir) Path() string {
	return string(dir)
}

// Abs falls back to the configured path when it cannot be resolved.
func (dir DownloadDir) Abs() string {
	abs, err := filepath.Abs(dir.Path())
	if nil != err {
		return dir.Path()
	}

	return abs
}

func (dir DownloadDir) String() string {
	return dir.Path()
}

type AudioFile struct {
	Path string
}

// AudioFileFrom picks the last non-empty line of out, which is where yt-dlp
// prints the final path after post-processing.
func AudioFileFrom(out string) (AudioFile, bool) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(lines[i]); len(p) > 0 {
			return AudioFile{Path: p}, true
		}
	}

	return AudioFile{}, false //nolint:exhaustruct
}

func (f AudioFile) Exists() (bool, error) {
	if _, err := os.Stat(f.Path); nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("failed to stat file: %v", err)
	}

	return true, nil
}

// MIME sniffs the file content.
func (f AudioFile) MIME() (*mimetype.MIME, error) {
	m, err := mimetype.DetectFile(f.Path)
	if nil != err {
		return nil, fmt.Errorf("failed to detect file type: %v", err)
	}

	return m, nil
}

// IsAudio reports whether m or one of its parents is an audio type.
func IsAudio(m *mimetype.MIME) bool {
	for ; nil != m; m = m.Parent() {
		if strings.HasPrefix(m.String(), "audio/") {
			return true
		}
	}

	return false
}
