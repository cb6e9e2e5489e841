package types

import (
	"github.com/rs/zerolog"
)

// UnknownDuration replaces the NA placeholder yt-dlp prints for entries
// without a known duration.
const UnknownDuration = "Unknown"

type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Selected bool   `json:"selected"`
}

func (t Track) ToDict() *zerolog.Event {
	return zerolog.
		Dict().
		Str("id", t.ID).
		Str("title", t.Title).
		Str("duration", t.Duration)
}

type DownloadResult struct {
	ID      string    `json:"id"`
	Success bool      `json:"success"`
	Error   *string   `json:"error"`
	File    string    `json:"file,omitempty"`
	Kind    ErrorKind `json:"-"`
}

func SucceededDownload(id, file string) DownloadResult {
	return DownloadResult{
		ID:      id,
		Success: true,
		Error:   nil,
		File:    file,
		Kind:    ErrorKindNone,
	}
}

func FailedDownload(id string, kind ErrorKind, msg string) DownloadResult {
	return DownloadResult{
		ID:      id,
		Success: false,
		Error:   &msg,
		File:    "",
		Kind:    kind,
	}
}

func (r DownloadResult) ErrorMessage() string {
	if nil == r.Error {
		return ""
	}

	return *r.Error
}

func (r DownloadResult) ToDict() *zerolog.Event {
	return zerolog.
		Dict().
		Str("id", r.ID).
		Bool("success", r.Success).
		Str("error", r.ErrorMessage()).
		Stringer("kind", r.Kind).
		Str("file", r.File)
}
