package types

import (
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// ParseOutcome is either a successful track list or a failure message,
// never both.
type ParseOutcome struct {
	Success bool
	Tracks  []Track
	Error   string
	Kind    ErrorKind
}

func ParseSucceeded(tracks []Track) ParseOutcome {
	return ParseOutcome{
		Success: true,
		Tracks:  lo.Ternary(nil == tracks, []Track{}, tracks),
		Error:   "",
		Kind:    ErrorKindNone,
	}
}

func ParseFailed(kind ErrorKind, msg string) ParseOutcome {
	return ParseOutcome{
		Success: false,
		Tracks:  nil,
		Error:   msg,
		Kind:    kind,
	}
}

func (o ParseOutcome) MarshalJSON() ([]byte, error) {
	if o.Success {
		return json.Marshal(struct {
			Success bool    `json:"success"`
			Tracks  []Track `json:"tracks"`
		}{
			Success: true,
			Tracks:  lo.Ternary(nil == o.Tracks, []Track{}, o.Tracks),
		})
	}

	return json.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{
		Success: false,
		Error:   o.Error,
	})
}

func (o ParseOutcome) ToDict() *zerolog.Event {
	if o.Success {
		return zerolog.
			Dict().
			Bool("success", true).
			Int("tracks", len(o.Tracks))
	}

	return zerolog.
		Dict().
		Bool("success", false).
		Str("error", o.Error).
		Stringer("kind", o.Kind)
}

// DownloadOutcome is successful whenever the batch ran to completion,
// regardless of individual track failures.
type DownloadOutcome struct {
	Success   bool
	Downloads []DownloadResult
	Error     string
	Kind      ErrorKind
}

func DownloadSucceeded(downloads []DownloadResult) DownloadOutcome {
	return DownloadOutcome{
		Success:   true,
		Downloads: lo.Ternary(nil == downloads, []DownloadResult{}, downloads),
		Error:     "",
		Kind:      ErrorKindNone,
	}
}

func DownloadFailed(kind ErrorKind, msg string) DownloadOutcome {
	return DownloadOutcome{
		Success:   false,
		Downloads: nil,
		Error:     msg,
		Kind:      kind,
	}
}

func (o DownloadOutcome) Succeeded() int {
	return lo.CountBy(o.Downloads, func(r DownloadResult) bool { return r.Success })
}

func (o DownloadOutcome) MarshalJSON() ([]byte, error) {
	if o.Success {
		return json.Marshal(struct {
			Success   bool             `json:"success"`
			Downloads []DownloadResult `json:"downloads"`
		}{
			Success:   true,
			Downloads: lo.Ternary(nil == o.Downloads, []DownloadResult{}, o.Downloads),
		})
	}

	return json.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{
		Success: false,
		Error:   o.Error,
	})
}

func (o DownloadOutcome) ToDict() *zerolog.Event {
	if o.Success {
		return zerolog.
			Dict().
			Bool("success", true).
			Int("requested", len(o.Downloads)).
			Int("succeeded", o.Succeeded())
	}

	return zerolog.
		Dict().
		Bool("success", false).
		Str("error", o.Error).
		Stringer("kind", o.Kind)
}

type Status struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	DownloadDir    string `json:"download_dir"`
	YTDLPAvailable bool   `json:"yt_dlp_available"`
	YTDLPVersion   string `json:"yt_dlp_version,omitempty"`
}
