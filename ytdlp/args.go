package ytdlp

import (
	"path/filepath"
)

// FlatPlaylistArgs lists every entry of a playlist, or the single video,
// without resolving each entry's formats.
func FlatPlaylistArgs(url string) []string {
	return []string{
		"--flat-playlist",
		"--print", PrintTemplate,
		url,
	}
}

// SingleVideoArgs is used for URLs that do not produce flat-playlist output.
func SingleVideoArgs(url string) []string {
	return []string{
		"--print", PrintTemplate,
		"--no-playlist",
		url,
	}
}

type ExtractAudioOptions struct {
	AudioFormat    string
	AudioQuality   string
	AddMetadata    bool
	EmbedThumbnail bool
	OutputDir      string
	OutputTemplate string
}

// ExtractAudioArgs downloads url and converts it to an audio file under
// OutputDir. The final file path is printed on stdout once post-processing
// is done.
func ExtractAudioArgs(opts ExtractAudioOptions, url string) []string {
	args := []string{
		"-x",
		"--audio-format", opts.AudioFormat,
		"--audio-quality", opts.AudioQuality,
	}
	if opts.AddMetadata {
		args = append(args, "--add-metadata")
	}
	if opts.EmbedThumbnail {
		args = append(args, "--embed-thumbnail")
	}

	return append(
		args,
		"--print", "after_move:filepath",
		"-o", filepath.Join(opts.OutputDir, opts.OutputTemplate),
		url,
	)
}
