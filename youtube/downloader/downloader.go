package downloader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/xeptore/panpup/must"
	"github.com/xeptore/panpup/youtube/fs"
	"github.com/xeptore/panpup/youtube/types"
	"github.com/xeptore/panpup/ytdlp"
)

type Options struct {
	AudioFormat    string
	AudioQuality   string
	OutputTemplate string
	AddMetadata    bool
	EmbedThumbnail bool
	Timeout        time.Duration
}

type Downloader struct {
	runner ytdlp.Runner
	dir    fs.DownloadDir
	opts   Options
}

func NewDownloader(runner ytdlp.Runner, dir fs.DownloadDir, opts Options) *Downloader {
	return &Downloader{
		runner: runner,
		dir:    dir,
		opts:   opts,
	}
}

func (d *Downloader) Dir() fs.DownloadDir {
	return d.dir
}

// Download fetches every id in order, one yt-dlp invocation at a time. A
// failing track never stops the batch. Canceling ctx does not interrupt a
// batch that has already started.
func (d *Downloader) Download(
	ctx context.Context,
	logger zerolog.Logger,
	url string,
	ids []string,
) (outcome types.DownloadOutcome) {
	defer func() {
		if r := recover(); nil != r {
			logger.Error().Interface("panic", r).Msg("Recovered from panic while downloading batch")
			outcome = types.DownloadFailed(types.ErrorKindUnexpected, fmt.Sprintf("Download error: %v", r))
		}
	}()

	ctx = context.WithoutCancel(ctx)

	if err := d.dir.Ensure(); nil != err {
		logger.Error().Err(err).Str("dir", d.dir.Path()).Msg("Failed to prepare download directory")
		return types.DownloadFailed(types.ErrorKindUnexpected, fmt.Sprintf("Download error: %v", err))
	}

	direct := len(ids) == 1 && !types.IsPlaylistURL(url)
	results := make([]types.DownloadResult, 0, len(ids))
	for i, id := range ids {
		target := lo.Ternary(direct, url, types.WatchURL(id))
		trackLogger := logger.With().Str("track_id", id).Int("index", i).Logger()

		trackLogger.Debug().Str("url", target).Msg("Downloading track")
		res := d.track(ctx, trackLogger, id, target)
		if res.Success {
			trackLogger.Info().Str("file", res.File).Msg("Track downloaded")
		} else {
			trackLogger.Warn().Stringer("kind", res.Kind).Str("error", res.ErrorMessage()).Msg("Track download failed")
		}
		results = append(results, res)
	}
	must.Be(len(results) == len(ids), "one download result per requested track")

	outcome = types.DownloadSucceeded(results)
	logger.Info().Dict("outcome", outcome.ToDict()).Msg("Download batch completed")

	return outcome
}

func (d *Downloader) track(ctx context.Context, logger zerolog.Logger, id, url string) (result types.DownloadResult) {
	defer func() {
		if r := recover(); nil != r {
			logger.Error().Interface("panic", r).Msg("Recovered from panic while downloading track")
			result = types.FailedDownload(id, types.ErrorKindUnexpected, fmt.Sprint(r))
		}
	}()

	opts := ytdlp.ExtractAudioOptions{
		AudioFormat:    d.opts.AudioFormat,
		AudioQuality:   d.opts.AudioQuality,
		AddMetadata:    d.opts.AddMetadata,
		EmbedThumbnail: d.opts.EmbedThumbnail,
		OutputDir:      d.dir.Path(),
		OutputTemplate: d.opts.OutputTemplate,
	}
	res, err := d.runner.Run(ctx, d.opts.Timeout, ytdlp.ExtractAudioArgs(opts, url)...)
	if nil != err {
		if errors.Is(err, ytdlp.ErrTimeout) {
			return types.FailedDownload(id, types.ErrorKindTimeout, timedOutMessage(d.opts.Timeout))
		}

		return types.FailedDownload(id, types.ErrorKindUnexpected, err.Error())
	}

	if !res.Succeeded() {
		msg := strings.TrimSpace(res.Stderr)
		if len(msg) == 0 {
			msg = "Download failed"
		}

		return types.FailedDownload(id, types.ErrorKindExternalTool, msg)
	}

	file, ok := fs.AudioFileFrom(res.Stdout)
	if !ok {
		return types.SucceededDownload(id, "")
	}
	inspect(logger, file)

	return types.SucceededDownload(id, file.Path)
}

// inspect only logs. The exit status alone decides success.
func inspect(logger zerolog.Logger, file fs.AudioFile) {
	exists, err := file.Exists()
	if nil != err {
		logger.Warn().Err(err).Str("file", file.Path).Msg("Failed to check downloaded file")
		return
	}
	if !exists {
		logger.Warn().Str("file", file.Path).Msg("Downloaded file not found")
		return
	}

	m, err := file.MIME()
	if nil != err {
		logger.Warn().Err(err).Str("file", file.Path).Msg("Failed to sniff downloaded file")
		return
	}
	if !fs.IsAudio(m) {
		logger.Warn().Str("file", file.Path).Str("mime", m.String()).Msg("Downloaded file does not look like audio")
		return
	}

	logger.Debug().Str("file", file.Path).Str("mime", m.String()).Msg("Downloaded file type detected")
}

func timedOutMessage(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		minutes := int(d / time.Minute)
		return fmt.Sprintf("Download timed out (%d %s)", minutes, lo.Ternary(minutes == 1, "minute", "minutes"))
	}

	return "Download timed out (" + strconv.Itoa(int(d/time.Second)) + "s)"
}
