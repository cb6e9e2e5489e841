package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xeptore/panpup/youtube/types"
	"github.com/xeptore/panpup/ytdlp"
)

const (
	fieldSeparator       = "|"
	notAvailableDuration = "NA"
)

type Parser struct {
	runner          ytdlp.Runner
	timeout         time.Duration
	fallbackTimeout time.Duration
}

func New(runner ytdlp.Runner, timeout, fallbackTimeout time.Duration) *Parser {
	return &Parser{
		runner:          runner,
		timeout:         timeout,
		fallbackTimeout: fallbackTimeout,
	}
}

// Parse lists the tracks behind url. Single videos that yield no
// flat-playlist output are retried once without playlist expansion.
func (p *Parser) Parse(ctx context.Context, logger zerolog.Logger, url string) (outcome types.ParseOutcome) {
	defer func() {
		if r := recover(); nil != r {
			logger.Error().Interface("panic", r).Msg("Recovered from panic while parsing")
			outcome = types.ParseFailed(types.ErrorKindUnexpected, fmt.Sprintf("Parse error: %v", r))
		}
	}()

	res, err := p.runner.Run(ctx, p.timeout, ytdlp.FlatPlaylistArgs(url)...)
	if nil != err {
		if errors.Is(err, ytdlp.ErrTimeout) {
			logger.Warn().Dur("timeout", p.timeout).Msg("Playlist listing timed out")
			return types.ParseFailed(types.ErrorKindTimeout, timedOutMessage(p.timeout))
		}

		logger.Error().Err(err).Msg("Failed to run playlist listing")
		return types.ParseFailed(types.ErrorKindUnexpected, fmt.Sprintf("Parse error: %v", err))
	}

	if !res.Succeeded() {
		msg := strings.TrimSpace(res.Stderr)
		if len(msg) == 0 {
			msg = "Unknown yt-dlp error"
		}
		logger.Warn().Int("exit_code", res.ExitCode).Str("stderr", msg).Msg("yt-dlp exited with failure")

		return types.ParseFailed(types.ErrorKindExternalTool, msg)
	}

	tracks := DecodeLines(res.Stdout)
	if len(tracks) > 0 {
		logger.Debug().Int("tracks", len(tracks)).Msg("Decoded playlist entries")
		return types.ParseSucceeded(tracks)
	}

	logger.Debug().Msg("No flat-playlist entries, falling back to single video info")

	return p.fallback(ctx, logger, url)
}

func (p *Parser) fallback(ctx context.Context, logger zerolog.Logger, url string) types.ParseOutcome {
	res, err := p.runner.Run(ctx, p.fallbackTimeout, ytdlp.SingleVideoArgs(url)...)
	if nil != err {
		if errors.Is(err, ytdlp.ErrTimeout) {
			logger.Warn().Dur("timeout", p.fallbackTimeout).Msg("Single video info timed out")
			return types.ParseFailed(types.ErrorKindTimeout, timedOutMessage(p.fallbackTimeout))
		}

		logger.Error().Err(err).Msg("Failed to run single video info")
		return types.ParseFailed(types.ErrorKindUnexpected, fmt.Sprintf("Fallback parse error: %v", err))
	}

	if !res.Succeeded() {
		logger.Warn().Int("exit_code", res.ExitCode).Str("stderr", strings.TrimSpace(res.Stderr)).Msg("Single video info failed")
		return types.ParseFailed(types.ErrorKindExternalTool, "Could not parse video info")
	}

	tracks := DecodeLines(res.Stdout)
	if len(tracks) == 0 {
		return types.ParseFailed(types.ErrorKindExternalTool, "Could not extract video info")
	}

	return types.ParseSucceeded(tracks[:1])
}

// DecodeLines turns title|duration|id lines into tracks. The last two fields
// are the duration and id, so titles may contain the separator. Lines with
// fewer than three fields are skipped.
func DecodeLines(out string) []types.Track {
	var tracks []types.Track
	for line := range strings.Lines(out) {
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		track, ok := decodeLine(line)
		if !ok {
			continue
		}
		tracks = append(tracks, track)
	}

	return tracks
}

func decodeLine(line string) (types.Track, bool) {
	idSep := strings.LastIndex(line, fieldSeparator)
	if idSep < 0 {
		return types.Track{}, false //nolint:exhaustruct
	}

	durationSep := strings.LastIndex(line[:idSep], fieldSeparator)
	if durationSep < 0 {
		return types.Track{}, false //nolint:exhaustruct
	}

	duration := line[durationSep+1 : idSep]
	if duration == notAvailableDuration {
		duration = types.UnknownDuration
	}

	return types.Track{
		ID:       line[idSep+1:],
		Title:    line[:durationSep],
		Duration: duration,
		Selected: true,
	}, true
}

func timedOutMessage(d time.Duration) string {
	return fmt.Sprintf("Request timed out (%ds limit)", int(d/time.Second))
}
