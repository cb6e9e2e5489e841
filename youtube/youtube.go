package youtube

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xeptore/panpup/cache"
	"github.com/xeptore/panpup/config"
	"github.com/xeptore/panpup/worker"
	"github.com/xeptore/panpup/youtube/downloader"
	"github.com/xeptore/panpup/youtube/fs"
	"github.com/xeptore/panpup/youtube/parser"
	"github.com/xeptore/panpup/youtube/types"
	"github.com/xeptore/panpup/ytdlp"
)

const ReadyMessage = "Pan-Pup backend is ready!"

type Client struct {
	runner         ytdlp.Runner
	parser         *parser.Parser
	dl             *downloader.Downloader
	cache          *cache.Cache
	cacheConf      config.Cache
	worker         *worker.Worker
	timeouts       config.YTDLPTimeouts
	DownloadsDirFs fs.DownloadDir
}

func NewClient(runner ytdlp.Runner, conf *config.Config) *Client {
	dlDirFs := fs.DownloadDirFrom(conf.Downloads.Dir)

	var c *cache.Cache
	if conf.Cache.Enabled() {
		c = cache.New(conf.Cache.MaxSize)
	}

	var (
		p  = parser.New(runner, conf.YTDLP.Timeouts.ParseDuration(), conf.YTDLP.Timeouts.FallbackDuration())
		dl = downloader.NewDownloader(runner, dlDirFs, downloader.Options{
			AudioFormat:    conf.YTDLP.AudioFormat,
			AudioQuality:   conf.YTDLP.AudioQuality,
			OutputTemplate: conf.YTDLP.OutputTemplate,
			AddMetadata:    conf.YTDLP.ShouldAddMetadata(),
			EmbedThumbnail: conf.YTDLP.ShouldEmbedThumbnail(),
			Timeout:        conf.YTDLP.Timeouts.DownloadDuration(),
		})
	)

	return &Client{
		runner:         runner,
		parser:         p,
		dl:             dl,
		cache:          c,
		cacheConf:      conf.Cache,
		worker:         worker.NewWorker(conf.Server.MaxConcurrentBatches),
		timeouts:       conf.YTDLP.Timeouts,
		DownloadsDirFs: dlDirFs,
	}
}

func (c *Client) Parse(ctx context.Context, logger zerolog.Logger, url string) types.ParseOutcome {
	if nil == c.cache {
		return c.parser.Parse(ctx, logger, url)
	}

	outcome, hit := c.cache.ParseOutcomes.Fetch(url, c.cacheConf.ParseTTLDuration(), func() types.ParseOutcome {
		return c.parser.Parse(ctx, logger, url)
	})
	if hit {
		logger.Debug().Msg("Parse outcome served from cache")
	}

	return outcome
}

// Download waits for a free batch slot before starting. Giving up on the
// wait is reported as an orchestration fault.
func (c *Client) Download(ctx context.Context, logger zerolog.Logger, url string, ids []string) types.DownloadOutcome {
	release, err := c.worker.AcquireJob(ctx)
	if nil != err {
		logger.Warn().Err(err).Msg("Gave up waiting for a download slot")
		return types.DownloadFailed(types.ErrorKindUnexpected, fmt.Sprintf("Download error: %v", err))
	}
	defer release()

	return c.dl.Download(ctx, logger, url, ids)
}

func (c *Client) Status(ctx context.Context, logger zerolog.Logger) types.Status {
	version, err := c.Version(ctx)
	if nil != err {
		logger.Debug().Err(err).Msg("yt-dlp is not available")
	}

	return types.Status{
		Success:        true,
		Message:        ReadyMessage,
		DownloadDir:    c.DownloadsDirFs.Abs(),
		YTDLPAvailable: nil == err,
		YTDLPVersion:   version,
	}
}

// Version probes the extractor once.
func (c *Client) Version(ctx context.Context) (string, error) {
	return ytdlp.Version(ctx, c.runner, c.timeouts.VersionDuration())
}

func (c *Client) Close() {
	if nil != c.cache {
		c.cache.ParseOutcomes.Stop()
	}
}
