package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/xeptore/panpup/config"
	"github.com/xeptore/panpup/constants"
	"github.com/xeptore/panpup/log"
	"github.com/xeptore/panpup/prompt"
	"github.com/xeptore/panpup/render"
	"github.com/xeptore/panpup/server"
	"github.com/xeptore/panpup/youtube"
	"github.com/xeptore/panpup/youtube/types"
	"github.com/xeptore/panpup/ytdlp"
)

const installHint = "Install with: pip3 install yt-dlp"

func main() {
	logger := log.NewDefault()

	//nolint:exhaustruct
	app := &cli.Command{
		Name:    "panpup",
		Version: constants.Version,
		Metadata: map[string]any{
			"compiled_at": constants.CompileTime,
		},
		Suggest:                    true,
		Usage:                      "YouTube audio downloader",
		EnableShellCompletion:      true,
		ShellCompletionCommandName: "shell-completion",
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:     "config",
				Usage:    "Config file path",
				Sources:  cli.EnvVars("PANPUP_CONFIG"),
				Required: false,
			},
		},
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:   "serve",
				Usage:  "Run the web server",
				Action: serve,
			},
			//nolint:exhaustruct
			{
				Name:      "parse",
				Usage:     "List the tracks of a video or playlist",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the outcome as JSON",
					},
				},
				Action: parse,
			},
			//nolint:exhaustruct
			{
				Name:      "download",
				Usage:     "Download tracks as audio",
				ArgsUsage: "<url> [track-id...]",
				Description: strings.Join(
					[]string{
						"Without track ids, the URL is parsed first and the tracks to download are chosen interactively.",
						"Interactive selection requires a TTY.",
					},
					"\n",
				),
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the outcome as JSON",
					},
				},
				Action: download,
			},
			//nolint:exhaustruct
			{
				Name:   "check",
				Usage:  "Check that yt-dlp is installed",
				Action: check,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			os.Exit(1)
		}

		var exitCode exitCodeError
		if errors.As(err, &exitCode) {
			os.Exit(int(exitCode))
		}

		logger.Error().Err(err).Msg("Application exited with error")
		os.Exit(10)
	}
}

type exitCodeError int

func (e exitCodeError) Error() string {
	return "error with exit code: " + strconv.Itoa(int(e))
}

func setup(cmd *cli.Command) (*config.Config, zerolog.Logger, error) {
	logger := log.NewDefault()

	if err := godotenv.Load(); nil != err {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, logger, fmt.Errorf("load .env file: %v", err)
		}
		logger.Debug().Msg(".env file was not found")
	} else {
		logger.Debug().Msg(".env file was loaded")
	}

	conf, err := config.Load(cmd.String("config"))
	if nil != err {
		return nil, logger, fmt.Errorf("load config: %v", err)
	}

	logger = log.FromConfig(conf.Log)
	logger.Debug().Dict("config", conf.ToDict()).Msg("Config loaded")

	return conf, logger, nil
}

func newClient(conf *config.Config) *youtube.Client {
	return youtube.NewClient(ytdlp.NewExecRunner(conf.YTDLP.Binary), conf)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conf, logger, err := setup(cmd)
	if nil != err {
		return err
	}

	yt := newClient(conf)
	defer yt.Close()

	if err := yt.DownloadsDirFs.Ensure(); nil != err {
		return fmt.Errorf("prepare download directory: %v", err)
	}
	logger.Info().Str("dir", yt.DownloadsDirFs.Abs()).Msg("Download directory ready")
	logger.Info().Str("dir", conf.Server.FrontendDir).Msg("Serving frontend directory")

	if version, err := yt.Version(ctx); nil != err {
		logger.Warn().Err(err).Msg("yt-dlp is not available. " + installHint)
	} else {
		logger.Info().Str("version", version).Msg("yt-dlp available")
	}

	srv := server.New(logger, conf.Server, yt)
	if err := srv.Run(ctx); nil != err {
		return fmt.Errorf("run server: %v", err)
	}

	return nil
}

func parse(ctx context.Context, cmd *cli.Command) error {
	conf, logger, err := setup(cmd)
	if nil != err {
		return err
	}

	link, err := urlArg(cmd)
	if nil != err {
		return err
	}
	logger = logger.With().Str("url", link.URL).Stringer("kind", link.Kind).Logger()

	yt := newClient(conf)
	defer yt.Close()

	outcome := yt.Parse(ctx, logger, link.URL)
	if cmd.Bool("json") {
		if err := printJSON(os.Stdout, outcome); nil != err {
			return err
		}
	} else if outcome.Success {
		fmt.Fprintln(os.Stdout, render.Tracks(outcome.Tracks))
	}

	if !outcome.Success {
		return fmt.Errorf("parse failed: %s", outcome.Error)
	}

	return nil
}

func download(ctx context.Context, cmd *cli.Command) error {
	conf, logger, err := setup(cmd)
	if nil != err {
		return err
	}

	link, err := urlArg(cmd)
	if nil != err {
		return err
	}
	url := link.URL
	logger = logger.With().Str("url", url).Stringer("kind", link.Kind).Logger()

	yt := newClient(conf)
	defer yt.Close()

	ids := cmd.Args().Tail()
	if len(ids) == 0 {
		ids, err = selectTracks(ctx, logger, yt, url)
		if nil != err {
			if errors.Is(err, syscall.ENOTTY) {
				logger.Error().Msg("No TTY detected. Pass track ids as arguments or run in an interactive terminal.")
				return exitCodeError(1)
			}

			if errors.Is(err, prompt.ErrCanceled) {
				logger.Warn().Msg("Track selection canceled")
				return nil
			}

			return err
		}
	}

	logger.Info().Int("tracks", len(ids)).Msg("Downloading tracks")
	outcome := yt.Download(ctx, logger, url, ids)
	if cmd.Bool("json") {
		if err := printJSON(os.Stdout, outcome); nil != err {
			return err
		}
	} else if outcome.Success {
		fmt.Fprintln(os.Stdout, render.Downloads(outcome, isatty.IsTerminal(os.Stdout.Fd())))
	}

	if !outcome.Success {
		return fmt.Errorf("download failed: %s", outcome.Error)
	}

	return nil
}

func selectTracks(ctx context.Context, logger zerolog.Logger, yt *youtube.Client, url string) ([]string, error) {
	if !prompt.IsInteractive() {
		return nil, syscall.ENOTTY
	}

	outcome := yt.Parse(ctx, logger, url)
	if !outcome.Success {
		return nil, fmt.Errorf("parse failed: %s", outcome.Error)
	}

	if len(outcome.Tracks) == 1 {
		return []string{outcome.Tracks[0].ID}, nil
	}

	return prompt.SelectTracks(outcome.Tracks)
}

func check(ctx context.Context, cmd *cli.Command) error {
	conf, logger, err := setup(cmd)
	if nil != err {
		return err
	}

	yt := newClient(conf)
	defer yt.Close()

	version, err := yt.Version(ctx)
	if nil != err {
		logger.Error().Err(err).Str("binary", conf.YTDLP.Binary).Msg("yt-dlp is not available. " + installHint)
		return exitCodeError(2)
	}
	logger.Info().Str("binary", conf.YTDLP.Binary).Str("version", version).Msg("yt-dlp available")

	return nil
}

func urlArg(cmd *cli.Command) (types.Link, error) {
	url := strings.TrimSpace(cmd.Args().First())
	if len(url) == 0 {
		return types.Link{}, errors.New("url argument is required") //nolint:exhaustruct
	}

	link, ok := types.ParseLink(url)
	if !ok {
		return types.Link{}, fmt.Errorf("not a valid YouTube URL: %s", url) //nolint:exhaustruct
	}

	return link, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); nil != err {
		return fmt.Errorf("encode output: %v", err)
	}

	return nil
}
