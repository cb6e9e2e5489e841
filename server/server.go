package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/xeptore/panpup/config"
	"github.com/xeptore/panpup/youtube/types"
)

const shutdownTimeout = 5 * time.Second

// Service is the core the HTTP layer calls into.
type Service interface {
	Parse(ctx context.Context, logger zerolog.Logger, url string) types.ParseOutcome
	Download(ctx context.Context, logger zerolog.Logger, url string, ids []string) types.DownloadOutcome
	Status(ctx context.Context, logger zerolog.Logger) types.Status
}

type Server struct {
	logger  zerolog.Logger
	conf    config.Server
	svc     Service
	handler http.Handler
}

func New(logger zerolog.Logger, conf config.Server, svc Service) *Server {
	s := &Server{
		logger:  logger.With().Str("component", "server").Logger(),
		conf:    conf,
		svc:     svc,
		handler: nil,
	}
	s.handler = s.routes()

	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/parse", s.handleParse)
	mux.HandleFunc("/api/download", s.handleDownload)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.Handle("/", newStaticHandler(s.conf.FrontendDir))

	return s.withRequestID(s.withAccessLog(s.withRecovery(mux)))
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.conf.Bind)
	if nil != err {
		return fmt.Errorf("failed to listen on %s: %v", s.conf.Bind, err)
	}

	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{ //nolint:exhaustruct
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	wg, wgCtx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		s.logger.Info().Str("address", listener.Addr().String()).Msg("Server listening")
		if err := srv.Serve(listener); nil != err && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %v", err)
		}

		return nil
	})
	wg.Go(func() error {
		<-wgCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		s.logger.Info().Msg("Shutting down server")
		if err := srv.Shutdown(shutdownCtx); nil != err {
			return fmt.Errorf("failed to shut down server: %v", err)
		}

		return nil
	})

	if err := wg.Wait(); nil != err {
		return err
	}
	s.logger.Info().Msg("Server stopped")

	return nil
}
