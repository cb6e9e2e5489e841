package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xeptore/panpup/httputil"
	"github.com/xeptore/panpup/youtube/types"
)

const (
	msgNoURL          = "No URL provided"
	msgEmptyURL       = "Empty URL provided"
	msgInvalidURL     = "Not a valid YouTube URL"
	msgNoData         = "No data provided"
	msgNoTrackIDs     = "No track IDs provided"
	msgParseFault     = "Server error during parsing"
	msgDownloadFault  = "Server error during download"
	msgMethodNotAllow = "Method not allowed"
)

type requestBody map[string]json.RawMessage

func (b requestBody) str(key string) (string, bool) {
	raw, ok := b[key]
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); nil != err {
		return "", false
	}

	return s, true
}

func (b requestBody) strs(key string) ([]string, bool) {
	raw, ok := b[key]
	if !ok {
		return nil, false
	}

	var s []string
	if err := json.Unmarshal(raw, &s); nil != err {
		return nil, false
	}

	return s, true
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context()).With().Str("handler", "parse").Logger()
	if r.Method != http.MethodPost {
		s.writeError(logger, w, http.StatusMethodNotAllowed, msgMethodNotAllow)
		return
	}

	defer func() {
		if rec := recover(); nil != rec {
			logger.Error().Interface("panic", rec).Msg("Recovered from panic in parse handler")
			s.writeError(logger, w, http.StatusOK, msgParseFault)
		}
	}()

	var body requestBody
	if err := httputil.DecodeRequestBody(w, r, &body); nil != err {
		logger.Debug().Err(err).Msg("Rejected parse request body")
		s.writeError(logger, w, http.StatusOK, msgNoURL)
		return
	}

	url, ok := body.str("url")
	if !ok {
		s.writeError(logger, w, http.StatusOK, msgNoURL)
		return
	}

	url = strings.TrimSpace(url)
	if len(url) == 0 {
		s.writeError(logger, w, http.StatusOK, msgEmptyURL)
		return
	}

	link, ok := types.ParseLink(url)
	if !ok {
		s.writeError(logger, w, http.StatusOK, msgInvalidURL)
		return
	}

	logger = logger.With().Str("url", url).Stringer("kind", link.Kind).Logger()
	outcome := s.svc.Parse(r.Context(), logger, url)
	logger.Info().Dict("outcome", outcome.ToDict()).Msg("Parse request completed")
	s.writeJSON(logger, w, http.StatusOK, outcome)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context()).With().Str("handler", "download").Logger()
	if r.Method != http.MethodPost {
		s.writeError(logger, w, http.StatusMethodNotAllowed, msgMethodNotAllow)
		return
	}

	defer func() {
		if rec := recover(); nil != rec {
			logger.Error().Interface("panic", rec).Msg("Recovered from panic in download handler")
			s.writeError(logger, w, http.StatusOK, msgDownloadFault)
		}
	}()

	var body requestBody
	if err := httputil.DecodeRequestBody(w, r, &body); nil != err || len(body) == 0 {
		logger.Debug().Err(err).Msg("Rejected download request body")
		s.writeError(logger, w, http.StatusOK, msgNoData)
		return
	}

	url, _ := body.str("url")
	url = strings.TrimSpace(url)
	if len(url) == 0 {
		s.writeError(logger, w, http.StatusOK, msgNoURL)
		return
	}

	ids, ok := body.strs("track_ids")
	if !ok || len(ids) == 0 {
		s.writeError(logger, w, http.StatusOK, msgNoTrackIDs)
		return
	}

	if len(ids) > s.conf.MaxBatchSize {
		s.writeError(logger, w, http.StatusOK, fmt.Sprintf("Too many tracks (max %d)", s.conf.MaxBatchSize))
		return
	}

	logger = logger.With().Str("url", url).Int("tracks", len(ids)).Logger()
	outcome := s.svc.Download(r.Context(), logger, url, ids)
	logger.Info().Dict("outcome", outcome.ToDict()).Msg("Download request completed")
	s.writeJSON(logger, w, http.StatusOK, outcome)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context()).With().Str("handler", "status").Logger()
	if r.Method != http.MethodGet {
		s.writeError(logger, w, http.StatusMethodNotAllowed, msgMethodNotAllow)
		return
	}

	s.writeJSON(logger, w, http.StatusOK, s.svc.Status(r.Context(), logger))
}

func (s *Server) writeJSON(logger zerolog.Logger, w http.ResponseWriter, status int, v any) {
	if err := httputil.WriteJSON(w, status, v); nil != err {
		logger.Error().Err(err).Msg("Failed to write response")
	}
}

func (s *Server) writeError(logger zerolog.Logger, w http.ResponseWriter, status int, msg string) {
	if err := httputil.WriteError(w, status, msg); nil != err {
		logger.Error().Err(err).Msg("Failed to write error response")
	}
}
