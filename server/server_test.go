package server_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/xeptore/panpup/config"
	"github.com/xeptore/panpup/server"
	"github.com/xeptore/panpup/youtube/types"
)

type fakeService struct {
	mux       sync.Mutex
	parsed    []string
	downloads [][]string
	panics    bool
}

func (f *fakeService) Parse(_ context.Context, _ zerolog.Logger, url string) types.ParseOutcome {
	if f.panics {
		panic("parser exploded")
	}

	f.mux.Lock()
	f.parsed = append(f.parsed, url)
	f.mux.Unlock()

	return types.ParseSucceeded([]types.Track{{ID: "a", Title: "A", Duration: "1:00", Selected: true}})
}

func (f *fakeService) Download(_ context.Context, _ zerolog.Logger, _ string, ids []string) types.DownloadOutcome {
	if f.panics {
		panic("downloader exploded")
	}

	f.mux.Lock()
	f.downloads = append(f.downloads, ids)
	f.mux.Unlock()

	results := make([]types.DownloadResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, types.SucceededDownload(id, ""))
	}

	return types.DownloadSucceeded(results)
}

func (f *fakeService) Status(context.Context, zerolog.Logger) types.Status {
	return types.Status{
		Success:        true,
		Message:        "Pan-Pup backend is ready!",
		DownloadDir:    "/tmp/downloads",
		YTDLPAvailable: true,
		YTDLPVersion:   "2025.09.26",
	}
}

func newServer(t *testing.T, svc server.Service) (*server.Server, string) {
	t.Helper()

	frontend := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(frontend, "index.html"), []byte("<h1>pan-pup</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(frontend, "app.js"), []byte("console.log(1)"), 0o600))

	conf := config.Default().Server
	conf.FrontendDir = frontend

	return server.New(zerolog.Nop(), conf, svc), frontend
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if len(body) > 0 {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestParseValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
		want string
	}{
		{name: "no body", body: "", want: "No URL provided"},
		{name: "no url", body: `{}`, want: "No URL provided"},
		{name: "url not a string", body: `{"url":42}`, want: "No URL provided"},
		{name: "malformed", body: `{"url"`, want: "No URL provided"},
		{name: "blank url", body: `{"url":"   "}`, want: "Empty URL provided"},
		{name: "other host", body: `{"url":"https://vimeo.com/1"}`, want: "Not a valid YouTube URL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &fakeService{}
			srv, _ := newServer(t, svc)
			rec := do(t, srv.Handler(), http.MethodPost, "/api/parse", tc.body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"success":false,"error":"`+tc.want+`"}`, rec.Body.String())
			assert.Empty(t, svc.parsed)
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	srv, _ := newServer(t, svc)
	rec := do(t, srv.Handler(), http.MethodPost, "/api/parse", `{"url":"  https://youtu.be/a  "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "a", gjson.Get(body, "tracks.0.id").String())
	assert.True(t, gjson.Get(body, "tracks.0.selected").Bool())
	assert.Equal(t, []string{"https://youtu.be/a"}, svc.parsed)
}

func TestDownloadValidation(t *testing.T) {
	t.Parallel()

	tooMany := `{"url":"https://youtu.be/a","track_ids":[` + strings.TrimSuffix(strings.Repeat(`"x",`, 51), ",") + `]}`

	testCases := []struct {
		name string
		body string
		want string
	}{
		{name: "no body", body: "", want: "No data provided"},
		{name: "empty object", body: `{}`, want: "No data provided"},
		{name: "malformed", body: `[`, want: "No data provided"},
		{name: "no url", body: `{"track_ids":["a"]}`, want: "No URL provided"},
		{name: "blank url", body: `{"url":" ","track_ids":["a"]}`, want: "No URL provided"},
		{name: "no ids", body: `{"url":"https://youtu.be/a"}`, want: "No track IDs provided"},
		{name: "empty ids", body: `{"url":"https://youtu.be/a","track_ids":[]}`, want: "No track IDs provided"},
		{name: "ids not a list", body: `{"url":"https://youtu.be/a","track_ids":"a"}`, want: "No track IDs provided"},
		{name: "too many", body: tooMany, want: "Too many tracks (max 50)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &fakeService{}
			srv, _ := newServer(t, svc)
			rec := do(t, srv.Handler(), http.MethodPost, "/api/download", tc.body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"success":false,"error":"`+tc.want+`"}`, rec.Body.String())
			assert.Empty(t, svc.downloads)
		})
	}
}

func TestDownload(t *testing.T) {
	t.Parallel()

	ids := `[` + strings.TrimSuffix(strings.Repeat(`"x",`, 50), ",") + `]`

	svc := &fakeService{}
	srv, _ := newServer(t, svc)
	rec := do(t, srv.Handler(), http.MethodPost, "/api/download", `{"url":"https://www.youtube.com/playlist?list=PL1","track_ids":`+ids+`}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.EqualValues(t, 50, gjson.Get(body, "downloads.#").Int())
	assert.Equal(t, gjson.Null, gjson.Get(body, "downloads.0.error").Type)
	require.Len(t, svc.downloads, 1)
	assert.Len(t, svc.downloads[0], 50)
}

func TestHandlerPanics(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, &fakeService{panics: true})

	rec := do(t, srv.Handler(), http.MethodPost, "/api/parse", `{"url":"https://youtu.be/a"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Server error during parsing"}`, rec.Body.String())

	rec = do(t, srv.Handler(), http.MethodPost, "/api/download", `{"url":"https://youtu.be/a","track_ids":["a"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Server error during download"}`, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, &fakeService{})

	for _, tc := range []struct{ method, path string }{
		{method: http.MethodGet, path: "/api/parse"},
		{method: http.MethodGet, path: "/api/download"},
		{method: http.MethodPost, path: "/api/status"},
	} {
		rec := do(t, srv.Handler(), tc.method, tc.path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, tc.path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), tc.path)
		assert.False(t, gjson.Get(rec.Body.String(), "success").Bool(), tc.path)
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, &fakeService{})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/status", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "Pan-Pup backend is ready!", gjson.Get(body, "message").String())
	assert.Equal(t, "/tmp/downloads", gjson.Get(body, "download_dir").String())
	assert.True(t, gjson.Get(body, "yt_dlp_available").Bool())
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, &fakeService{})

	rec := do(t, srv.Handler(), http.MethodGet, "/api/status", "")
	_, err := uuid.Parse(rec.Header().Get(server.RequestIDHeader))
	require.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(server.RequestIDHeader, id)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(server.RequestIDHeader))
}

func TestStaticFiles(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, &fakeService{})

	rec := do(t, srv.Handler(), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pan-pup")

	rec = do(t, srv.Handler(), http.MethodGet, "/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = do(t, srv.Handler(), http.MethodGet, "/missing.css", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "File missing.css not found")

	rec = do(t, srv.Handler(), http.MethodGet, "/../../etc/passwd", "")
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestMissingFrontend(t *testing.T) {
	t.Parallel()

	conf := config.Default().Server
	conf.FrontendDir = filepath.Join(t.TempDir(), "frontend")
	srv := server.New(zerolog.Nop(), conf, &fakeService{})

	rec := do(t, srv.Handler(), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Frontend files not found. Make sure frontend/ directory exists.")
}

func TestServeShutsDown(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, &fakeService{})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- srv.Serve(ctx, listener) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		r, err := http.Get("http://" + listener.Addr().String() + "/api/status")
		if nil != err {
			return false
		}
		resp = r

		return true
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errs:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
