package parser_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/panpup/youtube/parser"
	"github.com/xeptore/panpup/youtube/types"
	"github.com/xeptore/panpup/ytdlp"
)

type call struct {
	timeout time.Duration
	args    []string
}

type reply struct {
	res *ytdlp.Result
	err error
}

type fakeRunner struct {
	mux     sync.Mutex
	replies []reply
	calls   []call
}

func (r *fakeRunner) Run(_ context.Context, timeout time.Duration, args ...string) (*ytdlp.Result, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	r.calls = append(r.calls, call{timeout: timeout, args: args})
	if len(r.replies) == 0 {
		panic("unexpected yt-dlp invocation")
	}
	next := r.replies[0]
	r.replies = r.replies[1:]

	return next.res, next.err
}

func ok(stdout string) reply {
	return reply{res: &ytdlp.Result{ExitCode: 0, Stdout: stdout, Stderr: ""}, err: nil}
}

func exit(code int, stderr string) reply {
	return reply{res: &ytdlp.Result{ExitCode: code, Stdout: "", Stderr: stderr}, err: nil}
}

func fail(err error) reply {
	return reply{res: nil, err: err}
}

func newParser(r *fakeRunner) *parser.Parser {
	return parser.New(r, 60*time.Second, 30*time.Second)
}

const url = "https://www.youtube.com/playlist?list=PL1"

func TestParsePlaylist(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{replies: []reply{ok("Song A|3:45|id1\n\nSong B|NA|id2\nbroken line\n")}}
	outcome := newParser(r).Parse(context.Background(), zerolog.Nop(), url)

	require.True(t, outcome.Success)
	assert.Equal(
		t,
		[]types.Track{
			{ID: "id1", Title: "Song A", Duration: "3:45", Selected: true},
			{ID: "id2", Title: "Song B", Duration: "Unknown", Selected: true},
		},
		outcome.Tracks,
	)

	require.Len(t, r.calls, 1)
	assert.Equal(t, 60*time.Second, r.calls[0].timeout)
	assert.Equal(t, ytdlp.FlatPlaylistArgs(url), r.calls[0].args)
}

func TestParseFailures(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		reply reply
		kind  types.ErrorKind
		msg   string
	}{
		{
			name:  "stderr",
			reply: exit(1, "  ERROR: [youtube] xyz: Video unavailable\n"),
			kind:  types.ErrorKindExternalTool,
			msg:   "ERROR: [youtube] xyz: Video unavailable",
		},
		{
			name:  "empty stderr",
			reply: exit(2, "  \n"),
			kind:  types.ErrorKindExternalTool,
			msg:   "Unknown yt-dlp error",
		},
		{
			name:  "timeout",
			reply: fail(ytdlp.ErrTimeout),
			kind:  types.ErrorKindTimeout,
			msg:   "Request timed out (60s limit)",
		},
		{
			name:  "fault",
			reply: fail(errors.New("exec: not found")),
			kind:  types.ErrorKindUnexpected,
			msg:   "Parse error: exec: not found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := &fakeRunner{replies: []reply{tc.reply}}
			outcome := newParser(r).Parse(context.Background(), zerolog.Nop(), url)

			assert.False(t, outcome.Success)
			assert.Nil(t, outcome.Tracks)
			assert.Equal(t, tc.kind, outcome.Kind)
			assert.Equal(t, tc.msg, outcome.Error)
			assert.Len(t, r.calls, 1)
		})
	}
}

func TestParseFallback(t *testing.T) {
	t.Parallel()

	const video = "https://www.youtube.com/watch?v=abc"

	testCases := []struct {
		name     string
		fallback reply
		success  bool
		tracks   []types.Track
		kind     types.ErrorKind
		msg      string
	}{
		{
			name:     "single track",
			fallback: ok("Only|4:00|abc\nExtra|1:00|def\n"),
			success:  true,
			tracks:   []types.Track{{ID: "abc", Title: "Only", Duration: "4:00", Selected: true}},
		},
		{
			name:     "non-zero exit",
			fallback: exit(1, "ERROR: nope"),
			kind:     types.ErrorKindExternalTool,
			msg:      "Could not parse video info",
		},
		{
			name:     "nothing decodable",
			fallback: ok("garbage\n"),
			kind:     types.ErrorKindExternalTool,
			msg:      "Could not extract video info",
		},
		{
			name:     "timeout",
			fallback: fail(ytdlp.ErrTimeout),
			kind:     types.ErrorKindTimeout,
			msg:      "Request timed out (30s limit)",
		},
		{
			name:     "fault",
			fallback: fail(errors.New("broken pipe")),
			kind:     types.ErrorKindUnexpected,
			msg:      "Fallback parse error: broken pipe",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := &fakeRunner{replies: []reply{ok("\n"), tc.fallback}}
			outcome := newParser(r).Parse(context.Background(), zerolog.Nop(), video)

			require.Len(t, r.calls, 2)
			assert.Equal(t, 30*time.Second, r.calls[1].timeout)
			assert.Equal(t, ytdlp.SingleVideoArgs(video), r.calls[1].args)

			assert.Equal(t, tc.success, outcome.Success)
			if tc.success {
				assert.Equal(t, tc.tracks, outcome.Tracks)
			} else {
				assert.Equal(t, tc.kind, outcome.Kind)
				assert.Equal(t, tc.msg, outcome.Error)
			}
		})
	}
}

func TestParseIsIdempotent(t *testing.T) {
	t.Parallel()

	const out = "A|1:00|a\nB|2:00|b\n"
	r := &fakeRunner{replies: []reply{ok(out), ok(out)}}
	p := newParser(r)

	first := p.Parse(context.Background(), zerolog.Nop(), url)
	second := p.Parse(context.Background(), zerolog.Nop(), url)
	assert.Equal(t, first, second)
}

func TestParseRecoversPanic(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{}
	outcome := newParser(r).Parse(context.Background(), zerolog.Nop(), url)

	assert.False(t, outcome.Success)
	assert.Equal(t, types.ErrorKindUnexpected, outcome.Kind)
	assert.Equal(t, "Parse error: unexpected yt-dlp invocation", outcome.Error)
}

func TestDecodeLines(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want []types.Track
	}{
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "title with separator",
			in:   "AC|DC - Thunderstruck|4:52|v1\n",
			want: []types.Track{{ID: "v1", Title: "AC|DC - Thunderstruck", Duration: "4:52", Selected: true}},
		},
		{
			name: "too few fields",
			in:   "title|id\nplain\n",
			want: nil,
		},
		{
			name: "crlf and padding",
			in:   "  One|0:30|x1  \r\nTwo|NA|x2\r\n",
			want: []types.Track{
				{ID: "x1", Title: "One", Duration: "0:30", Selected: true},
				{ID: "x2", Title: "Two", Duration: "Unknown", Selected: true},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, parser.DecodeLines(tc.in))
		})
	}
}
