package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// PrintTemplate asks yt-dlp for one title|duration|id line per entry.
const PrintTemplate = "%(title)s|%(duration_string)s|%(id)s"

const defaultWaitDelay = 2 * time.Second

// ErrTimeout is returned when an invocation outlives its deadline. The process
// is killed before Run returns.
var ErrTimeout = errors.New("yt-dlp invocation timed out")

type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Runner runs yt-dlp with args. A process that exits, successfully or not,
// yields a Result and a nil error.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, args ...string) (*Result, error)
}

type ExecRunner struct {
	binary    string
	waitDelay time.Duration
}

type Option func(*ExecRunner)

// WithWaitDelay bounds how long Run waits for output pipes after the process
// has been killed.
func WithWaitDelay(d time.Duration) Option {
	return func(r *ExecRunner) {
		r.waitDelay = d
	}
}

func NewExecRunner(binary string, opts ...Option) *ExecRunner {
	r := &ExecRunner{
		binary:    binary,
		waitDelay: defaultWaitDelay,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *ExecRunner) Binary() string {
	return r.binary
}

func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, args ...string) (*Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.waitDelay

	err := cmd.Run()
	if ctxErr := ctx.Err(); nil != ctxErr {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}

		return nil, fmt.Errorf("run %s: %w", r.binary, ctxErr)
	}

	if nil != err {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Result{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}, nil
		}

		return nil, fmt.Errorf("run %s: %v", r.binary, err)
	}

	return &Result{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// Version reports the installed yt-dlp version.
func Version(ctx context.Context, r Runner, timeout time.Duration) (string, error) {
	res, err := r.Run(ctx, timeout, "--version")
	if nil != err {
		return "", fmt.Errorf("failed to get yt-dlp version: %w", err)
	}

	if !res.Succeeded() {
		return "", fmt.Errorf("yt-dlp --version exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	return strings.TrimSpace(res.Stdout), nil
}
