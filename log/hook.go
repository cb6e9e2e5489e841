package log

import (
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

const maxStackDepth = 32

// stackHook attaches the caller stack to error and higher level events,
// leaving out zerolog and runtime frames.
type stackHook struct{}

func (h *stackHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	if level < zerolog.ErrorLevel || level == zerolog.NoLevel || level == zerolog.Disabled {
		return
	}

	arr := zerolog.Arr()
	for _, f := range callers(4) {
		arr.Dict(zerolog.Dict().
			Int("line", f.Line).
			Str("file", f.File).
			Str("function", f.Function),
		)
	}
	e.Array("stack", arr)
}

func callers(skip int) []runtime.Frame {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]runtime.Frame, 0, n)
	for {
		frame, more := frames.Next()
		if !isInternalFrame(frame.Function) {
			out = append(out, frame)
		}
		if !more {
			break
		}
	}

	return out
}

func isInternalFrame(function string) bool {
	return strings.HasPrefix(function, "github.com/rs/zerolog") ||
		strings.HasPrefix(function, "runtime.") ||
		strings.HasPrefix(function, "github.com/xeptore/panpup/log.")
}
