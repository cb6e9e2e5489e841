package types

type ErrorKind int

const (
	ErrorKindNone ErrorKind = iota
	// Empty or missing URL or track list. Rejected by the HTTP layer.
	ErrorKindInvalidInput
	// yt-dlp exited with a non-zero status.
	ErrorKindExternalTool
	// yt-dlp outlived its deadline.
	ErrorKindTimeout
	// Anything else, including recovered panics.
	ErrorKindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindInvalidInput:
		return "invalid_input"
	case ErrorKindExternalTool:
		return "external_tool_failure"
	case ErrorKindTimeout:
		return "timeout"
	case ErrorKindUnexpected:
		return "unexpected_fault"
	}

	return "unknown"
}
