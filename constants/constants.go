package constants

// Set at build time via -ldflags "-X github.com/xeptore/panpup/constants.Version=..."
var (
	Version     = "dev"
	CompileTime = "unknown"
)
