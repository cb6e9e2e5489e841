package types

import (
	"net/url"
	"strings"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

type LinkKind int

func (k LinkKind) String() string {
	switch k {
	case LinkKindVideo:
		return "video"
	case LinkKindPlaylist:
		return "playlist"
	}

	return "unknown"
}

const (
	LinkKindVideo LinkKind = iota
	LinkKindPlaylist
)

type Link struct {
	Kind LinkKind
	URL  string
}

// ParseLink accepts anything that mentions a YouTube host. It does not check
// that the URL is well-formed; yt-dlp reports that.
func ParseLink(u string) (Link, bool) {
	u = strings.TrimSpace(u)
	if !IsSupportedURL(u) {
		return Link{}, false //nolint:exhaustruct
	}

	if IsPlaylistURL(u) {
		return Link{Kind: LinkKindPlaylist, URL: u}, true
	}

	return Link{Kind: LinkKindVideo, URL: u}, true
}

func IsSupportedURL(u string) bool {
	return strings.Contains(u, "youtube.com") || strings.Contains(u, "youtu.be")
}

func IsPlaylistURL(u string) bool {
	return strings.Contains(u, "playlist") || strings.Contains(u, "list=")
}

func WatchURL(id string) string {
	return watchURLPrefix + url.QueryEscape(id)
}
