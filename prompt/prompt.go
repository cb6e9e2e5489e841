package prompt

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/mattn/go-isatty"

	"github.com/xeptore/panpup/youtube/types"
)

var ErrCanceled = errors.New("selection canceled")

const pageSize = 15

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Options lists tracks the way they are shown in the selection prompt.
func Options(tracks []types.Track) []string {
	opts := make([]string, 0, len(tracks))
	for _, t := range tracks {
		opts = append(opts, fmt.Sprintf("%s [%s]", t.Title, t.Duration))
	}

	return opts
}

// SelectedIDs maps prompt answers back to track ids, preserving the order of
// tracks.
func SelectedIDs(tracks []types.Track, indexes []int) []string {
	picked := make(map[int]struct{}, len(indexes))
	for _, i := range indexes {
		picked[i] = struct{}{}
	}

	ids := make([]string, 0, len(indexes))
	for i, t := range tracks {
		if _, ok := picked[i]; ok {
			ids = append(ids, t.ID)
		}
	}

	return ids
}

// SelectTracks asks which tracks to download. Every track is preselected.
func SelectTracks(tracks []types.Track) ([]string, error) {
	if !IsInteractive() {
		return nil, syscall.ENOTTY
	}

	opts := Options(tracks)
	q := &survey.MultiSelect{ //nolint:exhaustruct
		Message:  "Select tracks to download:",
		Options:  opts,
		Default:  opts,
		PageSize: pageSize,
	}
	askOpts := []survey.AskOpt{
		survey.WithValidator(survey.MinItems(1)),
		survey.WithStdio(os.Stdin, os.Stdout, os.Stderr),
	}

	var indexes []int
	if err := survey.AskOne(q, &indexes, askOpts...); nil != err {
		if errors.Is(err, terminal.InterruptErr) {
			return nil, ErrCanceled
		}

		return nil, fmt.Errorf("failed to ask for tracks: %v", err)
	}

	return SelectedIDs(tracks, indexes), nil
}
