// Package render formats outcomes as terminal tables.
package render

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/xeptore/panpup/youtube/types"
)

const maxTitleWidth = 60

func newWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	return tw
}

func Tracks(tracks []types.Track) string {
	tw := newWriter()
	tw.AppendHeader(table.Row{"#", "ID", "Title", "Duration"})
	for i, t := range tracks {
		tw.AppendRow(table.Row{i + 1, t.ID, t.Title, t.Duration})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{ //nolint:exhaustruct
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, WidthMax: maxTitleWidth, WidthMaxEnforcer: text.Trim},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	tw.AppendFooter(table.Row{"", "", "Total", strconv.Itoa(len(tracks))})

	return tw.Render()
}

// Downloads colors the status column only when colored is set.
func Downloads(outcome types.DownloadOutcome, colored bool) string {
	tw := newWriter()
	tw.AppendHeader(table.Row{"#", "ID", "Status", "File / Error"})
	for i, r := range outcome.Downloads {
		status, detail := "ok", r.File
		if !r.Success {
			status, detail = "failed", r.ErrorMessage()
		}
		if colored {
			status = statusColor(r.Success).Sprint(status)
		}
		tw.AppendRow(table.Row{i + 1, r.ID, status, detail})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{ //nolint:exhaustruct
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, WidthMax: maxTitleWidth, WidthMaxEnforcer: text.WrapSoft},
	})
	tw.AppendFooter(table.Row{"", "", "Succeeded", strconv.Itoa(outcome.Succeeded()) + "/" + strconv.Itoa(len(outcome.Downloads))})

	return tw.Render()
}

func statusColor(ok bool) text.Colors {
	if ok {
		return text.Colors{text.FgGreen}
	}

	return text.Colors{text.FgRed}
}
