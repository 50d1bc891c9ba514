package formatter

import (
	"fmt"
	"strconv"

	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/desertthunder/s2yt/internal/tasks"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const cellWidth = 48

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// RenderPlaylistTable lists playlists with their track counts.
func RenderPlaylistTable(playlists []models.Playlist) string {
	rows := make([][]string, len(playlists))
	for i, pl := range playlists {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			shared.Truncate(pl.Name, cellWidth),
			pl.ID,
			strconv.Itoa(pl.TrackCount),
		}
	}
	return renderTable(
		[]string{"#", "Name", "ID", "Tracks"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	)
}

// RenderCandidateTable lists search results, marking the one the matcher accepted.
func RenderCandidateTable(candidates []models.CandidateTrack, result models.MatchResult) string {
	rows := make([][]string, len(candidates))
	for i, c := range candidates {
		mark := ""
		if result.Matched && c.TargetID == result.TargetID {
			mark = "✓ " + result.Tier.String()
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			shared.Truncate(c.Title, cellWidth),
			shared.Truncate(c.Artist, cellWidth/2),
			shared.Truncate(c.Album, cellWidth/2),
			shared.FormatDuration(c.Duration),
			c.TargetID,
			mark,
		}
	}
	return renderTable(
		[]string{"#", "Title", "Artist", "Album", "Length", "Video ID", "Match"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

// RenderMatchTable lists the per-track outcomes of a transfer.
func RenderMatchTable(result *tasks.CopyResult) string {
	rows := make([][]string, len(result.Outcomes))
	for i, o := range result.Outcomes {
		yt, _ := candidateFields(o)
		status := o.Status.String()
		if o.Duplicate {
			status += " (dup)"
		}
		rows[i] = []string{
			strconv.Itoa(o.Index + 1),
			shared.Truncate(o.Source.Title, cellWidth),
			shared.Truncate(o.Source.Artist, cellWidth/2),
			status,
			o.Match.Tier.String(),
			shared.Truncate(yt, cellWidth),
			o.Match.TargetID,
		}
	}
	return renderTable(
		[]string{"#", "Title", "Artist", "Status", "Tier", "YouTube", "Video ID"},
		rows,
		[]columnAlignment{alignRight},
	)
}

// RenderDiffTable lists the tracks missing from, and extra in, the destination playlist.
func RenderDiffTable(diff *tasks.DiffResult) string {
	rows := make([][]string, 0, len(diff.MissingInDest)+len(diff.ExtraInDest))
	for _, t := range diff.MissingInDest {
		rows = append(rows, []string{"missing", shared.Truncate(t.Title, cellWidth), t.Artist, ""})
	}
	for _, t := range diff.ExtraInDest {
		rows = append(rows, []string{"extra", shared.Truncate(t.Title, cellWidth), t.Artist, t.TargetID})
	}
	summary := fmt.Sprintf("%s vs %s: %d matched, %d missing, %d extra",
		diff.SourceName, diff.DestName, diff.MatchedCount, len(diff.MissingInDest), len(diff.ExtraInDest))
	if len(rows) == 0 {
		return summary
	}
	return renderTable([]string{"Side", "Title", "Artist", "Video ID"}, rows, nil) + "\n" + summary
}
