// package formatter renders transfer results as reports (JSON, CSV, Markdown, plain text) and terminal tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/desertthunder/s2yt/internal/tasks"
)

// Report formats accepted by [WriteReport].
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// ParseFormat normalizes a format name. "md" and "text" are accepted as aliases.
func ParseFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatText, "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}
}

// FormatFromPath picks a report format from a file extension, defaulting to JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt":
		return FormatText
	default:
		return FormatJSON
	}
}

func candidateFields(o tasks.TrackOutcome) (title, artist string) {
	if c := o.Match.Candidate; c != nil {
		return c.Title, c.Artist
	}
	return "", ""
}

// ReportToCSV writes one row per track: Index, Status, Tier, Title, Artist, Album, YouTube ID, YouTube Title,
// YouTube Artist, Duplicate, Error.
func ReportToCSV(result *tasks.CopyResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "Status", "Tier", "Title", "Artist", "Album", "YouTube ID", "YouTube Title", "YouTube Artist", "Duplicate", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, o := range result.Outcomes {
		ytTitle, ytArtist := candidateFields(o)
		record := []string{
			strconv.Itoa(o.Index + 1),
			o.Status.String(),
			o.Match.Tier.String(),
			o.Source.Title,
			o.Source.Artist,
			o.Source.Album,
			o.Match.TargetID,
			ytTitle,
			ytArtist,
			strconv.FormatBool(o.Duplicate),
			o.ErrText(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func title(result *tasks.CopyResult) string {
	dest := result.Destination.String()
	if result.PlaylistName != "" {
		dest = result.PlaylistName
	}
	if result.Source == "" {
		return "Transfer to " + dest
	}
	return fmt.Sprintf("%s → %s", result.Source, dest)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ReportToMarkdown renders a summary followed by a track table.
func ReportToMarkdown(result *tasks.CopyResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title(result))
	fmt.Fprintf(&buf, "**Summary**: %s\n\n", result.Summary())
	fmt.Fprintf(&buf, "**Strategy**: %s\n", result.Strategy)
	if result.DryRun {
		buf.WriteString("**Dry run**: yes\n")
	}
	if result.Skipped > 0 {
		fmt.Fprintf(&buf, "**Skipped entries**: %d\n", result.Skipped)
	}
	buf.WriteString("\n## Tracks\n\n")
	buf.WriteString("| # | Track | Status | Tier | YouTube |\n")
	buf.WriteString("|---|-------|--------|------|---------|\n")

	for _, o := range result.Outcomes {
		yt := o.Match.TargetID
		if ytTitle, _ := candidateFields(o); ytTitle != "" {
			yt = fmt.Sprintf("%s (%s)", ytTitle, o.Match.TargetID)
		}
		status := o.Status.String()
		if o.Duplicate {
			status += " (duplicate)"
		}
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s |\n",
			o.Index+1, escapeCell(o.Source.String()), status, o.Match.Tier, escapeCell(yt))
	}

	if len(result.Missing) > 0 {
		buf.WriteString("\n## Missing after verify\n\n")
		for _, id := range result.Missing {
			fmt.Fprintf(&buf, "- %s\n", id)
		}
	}
	return buf.Bytes(), nil
}

// ReportToText renders one line per track and the summary.
func ReportToText(result *tasks.CopyResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", title(result))
	fmt.Fprintf(&buf, "Strategy: %s\n\n", result.Strategy)

	for _, o := range result.Outcomes {
		line := fmt.Sprintf("%d. [%s] %s", o.Index+1, o.Status, o.Source)
		switch {
		case o.Match.Matched:
			line += fmt.Sprintf(" → %s (%s)", o.Match.TargetID, o.Match.Tier)
		case o.Err != nil:
			line += ": " + o.ErrText()
		}
		if o.Duplicate {
			line += " (duplicate)"
		}
		buf.WriteString(line + "\n")
	}

	fmt.Fprintf(&buf, "\n%s\n", result.Summary())
	return buf.Bytes(), nil
}

// ReportToJSON renders result as indented JSON.
func ReportToJSON(result *tasks.CopyResult) ([]byte, error) {
	return shared.MarshalJSON(result, true)
}

// WriteReport writes result to w in format.
func WriteReport(w io.Writer, result *tasks.CopyResult, format string) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatCSV:
		data, err = ReportToCSV(result)
	case FormatMarkdown:
		data, err = ReportToMarkdown(result)
	case FormatText:
		data, err = ReportToText(result)
	default:
		data, err = ReportToJSON(result)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteReportFile writes result to path. An empty format is taken from the path's extension.
func WriteReportFile(path string, result *tasks.CopyResult, format string) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	return WriteReport(f, result, format)
}
