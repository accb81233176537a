// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/quizdrill/internal/model"
)

// column is one field of the history table.
type column struct {
	title string
	right bool
	// max caps the cell in display columns; 0 leaves it whole.
	max  int
	cell func(model.SessionRecord) string
}

func sessionColumns(bankWidth int) []column {
	return []column{
		{title: "Finished", cell: func(s model.SessionRecord) string {
			return s.EndedAt.Local().Format("2006-01-02 15:04")
		}},
		{title: "Bank", max: bankWidth, cell: func(s model.SessionRecord) string {
			return filepath.Base(s.SourcePath)
		}},
		{title: "Mode", cell: func(s model.SessionRecord) string {
			return s.Mode
		}},
		{title: "Correct", right: true, cell: func(s model.SessionRecord) string {
			return fmt.Sprintf("%d/%d", s.Correct, s.Total)
		}},
		{title: "Accuracy", right: true, cell: func(s model.SessionRecord) string {
			return fmt.Sprintf("%.1f%%", s.Accuracy)
		}},
	}
}

// sessionTable renders a header line and one line per session. Columns are
// as wide as their widest cell and separated by one space.
func sessionTable(cols []column, sessions []model.SessionRecord) []string {
	if len(cols) == 0 {
		return nil
	}
	grid := make([][]string, 0, len(sessions)+1)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
	}
	grid = append(grid, header)
	for _, s := range sessions {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = truncateCell(c.cell(s), c.max)
		}
		grid = append(grid, row)
	}

	widths := make([]int, len(cols))
	for _, row := range grid {
		for i, cell := range row {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	lines := make([]string, len(grid))
	for n, row := range grid {
		var b strings.Builder
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			gap := strings.Repeat(" ", widths[i]-displayWidth(cell))
			if cols[i].right {
				b.WriteString(gap + cell)
			} else {
				b.WriteString(cell + gap)
			}
		}
		lines[n] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

// truncateCell shortens a cell to limit display columns. limit <= 0 keeps it whole.
func truncateCell(value string, limit int) string {
	if limit <= 0 || displayWidth(value) <= limit {
		return value
	}
	return runewidth.Truncate(value, limit, "…")
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
