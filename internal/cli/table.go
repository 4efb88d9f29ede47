package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const tablePadding = 2

// cellWidth measures a cell without its escape sequences.
func cellWidth(cell string) int {
	return runewidth.StringWidth(ansi.Strip(cell))
}

// writeTable prints rows under headers in left-aligned columns.
func writeTable(out io.Writer, headers []string, rows [][]string) error {
	all := append([][]string{headers}, rows...)
	if len(headers) == 0 {
		all = rows
	}
	var widths []int
	for _, row := range all {
		for idx, cell := range row {
			if idx == len(widths) {
				widths = append(widths, 0)
			}
			widths[idx] = max(widths[idx], cellWidth(cell))
		}
	}
	if len(widths) == 0 {
		return nil
	}

	var b strings.Builder
	for _, row := range all {
		for idx := range widths {
			cell := ""
			if idx < len(row) {
				cell = row[idx]
			}
			b.WriteString(cell)
			if idx < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", widths[idx]-cellWidth(cell)+tablePadding))
			}
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func formatYesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
