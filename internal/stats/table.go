package stats

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderTable lays out rows under headers; columns in rightAlign are right aligned.
func renderTable(headers []string, rows [][]string, rightAlign map[int]bool) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := tableCellStyle
			if row == table.HeaderRow {
				style = tableHeaderStyle
			}
			if rightAlign[col] {
				return style.Align(lipgloss.Right)
			}
			return style.Align(lipgloss.Left)
		})
	return t.String()
}
