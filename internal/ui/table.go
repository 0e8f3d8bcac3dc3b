package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table Styles
var (
	TableHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorAccent).
		Align(lipgloss.Center)

	TableWarningStyle = lipgloss.NewStyle().
		Foreground(ColorWarn)

	TableSuccessStyle = lipgloss.NewStyle().
		Foreground(ColorPass)

	TableHintStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	TableBorderStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
)

// NewSearchTable creates a new table with default search styling
func NewSearchTable(width int) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(TableBorderStyle).
		Width(width)
}

// RecallRow is the subset of a recall result rendered in a table row.
type RecallRow struct {
	ID         string
	Problem    string
	Similarity float64
	Score      float64
	BoostTag   string
}

// RenderRecallTable renders recall results as a bordered table, truncating
// the problem column to keep rows on one line in narrow terminals.
func RenderRecallTable(rows []RecallRow, width int) string {
	t := NewSearchTable(width).
		Headers("ID", "PROBLEM", "SIM", "SCORE", "BOOST").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return lipgloss.NewStyle()
		})

	for _, r := range rows {
		problem := r.Problem
		if len(problem) > 60 {
			problem = problem[:57] + "..."
		}
		t.Row(r.ID, problem,
			fmt.Sprintf("%.2f", r.Similarity),
			fmt.Sprintf("%.2f", r.Score),
			r.BoostTag,
		)
	}
	return t.Render()
}
