// Package report renders stored run results for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"verifbench/internal/runner"
)

var (
	headerColor = lipgloss.Color("252")
	titleColor  = lipgloss.Color("33")
	failColor   = lipgloss.Color("196")
	passColor   = lipgloss.Color("40")
	dimColor    = lipgloss.Color("242")
)

// Render produces the model summary table for a run.
func Render(results runner.Results, noColor bool) string {
	var out strings.Builder

	title := fmt.Sprintf("Run %s — %d runs, %d scored, %d failed",
		results.RunID, results.Summary.RunsTotal, results.Summary.RunsScored, results.Summary.RunsFailed)
	out.WriteString(stylize(title, noColor, titleColor))
	out.WriteString("\n\n")

	rows := make([][]string, 0, len(results.Summary.Models)+1)
	rows = append(rows, []string{"MODEL", "CASES", "SCORED", "FAILED", "MEAN", "FULL"})
	for _, model := range results.Summary.Models {
		rows = append(rows, []string{
			model.Model,
			fmt.Sprintf("%d", model.Cases),
			fmt.Sprintf("%d", model.Scored),
			fmt.Sprintf("%d", model.Failed),
			fmt.Sprintf("%.1f", model.MeanScore),
			fmt.Sprintf("%d", model.FullCredit),
		})
	}
	widths := columnWidths(rows)
	for i, row := range rows {
		line := formatRow(row, widths)
		if i == 0 {
			line = stylize(line, noColor, headerColor)
		}
		out.WriteString(line)
		out.WriteString("\n")
	}
	return out.String()
}

// RenderRecords produces the per-record detail listing for a run.
func RenderRecords(results runner.Results, noColor bool) string {
	var out strings.Builder
	for _, record := range results.Records {
		line := fmt.Sprintf("%-12s %s/%s rounds=%d tools=%d tokens=%d",
			record.Status, record.Model, record.CaseID,
			record.Rounds, record.ToolCalls, record.Usage.Total())
		switch {
		case record.Error != "":
			line += " error=" + record.Error
			line = stylize(line, noColor, failColor)
		case record.Scored() && record.Score.TotalScore > 0:
			line += fmt.Sprintf(" score=%d", record.Score.TotalScore)
			line = stylize(line, noColor, passColor)
		case record.Scored():
			line += " score=0"
			line = stylize(line, noColor, dimColor)
		}
		out.WriteString(line)
		out.WriteString("\n")
	}
	return out.String()
}

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func columnWidths(rows [][]string) []int {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func formatRow(row []string, widths []int) string {
	parts := make([]string, len(row))
	for i, cell := range row {
		parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
