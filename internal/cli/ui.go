package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/cost"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/layout"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors, sprinklers
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for failure details.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
	styleTableNumber = styleTableCell.Foreground(colorCyan).Align(lipgloss.Right)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(label, path string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(18)
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + keyStyle.Render(label) + StyleValue.Render(path))
}

// =============================================================================
// Tables
// =============================================================================

// roomsTable renders the rooms of l with their areas.
func roomsTable(l layout.Layout) string {
	rows := make([][]string, 0, len(l.Rooms))
	for _, r := range l.Rooms {
		rows = append(rows, []string{
			r.Name,
			mm(r.Width),
			mm(r.Height),
			strconv.FormatFloat(r.AreaM2(), 'f', 2, 64),
		})
	}
	return newTable([]string{"Room", "Width (mm)", "Height (mm)", "Area (m²)"}, rows).Render()
}

// costTable renders a cost summary.
func costTable(s cost.Summary) string {
	money := func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64) + " " + s.Currency
	}
	rows := [][]string{
		{"Total area", strconv.FormatFloat(s.TotalAreaM2, 'f', 2, 64) + " m²"},
		{"Sprinklers", strconv.Itoa(s.TotalSprinklers)},
		{"Sprinkler unit cost", money(s.SprinklerUnitCost)},
		{"Area unit cost", money(s.AreaUnitCost) + "/m²"},
		{"Estimated cost", money(s.EstimatedCost)},
	}
	return newTable([]string{"Item", "Value"}, rows).Render()
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleTableHeader
			case col > 0:
				return styleTableNumber
			}
			return styleTableCell
		})
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
