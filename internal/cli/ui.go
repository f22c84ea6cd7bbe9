package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/starbridge/pkg/consistency"
	"github.com/matzehuels/starbridge/pkg/pipeline"
)

// uiOut receives report output. Logs go to the logger's writer instead.
var uiOut io.Writer = os.Stdout

// =============================================================================
// Palette and Styles
// =============================================================================

var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for distances and counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorTeal)

	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)

	// StyleError for failed checks.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed    = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(22)
)

// statusIcon is a leading glyph with its colour.
type statusIcon struct {
	glyph string
	style lipgloss.Style
}

var (
	iconSuccess = statusIcon{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	iconError   = statusIcon{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	iconWarning = statusIcon{"!", lipgloss.NewStyle().Foreground(colorAmber)}
	iconInfo    = statusIcon{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

const (
	glyphArrow  = "→"
	labelCached = "cached"
	labelFresh  = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func status(icon statusIcon, msg string) {
	fmt.Fprintln(uiOut, icon.style.Render(icon.glyph)+" "+msg)
}

func printSuccess(format string, args ...any) { status(iconSuccess, fmt.Sprintf(format, args...)) }

func printError(format string, args ...any) { status(iconError, fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	status(iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) { status(iconInfo, fmt.Sprintf(format, args...)) }

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written file.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(glyphArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(uiOut, "  "+styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(uiOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Report Output
// =============================================================================

// printFigureStats prints figure statistics on a single line.
func printFigureStats(s pipeline.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d commands", s.Commands),
		fmt.Sprintf("%d traces", s.Traces),
		fmt.Sprintf("%d elements", s.Elements),
		string(s.Mode),
	}
	label := styleComputed.Render(labelFresh)
	if cached {
		label = styleCached.Render(labelCached)
	}
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(strings.Join(parts, " · ")+" · ")+label)
}

// printCompare prints the outcome of a raster comparison.
func printCompare(r consistency.Result) {
	distance := StyleNumber.Render(fmt.Sprintf("%.4f", r.Distance))
	tolerance := fmt.Sprintf("%.4f", r.Tolerance)
	if r.Passed {
		printSuccess("%s distance %s within tolerance %s", r.Mode, distance, tolerance)
		return
	}
	printError("%s distance %s exceeds tolerance %s", r.Mode, StyleError.Render(fmt.Sprintf("%.4f", r.Distance)), tolerance)
}

// printCounts prints per-group counts sorted by group.
func printCounts(counts map[string]int) {
	groups := make([]string, 0, len(counts))
	for g := range counts {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	for _, g := range groups {
		printKeyValue(g, fmt.Sprintf("%d", counts[g]))
	}
}

// printMismatches prints per-group count differences.
func printMismatches(label string, ms []consistency.Mismatch) {
	if len(ms) == 0 {
		printSuccess("%s: all groups match", label)
		return
	}
	printError("%s: %d group(s) differ", label, len(ms))
	for _, m := range ms {
		printKeyValue(m.Group, fmt.Sprintf("%d vs %d", m.Recorded, m.Expected))
	}
}
