package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/macroroute/pkg/edge"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/pipeline"
	"github.com/matzehuels/macroroute/pkg/placement"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(14)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

func printDetail(format string, args ...any) {
	fmt.Println("  " + styleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + styleDim.Render(iconArrow) + " " + styleValue.Render(path))
}

func printKeyValue(key string, value any) {
	fmt.Println("  " + styleKey.Render(key) + " " + styleNumber.Render(fmt.Sprint(value)))
}

// =============================================================================
// Result Display
// =============================================================================

// printResult prints the summary of a job run.
func printResult(name string, res *pipeline.Result) {
	status := styleComputed.Render(iconFresh)
	if res.CacheHit {
		status = styleCached.Render(iconCached)
	}
	printSuccess("%s %s", styleTitle.Render(name), status)
	printDetail("run %s", res.RunID)
	printKeyValue("pins", res.Stats.Pins)
	printKeyValue("placed", res.Stats.Placed)
	if res.Stats.Displaced > 0 {
		printKeyValue("displaced", res.Stats.Displaced)
	}
	for _, n := range res.Supply {
		printKeyValue(n.Net+" pairs", len(n.Pairs))
	}
	if res.Stats.MoatExits > 0 {
		printKeyValue("moat exits", res.Stats.MoatExits)
	}
	printKeyValue("paths", res.Stats.Paths)
	printKeyValue("vias", res.Stats.Vias)
	if len(res.Unclassified) > 0 {
		printWarning("unclassified: %s", strings.Join(res.Unclassified, ", "))
	}
}

// formatPlacements renders placements grouped by edge, one line each.
func formatPlacements(pls []placement.Placement) string {
	var b strings.Builder
	for _, e := range edge.All {
		var lines []string
		for _, p := range pls {
			if p.Edge != e {
				continue
			}
			line := fmt.Sprintf("  %-16s %-8s %s", p.Source.Name, p.Role, p.Center)
			if p.Displacement != 0 {
				line += fmt.Sprintf("  moved %.3f", geom.Round3(p.Displacement))
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%d)\n", e, len(lines))
		for _, l := range lines {
			b.WriteString(l + "\n")
		}
	}
	return b.String()
}
