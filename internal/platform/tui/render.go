package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vovakirdan/tui-dungeon/internal/core"
)

// palette maps core.Color to ANSI 256-color codes. ColorDefault is empty:
// the terminal's own color is used.
var palette = [core.NumColors]lipgloss.Color{
	core.ColorRed:           "1",
	core.ColorGreen:         "2",
	core.ColorYellow:        "3",
	core.ColorBlue:          "4",
	core.ColorMagenta:       "5",
	core.ColorCyan:          "6",
	core.ColorWhite:         "7",
	core.ColorBrightRed:     "9",
	core.ColorBrightGreen:   "10",
	core.ColorBrightYellow:  "11",
	core.ColorBrightBlue:    "12",
	core.ColorBrightMagenta: "13",
	core.ColorBrightCyan:    "14",
	core.ColorBrightWhite:   "15",
	core.ColorOrange:        "208",
	core.ColorGray:          "245",
	core.ColorDarkGray:      "238",
	core.ColorShadow:        "235",
}

// cellStyles holds one style per foreground/background pair. It is filled
// once and only read afterwards, so SSH sessions can render concurrently.
var cellStyles = func() (t [core.NumColors][core.NumColors]lipgloss.Style) {
	for fg := range core.NumColors {
		for bg := range core.NumColors {
			st := lipgloss.NewStyle()
			if c := palette[fg]; c != "" {
				st = st.Foreground(c)
			}
			if c := palette[bg]; c != "" {
				st = st.Background(c)
			}
			t[fg][bg] = st
		}
	}
	return t
}()

func cellStyle(fg, bg core.Color) lipgloss.Style {
	if int(fg) >= core.NumColors {
		fg = core.ColorDefault
	}
	if int(bg) >= core.NumColors {
		bg = core.ColorDefault
	}
	return cellStyles[fg][bg]
}

// cellRun is a span of adjacent cells sharing both colors.
type cellRun struct {
	fg, bg core.Color
	text   string
}

// rowRuns splits row y into runs of equal colors.
func rowRuns(s *core.Screen, y int) []cellRun {
	var runs []cellRun
	var text strings.Builder
	x := 0
	for x < s.Width() {
		start := s.GetCell(x, y)
		text.Reset()
		for x < s.Width() {
			c := s.GetCell(x, y)
			if c.Color != start.Color || c.Bg != start.Bg {
				break
			}
			text.WriteRune(c.Rune)
			x++
		}
		runs = append(runs, cellRun{fg: start.Color, bg: start.Bg, text: text.String()})
	}
	return runs
}

// RenderScreen converts a Screen buffer to a styled string for display,
// one style per run of equal colors.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for _, r := range rowRuns(s, y) {
			sb.WriteString(cellStyle(r.fg, r.bg).Render(r.text))
		}
	}
	return sb.String()
}
