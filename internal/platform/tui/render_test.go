package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/vovakirdan/tui-dungeon/internal/core"
)

func TestRowRunsSplitOnEitherColor(t *testing.T) {
	s := core.NewScreen(8, 1)
	s.FillRect(core.NewRect(0, 0, 8, 1), core.Cell{Rune: '.', Color: core.ColorDarkGray})
	s.Shade(core.NewRect(2, 0, 3, 1), core.ColorShadow)
	s.Tint(core.NewRect(3, 0, 1, 1), core.ColorRed)

	got := rowRuns(s, 0)
	expected := []cellRun{
		{fg: core.ColorDarkGray, bg: core.ColorDefault, text: ".."},
		{fg: core.ColorDarkGray, bg: core.ColorShadow, text: "."},
		{fg: core.ColorRed, bg: core.ColorShadow, text: "."},
		{fg: core.ColorDarkGray, bg: core.ColorShadow, text: "."},
		{fg: core.ColorDarkGray, bg: core.ColorDefault, text: "..."},
	}
	if len(got) != len(expected) {
		t.Fatalf("rowRuns() = %+v, expected %+v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("run %d = %+v, expected %+v", i, got[i], expected[i])
		}
	}
}

func TestRenderScreenText(t *testing.T) {
	s := core.NewScreen(6, 3)
	s.DrawTextColor(0, 0, "HP", core.ColorWhite)
	s.FillRect(core.NewRect(2, 0, 3, 1), core.Cell{Rune: ' ', Bg: core.ColorRed})
	s.Blit(1, 2, core.Cell{Rune: '@', Color: core.ColorBrightYellow, Bg: core.ColorShadow})

	got := ansi.Strip(RenderScreen(s))
	expected := strings.Join([]string{"HP    ", "      ", " @    "}, "\n")
	if got != expected {
		t.Errorf("RenderScreen() = %q, expected %q", got, expected)
	}
}

func TestCellStyleOutOfPalette(t *testing.T) {
	st := cellStyle(core.Color(core.NumColors+3), core.Color(200))
	if got := st.Render("x"); ansi.Strip(got) != "x" {
		t.Errorf("Render() = %q, expected plain x", got)
	}
}
