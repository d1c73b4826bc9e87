package style

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestMeterWidth(t *testing.T) {
	cases := []struct {
		value, max, filled int
	}{
		{0, 800, 0},
		{400, 800, 10},
		{800, 800, 20},
		{1200, 800, 20},
		{-5, 800, 0},
	}
	for _, c := range cases {
		bar := Meter(c.value, c.max, 700, 20)
		if w := lipgloss.Width(bar); w != 20 {
			t.Errorf("Meter(%d) width = %d, want 20", c.value, w)
		}
		if got := strings.Count(bar, "█"); got != c.filled {
			t.Errorf("Meter(%d) filled = %d, want %d", c.value, got, c.filled)
		}
	}
	if Meter(1, 2, 0, 0) != "" {
		t.Error("zero width meter should be empty")
	}
}

func TestTableAlignsColumns(t *testing.T) {
	out := NewTable(
		Column{Name: "MATCH", Width: 8},
		Column{Name: "MISCHIEF", Width: 8, Align: AlignRight},
	).AddRow("m-1", "120").AddRow(Success.Render("m-22"), "7").Render()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), out)
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 2+8+1+8 {
			t.Errorf("line %d width = %d: %q", i, w, l)
		}
	}
	if !strings.HasSuffix(lines[3], "       7") {
		t.Errorf("right alignment lost: %q", lines[3])
	}
}
