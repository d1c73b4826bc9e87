package matchview

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/style"
)

const (
	gridCols   = 41
	gridRows   = 21
	meterWidth = 30
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("9"))
)

// renderView renders the entire view.
func (m Model) renderView() string {
	var b strings.Builder
	hud := m.snap.HUD

	id := m.snap.MatchID
	if len(id) > 8 {
		id = id[:8]
	}
	b.WriteString(headerStyle.Render("Pet Grooming"))
	b.WriteString(style.Dim.Render(fmt.Sprintf("  %s  match %s  x%d", m.snap.Mode, id, m.speed)))
	if m.paused {
		b.WriteString("  " + style.Warning.Render("PAUSED"))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s  %s %s %d/%d",
		style.Bold.Render(hud.Timer),
		"Mischief",
		style.Meter(hud.Mischief, hud.MischiefMax, alertAt(m.runner.Engine().Config(), hud.MischiefMax), meterWidth),
		hud.Mischief, hud.MischiefMax))
	if hud.Alert {
		b.WriteString("  " + alertStyle.Render(" ALERT "))
	}
	b.WriteString(fmt.Sprintf("  pets left %d\n", hud.RemainingPets))

	b.WriteString(panelStyle.Render(m.renderGrid()))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	for _, line := range m.log {
		b.WriteString(style.Dim.Render(line))
		b.WriteString("\n")
	}

	if m.result != nil {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s %s after %.1fs (%s)\n",
			style.ArrowPrefix, style.Result(string(m.result.Phase)), m.result.Elapsed, m.result.Reason))
	}
	if m.err != nil {
		b.WriteString(style.Error.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return b.String()
}

func alertAt(cfg *config.Config, threshold int) int {
	return threshold - cfg.Mischief.AlertOffset
}

func (m Model) renderStatus() string {
	hud := m.snap.HUD
	var parts []string
	if hud.Carrying != "" {
		parts = append(parts, "carrying "+hud.Carrying)
	}
	if hud.StepsRequired > 0 {
		parts = append(parts, fmt.Sprintf("grooming %d/%d next %s", hud.StepsDone, hud.StepsRequired, hud.GroomingStep))
	}
	if hud.CageOccupant != "" {
		parts = append(parts, fmt.Sprintf("cage %s %.0fs", hud.CageOccupant, hud.CageTime))
	}
	if hud.Distracted {
		parts = append(parts, style.Warning.Render("distracted"))
	}
	cds := make([]string, len(hud.Cooldowns))
	for i, cd := range hud.Cooldowns {
		if cd <= 0 {
			cds[i] = style.Success.Render("ready")
		} else {
			cds[i] = fmt.Sprintf("%.1fs", cd)
		}
	}
	parts = append(parts, "skills ["+strings.Join(cds, " ")+"]")
	return strings.Join(parts, "  ")
}

// renderGrid draws the arena top-down, +Z at the top.
func (m Model) renderGrid() string {
	cfg := m.runner.Engine().Config()
	grid := make([][]string, gridRows)
	for r := range grid {
		grid[r] = make([]string, gridCols)
		for c := range grid[r] {
			grid[r][c] = style.Dim.Render("·")
		}
	}
	put := func(pos arena.Vec2, glyph string) {
		r, c := cell(cfg, pos)
		grid[r][c] = glyph
	}

	for _, st := range m.snap.Stations {
		put(st.Position, style.Info.Render("S"))
	}
	put(m.snap.Cage, style.Bold.Render("#"))
	for _, n := range m.snap.Nets {
		put(n, style.Warning.Render("*"))
	}
	for _, p := range m.snap.Pets {
		glyph := "c"
		if p.Type == pet.TypeDog {
			glyph = "d"
		}
		switch {
		case p.Opacity < 1:
			put(p.Position, style.Dim.Render(glyph))
		case p.State == pet.StateFleeing:
			put(p.Position, style.PetType(string(p.Type), strings.ToUpper(glyph)))
		default:
			put(p.Position, style.PetType(string(p.Type), glyph))
		}
	}
	if m.snap.Groomer != nil {
		put(m.snap.Groomer.Position, style.Groomer.Render("G"))
	}

	lines := make([]string, gridRows)
	for r := range grid {
		lines[r] = strings.Join(grid[r], "")
	}
	return strings.Join(lines, "\n")
}

// cell maps an arena position to a grid row and column, clamped.
func cell(cfg *config.Config, pos arena.Vec2) (int, int) {
	minX, maxX := cfg.Arena.Min.X, cfg.Arena.Max.X
	minZ, maxZ := cfg.Arena.Min.Z, cfg.Arena.Max.Z
	c := int(math.Round((pos.X - minX) / (maxX - minX) * (gridCols - 1)))
	r := int(math.Round((maxZ - pos.Z) / (maxZ - minZ) * (gridRows - 1)))
	return clamp(r, gridRows-1), clamp(c, gridCols-1)
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
