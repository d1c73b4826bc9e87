// Package style provides consistent terminal styling using Lipgloss.
package style

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPass   = lipgloss.AdaptiveColor{Light: "#6cbf43", Dark: "#aad94c"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#fa8d3e", Dark: "#ffb454"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#e65050", Dark: "#f07178"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7380"}
	colorCat    = lipgloss.AdaptiveColor{Light: "#a37acc", Dark: "#d2a6ff"}
	colorDog    = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#e6b450"}
)

var (
	// Success style for positive outcomes (green)
	Success = lipgloss.NewStyle().
		Foreground(colorPass).
		Bold(true)

	// Warning style for cautionary messages (yellow)
	Warning = lipgloss.NewStyle().
		Foreground(colorWarn).
		Bold(true)

	// Error style for failures (red)
	Error = lipgloss.NewStyle().
		Foreground(colorFail).
		Bold(true)

	// Info style for informational messages (blue)
	Info = lipgloss.NewStyle().
		Foreground(colorAccent)

	// Dim style for secondary information (gray)
	Dim = lipgloss.NewStyle().
		Foreground(colorMuted)

	Bold = lipgloss.NewStyle().
		Bold(true)

	Groomer = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	Cat     = lipgloss.NewStyle().Foreground(colorCat)
	Dog     = lipgloss.NewStyle().Foreground(colorDog)

	SuccessPrefix = Success.Render("✓")
	WarningPrefix = Warning.Render("⚠")
	ErrorPrefix   = Error.Render("✗")
	ArrowPrefix   = Info.Render("→")
)

// PrintWarning prints a warning message with consistent formatting.
// The format and args work like fmt.Printf.
func PrintWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("%s %s\n", Warning.Render("⚠ Warning:"), msg)
}

// Result renders a match outcome: green for the Groomer, red for the pets.
func Result(phase string) string {
	switch phase {
	case "GroomerWin":
		return Success.Render(phase)
	case "PetWin":
		return Error.Render(phase)
	case "":
		return Dim.Render("-")
	default:
		return Warning.Render(phase)
	}
}

// PetType colours a pet ID or label by its type.
func PetType(kind, text string) string {
	switch kind {
	case "cat":
		return Cat.Render(text)
	case "dog":
		return Dog.Render(text)
	}
	return text
}

// Meter renders a filled bar of width cells for value out of max. It turns
// yellow from warnAt and red when full.
func Meter(value, max, warnAt, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if max > 0 {
		filled = value * width / max
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case max > 0 && value >= max:
		return Error.Render(bar)
	case warnAt > 0 && value >= warnAt:
		return Warning.Render(bar)
	default:
		return Success.Render(bar)
	}
}
