// Package rules contains the pure calculation logic for game mechanics.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"fmt"
	"math"

	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
)

// Roller yields uniform samples in [0,1). *rand.Rand satisfies it.
type Roller interface {
	Float64() float64
}

// Chance rolls once and reports success with probability p.
func Chance(r Roller, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Float64() < p
}

// StruggleChance is the per-roll escape probability of a held pet. Every
// completed grooming step lowers it by reduction, never below zero.
func StruggleChance(base float64, completedSteps int, reduction float64) float64 {
	return math.Max(0, base-float64(completedSteps)*reduction)
}

// AlertLevel is the mischief value at which the alert state starts.
func AlertLevel(threshold, offset int) int {
	return threshold - offset
}

// IsAlert reports whether value sits at or above the alert level.
func IsAlert(value, threshold, offset int) bool {
	return value >= AlertLevel(threshold, offset)
}

// Knockback is the impulse a pet applies to the Groomer on contact. Contact
// speed scales it linearly, so a heavier profile always pushes harder for the
// same contact.
func Knockback(p pet.Profile, normal arena.Vec2, contactSpeed float64) arena.Vec2 {
	scale := p.KnockbackForce * math.Max(1, contactSpeed)
	dir := normal.Normalize()
	if dir.IsZero() {
		dir = arena.Vec2{X: 1}
	}
	return dir.Scale(scale)
}

// GroomerSpeed is the Groomer's effective speed: base speed scaled by effects,
// then by the alert bonus when alert is active.
func GroomerSpeed(base, effectMultiplier float64, alert bool, bonus float64) float64 {
	speed := base * effectMultiplier
	if alert {
		speed *= 1 + bonus
	}
	return speed
}

// EscapePosition places an escaping pet exactly dist away from the Groomer,
// along the Groomer-to-pet direction (+X when they coincide).
func EscapePosition(groomerPos, petPos arena.Vec2, dist float64) arena.Vec2 {
	dir := petPos.Sub(groomerPos).Normalize()
	if dir.IsZero() {
		dir = arena.Vec2{X: 1}
	}
	return groomerPos.Add(dir.Scale(dist))
}

// AwayFrom returns the point dist away from threat, through pos.
func AwayFrom(threat, pos arena.Vec2, dist float64) arena.Vec2 {
	dir := pos.Sub(threat).Normalize()
	if dir.IsZero() {
		dir = arena.Vec2{X: 1}
	}
	return pos.Add(dir.Scale(dist))
}

// FormatClock renders seconds as MM:SS, rounding partial seconds up so the HUD
// shows 00:00 only once time is really out.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(math.Ceil(seconds - 1e-9))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
