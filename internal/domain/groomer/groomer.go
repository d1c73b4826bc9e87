// Package groomer defines the player-controlled actor.
// This package is PURE and must NOT import any infrastructure packages.
package groomer

import (
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
)

// ID is the actor ID of the single Groomer in a match.
const ID = "groomer"

// Groomer is the player. It carries at most one pet.
type Groomer struct {
	ID        string        `json:"id"`
	Position  arena.Vec2    `json:"position"`
	Facing    arena.Vec2    `json:"facing"`
	BaseSpeed float64       `json:"base_speed"`
	Effects   *effect.State `json:"-"`

	carried string
}

// New places a Groomer at pos facing +Z.
func New(pos arena.Vec2, baseSpeed float64) *Groomer {
	return &Groomer{
		ID:        ID,
		Position:  pos,
		Facing:    arena.Vec2{Z: 1},
		BaseSpeed: baseSpeed,
		Effects:   effect.NewState(),
	}
}

// Carried returns the carried pet ID, or "".
func (g *Groomer) Carried() string { return g.carried }

// IsCarrying reports whether the carry slot is taken.
func (g *Groomer) IsCarrying() bool { return g.carried != "" }

// Carry fills the slot. It returns false if already carrying.
func (g *Groomer) Carry(petID string) bool {
	if g.carried != "" {
		return false
	}
	g.carried = petID
	return true
}

// Release empties the slot and returns what it held.
func (g *Groomer) Release() string {
	id := g.carried
	g.carried = ""
	return id
}
