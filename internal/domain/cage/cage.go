// Package cage defines the temporary holding cage for pets.
// This package is PURE and must NOT import any infrastructure packages.
package cage

import (
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/clock"
)

// Cage holds at most one pet for a limited time.
type Cage struct {
	ID       string          `json:"id"`
	Position arena.Vec2      `json:"position"`
	Occupant string          `json:"occupant"` // Pet ID, empty when free
	Timer    clock.Countdown `json:"timer"`

	warningTime float64
	warned      bool
}

// NewCage creates an empty cage.
func NewCage(id string, pos arena.Vec2, maxStorage, warningTime float64) *Cage {
	return &Cage{
		ID:          id,
		Position:    pos,
		Timer:       clock.Countdown{Duration: maxStorage},
		warningTime: warningTime,
	}
}

// CanStore reports whether the cage is empty.
func (c *Cage) CanStore() bool {
	return c.Occupant == ""
}

// Store puts a pet in the cage and starts the storage timer.
// Returns false if the cage is occupied.
func (c *Cage) Store(petID string) bool {
	if !c.CanStore() || petID == "" {
		return false
	}
	c.Occupant = petID
	c.Timer.Reset()
	c.warned = false
	return true
}

// Tick advances the storage timer. warn is true once when the remaining time
// first drops to the warning time; expired is true when the pet must be released.
func (c *Cage) Tick(dt float64) (warn, expired bool) {
	if c.Occupant == "" {
		return false, false
	}
	expired = c.Timer.Tick(dt)
	if !c.warned && c.Timer.Remaining <= c.warningTime+clock.Epsilon {
		c.warned = true
		warn = true
	}
	return warn, expired
}

// Release empties the cage and returns the former occupant.
func (c *Cage) Release() string {
	id := c.Occupant
	c.Occupant = ""
	c.Timer.Clear()
	c.warned = false
	return id
}

// Warned reports whether the warning already fired for the current occupant.
func (c *Cage) Warned() bool {
	return c.warned
}
