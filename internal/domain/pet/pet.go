// Package pet defines the AI-controlled actors the Groomer chases.
// This package is PURE and must NOT import any infrastructure packages.
package pet

import (
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
)

// Type is a data tag selecting a Profile.
type Type string

const (
	TypeCat Type = "cat"
	TypeDog Type = "dog"
)

// State is the behavior state of a pet. A pet is in exactly one at a time.
type State string

const (
	StateIdle         State = "Idle"
	StateWandering    State = "Wandering"
	StateFleeing      State = "Fleeing"
	StateCaptured     State = "Captured"
	StateBeingGroomed State = "BeingGroomed"
	StateCaged        State = "Caged"
)

// IsMovement reports whether s is a free-roaming state a cage release can restore.
func (s State) IsMovement() bool {
	return s == StateIdle || s == StateWandering || s == StateFleeing
}

// Profile is the per-type tuning of a pet.
type Profile struct {
	CollisionRadius  float64 `json:"collision_radius"`
	BaseEscapeChance float64 `json:"base_escape_chance"`
	KnockbackForce   float64 `json:"knockback_force"`
	LeashBreakChance float64 `json:"leash_break_chance"`
	MoveSpeed        float64 `json:"move_speed"`
	FleeSpeed        float64 `json:"flee_speed"`
}

// Pet is one AI-controlled actor.
type Pet struct {
	ID       string     `json:"id"`
	Type     Type       `json:"type"`
	Profile  Profile    `json:"profile"`
	Position arena.Vec2 `json:"position"`
	Moving   bool       `json:"moving"`

	IsGroomed bool `json:"is_groomed"`

	// GroomSteps counts grooming steps completed in the current session.
	GroomSteps int `json:"groom_steps"`

	Effects *effect.State `json:"-"`

	state        State
	lastMovement State
}

// New creates a pet in the Idle state.
func New(id string, typ Type, profile Profile, pos arena.Vec2) *Pet {
	return &Pet{
		ID:           id,
		Type:         typ,
		Profile:      profile,
		Position:     pos,
		Effects:      effect.NewState(),
		state:        StateIdle,
		lastMovement: StateIdle,
	}
}

// State returns the current behavior state.
func (p *Pet) State() State { return p.state }

// LastMovement returns the most recent free-roaming state.
func (p *Pet) LastMovement() State { return p.lastMovement }

// SetState changes state and returns the previous one.
func (p *Pet) SetState(s State) State {
	prev := p.state
	p.state = s
	if s.IsMovement() {
		p.lastMovement = s
	}
	return prev
}

// IsInvulnerable reports whether the pet currently ignores captures and Groomer skills.
func (p *Pet) IsInvulnerable() bool {
	return p.Effects.Has(effect.KindInvulnerable)
}

// IsFree reports whether the pet is roaming the arena.
func (p *Pet) IsFree() bool {
	return p.state.IsMovement()
}

// Opacity is the render alpha while hidden: 0 when still, 0.5 when moving.
func (p *Pet) Opacity() float64 {
	if !p.Effects.Has(effect.KindHidden) {
		return 1
	}
	if p.Moving {
		return 0.5
	}
	return 0
}

// IsInvisible reports whether the pet is hidden and stationary.
func (p *Pet) IsInvisible() bool {
	return p.Opacity() == 0
}
