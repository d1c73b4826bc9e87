package engine

import (
	"fmt"

	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/domain/groomer"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/domain/rules"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/skills"
)

var _ skills.World = (*Engine)(nil)

// Groomer returns the match's Groomer, or nil before a match.
func (e *Engine) Groomer() *groomer.Groomer { return e.roster.Groomer() }

// Pets returns the active pets in spawn order.
func (e *Engine) Pets() []*pet.Pet { return e.roster.Pets() }

// Pet returns an active pet by ID.
func (e *Engine) Pet(id string) *pet.Pet { return e.roster.Pet(id) }

// Bounds returns the play area.
func (e *Engine) Bounds() arena.Bounds { return e.bounds }

// Rand returns the match's random source.
func (e *Engine) Rand() rules.Roller { return e.rng }

// ApplyEffect applies an effect to the Groomer or a pet and records
// EFFECT_APPLIED when it takes.
func (e *Engine) ApplyEffect(actorID string, kind effect.Kind, magnitude, duration float64, source string) bool {
	var state *effect.State
	if g := e.roster.Groomer(); g != nil && actorID == g.ID {
		state = g.Effects
	} else if p := e.roster.Pet(actorID); p != nil {
		state = p.Effects
	}
	if state == nil || !state.Apply(kind, magnitude, duration, source) {
		return false
	}
	e.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeEffectApplied,
		ActorID: actorID,
		Payload: events.EffectPayload{Kind: string(kind), Magnitude: magnitude, Duration: duration, Source: source},
	})
	e.logger.Event(string(events.EventTypeEffectApplied), actorID, fmt.Sprintf("%s %.2f for %.1fs from %s", kind, magnitude, duration, source))
	return true
}

// AddMischief raises the meter. Caged pets cause none.
func (e *Engine) AddMischief(actorID string, amount int, cause string) {
	if p := e.roster.Pet(actorID); p != nil && p.State() == pet.StateCaged {
		return
	}
	e.mischief.Add(amount, actorID, cause)
}

// Reposition moves a pet instantly.
func (e *Engine) Reposition(petID string, to arena.Vec2) {
	p := e.roster.Pet(petID)
	if p == nil {
		return
	}
	p.Position = to
	e.teleport(petID, to)
}

// FireNet puts a net in flight.
func (e *Engine) FireNet(n *skills.NetProjectile) { e.skills.AddNet(n) }

// AttachLeash hooks a pet.
func (e *Engine) AttachLeash(l *skills.LeashPull) { e.skills.AttachLeash(l) }

// ReleaseCarried knocks the carried pet loose; it escapes as if it had
// struggled free.
func (e *Engine) ReleaseCarried(by string) bool {
	p := e.roster.Pet(e.roster.Groomer().Carried())
	if p == nil {
		return false
	}
	e.escape(p, "knocked loose by "+by)
	return true
}

// StealTool adds a required step to the nearest station within reach.
func (e *Engine) StealTool(thief string, from arena.Vec2, reach float64, maxStacks int) (string, bool) {
	return e.grooming.StealTool(thief, from, reach, maxStacks)
}

// Emit records an event raised by a skill.
func (e *Engine) Emit(event events.GameEvent) { e.eventLog.Append(event) }
