// Package effect implements per-actor transient status effects.
// This package is PURE and must NOT import any infrastructure packages.
package effect

import (
	"sort"

	"github.com/MRamiBalles/PetGrooming/internal/domain/clock"
)

// Kind identifies an effect. Kinds never interact: a Slow and a Stun on the
// same actor run their own timers.
type Kind string

const (
	KindSlow         Kind = "Slow"
	KindStun         Kind = "Stun"
	KindHidden       Kind = "Hidden"
	KindInvulnerable Kind = "Invulnerable"
	KindDistracted   Kind = "Distracted"
)

// Instance is one active effect.
type Instance struct {
	Kind      Kind            `json:"kind"`
	Magnitude float64         `json:"magnitude"`
	Timer     clock.Countdown `json:"timer"`
	Source    string          `json:"source,omitempty"`
}

// State holds at most one instance per kind.
type State struct {
	active map[Kind]*Instance
}

// NewState returns an empty effect set.
func NewState() *State {
	return &State{active: make(map[Kind]*Instance)}
}

// Apply adds or refreshes an effect. Slow keeps the strongest magnitude: a
// stronger slow replaces, an equal one refreshes the timer, a weaker one is
// rejected. Any other kind is simply reset. It reports whether the effect took.
func (s *State) Apply(kind Kind, magnitude, duration float64, source string) bool {
	if duration <= 0 {
		return false
	}
	if cur, ok := s.active[kind]; ok && kind == KindSlow {
		if magnitude < cur.Magnitude {
			return false
		}
	}
	s.active[kind] = &Instance{
		Kind:      kind,
		Magnitude: magnitude,
		Timer:     clock.New(duration),
		Source:    source,
	}
	return true
}

// Has reports whether kind is active.
func (s *State) Has(kind Kind) bool {
	_, ok := s.active[kind]
	return ok
}

// Magnitude returns the magnitude of kind, or 0.
func (s *State) Magnitude(kind Kind) float64 {
	if inst, ok := s.active[kind]; ok {
		return inst.Magnitude
	}
	return 0
}

// Remaining returns the time left on kind, or 0.
func (s *State) Remaining(kind Kind) float64 {
	if inst, ok := s.active[kind]; ok {
		return inst.Timer.Remaining
	}
	return 0
}

// Remove ends kind immediately.
func (s *State) Remove(kind Kind) {
	delete(s.active, kind)
}

// Tick decays every effect and returns the kinds that expired this frame,
// sorted for deterministic event order.
func (s *State) Tick(dt float64) []Kind {
	var expired []Kind
	for kind, inst := range s.active {
		if inst.Timer.Tick(dt) || inst.Timer.Done() {
			expired = append(expired, kind)
			delete(s.active, kind)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	return expired
}

// Clear drops every effect.
func (s *State) Clear() {
	s.active = make(map[Kind]*Instance)
}

// SpeedMultiplier is 0 while stunned, otherwise 1 minus the slow magnitude.
func (s *State) SpeedMultiplier() float64 {
	if s.Has(KindStun) {
		return 0
	}
	return 1 - s.Magnitude(KindSlow)
}

// Active returns a copy of every instance, sorted by kind.
func (s *State) Active() []Instance {
	out := make([]Instance, 0, len(s.active))
	for _, inst := range s.active {
		out = append(out, *inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
