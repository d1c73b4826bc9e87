package engine

import (
	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/domain/rules"
	"github.com/MRamiBalles/PetGrooming/internal/events"
)

// GroomerView is the Groomer as seen by clients.
type GroomerView struct {
	Position arena.Vec2        `json:"position"`
	Facing   arena.Vec2        `json:"facing"`
	Carrying string            `json:"carrying,omitempty"`
	Effects  []effect.Instance `json:"effects,omitempty"`
}

// PetView is a pet as seen by clients.
type PetView struct {
	ID         string            `json:"id"`
	Type       pet.Type          `json:"type"`
	State      pet.State         `json:"state"`
	Position   arena.Vec2        `json:"position"`
	Opacity    float64           `json:"opacity"`
	GroomSteps int               `json:"groom_steps"`
	Leashed    bool              `json:"leashed,omitempty"`
	Effects    []effect.Instance `json:"effects,omitempty"`
}

// Snapshot is the full observable state of the match.
type Snapshot struct {
	MatchID  string       `json:"match_id"`
	Mode     string       `json:"mode"`
	Tick     int64        `json:"tick"`
	HUD      HUD          `json:"hud"`
	Groomer  *GroomerView `json:"groomer,omitempty"`
	Pets     []PetView    `json:"pets"`
	Stations []Station    `json:"stations"`
	Cage     arena.Vec2   `json:"cage"`
	Nets     []arena.Vec2 `json:"nets,omitempty"`
	Result   *MatchResult `json:"result,omitempty"`
}

// Snapshot captures the current state for broadcast.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		MatchID: e.controller.MatchID(),
		Mode:    e.controller.Mode(),
		Tick:    e.tick,
		HUD:     e.hud(),
		Cage:    e.cage.Cage().Position,
		Result:  e.result,
	}
	if g := e.roster.Groomer(); g != nil {
		s.Groomer = &GroomerView{Position: g.Position, Facing: g.Facing, Carrying: g.Carried(), Effects: g.Effects.Active()}
	}
	for _, p := range e.roster.Pets() {
		s.Pets = append(s.Pets, PetView{
			ID:         p.ID,
			Type:       p.Type,
			State:      p.State(),
			Position:   p.Position,
			Opacity:    p.Opacity(),
			GroomSteps: p.GroomSteps,
			Leashed:    e.skills.Leashed(p.ID),
			Effects:    p.Effects.Active(),
		})
	}
	for _, st := range e.grooming.Stations() {
		s.Stations = append(s.Stations, *st)
	}
	for _, n := range e.skills.Nets() {
		s.Nets = append(s.Nets, n.Position)
	}
	return s
}

func (e *Engine) hud() HUD {
	h := HUD{
		Phase:         e.controller.Phase(),
		Timer:         rules.FormatClock(e.controller.Remaining()),
		Remaining:     e.controller.Remaining(),
		Mischief:      e.mischief.Value(),
		MischiefMax:   e.mischief.Threshold(),
		Alert:         e.mischief.AlertActive(),
		GroomingStep:  StepNone,
		RemainingPets: e.roster.Remaining(),
	}
	if c := e.cage.Cage(); c.Occupant != "" {
		h.CageOccupant = c.Occupant
		h.CageTime = c.Timer.Remaining
	}
	g := e.roster.Groomer()
	if g == nil {
		return h
	}
	h.Carrying = g.Carried()
	h.Distracted = g.Effects.Has(effect.KindDistracted)
	h.Cooldowns = e.skills.Cooldowns(g.ID)
	if s := e.activeStation(); s != nil {
		h.GroomingStep = s.Step
		h.StepsDone = s.StepsDone
		h.StepsRequired = s.Required()
	}
	h.Prompts = e.prompts()
	return h
}

func (e *Engine) prompts() Prompts {
	g := e.roster.Groomer()
	var pr Prompts
	if g.IsCarrying() {
		if s := e.grooming.Nearest(g.Position, e.cfg.Match.StationRange); s != nil && !s.Busy() {
			pr.Deliver = true
		}
		pr.Cage = e.cage.InReach(g.Position) && e.cage.Cage().CanStore()
	} else {
		pr.Capture = e.nearestPet(g.Position, func(p *pet.Pet) bool {
			return p.IsFree() && !p.IsInvulnerable() && arena.Distance(g.Position, p.Position) <= e.cfg.Match.CaptureRange
		}) != nil
	}
	pr.Release = !e.cage.Cage().CanStore() && e.cage.InReach(g.Position)
	pr.Groom = e.activeStation() != nil
	return pr
}

// Config returns the engine's tuning.
func (e *Engine) Config() *config.Config { return e.cfg }

// EventLog returns the log every subsystem writes to.
func (e *Engine) EventLog() *events.EventLog { return e.eventLog }

// Phase returns the match phase.
func (e *Engine) Phase() Phase { return e.controller.Phase() }

// MatchID returns the current match ID, empty before a match.
func (e *Engine) MatchID() string { return e.controller.MatchID() }

// Mischief returns the meter value.
func (e *Engine) Mischief() int { return e.mischief.Value() }

// Threshold returns the mischief threshold of the current match.
func (e *Engine) Threshold() int { return e.mischief.Threshold() }

// AlertActive reports whether the alert state has started.
func (e *Engine) AlertActive() bool { return e.alert.Active() }

// Remaining returns the match time left in seconds.
func (e *Engine) Remaining() float64 { return e.controller.Remaining() }

// RemainingPets returns the number of pets still to groom.
func (e *Engine) RemainingPets() int { return e.roster.Remaining() }

// Stations returns the grooming stations.
func (e *Engine) Stations() []*Station { return e.grooming.Stations() }

// CageOccupant returns the caged pet's ID, or "".
func (e *Engine) CageOccupant() string { return e.cage.Cage().Occupant }

// CageRemaining returns the storage time left for the caged pet.
func (e *Engine) CageRemaining() float64 { return e.cage.Cage().Timer.Remaining }

// Cooldowns returns an actor's remaining cooldowns in slot order.
func (e *Engine) Cooldowns(actorID string) []float64 { return e.skills.Cooldowns(actorID) }

// CurrentTick returns the number of frames played this match.
func (e *Engine) CurrentTick() int64 { return e.tick }
