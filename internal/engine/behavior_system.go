package engine

import (
	"math"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/clock"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/domain/groomer"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/domain/rules"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
	"github.com/MRamiBalles/PetGrooming/internal/skills"
)

// detourAngles are the headings a dog tries, in order, when its preferred
// target is climbable.
var detourAngles = []float64{
	math.Pi / 6, -math.Pi / 6,
	math.Pi / 3, -math.Pi / 3,
	math.Pi / 2, -math.Pi / 2,
	2 * math.Pi / 3, -2 * math.Pi / 3,
	5 * math.Pi / 6, -5 * math.Pi / 6,
}

// mind is the per-pet memory of the state machine.
type mind struct {
	idle      clock.Countdown
	target    arena.Vec2
	hasTarget bool
}

// BehaviorSystem is the pets' state machine. Each frame it perceives the
// Groomer, decides a state and emits a movement request; the navigation layer
// does the walking.
type BehaviorSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	cfg      *config.Config
	bounds   arena.Bounds
	terrain  arena.Terrain

	minds map[string]*mind
}

// NewBehaviorSystem creates the pet state machine.
func NewBehaviorSystem(eventLog *events.EventLog, log *logger.Logger, cfg *config.Config, bounds arena.Bounds, terrain arena.Terrain) *BehaviorSystem {
	return &BehaviorSystem{
		eventLog: eventLog,
		logger:   log,
		cfg:      cfg,
		bounds:   bounds,
		terrain:  terrain,
		minds:    make(map[string]*mind),
	}
}

func (bs *BehaviorSystem) mindOf(id string) *mind {
	m, ok := bs.minds[id]
	if !ok {
		m = &mind{idle: clock.New(bs.cfg.Behavior.IdleDuration)}
		bs.minds[id] = m
	}
	return m
}

// Decide runs one frame of the state machine for every free pet and returns
// their movement requests. Leashed pets are moved by the leash instead.
func (bs *BehaviorSystem) Decide(dt float64, g *groomer.Groomer, pets []*pet.Pet, rng rules.Roller, leashed func(string) bool) []MoveRequest {
	var moves []MoveRequest
	for _, p := range pets {
		if !p.IsFree() || leashed(p.ID) {
			continue
		}
		m := bs.mindOf(p.ID)
		bs.perceive(dt, p, m, g, rng)
		moves = append(moves, bs.act(p, m, g))
	}
	return moves
}

func (bs *BehaviorSystem) perceive(dt float64, p *pet.Pet, m *mind, g *groomer.Groomer, rng rules.Roller) {
	b := bs.cfg.Behavior
	d := arena.Distance(g.Position, p.Position)

	switch p.State() {
	case pet.StateIdle:
		if d <= b.FleeTriggerDistance {
			transition(bs.eventLog, bs.logger, p, pet.StateFleeing)
			return
		}
		if m.idle.Tick(dt) {
			bs.pickWander(p, m, rng)
			transition(bs.eventLog, bs.logger, p, pet.StateWandering)
		}
	case pet.StateWandering:
		if d <= b.FleeTriggerDistance {
			transition(bs.eventLog, bs.logger, p, pet.StateFleeing)
			return
		}
		if !m.hasTarget {
			bs.pickWander(p, m, rng)
		}
		if m.hasTarget && arena.Distance(p.Position, m.target) <= b.ArrivalTolerance {
			m.hasTarget = false
			m.idle.Reset()
			transition(bs.eventLog, bs.logger, p, pet.StateIdle)
		}
	case pet.StateFleeing:
		if d > b.SafeDistance {
			bs.pickWander(p, m, rng)
			transition(bs.eventLog, bs.logger, p, pet.StateWandering)
		}
	}
}

func (bs *BehaviorSystem) act(p *pet.Pet, m *mind, g *groomer.Groomer) MoveRequest {
	stop := MoveRequest{PetID: p.ID, Target: p.Position, Stop: true}
	mult := p.Effects.SpeedMultiplier()
	if mult <= 0 || p.Effects.Has(effect.KindStun) {
		return stop
	}

	switch p.State() {
	case pet.StateWandering:
		if !m.hasTarget {
			return stop
		}
		return MoveRequest{PetID: p.ID, Target: m.target, Speed: p.Profile.MoveSpeed * mult}
	case pet.StateFleeing:
		want := bs.bounds.Clamp(rules.AwayFrom(g.Position, p.Position, bs.cfg.Behavior.WanderRadius))
		target, ok := bs.navigable(p, want)
		if !ok {
			return stop
		}
		return MoveRequest{PetID: p.ID, Target: target, Speed: p.Profile.FleeSpeed * mult}
	}
	return stop
}

// pickWander chooses a reachable point within the wander radius.
func (bs *BehaviorSystem) pickWander(p *pet.Pet, m *mind, rng rules.Roller) {
	angle := rng.Float64() * 2 * math.Pi
	dist := bs.cfg.Behavior.WanderRadius * (0.5 + 0.5*rng.Float64())
	want := bs.bounds.Clamp(p.Position.Add(arena.Vec2{X: math.Cos(angle), Z: math.Sin(angle)}.Scale(dist)))
	target, ok := bs.navigable(p, want)
	m.target, m.hasTarget = target, ok
}

// navigable returns want, or the nearest detour heading to it, that the pet
// can stand on. Cats go anywhere; dogs avoid climbable ground.
func (bs *BehaviorSystem) navigable(p *pet.Pet, want arena.Vec2) (arena.Vec2, bool) {
	if p.Type != pet.TypeDog || !bs.terrain.IsClimbable(want) {
		return want, true
	}
	offset := want.Sub(p.Position)
	for _, a := range detourAngles {
		alt := bs.bounds.Clamp(p.Position.Add(offset.Rotate(a)))
		if !bs.terrain.IsClimbable(alt) {
			return alt, true
		}
	}
	return p.Position, false
}

// ChooseSkill picks at most one skill for a free pet this frame, or "".
func (bs *BehaviorSystem) ChooseSkill(p *pet.Pet, g *groomer.Groomer, set *skills.Set, stations []*Station) skills.Kind {
	if set == nil || !p.IsFree() || p.Effects.Has(effect.KindStun) {
		return ""
	}
	ready := func(k skills.Kind) bool {
		s := set.Get(k)
		return s != nil && s.Ready()
	}
	d := arena.Distance(g.Position, p.Position)
	sk := bs.cfg.Skills

	switch p.Type {
	case pet.TypeCat:
		switch {
		case d <= bs.cfg.Behavior.JumpTriggerDistance && ready(skills.KindAgileJump):
			return skills.KindAgileJump
		case d <= sk.FurDistraction.Radius && ready(skills.KindFurDistraction):
			return skills.KindFurDistraction
		case p.State() == pet.StateFleeing && !p.Effects.Has(effect.KindHidden) && ready(skills.KindHideInGap):
			return skills.KindHideInGap
		}
	case pet.TypeDog:
		switch {
		case g.IsCarrying() && d <= sk.PowerCharge.Range && ready(skills.KindPowerCharge):
			return skills.KindPowerCharge
		case d <= sk.IntimidatingBark.Radius && ready(skills.KindIntimidatingBark):
			return skills.KindIntimidatingBark
		case ready(skills.KindStealTool) && stealTarget(stations, p.Position, sk.StealTool.Range, sk.StealTool.MaxStacks) != nil:
			return skills.KindStealTool
		}
	}
	return ""
}

// Forget drops the memory of a pet that left play.
func (bs *BehaviorSystem) Forget(petID string) { delete(bs.minds, petID) }

// Reset drops every pet memory.
func (bs *BehaviorSystem) Reset() { bs.minds = make(map[string]*mind) }
