package engine

import (
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/skills"
)

// Interact is the context button. With a pet in hand it delivers to a station
// in range, else cages it; with empty hands it grabs the nearest pet.
func (e *Engine) Interact() error {
	if err := e.playing(); err != nil {
		return err
	}
	g := e.roster.Groomer()
	if !g.IsCarrying() {
		return e.TryCaptureNearest()
	}
	if s := e.grooming.Nearest(g.Position, e.cfg.Match.StationRange); s != nil && !s.Busy() {
		return e.Deliver(s.ID)
	}
	if e.cage.InReach(g.Position) {
		return e.StoreInCage()
	}
	return e.Deliver("")
}

// TryCapture tries to pick up the pet with the given ID.
func (e *Engine) TryCapture(petID string) error {
	if err := e.playing(); err != nil {
		return err
	}
	g := e.roster.Groomer()
	p := e.roster.Pet(petID)
	if err := e.capture.TryCapture(g, p); err != nil {
		return err
	}
	e.skills.DropLeash(p.ID)
	e.syncCarried()
	return nil
}

// TryCaptureNearest tries to pick up the closest roaming pet.
func (e *Engine) TryCaptureNearest() error {
	if err := e.playing(); err != nil {
		return err
	}
	g := e.roster.Groomer()
	p := e.nearestPet(g.Position, func(p *pet.Pet) bool { return p.IsFree() })
	if p == nil {
		return e.capture.TryCapture(g, nil)
	}
	return e.TryCapture(p.ID)
}

// Deliver puts the carried pet on a grooming table. An empty stationID picks
// the nearest station in range.
func (e *Engine) Deliver(stationID string) error {
	if err := e.playing(); err != nil {
		return err
	}
	g := e.roster.Groomer()
	if !g.IsCarrying() {
		return e.groomingFailed(stationID, ErrNotCarrying)
	}

	var s *Station
	if stationID == "" {
		s = e.grooming.Nearest(g.Position, e.cfg.Match.StationRange)
	} else if s = e.grooming.Station(stationID); s != nil && arena.Distance(g.Position, s.Position) > e.cfg.Match.StationRange {
		s = nil
	}
	if s == nil {
		return e.groomingFailed(stationID, ErrNoStationInRange)
	}
	if s.Busy() {
		return e.groomingFailed(s.ID, ErrStationBusy)
	}

	p := e.roster.Pet(g.Release())
	if err := e.grooming.Begin(s, p); err != nil {
		return err
	}
	e.teleport(p.ID, p.Position)
	return nil
}

func (e *Engine) groomingFailed(stationID string, err error) error {
	e.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeGroomingFailed,
		ActorID:  e.roster.Groomer().ID,
		TargetID: stationID,
		Payload:  events.GroomingPayload{StationID: stationID, Reason: err.Error()},
	})
	return err
}

// activeStation is the busy station closest to the Groomer within reach.
func (e *Engine) activeStation() *Station {
	g := e.roster.Groomer()
	var best *Station
	for _, s := range e.grooming.Stations() {
		if !s.Busy() || arena.Distance(g.Position, s.Position) > e.cfg.Match.StationRange {
			continue
		}
		if best == nil || arena.Distance(g.Position, s.Position) < arena.Distance(g.Position, best.Position) {
			best = s
		}
	}
	return best
}

// PressGroomStep presses a grooming key at the station in reach. Only the
// current step's key advances; a wrong key returns false and changes nothing.
func (e *Engine) PressGroomStep(key Step) (bool, error) {
	if err := e.playing(); err != nil {
		return false, err
	}
	s := e.activeStation()
	if s == nil {
		return false, ErrNoStationInRange
	}
	p := e.roster.Pet(s.PetID)
	advanced, done := e.grooming.Press(s, p, key)
	if done {
		e.capture.StopStruggle(p.ID)
		e.skills.Unregister(p.ID)
		e.behavior.Forget(p.ID)
		e.roster.MarkGroomed(p.ID)
	}
	return advanced, nil
}

// StoreInCage cages the carried pet. The Groomer must stand by the cage.
func (e *Engine) StoreInCage() error {
	if err := e.playing(); err != nil {
		return err
	}
	g := e.roster.Groomer()
	if !g.IsCarrying() {
		return ErrNotCarrying
	}
	p := e.roster.Pet(g.Carried())
	if !e.cage.InReach(g.Position) {
		return e.cage.fail(p, ErrCageOutOfRange)
	}
	if err := e.cage.Store(p); err != nil {
		return err
	}
	g.Release()
	e.capture.StopStruggle(p.ID)
	e.skills.DropLeash(p.ID)
	e.teleport(p.ID, p.Position)
	return nil
}

// ReleaseCage frees the caged pet by hand.
func (e *Engine) ReleaseCage() error {
	if err := e.playing(); err != nil {
		return err
	}
	id := e.cage.Cage().Occupant
	if id == "" {
		return ErrCageEmpty
	}
	e.releaseCaged(id, "manual")
	return nil
}

// ActivateSkill fires the Groomer skill in slot, aimed along aim (zero uses
// the Groomer's facing).
func (e *Engine) ActivateSkill(slot int, aim arena.Vec2) (skills.Result, error) {
	if err := e.playing(); err != nil {
		return skills.Result{}, err
	}
	g := e.roster.Groomer()
	caster := skills.Caster{ID: g.ID, Position: g.Position, Facing: g.Facing, Effects: g.Effects}
	return e.skills.Activate(caster, slot, "", aim, e)
}

// ActivatePetSkill fires a pet's skill of kind, bypassing the behavior
// heuristics. Used by scripted scenarios.
func (e *Engine) ActivatePetSkill(petID string, kind skills.Kind) (skills.Result, error) {
	if err := e.playing(); err != nil {
		return skills.Result{}, err
	}
	p := e.roster.Pet(petID)
	if p == nil || !p.IsFree() {
		return skills.Result{}, ErrTargetUnavailable
	}
	return e.skills.Activate(petCaster(p), 0, kind, arena.Vec2{}, e)
}
