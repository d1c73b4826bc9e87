package engine

import (
	"fmt"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/cage"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

// CageID names the single holding cage of the arena.
const CageID = "cage-1"

// CageSystem owns the holding cage.
// Storing or releasing a pet never adds mischief or touches the alert state.
type CageSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	cfg      config.CageConfig
	reach    float64
	bounds   arena.Bounds

	cage *cage.Cage
	// Set when a pet goes in during the current frame; its timer starts next frame.
	storedThisFrame bool
}

// NewCageSystem places the cage at pos.
func NewCageSystem(eventLog *events.EventLog, log *logger.Logger, cfg config.CageConfig, pos arena.Vec2, reach float64, bounds arena.Bounds) *CageSystem {
	return &CageSystem{
		eventLog: eventLog,
		logger:   log,
		cfg:      cfg,
		reach:    reach,
		bounds:   bounds,
		cage:     cage.NewCage(CageID, pos, cfg.MaxStorageTime, cfg.WarningTime),
	}
}

// Cage exposes the cage for snapshots.
func (cs *CageSystem) Cage() *cage.Cage { return cs.cage }

// InReach reports whether pos is close enough to use the cage.
func (cs *CageSystem) InReach(pos arena.Vec2) bool {
	return arena.Distance(pos, cs.cage.Position) <= cs.reach
}

// Store cages p. The cage must be empty and p must not be on a grooming
// table or already groomed.
func (cs *CageSystem) Store(p *pet.Pet) error {
	if !cs.cage.CanStore() {
		return cs.fail(p, ErrCageOccupied)
	}
	if p.IsGroomed || p.State() == pet.StateBeingGroomed || p.State() == pet.StateCaged {
		return cs.fail(p, ErrTargetUnavailable)
	}
	cs.cage.Store(p.ID)
	cs.storedThisFrame = true
	p.Position = cs.cage.Position
	p.Moving = false
	transition(cs.eventLog, cs.logger, p, pet.StateCaged)
	cs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeCageStored,
		ActorID:  p.ID,
		TargetID: cs.cage.ID,
		Payload:  events.CagePayload{CageID: cs.cage.ID, Remaining: cs.cage.Timer.Remaining},
	})
	cs.logger.Event(string(events.EventTypeCageStored), p.ID, fmt.Sprintf("%.0fs storage", cs.cfg.MaxStorageTime))
	return nil
}

func (cs *CageSystem) fail(p *pet.Pet, err error) error {
	cs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeCageFailed,
		ActorID:  p.ID,
		TargetID: cs.cage.ID,
		Payload:  events.CagePayload{CageID: cs.cage.ID, Reason: err.Error()},
	})
	return err
}

// Tick advances the storage timer. It returns the ID of a pet whose time ran
// out; the caller releases it.
func (cs *CageSystem) Tick(dt float64) string {
	if cs.storedThisFrame {
		return ""
	}
	occupant := cs.cage.Occupant
	warn, expired := cs.cage.Tick(dt)
	if warn {
		cs.eventLog.Append(events.GameEvent{
			Type:     events.EventTypeCageWarning,
			ActorID:  occupant,
			TargetID: cs.cage.ID,
			Payload:  events.CagePayload{CageID: cs.cage.ID, Remaining: cs.cage.Timer.Remaining},
		})
		cs.logger.Warn("cage: %s has %.1fs left in %s", occupant, cs.cage.Timer.Remaining, cs.cage.ID)
	}
	if expired {
		return occupant
	}
	return ""
}

// Release frees the caged pet p. It leaves the cage invulnerable for a short
// window, resumes its last movement state and steps out beside the cage.
func (cs *CageSystem) Release(p *pet.Pet, reason string) (arena.Vec2, error) {
	if cs.cage.Occupant == "" || p == nil || cs.cage.Occupant != p.ID {
		return arena.Vec2{}, ErrCageEmpty
	}
	cs.cage.Release()

	exit := cs.bounds.Clamp(cs.cage.Position.Sub(arena.Vec2{X: cs.reach}))
	p.Position = exit
	p.Effects.Apply(effect.KindInvulnerable, 1, cs.cfg.ReleaseInvulnerability, "cage")

	transition(cs.eventLog, cs.logger, p, p.LastMovement())
	cs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeCageReleased,
		ActorID:  p.ID,
		TargetID: cs.cage.ID,
		Payload:  events.CagePayload{CageID: cs.cage.ID, Reason: reason},
	})
	cs.logger.Event(string(events.EventTypeCageReleased), p.ID, reason)
	return exit, nil
}

// BeginFrame marks the start of a tick.
func (cs *CageSystem) BeginFrame() { cs.storedThisFrame = false }

// Reset empties the cage.
func (cs *CageSystem) Reset() {
	cs.cage.Release()
	cs.storedThisFrame = false
}
