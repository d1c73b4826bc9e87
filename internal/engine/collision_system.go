package engine

import (
	"fmt"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/groomer"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/domain/rules"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

// CollisionSystem turns reported contacts into mischief and knockback.
type CollisionSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	cfg      *config.Config
	mischief *MischiefSystem
}

// NewCollisionSystem creates the contact resolver.
func NewCollisionSystem(eventLog *events.EventLog, log *logger.Logger, cfg *config.Config, mischief *MischiefSystem) *CollisionSystem {
	return &CollisionSystem{eventLog: eventLog, logger: log, cfg: cfg, mischief: mischief}
}

// Resolve applies this frame's contacts. Only free pets cause anything:
// caged, carried and groomed pets break nothing.
func (cs *CollisionSystem) Resolve(contacts []Collision, roster *Roster) []Knockback {
	var out []Knockback
	for _, c := range contacts {
		p := roster.Pet(c.PetID)
		if p == nil || !p.IsFree() {
			continue
		}
		switch c.Kind {
		case CollisionObject:
			points := cs.cfg.ObjectPoints(c.Object)
			cs.mischief.Add(points, p.ID, "collision:"+c.Object)
		case CollisionGroomer:
			out = append(out, cs.knockback(p, c))
		default:
			cs.logger.Warn("unknown collision kind %q from %s", c.Kind, c.PetID)
		}
	}
	return out
}

func (cs *CollisionSystem) knockback(p *pet.Pet, c Collision) Knockback {
	impulse := rules.Knockback(p.Profile, c.Normal, c.ContactSpeed)
	cs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeKnockback,
		ActorID:  p.ID,
		TargetID: groomer.ID,
		Payload:  events.KnockbackPayload{ImpulseX: impulse.X, ImpulseZ: impulse.Z},
	})
	cs.logger.Event(string(events.EventTypeKnockback), p.ID, fmt.Sprintf("impulse %.2f", impulse.Length()))
	return Knockback{PetID: p.ID, Impulse: impulse}
}
