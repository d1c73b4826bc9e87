package engine

import (
	"fmt"
	"sort"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/clock"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/domain/groomer"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/domain/rules"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

// CaptureSystem resolves captures and the struggle rolls of held pets.
type CaptureSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	cfg      config.MatchConfig

	struggles map[string]*clock.Countdown
}

// NewCaptureSystem creates a capture resolver.
func NewCaptureSystem(eventLog *events.EventLog, log *logger.Logger, cfg config.MatchConfig) *CaptureSystem {
	return &CaptureSystem{
		eventLog:  eventLog,
		logger:    log,
		cfg:       cfg,
		struggles: make(map[string]*clock.Countdown),
	}
}

// TryCapture attempts to pick p up. Checks run in order: the Groomer's hands
// must be free, p must be within capture range, then p must be catchable.
// Every failure leaves state untouched and records CAPTURE_FAILED.
func (cs *CaptureSystem) TryCapture(g *groomer.Groomer, p *pet.Pet) error {
	if g.IsCarrying() {
		return cs.fail(p, 0, ErrAlreadyCarrying)
	}
	if p == nil {
		return cs.fail(nil, 0, ErrTargetUnavailable)
	}
	dist := arena.Distance(g.Position, p.Position)
	if dist > cs.cfg.CaptureRange {
		return cs.fail(p, dist, ErrOutOfRange)
	}
	if p.IsInvulnerable() || p.IsGroomed || !p.IsFree() {
		return cs.fail(p, dist, ErrTargetUnavailable)
	}

	g.Carry(p.ID)
	transition(cs.eventLog, cs.logger, p, pet.StateCaptured)
	cs.StartStruggle(p.ID)
	cs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeCaptureSucceed,
		ActorID:  g.ID,
		TargetID: p.ID,
		Payload:  events.CapturePayload{Distance: dist},
	})
	cs.logger.Event(string(events.EventTypeCaptureSucceed), g.ID, fmt.Sprintf("caught %s at %.2f", p.ID, dist))
	return nil
}

func (cs *CaptureSystem) fail(p *pet.Pet, dist float64, err error) error {
	target := ""
	if p != nil {
		target = p.ID
	}
	cs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeCaptureFailed,
		ActorID:  groomer.ID,
		TargetID: target,
		Payload:  events.CapturePayload{Distance: dist, Reason: err.Error()},
	})
	return err
}

// StartStruggle begins the struggle clock of a held pet.
func (cs *CaptureSystem) StartStruggle(petID string) {
	c := clock.New(cs.cfg.StruggleInterval)
	cs.struggles[petID] = &c
}

// StopStruggle ends the struggle clock of a pet that is no longer held.
func (cs *CaptureSystem) StopStruggle(petID string) {
	delete(cs.struggles, petID)
}

// Struggle advances every struggle clock and rolls once per interval for
// Captured and BeingGroomed pets. Stunned pets skip the roll. It returns the
// pets that broke free, in ID order.
func (cs *CaptureSystem) Struggle(dt float64, roster *Roster, rng rules.Roller) []*pet.Pet {
	ids := make([]string, 0, len(cs.struggles))
	for id := range cs.struggles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var escaped []*pet.Pet
	for _, id := range ids {
		p := roster.Pet(id)
		if p == nil || (p.State() != pet.StateCaptured && p.State() != pet.StateBeingGroomed) {
			delete(cs.struggles, id)
			continue
		}
		timer := cs.struggles[id]
		if !timer.Tick(dt) {
			continue
		}
		timer.Reset()
		if p.Effects.Has(effect.KindStun) {
			continue
		}
		chance := rules.StruggleChance(p.Profile.BaseEscapeChance, p.GroomSteps, cs.cfg.StepEscapeReduction)
		if rules.Chance(rng, chance) {
			cs.logger.Event("STRUGGLE", p.ID, fmt.Sprintf("broke free at chance %.2f", chance))
			escaped = append(escaped, p)
		}
	}
	return escaped
}

// Reset drops every struggle clock.
func (cs *CaptureSystem) Reset() {
	cs.struggles = make(map[string]*clock.Countdown)
}
