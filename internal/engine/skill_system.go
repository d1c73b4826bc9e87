package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
	"github.com/MRamiBalles/PetGrooming/internal/skills"
)

// SkillSystem owns every actor's skill bar plus the nets and leashes in play.
type SkillSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger

	sets    map[string]*skills.Set
	nets    []*skills.NetProjectile
	leashes map[string]*skills.LeashPull
}

// NewSkillSystem creates an empty skill system.
func NewSkillSystem(eventLog *events.EventLog, log *logger.Logger) *SkillSystem {
	return &SkillSystem{
		eventLog: eventLog,
		logger:   log,
		sets:     make(map[string]*skills.Set),
		leashes:  make(map[string]*skills.LeashPull),
	}
}

// Register installs the skill bar of one actor.
func (ss *SkillSystem) Register(set *skills.Set) {
	ss.sets[set.Owner] = set
}

// Unregister drops an actor that left the match.
func (ss *SkillSystem) Unregister(actorID string) {
	delete(ss.sets, actorID)
}

// Set returns the skill bar of an actor, or nil.
func (ss *SkillSystem) Set(actorID string) *skills.Set { return ss.sets[actorID] }

// Activate fires a skill for caster, by slot for the Groomer or by kind for
// pets. Rejections record SKILL_FAILED and change nothing else.
func (ss *SkillSystem) Activate(caster skills.Caster, slot int, kind skills.Kind, aim arena.Vec2, w skills.World) (skills.Result, error) {
	set := ss.sets[caster.ID]
	if set == nil {
		return skills.Result{}, fmt.Errorf("%w: %s has no skills", skills.ErrNoSkill, caster.ID)
	}
	var (
		res skills.Result
		err error
	)
	if kind != "" {
		res, err = set.ActivateKind(kind, caster, aim, w)
	} else {
		res, err = set.Activate(slot, caster, aim, w)
		if err == nil || errors.Is(err, skills.ErrOnCooldown) || errors.Is(err, skills.ErrActorStunned) {
			kind = set.Skills()[slot].Kind()
		}
	}
	if err != nil {
		ss.eventLog.Append(events.GameEvent{
			Type:    events.EventTypeSkillFailed,
			ActorID: caster.ID,
			Payload: events.SkillPayload{Skill: string(kind), Reason: err.Error()},
		})
		return res, err
	}
	ss.logger.Event(string(events.EventTypeSkillActivated), caster.ID, fmt.Sprintf("%s targets=%v missed=%t", kind, res.Targets, res.Missed))
	return res, nil
}

// TickCooldowns decays every cooldown and records SKILL_READY on the frame a
// skill becomes usable again.
func (ss *SkillSystem) TickCooldowns(dt float64) {
	for _, id := range sortedKeys(ss.sets) {
		for _, k := range ss.sets[id].Tick(dt) {
			ss.eventLog.Append(events.GameEvent{
				Type:    events.EventTypeSkillReady,
				ActorID: id,
				Payload: events.SkillPayload{Skill: string(k)},
			})
		}
	}
}

// Cooldowns returns the remaining cooldowns of an actor in slot order.
func (ss *SkillSystem) Cooldowns(actorID string) []float64 {
	if set := ss.sets[actorID]; set != nil {
		return set.Cooldowns()
	}
	return nil
}

// AddNet puts a fired net in flight.
func (ss *SkillSystem) AddNet(n *skills.NetProjectile) {
	ss.nets = append(ss.nets, n)
}

// Nets returns the nets in flight.
func (ss *SkillSystem) Nets() []*skills.NetProjectile { return ss.nets }

// AdvanceNets moves every net. A hit slows the pet and spends the net.
func (ss *SkillSystem) AdvanceNets(dt float64, w skills.World) {
	live := ss.nets[:0]
	for _, n := range ss.nets {
		hit, done := n.Advance(dt, w.Pets())
		if hit != nil {
			w.ApplyEffect(hit.ID, effect.KindSlow, n.SlowMagnitude, n.SlowDuration, string(skills.KindCaptureNet))
			ss.eventLog.Append(events.GameEvent{
				Type:     events.EventTypeNetHit,
				ActorID:  n.Owner,
				TargetID: hit.ID,
				Payload:  events.EffectPayload{Kind: string(effect.KindSlow), Magnitude: n.SlowMagnitude, Duration: n.SlowDuration},
			})
			ss.logger.Event(string(events.EventTypeNetHit), n.Owner, hit.ID)
		}
		if !done {
			live = append(live, n)
		}
	}
	ss.nets = live
}

// AttachLeash hooks a pet. A pet carries at most one leash.
func (ss *SkillSystem) AttachLeash(l *skills.LeashPull) {
	ss.leashes[l.PetID] = l
	ss.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeLeashAttached,
		ActorID:  l.Owner,
		TargetID: l.PetID,
	})
	ss.logger.Event(string(events.EventTypeLeashAttached), l.Owner, l.PetID)
}

// Leashed reports whether a pet is being reeled in.
func (ss *SkillSystem) Leashed(petID string) bool {
	_, ok := ss.leashes[petID]
	return ok
}

// DropLeash removes a pet's leash without an outcome.
func (ss *SkillSystem) DropLeash(petID string) {
	delete(ss.leashes, petID)
}

// AdvanceLeashes reels every hooked pet toward anchor. Pets that break free
// start fleeing.
func (ss *SkillSystem) AdvanceLeashes(dt float64, anchor arena.Vec2, w skills.World) {
	for _, id := range sortedKeys(ss.leashes) {
		l := ss.leashes[id]
		p := w.Pet(id)
		switch l.Advance(dt, anchor, p, w.Rand()) {
		case skills.LeashHolding:
			continue
		case skills.LeashBroken:
			ss.endLeash(l, events.EventTypeLeashBroken, "broke free")
			transition(ss.eventLog, ss.logger, p, pet.StateFleeing)
		case skills.LeashArrived:
			ss.endLeash(l, events.EventTypeLeashEnded, "in range")
		case skills.LeashDropped:
			ss.endLeash(l, events.EventTypeLeashEnded, "target lost")
		}
	}
}

func (ss *SkillSystem) endLeash(l *skills.LeashPull, t events.EventType, reason string) {
	delete(ss.leashes, l.PetID)
	ss.eventLog.Append(events.GameEvent{
		Type:     t,
		ActorID:  l.Owner,
		TargetID: l.PetID,
		Payload:  events.SkillPayload{Skill: string(skills.KindLeash), Reason: reason},
	})
	ss.logger.Event(string(t), l.PetID, reason)
}

// Reset clears every skill bar and projectile.
func (ss *SkillSystem) Reset() {
	ss.sets = make(map[string]*skills.Set)
	ss.nets = nil
	ss.leashes = make(map[string]*skills.LeashPull)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
