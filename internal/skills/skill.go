// Package skills implements the cooldown-gated abilities of the Groomer and the pets.
//
// Skill is a sealed interface: every concrete skill lives in this package and is
// built through the dispatch table in New. A skill reaches the match only
// through the World it is given at activation.
package skills

import (
	"errors"
	"fmt"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/clock"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/domain/groomer"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/domain/rules"
	"github.com/MRamiBalles/PetGrooming/internal/events"
)

var (
	ErrOnCooldown   = errors.New("skill on cooldown")
	ErrActorStunned = errors.New("actor is stunned")
	ErrUnknownSkill = errors.New("unknown skill")
	ErrNoSkill      = errors.New("no skill in slot")
)

// Kind names a skill. Values match the config keys.
type Kind string

const (
	KindCaptureNet       Kind = config.SkillCaptureNet
	KindLeash            Kind = config.SkillLeash
	KindCalmingSpray     Kind = config.SkillCalmingSpray
	KindAgileJump        Kind = config.SkillAgileJump
	KindFurDistraction   Kind = config.SkillFurDistraction
	KindHideInGap        Kind = config.SkillHideInGap
	KindPowerCharge      Kind = config.SkillPowerCharge
	KindIntimidatingBark Kind = config.SkillIntimidatingBark
	KindStealTool        Kind = config.SkillStealTool
)

// World is the slice of the match a skill may touch.
type World interface {
	Groomer() *groomer.Groomer
	Pets() []*pet.Pet
	Pet(id string) *pet.Pet
	Bounds() arena.Bounds
	Rand() rules.Roller

	ApplyEffect(actorID string, kind effect.Kind, magnitude, duration float64, source string) bool
	AddMischief(actorID string, amount int, cause string)
	Reposition(petID string, to arena.Vec2)
	FireNet(n *NetProjectile)
	AttachLeash(l *LeashPull)
	ReleaseCarried(by string) bool
	StealTool(thief string, from arena.Vec2, reach float64, maxStacks int) (stationID string, ok bool)
	Emit(event events.GameEvent)
}

// Caster is the actor activating a skill.
type Caster struct {
	ID       string
	IsPet    bool
	Position arena.Vec2
	Facing   arena.Vec2
	Effects  *effect.State
}

// Context carries one activation.
type Context struct {
	Caster Caster
	Aim    arena.Vec2 // Zero means the caster's facing
	World  World

	// HitMischief is added when a pet's skill hits the Groomer.
	HitMischief int
}

func (c Context) aimDirection() arena.Vec2 {
	if !c.Aim.IsZero() {
		return c.Aim.Normalize()
	}
	if !c.Caster.Facing.IsZero() {
		return c.Caster.Facing.Normalize()
	}
	return arena.Vec2{Z: 1}
}

// Result describes what an activation did.
type Result struct {
	HitGroomer bool
	Targets    []string
	Missed     bool
}

// Skill is a cooldown-gated ability.
type Skill interface {
	Kind() Kind
	Ready() bool
	Remaining() float64
	Cooldown() float64
	// Tick decays the cooldown and reports the frame it becomes ready.
	Tick(dt float64) bool
	Reset()

	base() *Base
	execute(ctx Context) Result
}

// Base holds the cooldown shared by every skill.
type Base struct {
	kind     Kind
	cooldown clock.Countdown
}

func newBase(kind Kind, cooldown float64) Base {
	return Base{kind: kind, cooldown: clock.Countdown{Duration: cooldown}}
}

func (b *Base) Kind() Kind           { return b.kind }
func (b *Base) Ready() bool          { return b.cooldown.Done() }
func (b *Base) Remaining() float64   { return b.cooldown.Remaining }
func (b *Base) Cooldown() float64    { return b.cooldown.Duration }
func (b *Base) Tick(dt float64) bool { return b.cooldown.Tick(dt) }

// Reset makes the skill ready without a ready notification.
func (b *Base) Reset() { b.cooldown.Clear() }

func (b *Base) base() *Base { return b }

var constructors = map[Kind]func(cfg *config.Config) Skill{
	KindCaptureNet:       newCaptureNet,
	KindLeash:            newLeash,
	KindCalmingSpray:     newCalmingSpray,
	KindAgileJump:        newAgileJump,
	KindFurDistraction:   newFurDistraction,
	KindHideInGap:        newHideInGap,
	KindPowerCharge:      newPowerCharge,
	KindIntimidatingBark: newIntimidatingBark,
	KindStealTool:        newStealTool,
}

// New builds the skill named kind from cfg.
func New(kind Kind, cfg *config.Config) (Skill, error) {
	ctor, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSkill, kind)
	}
	return ctor(cfg), nil
}

// Activate runs s for ctx.Caster. It fails without side effects when the
// skill is cooling down or the caster is stunned.
func Activate(s Skill, ctx Context) (Result, error) {
	if !s.Ready() {
		return Result{}, ErrOnCooldown
	}
	if ctx.Caster.Effects != nil && ctx.Caster.Effects.Has(effect.KindStun) {
		return Result{}, ErrActorStunned
	}

	res := s.execute(ctx)
	s.base().cooldown.Reset()

	ctx.World.Emit(events.GameEvent{
		Type:    events.EventTypeSkillActivated,
		ActorID: ctx.Caster.ID,
		Payload: events.SkillPayload{Skill: string(s.Kind()), HitGroomer: res.HitGroomer},
	})
	if ctx.Caster.IsPet && res.HitGroomer && ctx.HitMischief > 0 {
		ctx.World.AddMischief(ctx.Caster.ID, ctx.HitMischief, "skill:"+string(s.Kind()))
	}
	return res, nil
}

// petTargetable reports whether a Groomer skill can affect p.
func petTargetable(p *pet.Pet) bool {
	if p.IsInvulnerable() || p.IsGroomed {
		return false
	}
	return p.State() != pet.StateCaged
}
