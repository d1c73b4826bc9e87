package skills

import (
	"math"
	"sort"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/clock"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/events"
)

// leashAimCone is the half-angle around the aim direction a leash can hook.
const leashAimCone = math.Pi / 4

// CaptureNet fires a net that slows the first pet it touches.
type CaptureNet struct {
	Base
	params config.SkillConfig
}

func newCaptureNet(cfg *config.Config) Skill {
	p := cfg.Skills.CaptureNet
	return &CaptureNet{Base: newBase(KindCaptureNet, p.Cooldown), params: p}
}

func (s *CaptureNet) execute(ctx Context) Result {
	dir := ctx.aimDirection()
	ctx.World.FireNet(&NetProjectile{
		Owner:         ctx.Caster.ID,
		Position:      ctx.Caster.Position,
		Direction:     dir,
		Speed:         s.params.Speed,
		RangeLeft:     s.params.Range,
		Radius:        s.params.Radius,
		SlowMagnitude: s.params.Magnitude,
		SlowDuration:  s.params.Duration,
	})
	ctx.World.Emit(events.GameEvent{
		Type:    events.EventTypeNetFired,
		ActorID: ctx.Caster.ID,
		Payload: map[string]float64{"dir_x": dir.X, "dir_z": dir.Z},
	})
	return Result{}
}

// Leash hooks the nearest visible pet in front of the Groomer and reels it in.
type Leash struct {
	Base
	params       config.SkillConfig
	captureRange float64
}

func newLeash(cfg *config.Config) Skill {
	p := cfg.Skills.Leash
	return &Leash{Base: newBase(KindLeash, p.Cooldown), params: p, captureRange: cfg.Match.CaptureRange}
}

func (s *Leash) execute(ctx Context) Result {
	origin := ctx.Caster.Position
	aim := ctx.aimDirection()
	minDot := math.Cos(leashAimCone)

	type candidate struct {
		id   string
		dist float64
	}
	var candidates []candidate
	for _, p := range ctx.World.Pets() {
		if !p.IsFree() || p.IsInvulnerable() || p.IsInvisible() {
			continue
		}
		d := arena.Distance(origin, p.Position)
		if d > s.params.Range {
			continue
		}
		if d > 0 && p.Position.Sub(origin).Normalize().Dot(aim) < minDot {
			continue
		}
		candidates = append(candidates, candidate{p.ID, d})
	}
	if len(candidates) == 0 {
		return Result{Missed: true}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id < candidates[j].id
	})

	target := ctx.World.Pet(candidates[0].id)
	ctx.World.AttachLeash(&LeashPull{
		Owner:        ctx.Caster.ID,
		PetID:        target.ID,
		Speed:        s.params.Speed,
		BreakChance:  target.Profile.LeashBreakChance,
		StopDistance: s.captureRange,
		breakTimer:   clock.New(s.params.Interval),
	})
	return Result{Targets: []string{target.ID}}
}

// CalmingSpray stuns every pet around the Groomer.
type CalmingSpray struct {
	Base
	params config.SkillConfig
}

func newCalmingSpray(cfg *config.Config) Skill {
	p := cfg.Skills.CalmingSpray
	return &CalmingSpray{Base: newBase(KindCalmingSpray, p.Cooldown), params: p}
}

func (s *CalmingSpray) execute(ctx Context) Result {
	var res Result
	for _, p := range ctx.World.Pets() {
		if !petTargetable(p) {
			continue
		}
		if arena.Distance(ctx.Caster.Position, p.Position) > s.params.Radius {
			continue
		}
		if ctx.World.ApplyEffect(p.ID, effect.KindStun, 1, s.params.Duration, string(KindCalmingSpray)) {
			res.Targets = append(res.Targets, p.ID)
		}
	}
	res.Missed = len(res.Targets) == 0
	return res
}
