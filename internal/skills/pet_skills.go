package skills

import (
	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/domain/rules"
)

// AgileJump leaps the cat directly away from the Groomer.
type AgileJump struct {
	Base
	params config.SkillConfig
}

func newAgileJump(cfg *config.Config) Skill {
	p := cfg.Skills.AgileJump
	return &AgileJump{Base: newBase(KindAgileJump, p.Cooldown), params: p}
}

func (s *AgileJump) execute(ctx Context) Result {
	g := ctx.World.Groomer()
	to := rules.AwayFrom(g.Position, ctx.Caster.Position, s.params.Range)
	ctx.World.Reposition(ctx.Caster.ID, ctx.World.Bounds().Clamp(to))
	return Result{}
}

// FurDistraction throws fur at a nearby Groomer.
type FurDistraction struct {
	Base
	params config.SkillConfig
}

func newFurDistraction(cfg *config.Config) Skill {
	p := cfg.Skills.FurDistraction
	return &FurDistraction{Base: newBase(KindFurDistraction, p.Cooldown), params: p}
}

func (s *FurDistraction) execute(ctx Context) Result {
	g := ctx.World.Groomer()
	if arena.Distance(g.Position, ctx.Caster.Position) > s.params.Radius {
		return Result{Missed: true}
	}
	ctx.World.ApplyEffect(g.ID, effect.KindDistracted, 1, s.params.Duration, string(KindFurDistraction))
	return Result{HitGroomer: true, Targets: []string{g.ID}}
}

// HideInGap makes the cat invisible while it stays still.
type HideInGap struct {
	Base
	params config.SkillConfig
}

func newHideInGap(cfg *config.Config) Skill {
	p := cfg.Skills.HideInGap
	return &HideInGap{Base: newBase(KindHideInGap, p.Cooldown), params: p}
}

func (s *HideInGap) execute(ctx Context) Result {
	ctx.World.ApplyEffect(ctx.Caster.ID, effect.KindHidden, 0, s.params.Duration, string(KindHideInGap))
	return Result{Targets: []string{ctx.Caster.ID}}
}

// PowerCharge rams the Groomer and knocks the carried pet loose.
type PowerCharge struct {
	Base
	params config.SkillConfig
}

func newPowerCharge(cfg *config.Config) Skill {
	p := cfg.Skills.PowerCharge
	return &PowerCharge{Base: newBase(KindPowerCharge, p.Cooldown), params: p}
}

func (s *PowerCharge) execute(ctx Context) Result {
	g := ctx.World.Groomer()
	if arena.Distance(g.Position, ctx.Caster.Position) > s.params.Range {
		return Result{Missed: true}
	}
	res := Result{HitGroomer: true, Targets: []string{g.ID}}
	if carried := g.Carried(); carried != "" && ctx.World.ReleaseCarried(ctx.Caster.ID) {
		res.Targets = append(res.Targets, carried)
	}
	return res
}

// IntimidatingBark slows a nearby Groomer.
type IntimidatingBark struct {
	Base
	params config.SkillConfig
}

func newIntimidatingBark(cfg *config.Config) Skill {
	p := cfg.Skills.IntimidatingBark
	return &IntimidatingBark{Base: newBase(KindIntimidatingBark, p.Cooldown), params: p}
}

func (s *IntimidatingBark) execute(ctx Context) Result {
	g := ctx.World.Groomer()
	if arena.Distance(g.Position, ctx.Caster.Position) > s.params.Radius {
		return Result{Missed: true}
	}
	ctx.World.ApplyEffect(g.ID, effect.KindSlow, s.params.Magnitude, s.params.Duration, string(KindIntimidatingBark))
	return Result{HitGroomer: true, Targets: []string{g.ID}}
}

// StealTool runs off with a grooming tool, adding a step to the nearest station.
type StealTool struct {
	Base
	params config.SkillConfig
}

func newStealTool(cfg *config.Config) Skill {
	p := cfg.Skills.StealTool
	return &StealTool{Base: newBase(KindStealTool, p.Cooldown), params: p}
}

func (s *StealTool) execute(ctx Context) Result {
	stationID, ok := ctx.World.StealTool(ctx.Caster.ID, ctx.Caster.Position, s.params.Range, s.params.MaxStacks)
	if !ok {
		return Result{Missed: true}
	}
	return Result{Targets: []string{stationID}}
}
