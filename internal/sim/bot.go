package sim

import (
	"math"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/clock"
	"github.com/MRamiBalles/PetGrooming/internal/domain/groomer"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/engine"
)

// Intent is the Groomer's controls for one frame.
type Intent struct {
	Move     arena.Vec2         `json:"move"`
	Interact bool               `json:"interact"`
	Release  bool               `json:"release"`
	Skill    *engine.SkillInput `json:"skill,omitempty"`
	GroomKey engine.Step        `json:"groom_key,omitempty"`
}

// Fill copies the intent into a frame input.
func (i Intent) Fill(in *engine.FrameInput) {
	in.Move = i.Move
	in.Interact = i.Interact
	in.Release = i.Release
	in.Skill = i.Skill
	in.GroomKey = i.GroomKey
}

// Perception is what the bot sees of the match this frame.
type Perception struct {
	Groomer   arena.Vec2
	Carrying  string
	Cooldowns []float64
	Target    *pet.Pet // Closest catchable pet
	Station   *engine.Station
	Grooming  *engine.Station // Busy station within reach
	CageFree  bool
	Cage      arena.Vec2
}

// GroomerBot plays the Groomer with a fixed priority list: finish grooming,
// deliver, then chase the closest catchable pet with skills.
type GroomerBot struct {
	cfg       *config.Config
	slots     map[string]int
	keyDelay  clock.Countdown
	reactTime float64
}

// NewGroomerBot creates a bot that presses grooming keys every reactTime
// seconds.
func NewGroomerBot(cfg *config.Config, reactTime float64) *GroomerBot {
	slots := make(map[string]int, len(cfg.Groomer.Skills))
	for i, s := range cfg.Groomer.Skills {
		slots[s] = i
	}
	return &GroomerBot{cfg: cfg, slots: slots, reactTime: reactTime}
}

// Perceive gathers the bot's view of e.
func (b *GroomerBot) Perceive(e *engine.Engine) Perception {
	g := e.Groomer()
	p := Perception{
		Groomer:   g.Position,
		Carrying:  g.Carried(),
		Cooldowns: e.Cooldowns(groomer.ID),
		CageFree:  e.CageOccupant() == "",
		Cage:      arena.Vec2{X: b.cfg.Arena.Cage.X, Z: b.cfg.Arena.Cage.Z},
	}

	best := math.Inf(1)
	for _, pt := range e.Pets() {
		if !pt.IsFree() || pt.IsInvulnerable() {
			continue
		}
		if d := arena.Distance(g.Position, pt.Position); d < best {
			best, p.Target = d, pt
		}
	}

	stationDist := math.Inf(1)
	for _, s := range e.Stations() {
		d := arena.Distance(g.Position, s.Position)
		if s.Busy() && d <= b.cfg.Match.StationRange {
			p.Grooming = s
		}
		if !s.Busy() && d < stationDist {
			stationDist, p.Station = d, s
		}
	}
	return p
}

// Decide turns a perception into controls.
func (b *GroomerBot) Decide(dt float64, p Perception) Intent {
	b.keyDelay.Tick(dt)

	if p.Grooming != nil && p.Carrying == "" {
		if !b.keyDelay.Done() {
			return Intent{}
		}
		b.keyDelay = clock.New(b.reactTime)
		return Intent{GroomKey: p.Grooming.Step}
	}

	if p.Carrying != "" {
		dest, reach, ok := b.dropOff(p)
		if !ok {
			return Intent{}
		}
		if arena.Distance(p.Groomer, dest) <= reach {
			return Intent{Interact: true}
		}
		return Intent{Move: dest.Sub(p.Groomer).Normalize()}
	}

	if p.Target == nil {
		return Intent{}
	}
	toPet := p.Target.Position.Sub(p.Groomer)
	d := toPet.Length()
	in := Intent{Move: toPet.Normalize()}
	switch {
	case d <= b.cfg.Match.CaptureRange:
		in.Interact = true
	case d <= b.cfg.Skills.CalmingSpray.Radius && b.ready(p, config.SkillCalmingSpray):
		in.Skill = &engine.SkillInput{Slot: b.slots[config.SkillCalmingSpray]}
	case d <= b.cfg.Skills.Leash.Range && b.ready(p, config.SkillLeash):
		in.Skill = &engine.SkillInput{Slot: b.slots[config.SkillLeash], Aim: toPet}
	case d <= b.cfg.Skills.CaptureNet.Range && b.ready(p, config.SkillCaptureNet):
		in.Skill = &engine.SkillInput{Slot: b.slots[config.SkillCaptureNet], Aim: toPet}
	}
	return in
}

// dropOff picks a free station, or the cage when every station is busy.
func (b *GroomerBot) dropOff(p Perception) (arena.Vec2, float64, bool) {
	if p.Station != nil {
		return p.Station.Position, b.cfg.Match.StationRange * 0.9, true
	}
	if p.CageFree {
		return p.Cage, b.cfg.Match.CageRange * 0.9, true
	}
	return arena.Vec2{}, 0, false
}

func (b *GroomerBot) ready(p Perception, skill string) bool {
	i, ok := b.slots[skill]
	return ok && i < len(p.Cooldowns) && p.Cooldowns[i] <= clock.Epsilon
}
