package skills

import (
	"math"

	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/clock"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/domain/rules"
)

// NetProjectile is a capture net in flight.
type NetProjectile struct {
	Owner         string
	Position      arena.Vec2
	Direction     arena.Vec2
	Speed         float64
	RangeLeft     float64
	Radius        float64
	SlowMagnitude float64
	SlowDuration  float64
}

// Advance moves the net by dt and sweeps its path against the pets. It
// returns the first pet touched along the path, and whether the net is spent.
func (n *NetProjectile) Advance(dt float64, pets []*pet.Pet) (hit *pet.Pet, done bool) {
	step := math.Min(n.Speed*dt, n.RangeLeft)
	from := n.Position
	to := from.Add(n.Direction.Scale(step))

	best := math.Inf(1)
	for _, p := range pets {
		if !petTargetable(p) || !p.IsFree() {
			continue
		}
		t, ok := sweepCircle(from, to, p.Position, n.Radius+p.Profile.CollisionRadius)
		if ok && t < best {
			best = t
			hit = p
		}
	}

	n.RangeLeft -= step
	if hit != nil {
		n.Position = from.Add(to.Sub(from).Scale(best))
		return hit, true
	}
	n.Position = to
	return nil, n.RangeLeft <= clock.Epsilon
}

// sweepCircle returns the segment parameter of the point on [a,b] closest to
// c, if that point lies within r of c.
func sweepCircle(a, b, c arena.Vec2, r float64) (float64, bool) {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	t := 0.0
	if lenSq > 0 {
		t = math.Max(0, math.Min(1, c.Sub(a).Dot(ab)/lenSq))
	}
	closest := a.Add(ab.Scale(t))
	return t, arena.Distance(closest, c) <= r
}

// LeashOutcome is the result of one leash frame.
type LeashOutcome int

const (
	LeashHolding LeashOutcome = iota
	LeashBroken               // pet broke free
	LeashArrived              // pet reeled into capture range
	LeashDropped              // target no longer valid
)

// LeashPull reels a hooked pet toward the Groomer.
type LeashPull struct {
	Owner        string
	PetID        string
	Speed        float64
	BreakChance  float64
	StopDistance float64

	breakTimer clock.Countdown
}

// Advance runs one frame of the pull. Every break interval the pet rolls to
// break free; otherwise it is dragged toward anchor until within StopDistance.
func (l *LeashPull) Advance(dt float64, anchor arena.Vec2, p *pet.Pet, r rules.Roller) LeashOutcome {
	if p == nil || !p.IsFree() || p.IsInvulnerable() {
		return LeashDropped
	}
	if l.breakTimer.Tick(dt) {
		l.breakTimer.Reset()
		if rules.Chance(r, l.BreakChance) {
			return LeashBroken
		}
	}

	d := arena.Distance(anchor, p.Position)
	if d <= l.StopDistance {
		return LeashArrived
	}
	next := d - l.Speed*dt
	if next <= l.StopDistance {
		next = l.StopDistance * 0.9
		p.Position = anchor.Add(p.Position.Sub(anchor).Normalize().Scale(next))
		return LeashArrived
	}
	p.Position = anchor.Add(p.Position.Sub(anchor).Normalize().Scale(next))
	return LeashHolding
}
