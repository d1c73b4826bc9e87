// Package sim stands in for the physics and navigation layer the engine
// consumes. It walks pets toward their move requests, moves the Groomer,
// reports contacts and drives headless matches with a scripted Groomer.
package sim

import (
	"math"
	"math/rand"
	"sort"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/engine"
)

const (
	// GroomerRadius is the Groomer's contact radius.
	GroomerRadius = 0.5
	// pushDecay is how fast a knockback impulse dies out, per second.
	pushDecay = 4.0
)

type body struct {
	pos    arena.Vec2
	target arena.Vec2
	speed  float64
	radius float64
	moving bool
	free   bool
}

// Kinematics is a flat-ground motion model with no obstacles.
type Kinematics struct {
	bounds  arena.Bounds
	rng     *rand.Rand
	chance  float64 // Object bumps per second of movement
	objects []string

	groomer arena.Vec2
	push    arena.Vec2

	pets    map[string]*body
	ids     []string
	touched map[string]bool
	pending []engine.Collision
}

// NewKinematics creates the motion model. Object contacts name the
// configured destructibles in key order.
func NewKinematics(cfg *config.Config, rng *rand.Rand) *Kinematics {
	objects := make([]string, 0, len(cfg.Mischief.Objects))
	for k := range cfg.Mischief.Objects {
		objects = append(objects, k)
	}
	sort.Strings(objects)
	return &Kinematics{
		bounds: arena.Bounds{
			Min: arena.Vec2{X: cfg.Arena.Min.X, Z: cfg.Arena.Min.Z},
			Max: arena.Vec2{X: cfg.Arena.Max.X, Z: cfg.Arena.Max.Z},
		},
		rng:     rng,
		chance:  cfg.Sim.CollisionChance,
		objects: objects,
		pets:    make(map[string]*body),
		touched: make(map[string]bool),
	}
}

// Reset copies the spawn layout of a freshly started match.
func (k *Kinematics) Reset(groomerPos arena.Vec2, pets []*pet.Pet) {
	k.groomer = groomerPos
	k.push = arena.Vec2{}
	k.pets = make(map[string]*body)
	k.ids = k.ids[:0]
	k.touched = make(map[string]bool)
	k.pending = nil
	for _, p := range pets {
		k.pets[p.ID] = &body{pos: p.Position, target: p.Position, radius: p.Profile.CollisionRadius, free: p.IsFree()}
		k.ids = append(k.ids, p.ID)
	}
}

// Groomer returns the simulated Groomer position.
func (k *Kinematics) Groomer() arena.Vec2 { return k.groomer }

// Position returns a simulated pet position.
func (k *Kinematics) Position(petID string) (arena.Vec2, bool) {
	b, ok := k.pets[petID]
	if !ok {
		return arena.Vec2{}, false
	}
	return b.pos, true
}

// Input reports positions and the contacts gathered by the last Apply.
func (k *Kinematics) Input() engine.FrameInput {
	g := k.groomer
	in := engine.FrameInput{GroomerPosition: &g, Collisions: k.pending}
	for _, id := range k.ids {
		b := k.pets[id]
		if !b.free {
			continue
		}
		in.Pets = append(in.Pets, engine.PetInput{ID: id, Position: b.pos, Moving: b.moving})
	}
	k.pending = nil
	return in
}

// Apply integrates one frame of the engine's output. pets is the engine's
// active set after the frame: held pets follow the engine, pets that left
// play are dropped.
func (k *Kinematics) Apply(dt float64, out engine.FrameOutput, pets []*pet.Pet) {
	k.syncRoster(pets)

	for _, tp := range out.Teleports {
		if b, ok := k.pets[tp.ActorID]; ok {
			b.pos, b.target = tp.Position, tp.Position
		}
	}
	for _, m := range out.Moves {
		b, ok := k.pets[m.PetID]
		if !ok || !b.free {
			continue
		}
		if m.Stop {
			b.target, b.speed = b.pos, 0
			continue
		}
		b.target, b.speed = m.Target, m.Speed
	}
	for _, kb := range out.Knockbacks {
		k.push = k.push.Add(kb.Impulse)
	}

	k.groomer = k.bounds.Clamp(k.groomer.Add(out.GroomerVelocity.Add(k.push).Scale(dt)))
	k.push = k.push.Scale(math.Max(0, 1-pushDecay*dt))

	for _, id := range k.ids {
		b := k.pets[id]
		if !b.free {
			continue
		}
		next := k.bounds.Clamp(arena.MoveTowards(b.pos, b.target, b.speed*dt))
		b.moving = next != b.pos
		b.pos = next
	}
	k.detect(dt, out.GroomerVelocity)
}

func (k *Kinematics) syncRoster(pets []*pet.Pet) {
	seen := make(map[string]bool, len(pets))
	for _, p := range pets {
		seen[p.ID] = true
		b, ok := k.pets[p.ID]
		if !ok {
			b = &body{radius: p.Profile.CollisionRadius}
			k.pets[p.ID] = b
			k.ids = append(k.ids, p.ID)
		}
		b.free = p.IsFree()
		if !b.free {
			b.pos, b.target, b.moving = p.Position, p.Position, false
		}
	}
	kept := k.ids[:0]
	for _, id := range k.ids {
		if seen[id] {
			kept = append(kept, id)
		} else {
			delete(k.pets, id)
			delete(k.touched, id)
		}
	}
	k.ids = kept
}

// detect records pet contacts for the next Input. Groomer contacts fire once
// per touch; object bumps are a chance per second of movement.
func (k *Kinematics) detect(dt float64, groomerVel arena.Vec2) {
	for _, id := range k.ids {
		b := k.pets[id]
		if !b.free {
			k.touched[id] = false
			continue
		}
		toGroomer := k.groomer.Sub(b.pos)
		touching := toGroomer.Length() <= b.radius+GroomerRadius
		if touching && !k.touched[id] {
			petVel := b.target.Sub(b.pos).Normalize().Scale(b.speed)
			k.pending = append(k.pending, engine.Collision{
				PetID:        id,
				Kind:         engine.CollisionGroomer,
				ContactSpeed: petVel.Sub(groomerVel).Length(),
				Normal:       toGroomer,
			})
		}
		k.touched[id] = touching

		if b.moving && len(k.objects) > 0 && k.rng.Float64() < k.chance*dt {
			k.pending = append(k.pending, engine.Collision{
				PetID:  id,
				Kind:   engine.CollisionObject,
				Object: k.objects[k.rng.Intn(len(k.objects))],
			})
		}
	}
}
