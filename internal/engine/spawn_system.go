package engine

import (
	"fmt"
	"math"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/domain/rules"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

const spawnAttempts = 64

// SpawnSystem places the pets of a game mode at match start.
type SpawnSystem struct {
	logger  *logger.Logger
	cfg     *config.Config
	bounds  arena.Bounds
	terrain arena.Terrain
}

// NewSpawnSystem creates a spawner over the arena.
func NewSpawnSystem(log *logger.Logger, cfg *config.Config, bounds arena.Bounds, terrain arena.Terrain) *SpawnSystem {
	return &SpawnSystem{logger: log, cfg: cfg, bounds: bounds, terrain: terrain}
}

// Spawn builds one pet per roster entry. IDs are "<type>-<n>" numbered per
// type. Positions keep clear of the Groomer and of each other; dogs never
// start on climbable terrain.
func (ss *SpawnSystem) Spawn(roster []string, groomerPos arena.Vec2, rng rules.Roller) ([]*pet.Pet, error) {
	counts := make(map[string]int)
	var placed []*pet.Pet
	for _, kind := range roster {
		prof, ok := ss.cfg.Pet(kind)
		if !ok {
			return nil, fmt.Errorf("spawn: unknown pet type %q", kind)
		}
		counts[kind]++
		id := fmt.Sprintf("%s-%d", kind, counts[kind])
		typ := pet.Type(kind)
		pos := ss.pick(typ, groomerPos, placed, rng)
		p := pet.New(id, typ, ProfileFrom(prof), pos)
		p.SetState(pet.StateIdle)
		placed = append(placed, p)
		ss.logger.Info("spawn: %s at (%.1f, %.1f)", id, pos.X, pos.Z)
	}
	return placed, nil
}

func (ss *SpawnSystem) pick(typ pet.Type, groomerPos arena.Vec2, placed []*pet.Pet, rng rules.Roller) arena.Vec2 {
	var candidate arena.Vec2
	for i := 0; i < spawnAttempts; i++ {
		candidate = ss.bounds.RandomPoint(rng.Float64(), rng.Float64())
		if ss.acceptable(typ, candidate, groomerPos, placed) {
			return candidate
		}
	}
	// Crowded arena: walk a ring around the Groomer at the minimum distance.
	for i := 0; i < 8; i++ {
		dir := arena.Vec2{X: 1}.Rotate(float64(i) * math.Pi / 4)
		ring := ss.bounds.Clamp(groomerPos.Add(dir.Scale(ss.cfg.Arena.SpawnMinGroomerDistance)))
		if ss.acceptable(typ, ring, groomerPos, placed) {
			candidate = ring
			break
		}
	}
	ss.logger.Warn("spawn: no clear random spot for %s after %d tries, using (%.1f, %.1f)", typ, spawnAttempts, candidate.X, candidate.Z)
	return candidate
}

func (ss *SpawnSystem) acceptable(typ pet.Type, p, groomerPos arena.Vec2, placed []*pet.Pet) bool {
	if arena.Distance(p, groomerPos) < ss.cfg.Arena.SpawnMinGroomerDistance {
		return false
	}
	if typ == pet.TypeDog && ss.terrain.IsClimbable(p) {
		return false
	}
	for _, other := range placed {
		if arena.Distance(p, other.Position) < ss.cfg.Arena.SpawnMinSeparation {
			return false
		}
	}
	return true
}

// ProfileFrom converts configured tuning into a pet profile.
func ProfileFrom(c config.PetProfileConfig) pet.Profile {
	return pet.Profile{
		CollisionRadius:  c.CollisionRadius,
		BaseEscapeChance: c.BaseEscapeChance,
		KnockbackForce:   c.KnockbackForce,
		LeashBreakChance: c.LeashBreakChance,
		MoveSpeed:        c.MoveSpeed,
		FleeSpeed:        c.FleeSpeed,
	}
}
