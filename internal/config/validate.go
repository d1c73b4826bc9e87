package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks every numeric and referential invariant the engine relies on.
// All violations are reported together.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Match.Duration <= 0 {
		fail("match.duration must be positive, got %v", c.Match.Duration)
	}
	if c.Match.CaptureRange <= 0 {
		fail("match.capture_range must be positive, got %v", c.Match.CaptureRange)
	}
	if c.Match.StruggleInterval <= 0 {
		fail("match.struggle_interval must be positive, got %v", c.Match.StruggleInterval)
	}
	if c.Match.StepEscapeReduction < 0 {
		fail("match.step_escape_reduction must not be negative")
	}
	if c.Match.EscapeDistance <= 0 {
		fail("match.escape_distance must be positive")
	}
	if c.Match.PetSkillHitMischief < 0 {
		fail("match.pet_skill_hit_mischief must not be negative")
	}
	if c.Match.StationRange <= 0 || c.Match.CageRange <= 0 {
		fail("match.station_range and match.cage_range must be positive")
	}
	if _, ok := c.Modes[c.Match.DefaultMode]; !ok {
		fail("match.default_mode %q is not a configured mode", c.Match.DefaultMode)
	}

	if c.Arena.Min.X >= c.Arena.Max.X || c.Arena.Min.Z >= c.Arena.Max.Z {
		fail("arena.min must be below arena.max on both axes")
	}
	if len(c.Arena.Stations) == 0 {
		fail("arena.stations must list at least one station")
	}
	seen := make(map[string]bool)
	for _, s := range c.Arena.Stations {
		if s.ID == "" {
			fail("arena.stations: station id must not be empty")
		}
		if seen[s.ID] {
			fail("arena.stations: duplicate station id %q", s.ID)
		}
		seen[s.ID] = true
	}

	if c.Groomer.BaseSpeed <= 0 {
		fail("groomer.base_speed must be positive")
	}
	if len(c.Groomer.Skills) != 3 {
		fail("groomer.skills must list exactly 3 skills, got %d", len(c.Groomer.Skills))
	}
	for _, name := range c.Groomer.Skills {
		if !slices.Contains(SkillNames, name) {
			fail("groomer.skills: unknown skill %q", name)
		}
	}

	if c.Mischief.AlertOffset <= 0 {
		fail("mischief.alert_offset must be positive")
	}
	if c.Mischief.GroomerSpeedBonus < 0 {
		fail("mischief.groomer_speed_bonus must not be negative")
	}
	if c.Mischief.DefaultCollisionPoints < 0 {
		fail("mischief.default_collision_points must not be negative")
	}
	for _, key := range sortedKeys(c.Mischief.Thresholds) {
		t := c.Mischief.Thresholds[key]
		if t <= c.Mischief.AlertOffset {
			fail("mischief.thresholds[%s] = %d must exceed alert_offset %d", key, t, c.Mischief.AlertOffset)
		}
	}
	for _, key := range sortedKeys(c.Mischief.Objects) {
		if c.Mischief.Objects[key] < 0 {
			fail("mischief.objects[%s] must not be negative", key)
		}
	}

	if c.Cage.MaxStorageTime <= 0 {
		fail("cage.max_storage_time must be positive")
	}
	if c.Cage.WarningTime < 0 || c.Cage.WarningTime >= c.Cage.MaxStorageTime {
		fail("cage.warning_time must be in [0, max_storage_time)")
	}
	if c.Cage.ReleaseInvulnerability < 0 {
		fail("cage.release_invulnerability must not be negative")
	}

	if c.Behavior.FleeTriggerDistance <= 0 {
		fail("behavior.flee_trigger_distance must be positive")
	}
	if c.Behavior.SafeDistance < c.Behavior.FleeTriggerDistance {
		fail("behavior.safe_distance must be at least flee_trigger_distance")
	}
	if c.Behavior.IdleDuration <= 0 || c.Behavior.ArrivalTolerance <= 0 {
		fail("behavior.idle_duration and behavior.arrival_tolerance must be positive")
	}

	c.validatePet(PetCat, c.Pets.Cat, fail)
	c.validatePet(PetDog, c.Pets.Dog, fail)
	if c.Pets.Dog.KnockbackForce <= c.Pets.Cat.KnockbackForce {
		fail("pets.dog.knockback_force must be strictly greater than pets.cat.knockback_force")
	}

	for _, name := range SkillNames {
		s, _ := c.Skill(name)
		if s.Cooldown <= 0 {
			fail("skills.%s.cooldown must be positive, got %v", name, s.Cooldown)
		}
		if s.Duration < 0 || s.Magnitude < 0 || s.Radius < 0 || s.Range < 0 || s.Speed < 0 {
			fail("skills.%s: parameters must not be negative", name)
		}
		if s.Magnitude > 1 {
			fail("skills.%s.magnitude must be at most 1", name)
		}
	}
	if c.Skills.Leash.Interval <= 0 {
		fail("skills.leash.interval must be positive")
	}
	if c.Skills.CaptureNet.Speed <= 0 {
		fail("skills.capture_net.speed must be positive")
	}
	if c.Skills.StealTool.MaxStacks < 0 {
		fail("skills.steal_tool.max_stacks must not be negative")
	}

	if len(c.Modes) == 0 {
		fail("modes must define at least one mode")
	}
	for _, name := range sortedKeys(c.Modes) {
		m := c.Modes[name]
		if len(m.Pets) == 0 {
			fail("modes.%s must list at least one pet", name)
		}
		for _, p := range m.Pets {
			if _, ok := c.Pet(p); !ok {
				fail("modes.%s: unknown pet type %q", name, p)
			}
		}
		if _, ok := c.ThresholdFor(len(m.Pets)); !ok {
			fail("modes.%s: no mischief threshold for %d pets", name, len(m.Pets))
		}
	}

	if c.Server.TickRate.Duration < 0 {
		fail("server.tick_rate must not be negative")
	}
	if c.Sim.Dt <= 0 {
		fail("sim.dt must be positive")
	}
	if c.Sim.CollisionChance < 0 || c.Sim.CollisionChance > 1 {
		fail("sim.collision_chance must be in [0, 1]")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func (c *Config) validatePet(name string, p PetProfileConfig, fail func(string, ...any)) {
	if p.CollisionRadius <= 0 {
		fail("pets.%s.collision_radius must be positive", name)
	}
	if p.BaseEscapeChance < 0 || p.BaseEscapeChance > 1 {
		fail("pets.%s.base_escape_chance must be in [0, 1]", name)
	}
	if p.LeashBreakChance < 0 || p.LeashBreakChance > 1 {
		fail("pets.%s.leash_break_chance must be in [0, 1]", name)
	}
	if p.KnockbackForce <= 0 {
		fail("pets.%s.knockback_force must be positive", name)
	}
	if p.MoveSpeed <= 0 || p.FleeSpeed <= 0 {
		fail("pets.%s move and flee speeds must be positive", name)
	}
	for _, s := range p.Skills {
		if !slices.Contains(SkillNames, s) {
			fail("pets.%s.skills: unknown skill %q", name, s)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
