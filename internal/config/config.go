// Package config loads and validates the match tuning consumed by the engine.
// Built-in defaults are embedded; an override file only needs the keys it changes.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed defaults.toml
var defaultsTOML []byte

// Pet type keys used in [pets] and [modes].
const (
	PetCat = "cat"
	PetDog = "dog"
)

// Skill keys used in [skills], [groomer] and [pets.*].
const (
	SkillCaptureNet       = "capture_net"
	SkillLeash            = "leash"
	SkillCalmingSpray     = "calming_spray"
	SkillAgileJump        = "agile_jump"
	SkillFurDistraction   = "fur_distraction"
	SkillHideInGap        = "hide_in_gap"
	SkillPowerCharge      = "power_charge"
	SkillIntimidatingBark = "intimidating_bark"
	SkillStealTool        = "steal_tool"
)

// SkillNames lists every skill key in declaration order.
var SkillNames = []string{
	SkillCaptureNet, SkillLeash, SkillCalmingSpray,
	SkillAgileJump, SkillFurDistraction, SkillHideInGap,
	SkillPowerCharge, SkillIntimidatingBark, SkillStealTool,
}

// Config is the full tuning for one match. It is read-only once a match starts.
type Config struct {
	Match    MatchConfig    `toml:"match" json:"match"`
	Arena    ArenaConfig    `toml:"arena" json:"arena"`
	Groomer  GroomerConfig  `toml:"groomer" json:"groomer"`
	Mischief MischiefConfig `toml:"mischief" json:"mischief"`
	Cage     CageConfig     `toml:"cage" json:"cage"`
	Behavior BehaviorConfig `toml:"behavior" json:"behavior"`
	Pets     PetsConfig     `toml:"pets" json:"pets"`
	Skills   SkillsConfig   `toml:"skills" json:"skills"`

	// Modes maps a game mode name to its pet roster.
	Modes map[string]ModeConfig `toml:"modes" json:"modes"`

	Server ServerConfig `toml:"server" json:"server"`
	Sim    SimConfig    `toml:"sim" json:"sim"`
}

// MatchConfig holds timer and interaction tuning.
type MatchConfig struct {
	Duration            float64 `toml:"duration" json:"duration" jsonschema:"description=Match length in seconds"`
	CaptureRange        float64 `toml:"capture_range" json:"capture_range"`
	StruggleInterval    float64 `toml:"struggle_interval" json:"struggle_interval"`
	StepEscapeReduction float64 `toml:"step_escape_reduction" json:"step_escape_reduction"`
	EscapeDistance      float64 `toml:"escape_distance" json:"escape_distance"`
	PetSkillHitMischief int     `toml:"pet_skill_hit_mischief" json:"pet_skill_hit_mischief"`
	CarryOffset         float64 `toml:"carry_offset" json:"carry_offset"`
	StationRange        float64 `toml:"station_range" json:"station_range"`
	CageRange           float64 `toml:"cage_range" json:"cage_range"`
	DefaultMode         string  `toml:"default_mode" json:"default_mode"`
}

// Point is a position on the ground plane.
type Point struct {
	X float64 `toml:"x" json:"x"`
	Z float64 `toml:"z" json:"z"`
}

// StationConfig places one grooming station.
type StationConfig struct {
	ID       string `toml:"id" json:"id"`
	Position Point  `toml:"position" json:"position"`
}

// ArenaConfig describes the play area.
type ArenaConfig struct {
	Min                     Point           `toml:"min" json:"min"`
	Max                     Point           `toml:"max" json:"max"`
	GroomerSpawn            Point           `toml:"groomer_spawn" json:"groomer_spawn"`
	Cage                    Point           `toml:"cage" json:"cage"`
	Stations                []StationConfig `toml:"stations" json:"stations"`
	SpawnMinGroomerDistance float64         `toml:"spawn_min_groomer_distance" json:"spawn_min_groomer_distance"`
	SpawnMinSeparation      float64         `toml:"spawn_min_separation" json:"spawn_min_separation"`
}

// GroomerConfig tunes the player character.
type GroomerConfig struct {
	BaseSpeed float64  `toml:"base_speed" json:"base_speed"`
	Skills    []string `toml:"skills" json:"skills"`
}

// MischiefConfig tunes the mischief meter and alert state.
type MischiefConfig struct {
	AlertOffset       int     `toml:"alert_offset" json:"alert_offset"`
	GroomerSpeedBonus float64 `toml:"groomer_speed_bonus" json:"groomer_speed_bonus"`

	// Thresholds is keyed by pet count ("1", "2", "3").
	Thresholds             map[string]int `toml:"thresholds" json:"thresholds"`
	DefaultCollisionPoints int            `toml:"default_collision_points" json:"default_collision_points"`
	Objects                map[string]int `toml:"objects" json:"objects"`
}

// CageConfig tunes the holding cage.
type CageConfig struct {
	MaxStorageTime         float64 `toml:"max_storage_time" json:"max_storage_time"`
	WarningTime            float64 `toml:"warning_time" json:"warning_time"`
	ReleaseInvulnerability float64 `toml:"release_invulnerability" json:"release_invulnerability"`
}

// BehaviorConfig tunes the pet state machine.
type BehaviorConfig struct {
	FleeTriggerDistance float64 `toml:"flee_trigger_distance" json:"flee_trigger_distance"`
	SafeDistance        float64 `toml:"safe_distance" json:"safe_distance"`
	IdleDuration        float64 `toml:"idle_duration" json:"idle_duration"`
	WanderRadius        float64 `toml:"wander_radius" json:"wander_radius"`
	JumpTriggerDistance float64 `toml:"jump_trigger_distance" json:"jump_trigger_distance"`
	ArrivalTolerance    float64 `toml:"arrival_tolerance" json:"arrival_tolerance"`
}

// PetProfileConfig holds the per-type constants of a pet.
type PetProfileConfig struct {
	CollisionRadius  float64  `toml:"collision_radius" json:"collision_radius"`
	BaseEscapeChance float64  `toml:"base_escape_chance" json:"base_escape_chance"`
	KnockbackForce   float64  `toml:"knockback_force" json:"knockback_force"`
	LeashBreakChance float64  `toml:"leash_break_chance" json:"leash_break_chance"`
	MoveSpeed        float64  `toml:"move_speed" json:"move_speed"`
	FleeSpeed        float64  `toml:"flee_speed" json:"flee_speed"`
	Skills           []string `toml:"skills" json:"skills"`
}

// PetsConfig groups the profiles by type.
type PetsConfig struct {
	Cat PetProfileConfig `toml:"cat" json:"cat"`
	Dog PetProfileConfig `toml:"dog" json:"dog"`
}

// SkillConfig is the shared parameter block of every skill. Each skill reads
// only the fields it needs.
type SkillConfig struct {
	Cooldown  float64 `toml:"cooldown" json:"cooldown"`
	Duration  float64 `toml:"duration" json:"duration,omitempty"`
	Magnitude float64 `toml:"magnitude" json:"magnitude,omitempty"`
	Radius    float64 `toml:"radius" json:"radius,omitempty"`
	Range     float64 `toml:"range" json:"range,omitempty"`
	Speed     float64 `toml:"speed" json:"speed,omitempty"`
	Interval  float64 `toml:"interval" json:"interval,omitempty"`
	MaxStacks int     `toml:"max_stacks" json:"max_stacks,omitempty"`
}

// SkillsConfig groups the skill blocks by key.
type SkillsConfig struct {
	CaptureNet       SkillConfig `toml:"capture_net" json:"capture_net"`
	Leash            SkillConfig `toml:"leash" json:"leash"`
	CalmingSpray     SkillConfig `toml:"calming_spray" json:"calming_spray"`
	AgileJump        SkillConfig `toml:"agile_jump" json:"agile_jump"`
	FurDistraction   SkillConfig `toml:"fur_distraction" json:"fur_distraction"`
	HideInGap        SkillConfig `toml:"hide_in_gap" json:"hide_in_gap"`
	PowerCharge      SkillConfig `toml:"power_charge" json:"power_charge"`
	IntimidatingBark SkillConfig `toml:"intimidating_bark" json:"intimidating_bark"`
	StealTool        SkillConfig `toml:"steal_tool" json:"steal_tool"`
}

// ModeConfig is the pet roster of a game mode.
type ModeConfig struct {
	Pets []string `toml:"pets" json:"pets"`
}

// ServerConfig tunes the live websocket server.
type ServerConfig struct {
	Addr     string   `toml:"addr" json:"addr"`
	TickRate Duration `toml:"tick_rate" json:"tick_rate"`
	DBPath   string   `toml:"db_path" json:"db_path"`
}

// SimConfig tunes the headless simulation harness.
type SimConfig struct {
	Dt              float64 `toml:"dt" json:"dt"`
	CollisionChance float64 `toml:"collision_chance" json:"collision_chance"`
}

// Duration is a wrapper for time.Duration that supports TOML marshaling.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the embedded defaults. It panics if they do not parse,
// which can only happen if defaults.toml itself is broken.
func Default() *Config {
	var cfg Config
	if _, err := toml.Decode(string(defaultsTOML), &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return &cfg
}

// Load returns the defaults with the override file at path applied on top,
// then validates the result. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// Pet returns the profile for a pet type key.
func (c *Config) Pet(kind string) (PetProfileConfig, bool) {
	switch kind {
	case PetCat:
		return c.Pets.Cat, true
	case PetDog:
		return c.Pets.Dog, true
	}
	return PetProfileConfig{}, false
}

// Skill returns the parameter block for a skill key.
func (c *Config) Skill(name string) (SkillConfig, bool) {
	switch name {
	case SkillCaptureNet:
		return c.Skills.CaptureNet, true
	case SkillLeash:
		return c.Skills.Leash, true
	case SkillCalmingSpray:
		return c.Skills.CalmingSpray, true
	case SkillAgileJump:
		return c.Skills.AgileJump, true
	case SkillFurDistraction:
		return c.Skills.FurDistraction, true
	case SkillHideInGap:
		return c.Skills.HideInGap, true
	case SkillPowerCharge:
		return c.Skills.PowerCharge, true
	case SkillIntimidatingBark:
		return c.Skills.IntimidatingBark, true
	case SkillStealTool:
		return c.Skills.StealTool, true
	}
	return SkillConfig{}, false
}

// Mode returns the roster for a game mode.
func (c *Config) Mode(name string) (ModeConfig, bool) {
	m, ok := c.Modes[name]
	return m, ok
}

// ThresholdFor returns the mischief threshold for a pet count.
func (c *Config) ThresholdFor(petCount int) (int, bool) {
	t, ok := c.Mischief.Thresholds[strconv.Itoa(petCount)]
	return t, ok
}

// ObjectPoints returns the mischief points of a destructible object kind.
func (c *Config) ObjectPoints(kind string) int {
	if p, ok := c.Mischief.Objects[kind]; ok {
		return p
	}
	return c.Mischief.DefaultCollisionPoints
}
