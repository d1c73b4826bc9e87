package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestDefaultPetProfiles(t *testing.T) {
	cfg := Default()

	if cfg.Pets.Dog.CollisionRadius != 1.0 || cfg.Pets.Dog.BaseEscapeChance != 0.3 {
		t.Errorf("dog profile = %+v, want radius 1.0 escape 0.3", cfg.Pets.Dog)
	}
	if cfg.Pets.Cat.CollisionRadius != 0.5 || cfg.Pets.Cat.BaseEscapeChance != 0.4 {
		t.Errorf("cat profile = %+v, want radius 0.5 escape 0.4", cfg.Pets.Cat)
	}
	if cfg.Pets.Dog.KnockbackForce <= cfg.Pets.Cat.KnockbackForce {
		t.Errorf("dog knockback %v must exceed cat knockback %v", cfg.Pets.Dog.KnockbackForce, cfg.Pets.Cat.KnockbackForce)
	}
}

func TestThresholdFor(t *testing.T) {
	cfg := Default()
	tests := []struct {
		pets int
		want int
	}{
		{1, 500},
		{2, 800},
		{3, 1000},
	}
	for _, tt := range tests {
		got, ok := cfg.ThresholdFor(tt.pets)
		if !ok || got != tt.want {
			t.Errorf("ThresholdFor(%d) = %d, %v; want %d", tt.pets, got, ok, tt.want)
		}
	}
	if _, ok := cfg.ThresholdFor(7); ok {
		t.Error("ThresholdFor(7) should not be configured")
	}
}

func TestObjectPointsFallsBackToDefault(t *testing.T) {
	cfg := Default()
	if got := cfg.ObjectPoints("shelf_item"); got != 50 {
		t.Errorf("shelf_item = %d, want 50", got)
	}
	if got := cfg.ObjectPoints("mystery"); got != cfg.Mischief.DefaultCollisionPoints {
		t.Errorf("unknown object = %d, want default %d", got, cfg.Mischief.DefaultCollisionPoints)
	}
}

func TestSkillLookup(t *testing.T) {
	cfg := Default()
	for _, name := range SkillNames {
		s, ok := cfg.Skill(name)
		if !ok {
			t.Errorf("Skill(%q) not found", name)
			continue
		}
		if s.Cooldown <= 0 {
			t.Errorf("Skill(%q) cooldown = %v", name, s.Cooldown)
		}
	}
	if _, ok := cfg.Skill("teleport"); ok {
		t.Error("unknown skill should not resolve")
	}
}

func TestLoadOverrideKeepsUnsetKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.toml")
	override := `
[match]
duration = 90.0

[skills.leash]
cooldown = 4.0

[server]
tick_rate = "33ms"
`
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Match.Duration != 90 {
		t.Errorf("duration = %v, want 90", cfg.Match.Duration)
	}
	if cfg.Match.CaptureRange != 1.5 {
		t.Errorf("capture_range should keep default 1.5, got %v", cfg.Match.CaptureRange)
	}
	if cfg.Skills.Leash.Cooldown != 4 {
		t.Errorf("leash cooldown = %v, want 4", cfg.Skills.Leash.Cooldown)
	}
	if cfg.Skills.Leash.Range != 6 {
		t.Errorf("leash range should keep default 6, got %v", cfg.Skills.Leash.Range)
	}
	if cfg.Server.TickRate.Duration != 33*time.Millisecond {
		t.Errorf("tick_rate = %v, want 33ms", cfg.Server.TickRate.Duration)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero cooldown", func(c *Config) { c.Skills.CaptureNet.Cooldown = 0 }, "capture_net.cooldown"},
		{"negative threshold", func(c *Config) { c.Mischief.Thresholds["2"] = -5 }, "thresholds[2]"},
		{"dog not heavier", func(c *Config) { c.Pets.Dog.KnockbackForce = c.Pets.Cat.KnockbackForce }, "knockback_force"},
		{"warning after max", func(c *Config) { c.Cage.WarningTime = 61 }, "cage.warning_time"},
		{"unknown pet in mode", func(c *Config) { c.Modes["mvp"] = ModeConfig{Pets: []string{"hamster"}} }, "hamster"},
		{"zero duration", func(c *Config) { c.Match.Duration = 0 }, "match.duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	cfg := Default()
	cfg.Match.Duration = -1
	cfg.Skills.Leash.Cooldown = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "match.duration") || !strings.Contains(msg, "leash.cooldown") {
		t.Errorf("both violations should be reported, got %q", msg)
	}
}

func TestEncodeRoundTripsThroughLoad(t *testing.T) {
	cfg := Default()
	cfg.Match.Duration = 120
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "full.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Match.Duration != 120 {
		t.Errorf("duration = %v, want 120", loaded.Match.Duration)
	}
}

func TestSchemaIsJSON(t *testing.T) {
	data, err := Schema()
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if doc["title"] != "Pet Grooming match config" {
		t.Errorf("title = %v", doc["title"])
	}
}
