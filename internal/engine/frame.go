package engine

import (
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/events"
)

// PetInput is a pet position reported by the physics layer.
type PetInput struct {
	ID       string     `json:"id"`
	Position arena.Vec2 `json:"position"`
	Moving   bool       `json:"moving"`
}

// SkillInput asks the Groomer to fire the skill in Slot.
type SkillInput struct {
	Slot int        `json:"slot"`
	Aim  arena.Vec2 `json:"aim"` // Zero uses the Groomer's facing
}

// CollisionKind tells what a pet ran into.
type CollisionKind string

const (
	CollisionObject  CollisionKind = "object"
	CollisionGroomer CollisionKind = "groomer"
)

// Collision is a contact reported by the physics layer this frame.
type Collision struct {
	PetID        string        `json:"pet_id"`
	Kind         CollisionKind `json:"kind"`
	Object       string        `json:"object,omitempty"` // Destructible kind, for object contacts
	ContactSpeed float64       `json:"contact_speed"`
	Normal       arena.Vec2    `json:"normal"` // Points from the pet toward what it hit
}

// FrameInput is everything the outside world tells the engine for one frame.
type FrameInput struct {
	GroomerPosition *arena.Vec2 `json:"groomer_position,omitempty"`
	Pets            []PetInput  `json:"pets,omitempty"`

	Move     arena.Vec2  `json:"move"` // Movement intent, length ≤ 1
	Interact bool        `json:"interact"`
	Release  bool        `json:"release"` // Free the caged pet by hand
	Skill    *SkillInput `json:"skill,omitempty"`
	GroomKey Step        `json:"groom_key,omitempty"`

	Collisions []Collision `json:"collisions,omitempty"`
}

// MoveRequest asks the navigation layer to move a pet.
type MoveRequest struct {
	PetID  string     `json:"pet_id"`
	Target arena.Vec2 `json:"target"`
	Speed  float64    `json:"speed"`
	Stop   bool       `json:"stop,omitempty"`
}

// Teleport is an instant reposition the physics layer must apply.
type Teleport struct {
	ActorID  string     `json:"actor_id"`
	Position arena.Vec2 `json:"position"`
}

// Knockback is an impulse to apply to the Groomer.
type Knockback struct {
	PetID   string     `json:"pet_id"`
	Impulse arena.Vec2 `json:"impulse"`
}

// Trigger is a presentation cue (animation, particle or sound).
type Trigger struct {
	Cue      string `json:"cue"`
	ActorID  string `json:"actor_id"`
	TargetID string `json:"target_id,omitempty"`
}

// Prompts are the context buttons the HUD should offer.
type Prompts struct {
	Capture bool `json:"capture"`
	Deliver bool `json:"deliver"`
	Cage    bool `json:"cage"`
	Release bool `json:"release"`
	Groom   bool `json:"groom"`
}

// HUD is the per-frame snapshot for the overlay.
type HUD struct {
	Phase         Phase     `json:"phase"`
	Timer         string    `json:"timer"`
	Remaining     float64   `json:"remaining"`
	Mischief      int       `json:"mischief"`
	MischiefMax   int       `json:"mischief_max"`
	Alert         bool      `json:"alert"`
	GroomingStep  Step      `json:"grooming_step"`
	StepsDone     int       `json:"steps_done"`
	StepsRequired int       `json:"steps_required"`
	Prompts       Prompts   `json:"prompts"`
	CageOccupant  string    `json:"cage_occupant,omitempty"`
	CageTime      float64   `json:"cage_time"`
	Cooldowns     []float64 `json:"cooldowns"`
	Distracted    bool      `json:"distracted"`
	Carrying      string    `json:"carrying,omitempty"`
	RemainingPets int       `json:"remaining_pets"`
}

// FrameOutput is everything the engine tells the outside world after a frame.
type FrameOutput struct {
	Tick int64 `json:"tick"`

	Moves           []MoveRequest `json:"moves,omitempty"`
	GroomerVelocity arena.Vec2    `json:"groomer_velocity"`
	GroomerSpeed    float64       `json:"groomer_speed"`
	CarryAnchor     *arena.Vec2   `json:"carry_anchor,omitempty"`
	Teleports       []Teleport    `json:"teleports,omitempty"`
	Knockbacks      []Knockback   `json:"knockbacks,omitempty"`
	Triggers        []Trigger     `json:"triggers,omitempty"`

	HUD    HUD                `json:"hud"`
	Events []events.GameEvent `json:"events,omitempty"`
	Result *MatchResult       `json:"result,omitempty"`
}

// cues maps recorded events to presentation triggers.
var cues = map[events.EventType]string{
	events.EventTypeSkillActivated:  "anim:skill",
	events.EventTypeNetFired:        "vfx:net_throw",
	events.EventTypeNetHit:          "vfx:net_hit",
	events.EventTypeLeashAttached:   "vfx:leash",
	events.EventTypeLeashBroken:     "sfx:leash_snap",
	events.EventTypeCaptureSucceed:  "anim:pickup",
	events.EventTypePetEscaped:      "sfx:escape",
	events.EventTypeGroomingStep:    "sfx:groom_step",
	events.EventTypePetGroomed:      "vfx:sparkle",
	events.EventTypeToolStolen:      "sfx:steal",
	events.EventTypeAlertStarted:    "sfx:alert",
	events.EventTypeCageStored:      "sfx:cage_close",
	events.EventTypeCageWarning:     "ui:cage_warning",
	events.EventTypeCageReleased:    "sfx:cage_open",
	events.EventTypeKnockback:       "anim:stagger",
	events.EventTypeMischiefAdded:   "sfx:crash",
	events.EventTypeMatchEnded:      "ui:result",
	events.EventTypeEffectApplied:   "vfx:effect",
	events.EventTypeGroomingAborted: "sfx:groom_abort",
}

func triggersFor(evs []events.GameEvent) []Trigger {
	var out []Trigger
	for _, ev := range evs {
		cue, ok := cues[ev.Type]
		if !ok {
			continue
		}
		out = append(out, Trigger{Cue: cue, ActorID: ev.ActorID, TargetID: ev.TargetID})
	}
	return out
}
