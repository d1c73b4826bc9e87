package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/skills"
)

// Scenario B: capture succeeds at 1.4 and fails at 1.6 without side effects.
func TestScenarioCaptureRange(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "two_pet")
	cat := e.Pet("cat-1")
	placeNear(e, cat, 1.4)
	if err := e.TryCapture(cat.ID); err != nil {
		t.Fatalf("capture at 1.4: %v", err)
	}
	if cat.State() != pet.StateCaptured || e.Groomer().Carried() != cat.ID {
		t.Errorf("after capture: state %s, carried %q", cat.State(), e.Groomer().Carried())
	}

	far, _ := newTestEngine(t, nil)
	startMatch(t, far, "two_pet")
	cat = far.Pet("cat-1")
	placeNear(far, cat, 1.6)
	before := cat.State()
	if err := far.TryCapture(cat.ID); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if cat.State() != before || far.Groomer().IsCarrying() {
		t.Error("failed capture changed state")
	}
	if countEvents(far.EventLog().Replay(), events.EventTypeCaptureFailed) != 1 {
		t.Error("expected CAPTURE_FAILED hint")
	}
}

func TestCaptureWhileCarrying(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "two_pet")
	cat, dog := e.Pet("cat-1"), e.Pet("dog-1")
	placeNear(e, cat, 1)
	if err := e.TryCapture(cat.ID); err != nil {
		t.Fatal(err)
	}
	placeNear(e, dog, 0.5)
	dogState := dog.State()

	for _, id := range []string{dog.ID, cat.ID} {
		if err := e.TryCapture(id); !errors.Is(err, ErrAlreadyCarrying) {
			t.Errorf("capture %s while carrying: got %v", id, err)
		}
	}
	if dog.State() != dogState || cat.State() != pet.StateCaptured || e.Groomer().Carried() != cat.ID {
		t.Error("rejected capture changed state")
	}
}

func TestCaptureUnavailableTargets(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "mvp")
	cat := e.Pet("cat-1")
	placeNear(e, cat, 1)
	e.ApplyEffect(cat.ID, effect.KindInvulnerable, 1, 3, "test")

	if err := e.TryCapture(cat.ID); !errors.Is(err, ErrTargetUnavailable) {
		t.Errorf("invulnerable: expected ErrTargetUnavailable, got %v", err)
	}
	if err := e.TryCapture("ghost"); !errors.Is(err, ErrTargetUnavailable) {
		t.Errorf("unknown pet: expected ErrTargetUnavailable, got %v", err)
	}
}

func TestCarriedPetFollowsAnchor(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "mvp")
	cat := e.Pet("cat-1")
	placeNear(e, cat, 1)
	if err := e.TryCapture(cat.ID); err != nil {
		t.Fatal(err)
	}
	to := arena.Vec2{X: 3, Z: -10}
	out := e.Tick(frame, FrameInput{GroomerPosition: &to, Move: arena.Vec2{X: 1}})
	want := arena.Vec2{X: 4, Z: -10}
	if out.CarryAnchor == nil || arena.Distance(*out.CarryAnchor, want) > 1e-9 {
		t.Fatalf("carry anchor = %v, want %+v", out.CarryAnchor, want)
	}
	if arena.Distance(cat.Position, want) > 1e-9 {
		t.Errorf("carried pet at %+v, want %+v", cat.Position, want)
	}
}

func TestStruggleEscapePlacement(t *testing.T) {
	e, roll := newTestEngine(t, nil)
	startMatch(t, e, "mvp")
	cat := e.Pet("cat-1")
	placeNear(e, cat, 1)
	if err := e.TryCapture(cat.ID); err != nil {
		t.Fatal(err)
	}
	roll.v = 0

	evs, _ := run(e, 59, FrameInput{})
	if cat.State() != pet.StateCaptured || countEvents(evs, events.EventTypePetEscaped) != 0 {
		t.Fatal("pet escaped before the first struggle interval")
	}
	out := e.Tick(frame, FrameInput{})
	if countEvents(out.Events, events.EventTypePetEscaped) != 1 {
		t.Fatal("expected PET_ESCAPED on the 60th frame")
	}
	if cat.State() != pet.StateFleeing || e.Groomer().IsCarrying() {
		t.Errorf("after escape: state %s, carrying %t", cat.State(), e.Groomer().IsCarrying())
	}
	if d := arena.Distance(cat.Position, e.Groomer().Position); math.Abs(d-3) > 1e-9 {
		t.Errorf("escape distance = %v, want 3", d)
	}
	if len(out.Teleports) != 1 || out.Teleports[0].ActorID != cat.ID {
		t.Errorf("teleports = %+v", out.Teleports)
	}
}

func TestStunnedPetSkipsStruggle(t *testing.T) {
	e, roll := newTestEngine(t, nil)
	startMatch(t, e, "mvp")
	cat := e.Pet("cat-1")
	placeNear(e, cat, 1)
	if err := e.TryCapture(cat.ID); err != nil {
		t.Fatal(err)
	}
	e.ApplyEffect(cat.ID, effect.KindStun, 1, 1.5, "test")
	roll.v = 0

	run(e, 60, FrameInput{})
	if cat.State() != pet.StateCaptured {
		t.Fatal("stunned pet struggled free")
	}
	run(e, 60, FrameInput{})
	if cat.State() != pet.StateFleeing {
		t.Errorf("state = %s after the stun wore off, want Fleeing", cat.State())
	}
}

func TestPowerChargeKnocksPetLoose(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "two_pet")
	cat, dog := e.Pet("cat-1"), e.Pet("dog-1")
	placeNear(e, cat, 1)
	if err := e.TryCapture(cat.ID); err != nil {
		t.Fatal(err)
	}
	placeNear(e, dog, -2)

	res, err := e.ActivatePetSkill(dog.ID, skills.KindPowerCharge)
	if err != nil {
		t.Fatal(err)
	}
	if !res.HitGroomer {
		t.Error("charge in range should hit the Groomer")
	}
	if e.Groomer().IsCarrying() || cat.State() != pet.StateFleeing {
		t.Errorf("carried pet not released: state %s", cat.State())
	}
	if e.Mischief() != 30 {
		t.Errorf("mischief = %d, want 30", e.Mischief())
	}
}

func TestBarkSlowsGroomer(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "two_pet")
	dog := e.Pet("dog-1")
	placeNear(e, dog, 4)

	if _, err := e.ActivatePetSkill(dog.ID, skills.KindIntimidatingBark); err != nil {
		t.Fatal(err)
	}
	if e.Mischief() != 30 {
		t.Errorf("mischief = %d, want 30", e.Mischief())
	}
	dog.Position = arena.Vec2{X: 15, Z: 15}
	out := e.Tick(frame, FrameInput{Move: arena.Vec2{Z: 1}})
	if math.Abs(out.GroomerSpeed-4) > 1e-9 {
		t.Errorf("slowed speed = %v, want 4", out.GroomerSpeed)
	}
}

func TestLeashReelsPetIntoCaptureRange(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "mvp")
	cat := e.Pet("cat-1")
	// Spend the jump so the cat cannot hop away once reeled in.
	if _, err := e.ActivatePetSkill(cat.ID, skills.KindAgileJump); err != nil {
		t.Fatal(err)
	}
	cat.Position = e.Groomer().Position.Add(arena.Vec2{Z: 5})

	if _, err := e.ActivateSkill(1, arena.Vec2{}); err != nil {
		t.Fatal(err)
	}
	if countEvents(e.EventLog().Replay(), events.EventTypeLeashAttached) != 1 {
		t.Fatal("leash did not attach")
	}
	ended := false
	for i := 0; i < 60 && !ended; i++ {
		out := e.Tick(frame, FrameInput{})
		ended = countEvents(out.Events, events.EventTypeLeashEnded) == 1
	}
	if !ended {
		t.Fatal("expected LEASH_ENDED within a second")
	}
	if d := arena.Distance(cat.Position, e.Groomer().Position); d > e.Config().Match.CaptureRange {
		t.Fatalf("pet still %.2f away", d)
	}
	if err := e.TryCapture(cat.ID); err != nil {
		t.Errorf("capture after leash: %v", err)
	}
}
