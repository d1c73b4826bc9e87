package engine

import (
	"testing"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/domain/groomer"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
	"github.com/MRamiBalles/PetGrooming/internal/skills"
)

var testBounds = arena.Bounds{Min: arena.Vec2{X: -20, Z: -20}, Max: arena.Vec2{X: 20, Z: 20}}

func newBehavior(terrain arena.Terrain) (*BehaviorSystem, *config.Config) {
	cfg := config.Default()
	return NewBehaviorSystem(events.NewEventLog(nil), logger.Discard(), cfg, testBounds, terrain), cfg
}

func newPet(cfg *config.Config, id string, typ pet.Type, pos arena.Vec2) *pet.Pet {
	prof := cfg.Pets.Cat
	if typ == pet.TypeDog {
		prof = cfg.Pets.Dog
	}
	return pet.New(id, typ, ProfileFrom(prof), pos)
}

func notLeashed(string) bool { return false }

func TestBehaviorFleesWhenGroomerClose(t *testing.T) {
	bs, cfg := newBehavior(arena.FlatTerrain{})
	g := groomer.New(arena.Vec2{}, 5)
	cat := newPet(cfg, "cat-1", pet.TypeCat, arena.Vec2{X: 5})

	moves := bs.Decide(frame, g, []*pet.Pet{cat}, &stubRoll{v: 0.5}, notLeashed)
	if cat.State() != pet.StateFleeing {
		t.Fatalf("state = %s, want Fleeing", cat.State())
	}
	if len(moves) != 1 {
		t.Fatalf("got %d moves", len(moves))
	}
	m := moves[0]
	if m.Stop || m.Target != (arena.Vec2{X: 11}) {
		t.Errorf("flee move = %+v, want target (11,0)", m)
	}
	if m.Speed != cat.Profile.FleeSpeed {
		t.Errorf("flee speed = %v, want %v", m.Speed, cat.Profile.FleeSpeed)
	}
}

func TestBehaviorCalmsDownBeyondSafeDistance(t *testing.T) {
	bs, cfg := newBehavior(arena.FlatTerrain{})
	g := groomer.New(arena.Vec2{}, 5)
	cat := newPet(cfg, "cat-1", pet.TypeCat, arena.Vec2{X: 11})
	cat.SetState(pet.StateFleeing)

	bs.Decide(frame, g, []*pet.Pet{cat}, &stubRoll{v: 0.5}, notLeashed)
	if cat.State() != pet.StateFleeing {
		t.Fatalf("calmed down inside the safe distance")
	}

	cat.Position = arena.Vec2{X: 13}
	moves := bs.Decide(frame, g, []*pet.Pet{cat}, &stubRoll{v: 0.5}, notLeashed)
	if cat.State() != pet.StateWandering {
		t.Fatalf("state = %s, want Wandering", cat.State())
	}
	if moves[0].Stop || moves[0].Speed != cat.Profile.MoveSpeed {
		t.Errorf("wander move = %+v", moves[0])
	}
}

func TestBehaviorIdleTimer(t *testing.T) {
	bs, cfg := newBehavior(arena.FlatTerrain{})
	g := groomer.New(arena.Vec2{}, 5)
	cat := newPet(cfg, "cat-1", pet.TypeCat, arena.Vec2{X: 15, Z: 15})
	pets := []*pet.Pet{cat}
	roll := &stubRoll{v: 0.5}

	for i := 0; i < 119; i++ {
		moves := bs.Decide(frame, g, pets, roll, notLeashed)
		if !moves[0].Stop {
			t.Fatalf("idle pet moved on frame %d", i+1)
		}
	}
	if cat.State() != pet.StateIdle {
		t.Fatalf("left Idle early: %s", cat.State())
	}
	bs.Decide(frame, g, pets, roll, notLeashed)
	if cat.State() != pet.StateWandering {
		t.Errorf("state after 2s = %s, want Wandering", cat.State())
	}
}

func TestBehaviorSkipsHeldAndLeashedPets(t *testing.T) {
	bs, cfg := newBehavior(arena.FlatTerrain{})
	g := groomer.New(arena.Vec2{}, 5)
	held := newPet(cfg, "cat-1", pet.TypeCat, arena.Vec2{X: 1})
	held.SetState(pet.StateCaptured)
	leashed := newPet(cfg, "dog-1", pet.TypeDog, arena.Vec2{X: 3})

	moves := bs.Decide(frame, g, []*pet.Pet{held, leashed}, &stubRoll{}, func(id string) bool { return id == "dog-1" })
	if len(moves) != 0 {
		t.Errorf("expected no moves, got %+v", moves)
	}
	if leashed.State() != pet.StateIdle {
		t.Errorf("leashed pet changed state to %s", leashed.State())
	}
}

func TestBehaviorStunnedPetStops(t *testing.T) {
	bs, cfg := newBehavior(arena.FlatTerrain{})
	g := groomer.New(arena.Vec2{}, 5)
	cat := newPet(cfg, "cat-1", pet.TypeCat, arena.Vec2{X: 5})
	cat.Effects.Apply(effect.KindStun, 1, 1, "test")

	moves := bs.Decide(frame, g, []*pet.Pet{cat}, &stubRoll{}, notLeashed)
	if !moves[0].Stop {
		t.Errorf("stunned pet should stop, got %+v", moves[0])
	}
}

func TestDogDetoursAroundClimbable(t *testing.T) {
	terrain := arena.ZoneTerrain{Climbable: []arena.Zone{{Center: arena.Vec2{X: 10}, Radius: 2}}}
	bs, cfg := newBehavior(terrain)
	g := groomer.New(arena.Vec2{}, 5)
	dog := newPet(cfg, "dog-1", pet.TypeDog, arena.Vec2{X: 4})
	cat := newPet(cfg, "cat-1", pet.TypeCat, arena.Vec2{X: 4})

	moves := bs.Decide(frame, g, []*pet.Pet{dog, cat}, &stubRoll{}, notLeashed)
	if len(moves) != 2 {
		t.Fatalf("got %d moves", len(moves))
	}
	if moves[0].Stop || terrain.IsClimbable(moves[0].Target) {
		t.Errorf("dog move %+v ends on climbable ground", moves[0])
	}
	if moves[1].Target != (arena.Vec2{X: 10}) {
		t.Errorf("cat should flee straight onto the shelf, got %+v", moves[1])
	}
}

func TestChooseSkill(t *testing.T) {
	bs, cfg := newBehavior(arena.FlatTerrain{})
	g := groomer.New(arena.Vec2{}, 5)

	cat := newPet(cfg, "cat-1", pet.TypeCat, arena.Vec2{X: 2})
	catSet, err := skills.NewSet(cat.ID, true, cfg.Pets.Cat.Skills, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := bs.ChooseSkill(cat, g, catSet, nil); got != skills.KindAgileJump {
		t.Errorf("close cat chose %q, want agile_jump", got)
	}

	dog := newPet(cfg, "dog-1", pet.TypeDog, arena.Vec2{X: 2})
	dogSet, err := skills.NewSet(dog.ID, true, cfg.Pets.Dog.Skills, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := bs.ChooseSkill(dog, g, dogSet, nil); got != skills.KindIntimidatingBark {
		t.Errorf("dog near empty-handed groomer chose %q, want intimidating_bark", got)
	}
	g.Carry("cat-1")
	if got := bs.ChooseSkill(dog, g, dogSet, nil); got != skills.KindPowerCharge {
		t.Errorf("dog near carrying groomer chose %q, want power_charge", got)
	}

	far := newPet(cfg, "dog-2", pet.TypeDog, arena.Vec2{X: 15, Z: 15})
	st := []*Station{{ID: "station-1", Position: arena.Vec2{X: 16, Z: 15}}}
	if got := bs.ChooseSkill(far, g, dogSet, st); got != skills.KindStealTool {
		t.Errorf("dog by a station chose %q, want steal_tool", got)
	}
	st[0].Extra = cfg.Skills.StealTool.MaxStacks
	if got := bs.ChooseSkill(far, g, dogSet, st); got != "" {
		t.Errorf("station at max stacks still chosen: %q", got)
	}

	// A free station behind a capped nearer one is out of the thief's reach.
	st = append(st, &Station{ID: "station-2", Position: arena.Vec2{X: 17, Z: 15}})
	if got := bs.ChooseSkill(far, g, dogSet, st); got != "" {
		t.Errorf("capped nearest station still chosen: %q", got)
	}
}

func TestStealTargetMatchesStealTool(t *testing.T) {
	cfg := config.Default()
	gs := NewGroomingSystem(events.NewEventLog(nil), logger.Discard(), cfg.Match, []config.StationConfig{
		{ID: "near", Position: config.Point{X: 1}},
		{ID: "far", Position: config.Point{X: 2.5}},
	})
	near, far := gs.Stations()[0], gs.Stations()[1]
	near.Extra = 3

	from := arena.Vec2{}
	if s := stealTarget(gs.Stations(), from, 3, 3); s != nil {
		t.Errorf("stealTarget = %s, want none while the nearest is capped", s.ID)
	}
	if id, ok := gs.StealTool("dog-1", from, 3, 3); ok {
		t.Errorf("StealTool robbed %s past a capped nearest station", id)
	}
	if far.Extra != 0 {
		t.Errorf("far station extra = %d, want 0", far.Extra)
	}

	near.Extra = 0
	if s := stealTarget(gs.Stations(), from, 3, 3); s != near {
		t.Error("stealTarget should pick the nearest station")
	}
	if id, ok := gs.StealTool("dog-1", from, 3, 3); !ok || id != "near" {
		t.Errorf("StealTool = %q %v, want near", id, ok)
	}
}
