package engine

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/effect"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
	"github.com/MRamiBalles/PetGrooming/internal/platform/metrics"
	"github.com/MRamiBalles/PetGrooming/internal/skills"
)

const frame = 1.0 / 60

// stubRoll returns v for every roll; tests flip it mid-match.
type stubRoll struct{ v float64 }

func (s *stubRoll) Float64() float64 { return s.v }

func newTestEngine(t *testing.T, mut func(*config.Config), opts ...Option) (*Engine, *stubRoll) {
	t.Helper()
	cfg := config.Default()
	if mut != nil {
		mut(cfg)
	}
	roll := &stubRoll{v: 0.99}
	opts = append([]Option{WithRoller(roll), WithMetrics(metrics.NewCollector())}, opts...)
	return NewEngine(cfg, events.NewEventLog(nil), logger.Discard(), opts...), roll
}

func startMatch(t *testing.T, e *Engine, mode string) {
	t.Helper()
	if _, err := e.StartMatch(mode); err != nil {
		t.Fatalf("StartMatch(%q): %v", mode, err)
	}
}

// placeNear puts p dist units along +X from the Groomer.
func placeNear(e *Engine, p *pet.Pet, dist float64) {
	p.Position = e.Groomer().Position.Add(arena.Vec2{X: dist})
}

// run ticks n frames and returns every event they produced.
func run(e *Engine, n int, in FrameInput) ([]events.GameEvent, FrameOutput) {
	var all []events.GameEvent
	var out FrameOutput
	for i := 0; i < n; i++ {
		out = e.Tick(frame, in)
		all = append(all, out.Events...)
	}
	return all, out
}

func countEvents(evs []events.GameEvent, t events.EventType) int {
	n := 0
	for _, ev := range evs {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func TestStartMatchSpawnsPerMode(t *testing.T) {
	tests := []struct {
		mode      string
		ids       []string
		threshold int
	}{
		{"mvp", []string{"cat-1"}, 500},
		{"two_pet", []string{"cat-1", "dog-1"}, 800},
		{"three_pet", []string{"cat-1", "dog-1", "dog-2"}, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			e, _ := newTestEngine(t, nil, WithRoller(rand.New(rand.NewSource(7))))
			startMatch(t, e, tt.mode)

			if e.Phase() != PhasePlaying {
				t.Errorf("phase = %s, want Playing", e.Phase())
			}
			if e.Threshold() != tt.threshold {
				t.Errorf("threshold = %d, want %d", e.Threshold(), tt.threshold)
			}
			if e.RemainingPets() != len(tt.ids) {
				t.Errorf("remaining pets = %d, want %d", e.RemainingPets(), len(tt.ids))
			}
			pets := e.Pets()
			if len(pets) != len(tt.ids) {
				t.Fatalf("spawned %d pets, want %d", len(pets), len(tt.ids))
			}
			for i, p := range pets {
				if p.ID != tt.ids[i] {
					t.Errorf("pet %d id = %s, want %s", i, p.ID, tt.ids[i])
				}
				if !e.Bounds().Contains(p.Position) {
					t.Errorf("%s spawned outside the arena at %+v", p.ID, p.Position)
				}
				if d := arena.Distance(p.Position, e.Groomer().Position); d < e.Config().Arena.SpawnMinGroomerDistance {
					t.Errorf("%s spawned %.2f from the Groomer", p.ID, d)
				}
				if p.State() != pet.StateIdle {
					t.Errorf("%s starts %s, want Idle", p.ID, p.State())
				}
			}
		})
	}
}

func TestStartMatchRejectsBadInput(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	if _, err := e.StartMatch("five_pet"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}

	bad, _ := newTestEngine(t, func(c *config.Config) { c.Match.Duration = 0 })
	if _, err := bad.StartMatch("mvp"); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if bad.Phase() != PhaseNotStarted {
		t.Errorf("phase = %s after failed start", bad.Phase())
	}
}

func TestDefaultModeUsedWhenEmpty(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "")
	if got := len(e.Pets()); got != 2 {
		t.Errorf("default mode spawned %d pets, want 2", got)
	}
}

// Scenario A: alert starts exactly when cumulative mischief reaches 700 of 800.
func TestScenarioAlertAtThresholdMinusOffset(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "two_pet")

	for i := 1; i <= 15; i++ {
		e.AddMischief(events.ActorSystem, 50, "test")
		want := e.Mischief() >= 700
		if e.AlertActive() != want {
			t.Fatalf("after %d additions (value %d) alert = %t, want %t", i, e.Mischief(), e.AlertActive(), want)
		}
	}
	if e.Mischief() != 750 {
		t.Errorf("mischief = %d, want 750", e.Mischief())
	}
	if n := countEvents(e.EventLog().Replay(), events.EventTypeAlertStarted); n != 1 {
		t.Errorf("ALERT_STARTED recorded %d times, want 1", n)
	}
}

func TestAlertRaisesGroomerSpeed(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "two_pet")

	out := e.Tick(frame, FrameInput{Move: arena.Vec2{X: 1}})
	if out.GroomerSpeed != 5 {
		t.Fatalf("base speed = %v, want 5", out.GroomerSpeed)
	}
	e.AddMischief(events.ActorSystem, 700, "test")
	out = e.Tick(frame, FrameInput{Move: arena.Vec2{X: 1}})
	if math.Abs(out.GroomerSpeed-5.5) > 1e-9 {
		t.Errorf("alert speed = %v, want 5.5", out.GroomerSpeed)
	}
	if math.Abs(out.GroomerVelocity.X-5.5) > 1e-9 {
		t.Errorf("velocity = %+v", out.GroomerVelocity)
	}
}

func TestNonPositiveMischiefIgnored(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "mvp")
	e.AddMischief(events.ActorSystem, 0, "zero")
	e.AddMischief(events.ActorSystem, -10, "negative")
	if e.Mischief() != 0 {
		t.Errorf("mischief = %d, want 0", e.Mischief())
	}
}

// Scenario D: the timer runs out with one of two pets groomed.
func TestScenarioTimerExpiryIsPetWin(t *testing.T) {
	for _, withMischief := range []bool{false, true} {
		e, _ := newTestEngine(t, func(c *config.Config) { c.Match.Duration = 2 })
		startMatch(t, e, "two_pet")
		groomOne(t, e, e.Pet("cat-1"))

		_, out := run(e, 119, FrameInput{})
		if out.Result != nil {
			t.Fatalf("match ended early: %+v", out.Result)
		}
		if withMischief {
			e.AddMischief(events.ActorSystem, 800, "test")
		}
		out = e.Tick(frame, FrameInput{})
		if out.Result == nil {
			t.Fatal("expected a result on the final frame")
		}
		if out.Result.Phase != PhasePetWin {
			t.Errorf("phase = %s, want PetWin", out.Result.Phase)
		}
		wantReason := ReasonTimeExpired
		if withMischief {
			wantReason = ReasonMischiefThreshold
		}
		if out.Result.Reason != wantReason {
			t.Errorf("reason = %s, want %s", out.Result.Reason, wantReason)
		}
		if out.Result.PetsGroomed != 1 || out.Result.PetCount != 2 {
			t.Errorf("groomed %d of %d, want 1 of 2", out.Result.PetsGroomed, out.Result.PetCount)
		}
		if countEvents(out.Events, events.EventTypeMatchEnded) != 1 {
			t.Error("expected MATCH_ENDED on the final frame")
		}
	}
}

func TestAllGroomedIsGroomerWin(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "mvp")
	groomOne(t, e, e.Pet("cat-1"))

	out := e.Tick(frame, FrameInput{})
	if out.Result == nil || out.Result.Phase != PhaseGroomerWin || out.Result.Reason != ReasonAllGroomed {
		t.Fatalf("result = %+v, want GroomerWin by AllGroomed", out.Result)
	}
	if !out.Result.GroomerWon() {
		t.Error("GroomerWon() = false")
	}

	tick := out.Tick
	after := e.Tick(frame, FrameInput{})
	if after.Tick != tick || len(after.Events) != 0 {
		t.Errorf("tick after the end advanced the match: tick %d, %d events", after.Tick, len(after.Events))
	}
	if after.Result == nil || after.Result.Phase != PhaseGroomerWin {
		t.Error("finished result changed")
	}
}

func TestMischiefWinsOverAllGroomed(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "mvp")
	groomOne(t, e, e.Pet("cat-1"))
	e.AddMischief(events.ActorSystem, 500, "test")

	out := e.Tick(frame, FrameInput{})
	if out.Result == nil || out.Result.Phase != PhasePetWin || out.Result.Reason != ReasonMischiefThreshold {
		t.Errorf("result = %+v, want PetWin by MischiefThreshold", out.Result)
	}
}

func TestAbortReturnsToNotStarted(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "two_pet")
	e.AddMischief(events.ActorSystem, 100, "test")
	e.Abort()

	if e.Phase() != PhaseNotStarted {
		t.Errorf("phase = %s, want NotStarted", e.Phase())
	}
	if e.Mischief() != 0 || e.RemainingPets() != 0 || e.Groomer() != nil {
		t.Error("abort left match state behind")
	}
	log := e.EventLog().Replay()
	if countEvents(log, events.EventTypeMatchAborted) != 1 || countEvents(log, events.EventTypeMatchEnded) != 0 {
		t.Error("abort must record MATCH_ABORTED and no result")
	}
	out := e.Tick(frame, FrameInput{})
	if out.Result != nil || out.Tick != 0 {
		t.Errorf("tick after abort = %+v", out)
	}
	if err := e.TryCaptureNearest(); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch after abort, got %v", err)
	}

	// A new match starts clean.
	startMatch(t, e, "mvp")
	if e.Mischief() != 0 || len(e.Pets()) != 1 {
		t.Error("restart kept old state")
	}
}

func TestEffectExpiryVisibleToSameFrameInput(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "mvp")
	e.ApplyEffect(e.Groomer().ID, effect.KindStun, 1, frame, "test")

	out := e.Tick(frame, FrameInput{Skill: &SkillInput{Slot: 2}})
	if countEvents(out.Events, events.EventTypeSkillFailed) != 0 {
		t.Error("stun expiring this frame still blocked the skill")
	}
	if countEvents(out.Events, events.EventTypeSkillActivated) != 1 {
		t.Error("expected the spray to fire")
	}
}

func TestSkillInputOnCooldownRecordsFailure(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "mvp")

	if _, err := e.ActivateSkill(2, arena.Vec2{}); err != nil {
		t.Fatalf("first spray: %v", err)
	}
	_, err := e.ActivateSkill(2, arena.Vec2{})
	if !errors.Is(err, skills.ErrOnCooldown) {
		t.Fatalf("expected ErrOnCooldown, got %v", err)
	}
	if countEvents(e.EventLog().Replay(), events.EventTypeSkillFailed) != 1 {
		t.Error("expected SKILL_FAILED")
	}
	if cd := e.Cooldowns(e.Groomer().ID); cd[2] != 12 {
		t.Errorf("spray cooldown = %v, want 12", cd[2])
	}
}

func TestSkillReadyAfterCooldown(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "mvp")
	e.Groomer().Position = arena.Vec2{X: -15, Z: -15}
	if _, err := e.ActivateSkill(2, arena.Vec2{}); err != nil {
		t.Fatal(err)
	}
	evs, _ := run(e, 720, FrameInput{})
	ready := 0
	for _, ev := range evs {
		if ev.Type == events.EventTypeSkillReady && ev.ActorID == e.Groomer().ID {
			ready++
		}
	}
	if ready != 1 {
		t.Errorf("SKILL_READY for the Groomer %d times, want 1", ready)
	}
}

func TestNetSlowsPetForThreeSeconds(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "mvp")
	cat := e.Pet("cat-1")
	cat.Position = e.Groomer().Position.Add(arena.Vec2{Z: 5})

	if _, err := e.ActivateSkill(0, arena.Vec2{}); err != nil {
		t.Fatal(err)
	}
	hitFrame := 0
	for i := 1; i <= 60; i++ {
		e.Tick(frame, FrameInput{})
		if cat.Effects.Has(effect.KindSlow) {
			hitFrame = i
			break
		}
	}
	if hitFrame == 0 {
		t.Fatal("net never hit")
	}
	if m := cat.Effects.Magnitude(effect.KindSlow); m != 0.5 {
		t.Errorf("slow magnitude = %v, want 0.5", m)
	}
	run(e, 179, FrameInput{})
	if !cat.Effects.Has(effect.KindSlow) {
		t.Fatal("slow expired before 3 s")
	}
	e.Tick(frame, FrameInput{})
	if cat.Effects.Has(effect.KindSlow) {
		t.Error("slow outlasted 3 s")
	}
}

func TestHUDSnapshot(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	startMatch(t, e, "two_pet")
	cat := e.Pet("cat-1")
	placeNear(e, cat, 1)

	out := e.Tick(frame, FrameInput{})
	h := out.HUD
	if h.Timer != "03:00" {
		t.Errorf("timer = %q, want 03:00", h.Timer)
	}
	if h.MischiefMax != 800 || h.RemainingPets != 2 {
		t.Errorf("hud = %+v", h)
	}
	if len(h.Cooldowns) != 3 {
		t.Errorf("cooldowns = %v, want 3 slots", h.Cooldowns)
	}
	if h.GroomingStep != StepNone {
		t.Errorf("grooming step = %s, want None", h.GroomingStep)
	}
	snap := e.Snapshot()
	if snap.MatchID == "" || snap.Groomer == nil || len(snap.Pets) != 2 || len(snap.Stations) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}
