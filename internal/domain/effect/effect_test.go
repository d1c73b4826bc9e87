package effect

import (
	"math"
	"testing"
)

func TestSlowStrongestWins(t *testing.T) {
	s := NewState()
	s.Apply(KindSlow, 0.2, 3, "bark")

	if !s.Apply(KindSlow, 0.5, 3, "net") {
		t.Fatal("stronger slow should override")
	}
	if got := s.Magnitude(KindSlow); got != 0.5 {
		t.Errorf("magnitude = %v, want 0.5", got)
	}
	if s.Apply(KindSlow, 0.2, 10, "bark") {
		t.Error("weaker slow should be rejected")
	}
	if got := s.Magnitude(KindSlow); got != 0.5 {
		t.Errorf("magnitude after rejected apply = %v, want 0.5", got)
	}
}

func TestEqualSlowRefreshesDuration(t *testing.T) {
	s := NewState()
	s.Apply(KindSlow, 0.5, 3, "net")
	s.Tick(2)
	if !s.Apply(KindSlow, 0.5, 3, "net") {
		t.Fatal("equal slow should refresh")
	}
	if got := s.Remaining(KindSlow); got != 3 {
		t.Errorf("remaining = %v, want 3", got)
	}
}

func TestOtherKindsReset(t *testing.T) {
	s := NewState()
	s.Apply(KindStun, 1, 1, "spray")
	s.Tick(0.5)
	s.Apply(KindStun, 1, 1, "spray")
	if got := s.Remaining(KindStun); got != 1 {
		t.Errorf("stun remaining = %v, want 1", got)
	}
}

func TestKindsAreIndependent(t *testing.T) {
	s := NewState()
	s.Apply(KindSlow, 0.5, 3, "net")
	s.Apply(KindStun, 1, 1, "spray")

	if got := s.SpeedMultiplier(); got != 0 {
		t.Errorf("stunned speed = %v, want 0", got)
	}
	expired := s.Tick(1)
	if len(expired) != 1 || expired[0] != KindStun {
		t.Fatalf("expired = %v, want [Stun]", expired)
	}
	if !s.Has(KindSlow) {
		t.Error("slow should survive stun expiry")
	}
	if got := s.SpeedMultiplier(); got != 0.5 {
		t.Errorf("speed = %v, want 0.5", got)
	}
}

func TestSlowLastsExactlyThreeSeconds(t *testing.T) {
	s := NewState()
	s.Apply(KindSlow, 0.5, 3, "net")
	dt := 1.0 / 60.0
	elapsed := 0.0
	for i := 1; i <= 180; i++ {
		if !s.Has(KindSlow) {
			t.Fatalf("slow expired early at %v s", elapsed)
		}
		s.Tick(dt)
		elapsed += dt
	}
	if s.Has(KindSlow) {
		t.Error("slow should expire at 3.0 s")
	}
	if math.Abs(elapsed-3) > 1e-9 {
		t.Errorf("elapsed = %v", elapsed)
	}
	if s.SpeedMultiplier() != 1 {
		t.Errorf("speed should revert to 1, got %v", s.SpeedMultiplier())
	}
}

func TestApplyRejectsNonPositiveDuration(t *testing.T) {
	s := NewState()
	if s.Apply(KindHidden, 0, 0, "x") {
		t.Error("zero-duration effect should be rejected")
	}
	if len(s.Active()) != 0 {
		t.Error("no effect should be active")
	}
}

func TestClear(t *testing.T) {
	s := NewState()
	s.Apply(KindHidden, 0, 3, "gap")
	s.Apply(KindInvulnerable, 0, 3, "cage")
	s.Clear()
	if s.Has(KindHidden) || s.Has(KindInvulnerable) {
		t.Error("clear should drop all effects")
	}
}
