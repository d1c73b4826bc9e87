package skills

import (
	"fmt"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
)

// Set is the ordered skill bar of one actor.
type Set struct {
	Owner       string
	IsPet       bool
	skills      []Skill
	hitMischief int
}

// NewSet builds the skills named in kinds, in order.
func NewSet(owner string, isPet bool, kinds []string, cfg *config.Config) (*Set, error) {
	set := &Set{Owner: owner, IsPet: isPet, hitMischief: cfg.Match.PetSkillHitMischief}
	for _, k := range kinds {
		s, err := New(Kind(k), cfg)
		if err != nil {
			return nil, fmt.Errorf("skill set for %s: %w", owner, err)
		}
		set.skills = append(set.skills, s)
	}
	return set, nil
}

// Skills returns the skills in slot order.
func (s *Set) Skills() []Skill { return s.skills }

// Get returns the skill of kind, or nil.
func (s *Set) Get(kind Kind) Skill {
	for _, sk := range s.skills {
		if sk.Kind() == kind {
			return sk
		}
	}
	return nil
}

// Activate fires the skill in slot i.
func (s *Set) Activate(i int, caster Caster, aim arena.Vec2, w World) (Result, error) {
	if i < 0 || i >= len(s.skills) {
		return Result{}, fmt.Errorf("%w: slot %d", ErrNoSkill, i)
	}
	return Activate(s.skills[i], Context{Caster: caster, Aim: aim, World: w, HitMischief: s.hitMischief})
}

// ActivateKind fires the skill of kind.
func (s *Set) ActivateKind(kind Kind, caster Caster, aim arena.Vec2, w World) (Result, error) {
	sk := s.Get(kind)
	if sk == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNoSkill, kind)
	}
	return Activate(sk, Context{Caster: caster, Aim: aim, World: w, HitMischief: s.hitMischief})
}

// Tick decays every cooldown and returns the skills that became ready.
func (s *Set) Tick(dt float64) []Kind {
	var ready []Kind
	for _, sk := range s.skills {
		if sk.Tick(dt) {
			ready = append(ready, sk.Kind())
		}
	}
	return ready
}

// Cooldowns returns the remaining cooldown per slot.
func (s *Set) Cooldowns() []float64 {
	out := make([]float64, len(s.skills))
	for i, sk := range s.skills {
		out[i] = sk.Remaining()
	}
	return out
}

// Reset makes every skill ready.
func (s *Set) Reset() {
	for _, sk := range s.skills {
		sk.Reset()
	}
}
