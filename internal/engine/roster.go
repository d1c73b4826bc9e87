package engine

import (
	"fmt"

	"github.com/MRamiBalles/PetGrooming/internal/domain/groomer"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

// Roster is the set of actors in the current match.
// Groomed pets leave the active set but still count toward the total.
type Roster struct {
	groomer *groomer.Groomer
	pets    map[string]*pet.Pet
	order   []string
	spawned int
	groomed int
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{pets: make(map[string]*pet.Pet)}
}

// SetGroomer installs the match's Groomer.
func (r *Roster) SetGroomer(g *groomer.Groomer) { r.groomer = g }

// Groomer returns the Groomer, or nil before a match.
func (r *Roster) Groomer() *groomer.Groomer { return r.groomer }

// Add puts a freshly spawned pet in the active set.
func (r *Roster) Add(p *pet.Pet) {
	r.pets[p.ID] = p
	r.order = append(r.order, p.ID)
	r.spawned++
}

// Pet returns an active pet by ID.
func (r *Roster) Pet(id string) *pet.Pet { return r.pets[id] }

// Pets returns the active pets in spawn order.
func (r *Roster) Pets() []*pet.Pet {
	out := make([]*pet.Pet, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.pets[id])
	}
	return out
}

// MarkGroomed removes a finished pet from the active set.
func (r *Roster) MarkGroomed(id string) {
	if _, ok := r.pets[id]; !ok {
		return
	}
	delete(r.pets, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.groomed++
}

// Spawned is the number of pets spawned this match.
func (r *Roster) Spawned() int { return r.spawned }

// Groomed is the number of pets fully groomed.
func (r *Roster) Groomed() int { return r.groomed }

// Remaining is the number of pets still to groom.
func (r *Roster) Remaining() int { return r.spawned - r.groomed }

// AllGroomed reports whether every spawned pet is groomed.
func (r *Roster) AllGroomed() bool { return r.spawned > 0 && r.groomed == r.spawned }

// Reset empties the roster.
func (r *Roster) Reset() {
	r.groomer = nil
	r.pets = make(map[string]*pet.Pet)
	r.order = nil
	r.spawned = 0
	r.groomed = 0
}

// transition moves p to state s and records PET_STATE_CHANGED.
func transition(el *events.EventLog, log *logger.Logger, p *pet.Pet, s pet.State) {
	prev := p.SetState(s)
	if prev == s {
		return
	}
	el.Append(events.GameEvent{
		Type:    events.EventTypePetStateChanged,
		ActorID: p.ID,
		Payload: events.StateChangePayload{From: string(prev), To: string(s)},
	})
	log.Event(string(events.EventTypePetStateChanged), p.ID, fmt.Sprintf("%s -> %s", prev, s))
}
