package engine

import (
	"fmt"
	"math"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/domain/pet"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

// Step is a stage of the grooming minigame.
type Step string

const (
	StepNone     Step = "None"
	StepBrush    Step = "Brush"
	StepClean    Step = "Clean"
	StepDry      Step = "Dry"
	StepComplete Step = "Complete"
)

var stepCycle = []Step{StepBrush, StepClean, StepDry}

// BaseGroomingSteps is the length of an untampered grooming sequence.
const BaseGroomingSteps = 3

// Station is a grooming table running one process at a time.
type Station struct {
	ID        string     `json:"id"`
	Position  arena.Vec2 `json:"position"`
	PetID     string     `json:"pet_id"`
	Step      Step       `json:"step"`
	StepsDone int        `json:"steps_done"`
	Extra     int        `json:"extra"` // Steps added by stolen tools
}

// Required is the number of steps the current or next session needs.
func (s *Station) Required() int { return BaseGroomingSteps + s.Extra }

// Busy reports whether a pet is on the table.
func (s *Station) Busy() bool { return s.PetID != "" }

// GroomingSystem runs the grooming process of every station.
type GroomingSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	cfg      config.MatchConfig

	stations []*Station
}

// NewGroomingSystem creates stations from the arena layout.
func NewGroomingSystem(eventLog *events.EventLog, log *logger.Logger, cfg config.MatchConfig, layout []config.StationConfig) *GroomingSystem {
	gs := &GroomingSystem{eventLog: eventLog, logger: log, cfg: cfg}
	for _, sc := range layout {
		gs.stations = append(gs.stations, &Station{
			ID:       sc.ID,
			Position: arena.Vec2{X: sc.Position.X, Z: sc.Position.Z},
			Step:     StepNone,
		})
	}
	return gs
}

// Stations returns every station.
func (gs *GroomingSystem) Stations() []*Station { return gs.stations }

// Station returns a station by ID.
func (gs *GroomingSystem) Station(id string) *Station {
	for _, s := range gs.stations {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Nearest returns the closest station to pos within reach, or nil.
func (gs *GroomingSystem) Nearest(pos arena.Vec2, reach float64) *Station {
	return nearestStation(gs.stations, pos, reach)
}

func nearestStation(stations []*Station, pos arena.Vec2, reach float64) *Station {
	var best *Station
	bestDist := math.Inf(1)
	for _, s := range stations {
		d := arena.Distance(pos, s.Position)
		if d <= reach && d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}

// stealTarget is the station a tool thief at pos would rob: the nearest one
// within reach, and only while it is below maxStacks extra steps.
func stealTarget(stations []*Station, pos arena.Vec2, reach float64, maxStacks int) *Station {
	s := nearestStation(stations, pos, reach)
	if s == nil || s.Extra >= maxStacks {
		return nil
	}
	return s
}

// StationOf returns the station grooming petID, or nil.
func (gs *GroomingSystem) StationOf(petID string) *Station {
	for _, s := range gs.stations {
		if s.PetID == petID {
			return s
		}
	}
	return nil
}

// Begin puts p on station s and starts at Brush.
func (gs *GroomingSystem) Begin(s *Station, p *pet.Pet) error {
	if s.Busy() {
		return ErrStationBusy
	}
	s.PetID = p.ID
	s.Step = StepBrush
	s.StepsDone = 0
	p.GroomSteps = 0
	p.Position = s.Position
	transition(gs.eventLog, gs.logger, p, pet.StateBeingGroomed)
	gs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeGroomingStarted,
		ActorID:  p.ID,
		TargetID: s.ID,
		Payload:  gs.payload(s, ""),
	})
	gs.logger.Event(string(events.EventTypeGroomingStarted), p.ID, fmt.Sprintf("on %s, %d steps", s.ID, s.Required()))
	return nil
}

// Press applies a grooming key to station s. Only the current step's key
// advances; anything else is a no-op returning false. It returns the pet
// when the press completes the sequence.
func (gs *GroomingSystem) Press(s *Station, p *pet.Pet, key Step) (advanced bool, done bool) {
	if !s.Busy() || p == nil || key != s.Step {
		return false, false
	}
	s.StepsDone++
	p.GroomSteps++
	gs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeGroomingStep,
		ActorID:  p.ID,
		TargetID: s.ID,
		Payload:  gs.payload(s, string(key)),
	})

	if s.StepsDone < s.Required() {
		s.Step = stepCycle[s.StepsDone%len(stepCycle)]
		return true, false
	}

	s.Step = StepComplete
	p.IsGroomed = true
	gs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypePetGroomed,
		ActorID:  p.ID,
		TargetID: s.ID,
		Payload:  gs.payload(s, string(StepComplete)),
	})
	gs.logger.Event(string(events.EventTypePetGroomed), p.ID, fmt.Sprintf("finished on %s after %d steps", s.ID, s.StepsDone))
	gs.clear(s)
	s.Extra = 0
	return true, true
}

// Abort cancels the process holding petID, if any. The pet's completed steps
// are forgotten.
func (gs *GroomingSystem) Abort(p *pet.Pet, reason string) bool {
	s := gs.StationOf(p.ID)
	if s == nil {
		return false
	}
	gs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeGroomingAborted,
		ActorID:  p.ID,
		TargetID: s.ID,
		Payload:  gs.payload(s, string(s.Step), reason),
	})
	gs.logger.Event(string(events.EventTypeGroomingAborted), p.ID, fmt.Sprintf("%s at %s (%s)", s.ID, s.Step, reason))
	gs.clear(s)
	p.GroomSteps = 0
	return true
}

// StealTool adds one required step to the nearest station within reach,
// up to maxStacks extra steps.
func (gs *GroomingSystem) StealTool(thief string, from arena.Vec2, reach float64, maxStacks int) (string, bool) {
	s := stealTarget(gs.stations, from, reach, maxStacks)
	if s == nil {
		return "", false
	}
	s.Extra++
	gs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeToolStolen,
		ActorID:  thief,
		TargetID: s.ID,
		Payload:  gs.payload(s, string(s.Step)),
	})
	gs.logger.Event(string(events.EventTypeToolStolen), thief, fmt.Sprintf("%s now needs %d steps", s.ID, s.Required()))
	return s.ID, true
}

func (gs *GroomingSystem) clear(s *Station) {
	s.PetID = ""
	s.Step = StepNone
	s.StepsDone = 0
}

func (gs *GroomingSystem) payload(s *Station, step string, reason ...string) events.GroomingPayload {
	p := events.GroomingPayload{StationID: s.ID, Step: step, StepsDone: s.StepsDone, StepsRequired: s.Required()}
	if len(reason) > 0 {
		p.Reason = reason[0]
	}
	return p
}

// Reset clears every station, including stolen tools.
func (gs *GroomingSystem) Reset() {
	for _, s := range gs.stations {
		gs.clear(s)
		s.Extra = 0
	}
}
