package engine

import (
	"fmt"

	"github.com/MRamiBalles/PetGrooming/internal/domain/clock"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

// Phase is the lifecycle stage of a match.
type Phase string

const (
	PhaseNotStarted Phase = "NotStarted"
	PhasePlaying    Phase = "Playing"
	PhaseGroomerWin Phase = "GroomerWin"
	PhasePetWin     Phase = "PetWin"
)

// IsTerminal reports whether the match is over.
func (p Phase) IsTerminal() bool {
	return p == PhaseGroomerWin || p == PhasePetWin
}

// Reason records which win condition ended a match.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonMischiefThreshold Reason = "MischiefThreshold"
	ReasonAllGroomed        Reason = "AllGroomed"
	ReasonTimeExpired       Reason = "TimeExpired"
)

// MatchResult summarises a finished match.
type MatchResult struct {
	MatchID     string  `json:"match_id"`
	Mode        string  `json:"mode"`
	Phase       Phase   `json:"phase"`
	Reason      Reason  `json:"reason"`
	Elapsed     float64 `json:"elapsed"`
	Mischief    int     `json:"mischief"`
	Threshold   int     `json:"threshold"`
	PetCount    int     `json:"pet_count"`
	PetsGroomed int     `json:"pets_groomed"`
}

// GroomerWon reports whether the Groomer won.
func (r MatchResult) GroomerWon() bool {
	return r.Phase == PhaseGroomerWin
}

// MatchController owns the match phase and timer.
type MatchController struct {
	eventLog *events.EventLog
	logger   *logger.Logger

	matchID string
	mode    string
	phase   Phase
	reason  Reason
	timer   clock.Countdown
}

// NewMatchController creates a controller in the NotStarted phase.
func NewMatchController(eventLog *events.EventLog, log *logger.Logger) *MatchController {
	return &MatchController{
		eventLog: eventLog,
		logger:   log,
		phase:    PhaseNotStarted,
	}
}

// Start begins a match of the given length and records MATCH_STARTED.
func (mc *MatchController) Start(matchID, mode string, duration float64, petCount, threshold int) {
	mc.matchID = matchID
	mc.mode = mode
	mc.phase = PhasePlaying
	mc.reason = ReasonNone
	mc.timer = clock.New(duration)

	mc.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeMatchStarted,
		ActorID: events.ActorSystem,
		Payload: events.MatchPayload{Mode: mode, PetCount: petCount, Threshold: threshold, Duration: duration},
	})
	mc.logger.Info("match %s started: mode=%s pets=%d threshold=%d", matchID, mode, petCount, threshold)
}

// Advance runs the match timer. It is a no-op outside Playing.
func (mc *MatchController) Advance(dt float64) {
	if mc.phase != PhasePlaying {
		return
	}
	mc.timer.Tick(dt)
}

// Evaluate applies the win conditions in priority order: mischief threshold,
// then all pets groomed, then timer expiry. It reports whether the match
// ended on this call; a finished match never changes again.
func (mc *MatchController) Evaluate(mischiefReached, allGroomed bool) bool {
	if mc.phase != PhasePlaying {
		return false
	}
	switch {
	case mischiefReached:
		mc.finish(PhasePetWin, ReasonMischiefThreshold)
	case allGroomed:
		mc.finish(PhaseGroomerWin, ReasonAllGroomed)
	case mc.timer.Done():
		mc.finish(PhasePetWin, ReasonTimeExpired)
	default:
		return false
	}
	return true
}

func (mc *MatchController) finish(phase Phase, reason Reason) {
	mc.phase = phase
	mc.reason = reason
}

// Announce records MATCH_ENDED for a finished match.
func (mc *MatchController) Announce(res MatchResult) {
	mc.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeMatchEnded,
		ActorID: events.ActorSystem,
		Payload: events.MatchPayload{
			Mode:        res.Mode,
			PetCount:    res.PetCount,
			Threshold:   res.Threshold,
			Duration:    res.Elapsed,
			Result:      string(res.Phase),
			Reason:      string(res.Reason),
			Mischief:    res.Mischief,
			PetsGroomed: res.PetsGroomed,
		},
	})
	mc.logger.Event(string(events.EventTypeMatchEnded), events.ActorSystem,
		fmt.Sprintf("%s by %s after %.1fs", res.Phase, res.Reason, res.Elapsed))
}

// Reset returns to NotStarted.
func (mc *MatchController) Reset() {
	mc.phase = PhaseNotStarted
	mc.reason = ReasonNone
	mc.matchID = ""
	mc.mode = ""
	mc.timer = clock.Countdown{}
}

func (mc *MatchController) Phase() Phase       { return mc.phase }
func (mc *MatchController) Reason() Reason     { return mc.reason }
func (mc *MatchController) MatchID() string    { return mc.matchID }
func (mc *MatchController) Mode() string       { return mc.mode }
func (mc *MatchController) Remaining() float64 { return mc.timer.Remaining }
func (mc *MatchController) Elapsed() float64   { return mc.timer.Elapsed() }
