package network

import (
	"context"
	"sync"
	"time"

	"github.com/MRamiBalles/PetGrooming/internal/domain/clock"
	"github.com/MRamiBalles/PetGrooming/internal/engine"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
	"github.com/MRamiBalles/PetGrooming/internal/sim"
)

const (
	commandBacklog = 256
	// Frames between full snapshots; events and results go out every frame.
	snapshotEvery = 6
	// Seconds an autopilot session shows a result before the next match.
	restartDelay = 3.0
)

// Session is the live match behind the websocket server. Commands arrive
// from clients on any goroutine; the ticker goroutine applies them and
// advances the match.
type Session struct {
	runner *sim.Runner
	hub    *Hub
	logger *logger.Logger
	mode   string

	commands chan PlayerCommand

	mu        sync.Mutex
	autopilot bool
	intent    sim.Intent
	frames    int
	restart   clock.Countdown
}

// NewSession wraps runner. With autopilot the bot plays the Groomer and a
// new match of mode starts whenever the previous one ends.
func NewSession(runner *sim.Runner, hub *Hub, log *logger.Logger, mode string, autopilot bool) *Session {
	return &Session{
		runner:    runner,
		hub:       hub,
		logger:    log,
		mode:      mode,
		commands:  make(chan PlayerCommand, commandBacklog),
		autopilot: autopilot,
		restart:   clock.Countdown{Duration: restartDelay},
	}
}

// Submit queues cmd for the next frame.
func (s *Session) Submit(cmd PlayerCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	select {
	case s.commands <- cmd:
		return nil
	default:
		return ErrBacklog
	}
}

// Run drives the session at rate until ctx is cancelled.
func (s *Session) Run(ctx context.Context, rate time.Duration) {
	t := engine.NewTicker(rate, s.Step, s.logger)
	t.Start(ctx)
}

// Step applies queued commands and plays one frame of dt seconds.
func (s *Session) Step(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runner.SetDt(dt)
	s.drain()

	e := s.runner.Engine()
	if e.Phase() != engine.PhasePlaying {
		if s.autopilot {
			s.restart.Tick(dt)
			if s.restart.Done() {
				s.start(s.mode)
			}
		}
		return
	}

	var intent *sim.Intent
	if !s.autopilot {
		i := s.intent
		intent = &i
	}
	out := s.runner.Step(intent)
	s.intent.Interact = false
	s.intent.Release = false
	s.intent.Skill = nil
	s.intent.GroomKey = ""
	s.publish(out)
}

func (s *Session) drain() {
	for {
		select {
		case cmd := <-s.commands:
			s.apply(cmd)
		default:
			return
		}
	}
}

func (s *Session) apply(cmd PlayerCommand) {
	switch cmd.Type {
	case CmdStart:
		mode := cmd.Mode
		if mode == "" {
			mode = s.mode
		}
		s.start(mode)
	case CmdAbort:
		s.runner.Engine().Abort()
		s.restart.Reset()
	case CmdMove:
		s.intent.Move = *cmd.Move
	case CmdInteract:
		s.intent.Interact = true
	case CmdRelease:
		s.intent.Release = true
	case CmdSkill:
		s.intent.Skill = &engine.SkillInput{Slot: cmd.Slot, Aim: cmd.Aim}
	case CmdGroom:
		s.intent.GroomKey = cmd.Key
	case CmdAutopilot:
		s.autopilot = cmd.Enabled
		s.logger.Info("autopilot set to %v", cmd.Enabled)
	}
}

func (s *Session) start(mode string) {
	if s.runner.Engine().Phase() == engine.PhasePlaying {
		s.hub.BroadcastJSON(ServerMessage{Type: MsgError, Error: "match already in progress"})
		return
	}
	id, err := s.runner.Start(mode)
	if err != nil {
		s.logger.Error("failed to start %q match: %v", mode, err)
		s.hub.BroadcastJSON(ServerMessage{Type: MsgError, Error: err.Error()})
		s.restart.Reset()
		return
	}
	s.intent = sim.Intent{}
	s.frames = 0
	s.restart.Reset()
	s.logger.Info("match %s started (%s)", id, s.runner.Engine().Snapshot().Mode)
	s.publishSnapshot()
}

func (s *Session) publish(out engine.FrameOutput) {
	s.frames++
	if out.Result != nil {
		snap := s.runner.Engine().Snapshot()
		s.hub.BroadcastJSON(ServerMessage{
			Type:     MsgResult,
			Tick:     out.Tick,
			Snapshot: &snap,
			Events:   out.Events,
			Result:   out.Result,
		})
		return
	}
	if s.frames%snapshotEvery == 0 {
		snap := s.runner.Engine().Snapshot()
		s.hub.BroadcastJSON(ServerMessage{Type: MsgFrame, Tick: out.Tick, Snapshot: &snap, Events: out.Events})
		return
	}
	if len(out.Events) > 0 {
		s.hub.BroadcastJSON(ServerMessage{Type: MsgFrame, Tick: out.Tick, Events: out.Events})
	}
}

func (s *Session) publishSnapshot() {
	snap := s.runner.Engine().Snapshot()
	s.hub.BroadcastJSON(ServerMessage{Type: MsgFrame, Tick: snap.Tick, Snapshot: &snap})
}

// Snapshot returns the current match state.
func (s *Session) Snapshot() engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.Engine().Snapshot()
}

// Autopilot reports whether the bot is playing the Groomer.
func (s *Session) Autopilot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autopilot
}
