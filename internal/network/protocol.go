package network

import (
	"errors"
	"fmt"

	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/engine"
	"github.com/MRamiBalles/PetGrooming/internal/events"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadCommand     = errors.New("malformed command")
	ErrBacklog        = errors.New("command backlog full")
	ErrRateLimited    = errors.New("rate limit exceeded")
)

// CommandType names a client command.
type CommandType string

const (
	CmdStart     CommandType = "START"
	CmdAbort     CommandType = "ABORT"
	CmdMove      CommandType = "MOVE"
	CmdInteract  CommandType = "INTERACT"
	CmdRelease   CommandType = "RELEASE"
	CmdSkill     CommandType = "SKILL"
	CmdGroom     CommandType = "GROOM"
	CmdAutopilot CommandType = "AUTOPILOT"
)

// PlayerCommand is one message from a websocket client driving the Groomer.
type PlayerCommand struct {
	Type    CommandType `json:"type"`
	Mode    string      `json:"mode,omitempty"`    // START
	Move    *arena.Vec2 `json:"move,omitempty"`    // MOVE, held until the next MOVE
	Slot    int         `json:"slot,omitempty"`    // SKILL
	Aim     arena.Vec2  `json:"aim,omitempty"`     // SKILL
	Key     engine.Step `json:"key,omitempty"`     // GROOM
	Enabled bool        `json:"enabled,omitempty"` // AUTOPILOT
}

// Validate checks the fields each command type needs.
func (c PlayerCommand) Validate() error {
	switch c.Type {
	case CmdStart, CmdAbort, CmdInteract, CmdRelease, CmdAutopilot:
		return nil
	case CmdMove:
		if c.Move == nil {
			return fmt.Errorf("%w: MOVE without move vector", ErrBadCommand)
		}
		return nil
	case CmdSkill:
		if c.Slot < 0 {
			return fmt.Errorf("%w: negative skill slot", ErrBadCommand)
		}
		return nil
	case CmdGroom:
		switch c.Key {
		case engine.StepBrush, engine.StepClean, engine.StepDry:
			return nil
		}
		return fmt.Errorf("%w: grooming key %q", ErrBadCommand, c.Key)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
}

// Server message types.
const (
	MsgFrame  = "frame"
	MsgResult = "result"
	MsgError  = "error"
)

// ServerMessage is what the server pushes to clients.
type ServerMessage struct {
	Type     string              `json:"type"`
	Tick     int64               `json:"tick,omitempty"`
	Snapshot *engine.Snapshot    `json:"snapshot,omitempty"`
	Events   []events.GameEvent  `json:"events,omitempty"`
	Result   *engine.MatchResult `json:"result,omitempty"`
	Error    string              `json:"error,omitempty"`
}
