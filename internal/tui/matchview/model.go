// Package matchview is a bubbletea viewer that plays bot-driven matches live
// in the terminal.
package matchview

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MRamiBalles/PetGrooming/internal/engine"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/sim"
)

const (
	frameInterval = time.Second / 30
	maxSpeed      = 16
	logLines      = 8
)

// tickMsg advances the match.
type tickMsg time.Time

// Model is the bubbletea model for the match viewer.
type Model struct {
	runner *sim.Runner
	mode   string

	speed  int // Frames simulated per tick
	paused bool
	snap   engine.Snapshot
	log    []string
	result *engine.MatchResult
	err    error

	keys     KeyMap
	help     help.Model
	showHelp bool
	width    int
	height   int
}

// New starts a match of mode on runner and returns a viewer for it.
func New(runner *sim.Runner, mode string) (Model, error) {
	m := Model{
		runner: runner,
		mode:   mode,
		speed:  2,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
	if err := m.restart(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Result returns the outcome once the match has ended.
func (m Model) Result() *engine.MatchResult { return m.result }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if !m.paused {
			m.advance(m.speed)
		}
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Step):
			if m.paused {
				m.advance(1)
			}
		case key.Matches(msg, m.keys.Faster):
			if m.speed < maxSpeed {
				m.speed *= 2
			}
		case key.Matches(msg, m.keys.Slower):
			if m.speed > 1 {
				m.speed /= 2
			}
		case key.Matches(msg, m.keys.Restart):
			if err := m.restart(); err != nil {
				m.err = err
			}
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) restart() error {
	e := m.runner.Engine()
	if e.Phase() == engine.PhasePlaying {
		e.Abort()
	}
	if _, err := m.runner.Start(m.mode); err != nil {
		return err
	}
	m.result = nil
	m.err = nil
	m.log = nil
	m.snap = e.Snapshot()
	return nil
}

// advance plays up to n frames, stopping at the result.
func (m *Model) advance(n int) {
	if m.result != nil {
		return
	}
	for i := 0; i < n; i++ {
		out := m.runner.Step(nil)
		for _, ev := range out.Events {
			if line := describe(ev); line != "" {
				m.log = append(m.log, line)
			}
		}
		if out.Result != nil {
			r := *out.Result
			m.result = &r
			break
		}
	}
	if len(m.log) > logLines {
		m.log = m.log[len(m.log)-logLines:]
	}
	m.snap = m.runner.Engine().Snapshot()
}

// describe turns a notable event into one log line; bookkeeping events give "".
func describe(ev events.GameEvent) string {
	var what string
	switch ev.Type {
	case events.EventTypeCaptureSucceed:
		what = "captured " + ev.TargetID
	case events.EventTypePetEscaped:
		what = ev.ActorID + " escaped"
	case events.EventTypePetGroomed:
		what = ev.ActorID + " groomed at " + ev.TargetID
	case events.EventTypeCageStored:
		what = ev.ActorID + " caged"
	case events.EventTypeCageReleased:
		what = ev.ActorID + " released from cage"
	case events.EventTypeSkillActivated:
		p, _ := ev.Payload.(events.SkillPayload)
		what = ev.ActorID + " used " + p.Skill
	case events.EventTypeMischiefAdded:
		p, _ := ev.Payload.(events.MischiefPayload)
		what = fmt.Sprintf("%s +%d mischief", ev.ActorID, p.Amount)
	case events.EventTypeAlertStarted:
		what = "ALERT"
	case events.EventTypeMatchEnded:
		p, _ := ev.Payload.(events.MatchPayload)
		what = "match over: " + p.Result
	default:
		return ""
	}
	return fmt.Sprintf("%6.1fs  %s", ev.MatchTime, what)
}

// View renders the model.
func (m Model) View() string {
	return m.renderView()
}
