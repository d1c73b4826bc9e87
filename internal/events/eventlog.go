// Package events provides the append-only match event log.
// Every rule outcome the presentation layer or the history needs is recorded here.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeMatchStarted EventType = "MATCH_STARTED"
	EventTypeMatchEnded   EventType = "MATCH_ENDED"
	EventTypeMatchAborted EventType = "MATCH_ABORTED"

	EventTypeSkillActivated EventType = "SKILL_ACTIVATED"
	EventTypeSkillFailed    EventType = "SKILL_FAILED"
	EventTypeSkillReady     EventType = "SKILL_READY"
	EventTypeEffectApplied  EventType = "EFFECT_APPLIED"
	EventTypeEffectExpired  EventType = "EFFECT_EXPIRED"

	EventTypePetStateChanged EventType = "PET_STATE_CHANGED"
	EventTypeCaptureSucceed  EventType = "CAPTURE_SUCCEEDED"
	EventTypeCaptureFailed   EventType = "CAPTURE_FAILED"
	EventTypePetEscaped      EventType = "PET_ESCAPED"

	EventTypeGroomingStarted EventType = "GROOMING_STARTED"
	EventTypeGroomingStep    EventType = "GROOMING_STEP_COMPLETED"
	EventTypeGroomingAborted EventType = "GROOMING_ABORTED"
	EventTypeGroomingFailed  EventType = "GROOMING_FAILED"
	EventTypePetGroomed      EventType = "PET_GROOMED"
	EventTypeToolStolen      EventType = "TOOL_STOLEN"

	EventTypeMischiefAdded EventType = "MISCHIEF_ADDED"
	EventTypeAlertStarted  EventType = "ALERT_STARTED"

	EventTypeCageStored   EventType = "CAGE_STORED"
	EventTypeCageFailed   EventType = "CAGE_FAILED"
	EventTypeCageWarning  EventType = "CAGE_WARNING"
	EventTypeCageReleased EventType = "CAGE_RELEASED"

	EventTypeNetFired      EventType = "NET_FIRED"
	EventTypeNetHit        EventType = "NET_HIT"
	EventTypeLeashAttached EventType = "LEASH_ATTACHED"
	EventTypeLeashBroken   EventType = "LEASH_BROKEN"
	EventTypeLeashEnded    EventType = "LEASH_ENDED"
	EventTypeKnockback     EventType = "KNOCKBACK"
)

// ActorSystem is the actor ID of events raised by the match itself.
const ActorSystem = "SYSTEM"

// GameEvent represents an immutable record of something that happened in a match.
type GameEvent struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	Tick      int64     `json:"tick"`
	MatchTime float64   `json:"match_time"` // Seconds since match start
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ActorID   string    `json:"actor_id"`
	TargetID  string    `json:"target_id,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

// Handler reacts to an appended event. Handlers run on the appending goroutine
// after the log lock is released; registration order is not a contract.
type Handler func(GameEvent)

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// Stamp is the match clock copied onto every appended event.
type Stamp struct {
	MatchID   string
	Tick      int64
	MatchTime float64
}

// EventLog is the in-memory append-only log of a match.
// It also keeps the change list of events not yet drained by the frame output.
type EventLog struct {
	mu          sync.RWMutex
	events      []GameEvent
	pending     []GameEvent
	stamp       Stamp
	persister   EventPersister
	persistErrs int
	subscribers map[EventType][]Handler
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:      make([]GameEvent, 0),
		persister:   persister,
		subscribers: make(map[EventType][]Handler),
	}
}

// SetPersister swaps the durable store. Nil disables persistence.
func (el *EventLog) SetPersister(p EventPersister) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.persister = p
}

// SetStamp updates the match clock applied to subsequent events.
func (el *EventLog) SetStamp(s Stamp) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.stamp = s
}

// Subscribe registers handler for every future event of type t.
func (el *EventLog) Subscribe(t EventType, handler Handler) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.subscribers[t] = append(el.subscribers[t], handler)
}

// Append adds a new event to the log. Events are immutable once appended.
// Missing ID, timestamp and match clock fields are filled in.
func (el *EventLog) Append(event GameEvent) GameEvent {
	el.mu.Lock()
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.MatchID == "" {
		event.MatchID = el.stamp.MatchID
		event.Tick = el.stamp.Tick
		event.MatchTime = el.stamp.MatchTime
	}
	el.events = append(el.events, event)
	el.pending = append(el.pending, event)

	if el.persister != nil {
		if err := el.persister.Append(event); err != nil {
			el.persistErrs++
		}
	}
	handlers := append([]Handler(nil), el.subscribers[event.Type]...)
	el.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
	return event
}

// Drain returns the events appended since the previous Drain and clears the change list.
func (el *EventLog) Drain() []GameEvent {
	el.mu.Lock()
	defer el.mu.Unlock()
	out := el.pending
	el.pending = nil
	return out
}

// GetByActor returns all events performed by a specific actor.
func (el *EventLog) GetByActor(actorID string) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.ActorID == actorID {
			result = append(result, e)
		}
	}
	return result
}

// GetByType returns all events of type t.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Since returns the events appended after the first n.
func (el *EventLog) Since(n int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	if n >= len(el.events) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	return append([]GameEvent(nil), el.events[n:]...)
}

// Len returns the number of events in the log.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// Replay returns a copy of the full history.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return append([]GameEvent(nil), el.events...)
}

// PersistFailures counts events the persister rejected.
func (el *EventLog) PersistFailures() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.persistErrs
}

// Reset drops the history and change list for a new match. Subscriptions stay.
func (el *EventLog) Reset() {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = make([]GameEvent, 0)
	el.pending = nil
	el.stamp = Stamp{}
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.New().String()
}
