// Package storage persists match history and the event ledger.
// The engine never imports it: events reach it through events.EventPersister.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a match ID has no stored record.
var ErrNotFound = errors.New("match not found")

// EventRecord mirrors events.GameEvent for persistence. Payloads are stored
// as JSON and come back as generic maps.
type EventRecord struct {
	ID        string                 `json:"id" db:"id"`
	MatchID   string                 `json:"match_id" db:"match_id"`
	Tick      int64                  `json:"tick" db:"tick"`
	MatchTime float64                `json:"match_time" db:"match_time"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	ActorID   string                 `json:"actor_id" db:"actor_id"`
	TargetID  string                 `json:"target_id" db:"target_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
}

// EventRepository is the append-only event ledger.
type EventRepository interface {
	// Append adds events to the ledger in one transaction.
	Append(ctx context.Context, events ...EventRecord) error

	// GetByMatchID returns every event of a match in tick order (for replay).
	GetByMatchID(ctx context.Context, matchID string) ([]EventRecord, error)

	// GetByActorID returns the events an actor performed in a match.
	GetByActorID(ctx context.Context, matchID, actorID string) ([]EventRecord, error)

	// GetByEventType returns the events of one type in a match.
	GetByEventType(ctx context.Context, matchID, eventType string) ([]EventRecord, error)
}

// MatchRecord is the stored outcome of one match.
type MatchRecord struct {
	MatchID     string    `json:"match_id" db:"match_id"`
	Mode        string    `json:"mode" db:"mode"`
	Result      string    `json:"result" db:"result"`
	Reason      string    `json:"reason" db:"reason"`
	Duration    float64   `json:"duration" db:"duration"`
	Mischief    int       `json:"mischief" db:"mischief"`
	Threshold   int       `json:"threshold" db:"threshold"`
	PetCount    int       `json:"pet_count" db:"pet_count"`
	PetsGroomed int       `json:"pets_groomed" db:"pets_groomed"`
	EndedAt     time.Time `json:"ended_at" db:"ended_at"`
}

// MatchRepository stores finished matches.
type MatchRepository interface {
	// Save inserts or replaces a match record.
	Save(ctx context.Context, m MatchRecord) error

	// Get returns one match, or ErrNotFound.
	Get(ctx context.Context, matchID string) (*MatchRecord, error)

	// List returns the most recent matches first, at most limit of them.
	List(ctx context.Context, limit int) ([]MatchRecord, error)
}
