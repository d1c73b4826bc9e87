package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const eventColumns = `id, match_id, tick, match_time, timestamp, event_type, actor_id, target_id, payload`

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, events ...EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin event batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		payloadBytes, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload of %s: %w", e.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			e.ID, e.MatchID, e.Tick, e.MatchTime, e.Timestamp, e.EventType,
			e.ActorID, e.TargetID, string(payloadBytes),
		)
		if err != nil {
			return fmt.Errorf("failed to append event %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]EventRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventRecord
	for rows.Next() {
		var e EventRecord
		var payloadStr string
		err := rows.Scan(
			&e.ID, &e.MatchID, &e.Tick, &e.MatchTime, &e.Timestamp, &e.EventType,
			&e.ActorID, &e.TargetID, &payloadStr,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, fmt.Errorf("corrupt payload on %s: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetByMatchID(ctx context.Context, matchID string) ([]EventRecord, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE match_id = ? ORDER BY tick ASC, rowid ASC`
	return r.getMany(ctx, query, matchID)
}

func (r *SQLiteEventRepository) GetByActorID(ctx context.Context, matchID, actorID string) ([]EventRecord, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE match_id = ? AND actor_id = ? ORDER BY tick ASC, rowid ASC`
	return r.getMany(ctx, query, matchID, actorID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, matchID, eventType string) ([]EventRecord, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE match_id = ? AND event_type = ? ORDER BY tick ASC, rowid ASC`
	return r.getMany(ctx, query, matchID, eventType)
}

// ---------------------------------------------------------
// SQLiteMatchRepository
// ---------------------------------------------------------

const matchColumns = `match_id, mode, result, reason, duration, mischief, threshold, pet_count, pets_groomed, ended_at`

type SQLiteMatchRepository struct {
	db *sql.DB
}

func NewSQLiteMatchRepository(db *sql.DB) *SQLiteMatchRepository {
	return &SQLiteMatchRepository{db: db}
}

func (r *SQLiteMatchRepository) Save(ctx context.Context, m MatchRecord) error {
	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id) DO UPDATE SET
			mode=excluded.mode,
			result=excluded.result,
			reason=excluded.reason,
			duration=excluded.duration,
			mischief=excluded.mischief,
			threshold=excluded.threshold,
			pet_count=excluded.pet_count,
			pets_groomed=excluded.pets_groomed,
			ended_at=excluded.ended_at
	`
	_, err := r.db.ExecContext(ctx, query,
		m.MatchID, m.Mode, m.Result, m.Reason, m.Duration, m.Mischief,
		m.Threshold, m.PetCount, m.PetsGroomed, m.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save match %s: %w", m.MatchID, err)
	}
	return nil
}

func scanMatch(row interface{ Scan(...any) error }) (MatchRecord, error) {
	var m MatchRecord
	err := row.Scan(&m.MatchID, &m.Mode, &m.Result, &m.Reason, &m.Duration, &m.Mischief,
		&m.Threshold, &m.PetCount, &m.PetsGroomed, &m.EndedAt)
	return m, err
}

func (r *SQLiteMatchRepository) Get(ctx context.Context, matchID string) (*MatchRecord, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE match_id = ?`
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, matchID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *SQLiteMatchRepository) List(ctx context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + matchColumns + ` FROM matches ORDER BY ended_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
