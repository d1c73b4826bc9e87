package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "data", "grooming.db"))
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEventWriterPersistsInOrder(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteEventRepository(db)
	writer := NewEventWriter(repo, logger.Discard(), 4)

	el := events.NewEventLog(writer)
	el.SetStamp(events.Stamp{MatchID: "m-1", Tick: 1})
	el.Append(events.GameEvent{Type: events.EventTypeMatchStarted, ActorID: events.ActorSystem,
		Payload: events.MatchPayload{Mode: "two_pet", PetCount: 2, Threshold: 800}})
	el.SetStamp(events.Stamp{MatchID: "m-1", Tick: 2, MatchTime: 1.0 / 60})
	el.Append(events.GameEvent{Type: events.EventTypeCaptureSucceed, ActorID: "groomer", TargetID: "cat-1",
		Payload: events.CapturePayload{Distance: 1.4}})
	el.Append(events.GameEvent{Type: events.EventTypeMischiefAdded, ActorID: "dog-1",
		Payload: events.MischiefPayload{Amount: 60, Value: 60, Threshold: 800, Cause: "collision:flower_pot"}})
	el.SetStamp(events.Stamp{MatchID: "m-2", Tick: 1})
	el.Append(events.GameEvent{Type: events.EventTypeMatchStarted, ActorID: events.ActorSystem})
	writer.Close()

	if err := writer.Append(events.GameEvent{ID: "late"}); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("append after close: expected ErrWriterClosed, got %v", err)
	}

	ctx := context.Background()
	got, err := repo.GetByMatchID(ctx, "m-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("stored %d events for m-1, want 3", len(got))
	}
	wantTypes := []string{"MATCH_STARTED", "CAPTURE_SUCCEEDED", "MISCHIEF_ADDED"}
	for i, e := range got {
		if e.EventType != wantTypes[i] {
			t.Errorf("event %d = %s, want %s", i, e.EventType, wantTypes[i])
		}
	}
	if d, _ := got[1].Payload["distance"].(float64); d != 1.4 {
		t.Errorf("capture payload = %v", got[1].Payload)
	}
	if got[1].Tick != 2 || got[1].TargetID != "cat-1" {
		t.Errorf("capture record = %+v", got[1])
	}

	byActor, err := repo.GetByActorID(ctx, "m-1", "dog-1")
	if err != nil || len(byActor) != 1 {
		t.Errorf("GetByActorID = %d events, err %v", len(byActor), err)
	}
	byType, err := repo.GetByEventType(ctx, "m-2", "MATCH_STARTED")
	if err != nil || len(byType) != 1 {
		t.Errorf("GetByEventType = %d events, err %v", len(byType), err)
	}
}

func TestToRecordWrapsScalarPayload(t *testing.T) {
	rec, err := ToRecord(events.GameEvent{ID: "e1", Type: "NOTE", Payload: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rec.Payload["value"]; !ok {
		t.Errorf("scalar payload not wrapped: %v", rec.Payload)
	}
}

func TestMatchRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteMatchRepository(db)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	base := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		rec := MatchRecord{MatchID: id, Mode: "mvp", Result: "PetWin", Reason: "TimeExpired",
			Duration: 180, Threshold: 500, PetCount: 1, EndedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.Save(ctx, MatchRecord{MatchID: "mid", Mode: "mvp", Result: "GroomerWin", Reason: "AllGroomed",
		PetCount: 1, PetsGroomed: 1, EndedAt: base.Add(time.Minute)}); err != nil {
		t.Fatal(err)
	}

	list, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].MatchID != "new" || list[1].MatchID != "mid" {
		t.Fatalf("List = %+v", list)
	}
	mid, err := repo.Get(ctx, "mid")
	if err != nil {
		t.Fatal(err)
	}
	if mid.Result != "GroomerWin" || mid.PetsGroomed != 1 {
		t.Errorf("upsert not applied: %+v", mid)
	}
}

func TestMatchArchiver(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteMatchRepository(db)
	el := events.NewEventLog(nil)
	NewMatchArchiver(repo, logger.Discard()).Attach(el)

	el.SetStamp(events.Stamp{MatchID: "m-9", Tick: 3600, MatchTime: 60})
	el.Append(events.GameEvent{Type: events.EventTypeMatchEnded, ActorID: events.ActorSystem,
		Payload: events.MatchPayload{Mode: "three_pet", PetCount: 3, Threshold: 1000, Duration: 60,
			Result: "PetWin", Reason: "MischiefThreshold", Mischief: 1000, PetsGroomed: 1}})

	rec, err := repo.Get(context.Background(), "m-9")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Mode != "three_pet" || rec.Reason != "MischiefThreshold" || rec.Mischief != 1000 {
		t.Errorf("archived %+v", rec)
	}
}

func TestReconstructorSummary(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteEventRepository(db)
	ctx := context.Background()

	recs := []EventRecord{
		{ID: "1", MatchID: "m", Tick: 1, EventType: "MATCH_STARTED", ActorID: "SYSTEM", Payload: map[string]interface{}{"mode": "two_pet", "pet_count": 2.0}},
		{ID: "2", MatchID: "m", Tick: 5, EventType: "SKILL_ACTIVATED", ActorID: "dog-1", Payload: map[string]interface{}{"skill": "intimidating_bark", "hit_groomer": true}},
		{ID: "3", MatchID: "m", Tick: 5, EventType: "MISCHIEF_ADDED", ActorID: "dog-1", Payload: map[string]interface{}{"amount": 30.0, "value": 30.0}},
		{ID: "4", MatchID: "m", Tick: 9, EventType: "MISCHIEF_ADDED", ActorID: "cat-1", Payload: map[string]interface{}{"amount": 60.0, "value": 90.0}},
		{ID: "5", MatchID: "m", Tick: 20, EventType: "CAPTURE_SUCCEEDED", ActorID: "groomer", TargetID: "cat-1"},
		{ID: "6", MatchID: "m", Tick: 21, EventType: "PET_STATE_CHANGED", ActorID: "cat-1"},
		{ID: "7", MatchID: "m", Tick: 30, MatchTime: 0.5, EventType: "ALERT_STARTED", ActorID: "SYSTEM"},
		{ID: "8", MatchID: "m", Tick: 40, EventType: "PET_GROOMED", ActorID: "cat-1"},
		{ID: "9", MatchID: "m", Tick: 50, EventType: "MATCH_ENDED", ActorID: "SYSTEM", Payload: map[string]interface{}{"result": "PetWin", "reason": "TimeExpired", "duration": 180.0, "mischief": 90.0}},
	}
	if err := repo.Append(ctx, recs...); err != nil {
		t.Fatal(err)
	}

	r := NewReconstructor(repo)
	s, err := r.Summarize(ctx, "m")
	if err != nil {
		t.Fatal(err)
	}
	if s.Mode != "two_pet" || s.Result != "PetWin" || s.Mischief != 90 {
		t.Errorf("summary = %+v", s)
	}
	if s.Captures != 1 || s.Groomed != 1 || s.SkillUses["intimidating_bark"] != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.AlertAt != 0.5 {
		t.Errorf("alert at %v, want 0.5", s.AlertAt)
	}
	if top := s.TopMischiefMakers(); len(top) != 2 || top[0] != "cat-1" {
		t.Errorf("top mischief = %v", top)
	}

	tl, err := r.Timeline(ctx, "m")
	if err != nil {
		t.Fatal(err)
	}
	if len(tl) != 8 {
		t.Errorf("timeline has %d entries, want 8 (state change skipped)", len(tl))
	}
	if tl[1].Summary != "dog-1 used intimidating_bark on the Groomer" || tl[1].Impact != "NEUTRAL" {
		t.Errorf("skill entry = %+v", tl[1])
	}

	if _, err := r.Summarize(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAcquireLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grooming.db")
	first, err := AcquireLock(path, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := AcquireLock(path, 100*time.Millisecond); !errors.Is(err, ErrLocked) {
		t.Errorf("second lock: expected ErrLocked, got %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatal(err)
	}
	again, err := AcquireLock(path, time.Second)
	if err != nil {
		t.Fatalf("relock after release: %v", err)
	}
	again.Release()
}

func TestOpenStoreWriterAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "grooming.db")
	w, err := Open(path, true)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	if _, err := Open(path, true); !errors.Is(err, ErrLocked) {
		t.Errorf("second writer: expected ErrLocked, got %v", err)
	}

	ctx := context.Background()
	if err := w.Matches.Save(ctx, MatchRecord{MatchID: "m-9", Mode: "mvp", Result: "PetWin", EndedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path, false)
	if err != nil {
		t.Fatalf("open reader while writer holds lock: %v", err)
	}
	got, err := r.Matches.Get(ctx, "m-9")
	if err != nil || got.Result != "PetWin" {
		t.Errorf("reader Get = %+v, %v", got, err)
	}
	r.Close()

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	again, err := Open(path, true)
	if err != nil {
		t.Fatalf("reopen writer after close: %v", err)
	}
	again.Close()
}
