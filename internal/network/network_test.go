package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/domain/arena"
	"github.com/MRamiBalles/PetGrooming/internal/engine"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/infra/storage"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
	"github.com/MRamiBalles/PetGrooming/internal/sim"
)

type recordingSink struct {
	got []PlayerCommand
	err error
}

func (s *recordingSink) Submit(cmd PlayerCommand) error {
	s.got = append(s.got, cmd)
	return s.err
}

func newTestSession(t *testing.T, autopilot bool) (*Session, *events.EventLog) {
	t.Helper()
	cfg := config.Default()
	el := events.NewEventLog(nil)
	runner := sim.NewRunner(cfg, el, logger.Discard(), 3)
	return NewSession(runner, NewHub(logger.Discard()), logger.Discard(), "two_pet", autopilot), el
}

func TestCommandValidate(t *testing.T) {
	cases := []struct {
		cmd  PlayerCommand
		want error
	}{
		{PlayerCommand{Type: CmdStart}, nil},
		{PlayerCommand{Type: CmdMove, Move: &arena.Vec2{X: 1}}, nil},
		{PlayerCommand{Type: CmdMove}, ErrBadCommand},
		{PlayerCommand{Type: CmdSkill, Slot: -1}, ErrBadCommand},
		{PlayerCommand{Type: CmdGroom, Key: engine.StepClean}, nil},
		{PlayerCommand{Type: CmdGroom, Key: engine.StepComplete}, ErrBadCommand},
		{PlayerCommand{Type: "DANCE"}, ErrUnknownCommand},
	}
	for _, c := range cases {
		err := c.cmd.Validate()
		if c.want == nil && err != nil {
			t.Errorf("%s: unexpected error %v", c.cmd.Type, err)
		}
		if c.want != nil && !errors.Is(err, c.want) {
			t.Errorf("%s: expected %v, got %v", c.cmd.Type, c.want, err)
		}
	}
}

func TestClientRoutesCommandsToSink(t *testing.T) {
	sink := &recordingSink{}
	c := NewClient(NewHub(logger.Discard()), nil, sink)
	now := time.Now()

	if err := c.handleMessage([]byte(`{"type":"GROOM","key":"Brush"}`), now); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if len(sink.got) != 1 || sink.got[0].Key != engine.StepBrush {
		t.Errorf("sink got %+v", sink.got)
	}
	if err := c.handleMessage([]byte(`{not json`), now); !errors.Is(err, ErrBadCommand) {
		t.Errorf("expected ErrBadCommand, got %v", err)
	}
	if err := c.handleMessage([]byte(`{"type":"MOVE"}`), now); !errors.Is(err, ErrBadCommand) {
		t.Errorf("expected ErrBadCommand for MOVE without vector, got %v", err)
	}
	if len(sink.got) != 1 {
		t.Errorf("invalid commands reached the sink: %d", len(sink.got))
	}
}

func TestClientRateLimit(t *testing.T) {
	c := NewClient(NewHub(logger.Discard()), nil, &recordingSink{})
	now := time.Now()
	for i := 0; i < maxCommandsPerSecond; i++ {
		if err := c.handleMessage([]byte(`{"type":"INTERACT"}`), now); err != nil {
			t.Fatalf("command %d rejected: %v", i, err)
		}
	}
	if err := c.handleMessage([]byte(`{"type":"INTERACT"}`), now); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if err := c.handleMessage([]byte(`{"type":"INTERACT"}`), now.Add(time.Second)); err != nil {
		t.Errorf("new window should accept, got %v", err)
	}
}

func TestSpectatorCannotCommand(t *testing.T) {
	c := NewClient(NewHub(logger.Discard()), nil, nil)
	if err := c.handleMessage([]byte(`{"type":"START"}`), time.Now()); err == nil {
		t.Error("spectator command accepted")
	}
}

func TestSessionStartMoveAbort(t *testing.T) {
	s, _ := newTestSession(t, false)
	dt := 1.0 / 60

	s.Step(dt)
	if got := s.Snapshot().HUD.Phase; got != engine.PhaseNotStarted {
		t.Fatalf("phase before START = %s", got)
	}

	if err := s.Submit(PlayerCommand{Type: CmdStart}); err != nil {
		t.Fatal(err)
	}
	s.Step(dt)
	snap := s.Snapshot()
	if snap.HUD.Phase != engine.PhasePlaying || snap.Mode != "two_pet" {
		t.Fatalf("after START: phase %s mode %q", snap.HUD.Phase, snap.Mode)
	}
	startX := snap.Groomer.Position.X

	if err := s.Submit(PlayerCommand{Type: CmdMove, Move: &arena.Vec2{X: 1}}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		s.Step(dt)
	}
	if x := s.Snapshot().Groomer.Position.X; x <= startX {
		t.Errorf("groomer x = %v, want > %v after moving right", x, startX)
	}

	if err := s.Submit(PlayerCommand{Type: CmdAbort}); err != nil {
		t.Fatal(err)
	}
	s.Step(dt)
	if got := s.Snapshot().HUD.Phase; got != engine.PhaseNotStarted {
		t.Errorf("phase after ABORT = %s", got)
	}
}

func TestSessionUnknownModeStaysIdle(t *testing.T) {
	s, _ := newTestSession(t, false)
	s.Submit(PlayerCommand{Type: CmdStart, Mode: "nine_pet"})
	s.Step(1.0 / 60)
	if got := s.Snapshot().HUD.Phase; got != engine.PhaseNotStarted {
		t.Errorf("phase = %s, want NotStarted", got)
	}
}

func TestSessionAutopilotStartsMatch(t *testing.T) {
	s, el := newTestSession(t, true)
	s.Step(1.0 / 60)
	if got := s.Snapshot().HUD.Phase; got != engine.PhasePlaying {
		t.Fatalf("autopilot phase = %s, want Playing", got)
	}
	if len(el.GetByType(events.EventTypeMatchStarted)) != 1 {
		t.Error("expected one MATCH_STARTED")
	}
	s.Submit(PlayerCommand{Type: CmdAutopilot, Enabled: false})
	s.Step(1.0 / 60)
	if s.Autopilot() {
		t.Error("autopilot still on")
	}
}

func TestSessionBacklog(t *testing.T) {
	s, _ := newTestSession(t, false)
	for i := 0; i < commandBacklog; i++ {
		if err := s.Submit(PlayerCommand{Type: CmdInteract}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := s.Submit(PlayerCommand{Type: CmdInteract}); !errors.Is(err, ErrBacklog) {
		t.Errorf("expected ErrBacklog, got %v", err)
	}
}

func TestReplayLiveLog(t *testing.T) {
	s, el := newTestSession(t, true)
	s.Step(1.0 / 60)

	h := NewReplayHandler(nil, nil, el, logger.Discard())
	rec := httptest.NewRecorder()
	h.HandleReplay(rec, httptest.NewRequest(http.MethodGet, "/api/replay?type=MATCH_STARTED", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp ReplayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Source != "live" || resp.TotalEvents != 1 || resp.MatchID == "" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Events[0].Payload["mode"] != "two_pet" {
		t.Errorf("payload = %v", resp.Events[0].Payload)
	}
}

func TestReplayWithoutStore(t *testing.T) {
	h := NewReplayHandler(nil, nil, events.NewEventLog(nil), logger.Discard())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	for path, want := range map[string]int{
		"/api/replay?match_id=m-1": http.StatusServiceUnavailable,
		"/api/matches":             http.StatusServiceUnavailable,
		"/api/matches/summary":     http.StatusServiceUnavailable,
		"/api/replay/timeline?x=1": http.StatusServiceUnavailable,
		"/api/replay":              http.StatusOK,
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("%s: status %d, want %d", path, rec.Code, want)
		}
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/replay", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status %d", rec.Code)
	}
}

func TestReplayLedger(t *testing.T) {
	db, err := storage.InitSQLite(filepath.Join(t.TempDir(), "grooming.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	er := storage.NewSQLiteEventRepository(db)
	mr := storage.NewSQLiteMatchRepository(db)
	ctx := context.Background()

	err = er.Append(ctx,
		storage.EventRecord{ID: "e1", MatchID: "m-1", Tick: 1, EventType: "MATCH_STARTED", ActorID: "SYSTEM",
			Payload: map[string]interface{}{"mode": "two_pet"}},
		storage.EventRecord{ID: "e2", MatchID: "m-1", Tick: 5, EventType: "CAPTURE_SUCCEEDED", ActorID: "groomer", TargetID: "cat-1"},
		storage.EventRecord{ID: "e3", MatchID: "m-1", Tick: 9, EventType: "MISCHIEF_ADDED", ActorID: "dog-1",
			Payload: map[string]interface{}{"amount": 60.0, "value": 60.0, "cause": "collision:vase"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := mr.Save(ctx, storage.MatchRecord{MatchID: "m-1", Mode: "two_pet", Result: "GroomerWin", EndedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	h := NewReplayHandler(er, mr, events.NewEventLog(nil), logger.Discard())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/api/replay?match_id=m-1&actor=dog-1")
	var resp ReplayResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Source != "ledger" || resp.TotalEvents != 1 || resp.Events[0].ID != "e3" {
		t.Errorf("actor filter: %+v", resp)
	}

	rec = get("/api/matches?limit=5")
	if !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Errorf("matches body %s", rec.Body.String())
	}
	if rec = get("/api/matches?limit=abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status %d", rec.Code)
	}

	rec = get("/api/matches/summary?match_id=m-1")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"captures":1`) {
		t.Errorf("summary %d %s", rec.Code, rec.Body.String())
	}
	if rec = get("/api/matches/summary?match_id=nope"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown match status %d", rec.Code)
	}
	if rec = get("/api/matches/summary"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing match_id status %d", rec.Code)
	}
	if rec = get("/api/replay/timeline?match_id=m-1"); rec.Code != http.StatusOK {
		t.Errorf("timeline status %d", rec.Code)
	}
}

func readMessages(t *testing.T, conn *websocket.Conn, until func(ServerMessage) bool) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		for _, line := range bytes.Split(data, []byte{'\n'}) {
			var msg ServerMessage
			if err := json.Unmarshal(line, &msg); err != nil {
				t.Fatalf("decode %q: %v", line, err)
			}
			if until(msg) {
				return
			}
		}
	}
}

func TestWebsocketPlayerStartsMatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, _ := newTestSession(t, false)
	go s.hub.Run(ctx)
	srv := NewServer(":0", s.hub, s, nil, logger.Discard())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readMessages(t, conn, func(m ServerMessage) bool {
		return m.Type == MsgFrame && m.Snapshot != nil
	})

	if err := conn.WriteJSON(PlayerCommand{Type: CmdStart, Mode: "three_pet"}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for s.Snapshot().HUD.Phase != engine.PhasePlaying {
		if time.Now().After(deadline) {
			t.Fatal("START never applied")
		}
		s.Step(1.0 / 60)
		time.Sleep(5 * time.Millisecond)
	}

	readMessages(t, conn, func(m ServerMessage) bool {
		return m.Snapshot != nil && m.Snapshot.Mode == "three_pet"
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"clients":1`) {
		t.Errorf("state %d %s", rec.Code, rec.Body.String())
	}
}
