package network

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/infra/storage"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

// ReplayHandler serves the event ledger and match history over HTTP.
// Without a match_id it reads the live match from the in-memory log.
type ReplayHandler struct {
	events  storage.EventRepository
	matches storage.MatchRepository
	recon   *storage.Reconstructor
	live    *events.EventLog
	logger  *logger.Logger
}

// NewReplayHandler creates a replay handler. The repositories may be nil
// when the server runs without a database.
func NewReplayHandler(er storage.EventRepository, mr storage.MatchRepository, live *events.EventLog, log *logger.Logger) *ReplayHandler {
	h := &ReplayHandler{events: er, matches: mr, live: live, logger: log}
	if er != nil {
		h.recon = storage.NewReconstructor(er)
	}
	return h
}

// ReplayResponse is the API response for a replay query.
type ReplayResponse struct {
	MatchID     string                `json:"match_id,omitempty"`
	Source      string                `json:"source"` // "live" or "ledger"
	TotalEvents int                   `json:"total_events"`
	FilteredBy  string                `json:"filtered_by,omitempty"`
	GeneratedAt string                `json:"generated_at"`
	Events      []storage.EventRecord `json:"events"`
}

// HandleReplay returns the events of a match.
// GET /api/replay?match_id=XXX&type=PET_CAPTURED&actor=cat-1
func (h *ReplayHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	matchID, eventType, actor := q.Get("match_id"), q.Get("type"), q.Get("actor")

	resp := ReplayResponse{MatchID: matchID, GeneratedAt: time.Now().Format(time.RFC3339)}
	switch {
	case eventType != "":
		resp.FilteredBy = "type=" + eventType
	case actor != "":
		resp.FilteredBy = "actor=" + actor
	}

	var (
		records []storage.EventRecord
		err     error
	)
	if matchID == "" {
		resp.Source = "live"
		records, err = h.liveRecords(eventType, actor)
	} else {
		if h.events == nil {
			h.jsonError(w, "No event store configured", http.StatusServiceUnavailable)
			return
		}
		resp.Source = "ledger"
		switch {
		case eventType != "":
			records, err = h.events.GetByEventType(r.Context(), matchID, eventType)
		case actor != "":
			records, err = h.events.GetByActorID(r.Context(), matchID, actor)
		default:
			records, err = h.events.GetByMatchID(r.Context(), matchID)
		}
	}
	if err != nil {
		h.logger.Error("replay query failed: %v", err)
		h.jsonError(w, "Replay query failed", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []storage.EventRecord{}
	}
	resp.Events = records
	resp.TotalEvents = len(records)
	if resp.MatchID == "" && len(records) > 0 {
		resp.MatchID = records[0].MatchID
	}

	h.logger.Event("REPLAY", "SPECTATOR", resp.Source+" events:"+strconv.Itoa(resp.TotalEvents))
	h.writeJSON(w, resp)
}

func (h *ReplayHandler) liveRecords(eventType, actor string) ([]storage.EventRecord, error) {
	var evs []events.GameEvent
	switch {
	case eventType != "":
		evs = h.live.GetByType(events.EventType(eventType))
	case actor != "":
		evs = h.live.GetByActor(actor)
	default:
		evs = h.live.Replay()
	}
	out := make([]storage.EventRecord, 0, len(evs))
	for _, ev := range evs {
		rec, err := storage.ToRecord(ev)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// HandleTimeline returns the readable recap of a stored match.
// GET /api/replay/timeline?match_id=XXX
func (h *ReplayHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	matchID, ok := h.ledgerQuery(w, r)
	if !ok {
		return
	}
	tl, err := h.recon.Timeline(r.Context(), matchID)
	if err != nil {
		h.ledgerError(w, err)
		return
	}
	if len(tl) == 0 {
		h.ledgerError(w, storage.ErrNotFound)
		return
	}
	h.writeJSON(w, map[string]interface{}{"match_id": matchID, "timeline": tl})
}

// HandleSummary returns a stored match folded into counters.
// GET /api/matches/summary?match_id=XXX
func (h *ReplayHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	matchID, ok := h.ledgerQuery(w, r)
	if !ok {
		return
	}
	s, err := h.recon.Summarize(r.Context(), matchID)
	if err != nil {
		h.ledgerError(w, err)
		return
	}
	h.writeJSON(w, map[string]interface{}{
		"summary":             s,
		"top_mischief_makers": s.TopMischiefMakers(),
	})
}

// HandleMatches lists finished matches, newest first.
// GET /api/matches?limit=N
func (h *ReplayHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.matches == nil {
		h.jsonError(w, "No match store configured", http.StatusServiceUnavailable)
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.jsonError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	list, err := h.matches.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("match list failed: %v", err)
		h.jsonError(w, "Match query failed", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []storage.MatchRecord{}
	}
	h.writeJSON(w, map[string]interface{}{"matches": list, "count": len(list)})
}

// RegisterRoutes sets up the replay and history routes.
func (h *ReplayHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/replay", h.HandleReplay)
	mux.HandleFunc("/api/replay/timeline", h.HandleTimeline)
	mux.HandleFunc("/api/matches", h.HandleMatches)
	mux.HandleFunc("/api/matches/summary", h.HandleSummary)
}

func (h *ReplayHandler) ledgerQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodGet {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}
	if h.recon == nil {
		h.jsonError(w, "No event store configured", http.StatusServiceUnavailable)
		return "", false
	}
	matchID := r.URL.Query().Get("match_id")
	if matchID == "" {
		h.jsonError(w, "Missing match_id", http.StatusBadRequest)
		return "", false
	}
	return matchID, true
}

func (h *ReplayHandler) ledgerError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		h.jsonError(w, "Match not found", http.StatusNotFound)
		return
	}
	h.logger.Error("ledger query failed: %v", err)
	h.jsonError(w, "Ledger query failed", http.StatusInternalServerError)
}

func (h *ReplayHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// jsonError sends an error response.
func (h *ReplayHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
